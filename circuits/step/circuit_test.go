package step

import (
	"crypto/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"

	"github.com/eon-protocol/eondos/attestation"
	"github.com/eon-protocol/eondos/chain"
	"github.com/eon-protocol/eondos/circuits/hasher"
	"github.com/eon-protocol/eondos/signature"
)

func newFunction(t *testing.T) *Function {
	t.Helper()
	f, err := NewFunction(hasher.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestStepCircuit_ThreeLinks(t *testing.T) {
	assert := test.NewAssert(t)
	f := newFunction(t)

	genesis, atts, err := chain.GenerateChain(3, rand.Reader, f.Config())
	assert.NoError(err)

	z0 := genesis.Elements()
	z := z0[:]
	for i := range atts {
		next, err := f.Transition(z, i, &atts[i])
		assert.NoError(err)

		valid, err := f.Assign(z, next, &atts[i])
		assert.NoError(err)

		// claiming the degree did not move must not be provable
		wrongDegree := append([]fr.Element{}, next...)
		wrongDegree[4] = z[4]
		invalid, err := f.Assign(z, wrongDegree, &atts[i])
		assert.NoError(err)

		assert.CheckCircuit(
			f.Placeholder(),
			test.WithValidAssignment(valid),
			test.WithInvalidAssignment(invalid),
			test.WithCurves(ecc.BLS12_381),
			test.WithBackends(backend.PLONK),
			test.NoFuzzing(),
		)
		z = next
	}

	final, err := chain.StateFromElements(z)
	assert.NoError(err)
	assert.Equal(uint64(3), final.Degree)
	assert.True(final.Current.Equal(&atts[2].PublicKey))
	assert.True(final.Origin.Equal(&atts[0].PublicKey))
}

func TestStepCircuit_AgreesWithNative(t *testing.T) {
	assert := test.NewAssert(t)
	f := newFunction(t)

	genesis, atts, err := chain.GenerateChain(2, rand.Reader, f.Config())
	assert.NoError(err)
	z0 := genesis.Elements()
	z1, err := f.Transition(z0[:], 0, &atts[0])
	assert.NoError(err)
	want, err := f.Transition(z1, 1, &atts[1])
	assert.NoError(err)

	cases := map[string]func(a *attestation.Attestation){
		"scalar": func(a *attestation.Attestation) {
			a.Signature.S.SetBit(&a.Signature.S, 7, a.Signature.S.Bit(7)^1)
		},
		"scalar too wide": func(a *attestation.Attestation) {
			a.Signature.S.SetBit(&a.Signature.S, 255, 1)
		},
		"s + r": func(a *attestation.Attestation) {
			a.Signature.S.Add(&a.Signature.S, signature.Order())
		},
		"nonce point": func(a *attestation.Attestation) {
			a.Signature.R = atts[0].Signature.R
		},
		"signer": func(a *attestation.Attestation) {
			a.PublicKey = atts[0].PublicKey
		},
		"zero": func(a *attestation.Attestation) {
			*a = attestation.Zero()
		},
	}
	for name, tamper := range cases {
		assert.Run(func(assert *test.Assert) {
			bad := atts[1].Clone()
			tamper(&bad)

			_, err := f.Transition(z1, 1, &bad)
			assert.ErrorIs(err, chain.ErrTransitionUnsatisfiable)

			// no output state makes the circuit accept the tampered link
			for _, out := range [][]fr.Element{want, z1} {
				witness, err := f.Assign(z1, out, &bad)
				assert.NoError(err)
				assert.Error(test.IsSolved(f.Placeholder(), witness, ecc.BLS12_381.ScalarField()))
			}
		}, name)
	}

	witness, err := f.Assign(z1, want, &atts[1])
	assert.NoError(err)
	assert.NoError(test.IsSolved(f.Placeholder(), witness, ecc.BLS12_381.ScalarField()))
}

func TestStepCircuit_ForeignHashConfig(t *testing.T) {
	assert := test.NewAssert(t)
	f := newFunction(t)

	genesis, atts, err := chain.GenerateChain(1, rand.Reader, f.Config())
	assert.NoError(err)
	z0 := genesis.Elements()
	z1, err := f.Transition(z0[:], 0, &atts[0])
	assert.NoError(err)

	other := f.Config()
	other.Seed = "ANOTHER_SEED"
	g, err := NewFunction(other)
	assert.NoError(err)

	witness, err := g.Assign(z0[:], z1, &atts[0])
	assert.NoError(err)
	assert.Error(test.IsSolved(g.Placeholder(), witness, ecc.BLS12_381.ScalarField()))
	assert.NotEqual(f.Tag(), g.Tag())
}

func TestFunction_Shape(t *testing.T) {
	assert := test.NewAssert(t)
	f := newFunction(t)
	assert.Equal(chain.STATE_LEN, f.StateLen())

	_, err := f.Assign(make([]fr.Element, 4), make([]fr.Element, 5), &attestation.Attestation{})
	assert.ErrorIs(err, chain.ErrStateLength)

	_, err = f.Transition(make([]fr.Element, 6), 0, &attestation.Attestation{})
	assert.ErrorIs(err, chain.ErrStateLength)

	_, ok := f.Placeholder().(*Circuit)
	assert.True(ok)
	var _ frontend.Circuit = f.Placeholder()
}
