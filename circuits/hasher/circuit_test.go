package hasher

import (
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	frbls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
)

// Cross-checks the circuit implementation against the native Poseidon2
// implementation (gnark-crypto) for the permutation and hash helpers.

type poseidon2PermCircuit struct {
	Input  []frontend.Variable
	Output []frontend.Variable `gnark:",public"`
}

func (c *poseidon2PermCircuit) Define(api frontend.API) error {
	perm, err := NewPermutation(api, DefaultConfig())
	if err != nil {
		return fmt.Errorf("new poseidon2 perm: %w", err)
	}
	if err := perm.Permutation(c.Input); err != nil {
		return fmt.Errorf("permute: %w", err)
	}
	for i := 0; i < len(c.Input); i++ {
		api.AssertIsEqual(c.Output[i], c.Input[i])
	}
	return nil
}

type sumCircuit struct {
	In  [5]frontend.Variable
	Out frontend.Variable `gnark:",public"`

	Config Config `gnark:"-"`
}

func (c *sumCircuit) Define(api frontend.API) error {
	h, err := NewFieldHasher(api, c.Config)
	if err != nil {
		return err
	}
	h.Write(c.In[:2]...)
	h.Write(c.In[2:]...)
	api.AssertIsEqual(h.Sum(), c.Out)
	return nil
}

type compressCircuit struct {
	X, Y frontend.Variable
	Out  frontend.Variable `gnark:",public"`

	Config Config `gnark:"-"`
}

func (c *compressCircuit) Define(api frontend.API) error {
	perm, err := NewPermutation(api, c.Config)
	if err != nil {
		return err
	}
	api.AssertIsEqual(perm.Compress(c.X, c.Y), c.Out)
	return nil
}

func TestPoseidon2Permutation_MatchesNative(t *testing.T) {
	assert := test.NewAssert(t)

	nativePerm := DefaultConfig().Permutation()

	for it := 0; it < 4; it++ {
		var in, out [WIDTH]frbls12381.Element
		for i := 0; i < WIDTH; i++ {
			in[i].SetRandom()
		}
		copy(out[:], in[:])

		if err := nativePerm.Permutation(out[:]); err != nil {
			t.Fatalf("native permutation failed: %v", err)
		}

		var circuit, validWitness poseidon2PermCircuit
		circuit.Input = make([]frontend.Variable, WIDTH)
		circuit.Output = make([]frontend.Variable, WIDTH)
		validWitness.Input = make([]frontend.Variable, WIDTH)
		validWitness.Output = make([]frontend.Variable, WIDTH)
		for i := 0; i < WIDTH; i++ {
			validWitness.Input[i] = in[i].String()
			validWitness.Output[i] = out[i].String()
		}

		assert.CheckCircuit(
			&circuit,
			test.WithValidAssignment(&validWitness),
			test.WithCurves(ecc.BLS12_381),
		)
	}
}

func TestCompress_MatchesNative(t *testing.T) {
	assert := test.NewAssert(t)
	cfg := DefaultConfig()

	var x, y frbls12381.Element
	x.SetRandom()
	y.SetRandom()
	want := cfg.Compress(x, y)

	var wrong frbls12381.Element
	wrong.SetOne()
	wrong.Add(&wrong, &want)

	assert.CheckCircuit(
		&compressCircuit{Config: cfg},
		test.WithValidAssignment(&compressCircuit{X: x.String(), Y: y.String(), Out: want.String()}),
		test.WithInvalidAssignment(&compressCircuit{X: x.String(), Y: y.String(), Out: wrong.String()}),
		test.WithCurves(ecc.BLS12_381),
	)
}

func TestFieldHasher_MatchesNativeSum(t *testing.T) {
	assert := test.NewAssert(t)
	cfg := DefaultConfig()

	var in [5]frbls12381.Element
	var assignment sumCircuit
	for i := range in {
		in[i].SetRandom()
		assignment.In[i] = in[i].String()
	}
	out := cfg.Sum(in[:]...)
	assignment.Out = out.String()

	assert.NoError(test.IsSolved(&sumCircuit{Config: cfg}, &assignment, ecc.BLS12_381.ScalarField()))
}

func TestConfig(t *testing.T) {
	assert := test.NewAssert(t)
	cfg := DefaultConfig()
	assert.NoError(cfg.Validate())
	assert.True(cfg.Equal(DefaultConfig()))

	other := cfg
	other.Seed = "ANOTHER_SEED"
	assert.False(cfg.Equal(other))

	var x, y frbls12381.Element
	x.SetUint64(1)
	y.SetUint64(2)
	a, b := cfg.Compress(x, y), other.Compress(x, y)
	assert.False(a.Equal(&b), "different seeds must give different digests")

	bad := cfg
	bad.Width = 3
	assert.Error(bad.Validate())
	bad = cfg
	bad.RoundsFull = 7
	assert.Error(bad.Validate())
}
