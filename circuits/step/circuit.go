// Package step is the one-link transition of an identity chain as a PLONK circuit.
// The circuit is satisfied exactly when chain.Transition succeeds on the same input.
package step

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/math/bits"
	"github.com/consensys/gnark/std/signature/eddsa"

	"github.com/eon-protocol/eondos/attestation"
	"github.com/eon-protocol/eondos/chain"
	"github.com/eon-protocol/eondos/circuits/hasher"
	"github.com/eon-protocol/eondos/signature"
)

const CURVE = tedwards.BLS12_381

// Circuit proves Out = F(In, attestation). In and Out are
// (origin.x, origin.y, current.x, current.y, degree).
type Circuit struct {
	In  [chain.STATE_LEN]frontend.Variable `gnark:",public"`
	Out [chain.STATE_LEN]frontend.Variable `gnark:",public"`

	PublicKey twistededwards.Point
	R         twistededwards.Point
	S         frontend.Variable

	Config hasher.Config `gnark:"-"`
}

func (c *Circuit) Define(api frontend.API) error {
	curve, err := twistededwards.NewEdCurve(api, CURVE)
	if err != nil {
		return err
	}
	perm, err := hasher.NewPermutation(api, c.Config)
	if err != nil {
		return err
	}
	h, err := hasher.NewFieldHasher(api, c.Config)
	if err != nil {
		return err
	}

	msg := perm.Compress(c.In[2], c.In[3])

	curve.AssertIsOnCurve(c.PublicKey)
	curve.AssertIsOnCurve(c.R)
	// small order keys, the identity included, are rejected
	cleared := c.PublicKey
	for i := 0; i < signature.CofactorDoublings(); i++ {
		cleared = curve.Double(cleared)
	}
	api.AssertIsDifferent(cleared.X, 0)
	// s < r, as in signature.Verify
	s := bits.FromBinary(api, bits.ToBinary(api, c.S, bits.WithNbDigits(signature.ScalarBits())))
	api.AssertIsLessOrEqual(s, new(big.Int).Sub(signature.Order(), big.NewInt(1)))

	sig := eddsa.Signature{R: c.R, S: s}
	if err := eddsa.Verify(curve, sig, msg, eddsa.PublicKey{A: c.PublicKey}, h); err != nil {
		return err
	}

	api.AssertIsEqual(c.Out[0], c.In[0])
	api.AssertIsEqual(c.Out[1], c.In[1])
	api.AssertIsEqual(c.Out[2], c.PublicKey.X)
	api.AssertIsEqual(c.Out[3], c.PublicKey.Y)
	api.AssertIsEqual(c.Out[4], api.Add(c.In[4], 1))
	return nil
}

// Assign fills the witness of c for the transition z -> next through att.
func (c *Circuit) Assign(z, next []fr.Element, att *attestation.Attestation) {
	for i := 0; i < chain.STATE_LEN; i++ {
		c.In[i] = z[i].String()
		c.Out[i] = next[i].String()
	}
	c.PublicKey = twistededwards.Point{X: att.PublicKey.X.String(), Y: att.PublicKey.Y.String()}
	c.R = twistededwards.Point{X: att.Signature.R.X.String(), Y: att.Signature.R.Y.String()}
	c.S = new(big.Int).Set(&att.Signature.S)
}
