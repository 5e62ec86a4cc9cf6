package eondos

import (
	"errors"
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"
	"github.com/consensys/gnark/backend/plonk"
	plonkbls12381 "github.com/consensys/gnark/backend/plonk/bls12-381"
)

var ErrProofShape = errors.New("proof: unexpected number of commitments or claimed values")

// Proof is a bls12-381 PLONK proof with every commitment named. BSB and CV are
// variable length: one BSB22 commitment per api.Commit in the circuit, and one claimed
// value per batched polynomial.
type Proof struct {
	CW1, CW2, CW3, CH1, CH2, CH3, CPZ, HBP, HZO bls12381.G1Affine
	BSB                                         []bls12381.G1Affine
	CZO                                         fr.Element
	CV                                          []fr.Element
}

func (me *Proof) ToGnarkProof() plonk.Proof {
	return &plonkbls12381.Proof{
		LRO:              [3]bls12381.G1Affine{me.CW1, me.CW2, me.CW3},
		Z:                me.CPZ,
		H:                [3]bls12381.G1Affine{me.CH1, me.CH2, me.CH3},
		Bsb22Commitments: append([]bls12381.G1Affine{}, me.BSB...),
		BatchedProof: kzg.BatchOpeningProof{
			H:             me.HBP,
			ClaimedValues: append([]fr.Element{}, me.CV...),
		},
		ZShiftedOpening: kzg.OpeningProof{
			H:            me.HZO,
			ClaimedValue: me.CZO,
		},
	}
}

func (me *Proof) FromGnarkProof(proof plonk.Proof) error {
	gp, ok := proof.(*plonkbls12381.Proof)
	if !ok {
		return errors.New("proof: not a bls12-381 plonk proof")
	}
	// l, r, o, s1, s2 and qcp_i are always opened
	if len(gp.BatchedProof.ClaimedValues) < 6+len(gp.Bsb22Commitments) {
		return ErrProofShape
	}
	me.CW1 = gp.LRO[0]
	me.CW2 = gp.LRO[1]
	me.CW3 = gp.LRO[2]
	me.CH1 = gp.H[0]
	me.CH2 = gp.H[1]
	me.CH3 = gp.H[2]
	me.CPZ = gp.Z
	me.BSB = append([]bls12381.G1Affine{}, gp.Bsb22Commitments...)
	me.HBP = gp.BatchedProof.H
	me.HZO = gp.ZShiftedOpening.H
	me.CZO = gp.ZShiftedOpening.ClaimedValue
	me.CV = append([]fr.Element{}, gp.BatchedProof.ClaimedValues...)
	return nil
}

func (me *Proof) WriteTo(w io.Writer) (int64, error) {
	enc := bls12381.NewEncoder(w)
	for _, v := range []any{&me.CW1, &me.CW2, &me.CW3, &me.CH1, &me.CH2, &me.CH3, &me.CPZ, &me.HBP, &me.HZO, me.BSB, &me.CZO, me.CV} {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

func (me *Proof) ReadFrom(r io.Reader) (int64, error) {
	dec := bls12381.NewDecoder(r)
	for _, v := range []any{&me.CW1, &me.CW2, &me.CW3, &me.CH1, &me.CH2, &me.CH3, &me.CPZ, &me.HBP, &me.HZO, &me.BSB, &me.CZO, &me.CV} {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	if len(me.CV) < 6+len(me.BSB) {
		return dec.BytesRead(), ErrProofShape
	}
	return dec.BytesRead(), nil
}
