package eondos

import (
	"errors"
	"fmt"
	"io"
	"math/bits"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/plonk"
	plonkbls12381 "github.com/consensys/gnark/backend/plonk/bls12-381"

	"github.com/eon-protocol/eondos/circuits/hasher"
)

var ErrPublicInputs = errors.New("vk: wrong number of public inputs")

// Vk is the verifying key of a bls12-381 PLONK circuit with its selector commitments
// spelled out. SZ is log2 of the domain size, NP the number of public inputs, and CI
// the constraint index of each BSB22 commitment.
type Vk struct {
	S1, S2, S3, QL, QR, QM, QO, QK bls12381.G1Affine
	QC                             []bls12381.G1Affine
	CI                             []uint64
	NP                             uint64
	SZ                             uint8
	KZG                            kzg.VerifyingKey
}

func (me *Vk) ToGnarkVerifyingKey() plonk.VerifyingKey {
	size := fr.NewElement(1 << me.SZ)
	var sizeinv fr.Element
	sizeinv.Inverse(&size)
	generator, err := fr.Generator(1 << me.SZ)
	if err != nil {
		panic(err)
	}
	return &plonkbls12381.VerifyingKey{
		Size:                        1 << me.SZ,
		SizeInv:                     sizeinv,
		Generator:                   generator,
		NbPublicVariables:           me.NP,
		Kzg:                         me.KZG,
		CosetShift:                  COSET_SHIFT,
		S:                           [3]bls12381.G1Affine{me.S1, me.S2, me.S3},
		Ql:                          me.QL,
		Qr:                          me.QR,
		Qm:                          me.QM,
		Qo:                          me.QO,
		Qk:                          me.QK,
		Qcp:                         append([]bls12381.G1Affine{}, me.QC...),
		CommitmentConstraintIndexes: append([]uint64{}, me.CI...),
	}
}

func (me *Vk) FromGnarkVerifyingKey(vk plonk.VerifyingKey) error {
	cvk, ok := vk.(*plonkbls12381.VerifyingKey)
	if !ok {
		return errors.New("vk: not a bls12-381 plonk verifying key")
	}
	if bits.OnesCount64(cvk.Size) != 1 {
		return errors.New("vk.size should be power of 2")
	}
	if cvk.CosetShift != COSET_SHIFT {
		return errors.New("invalid coset shift")
	}
	if len(cvk.Qcp) != len(cvk.CommitmentConstraintIndexes) {
		return errors.New("invalid number of commitments")
	}
	me.SZ = uint8(bits.TrailingZeros64(cvk.Size))
	me.NP = cvk.NbPublicVariables
	me.CI = append([]uint64{}, cvk.CommitmentConstraintIndexes...)
	me.S1 = cvk.S[0]
	me.S2 = cvk.S[1]
	me.S3 = cvk.S[2]
	me.QL = cvk.Ql
	me.QR = cvk.Qr
	me.QM = cvk.Qm
	me.QO = cvk.Qo
	me.QK = cvk.Qk
	me.QC = append([]bls12381.G1Affine{}, cvk.Qcp...)
	me.KZG = cvk.Kzg
	return nil
}

// Verify checks proof against the public inputs, in declaration order.
func (me *Vk) Verify(proof *Proof, publics []fr.Element, opts ...backend.VerifierOption) error {
	if uint64(len(publics)) != me.NP {
		return fmt.Errorf("%w: got %d, want %d", ErrPublicInputs, len(publics), me.NP)
	}
	gp := proof.ToGnarkProof().(*plonkbls12381.Proof)
	gvk := me.ToGnarkVerifyingKey().(*plonkbls12381.VerifyingKey)
	return plonkbls12381.Verify(gp, gvk, fr.Vector(publics), opts...)
}

// Address is the Poseidon2 digest of the key's commitments. Two keys share an address
// only if they verify the same circuit.
func (me *Vk) Address() fr.Element {
	commitments := []fr.Element{
		hasher.HashG1(me.S1), hasher.HashG1(me.S2), hasher.HashG1(me.S3),
		hasher.HashG1(me.QL), hasher.HashG1(me.QR), hasher.HashG1(me.QM),
		hasher.HashG1(me.QO), hasher.HashG1(me.QK),
	}
	for i := range me.QC {
		commitments = append(commitments, hasher.HashG1(me.QC[i]), fr.NewElement(me.CI[i]))
	}
	return hasher.HashCompress(hasher.HashSum(commitments...), hasher.HashCompress(fr.NewElement(me.NP), fr.NewElement(uint64(me.SZ))))
}

func (me *Vk) WriteTo(w io.Writer) (int64, error) {
	enc := bls12381.NewEncoder(w)
	for _, v := range []any{&me.S1, &me.S2, &me.S3, &me.QL, &me.QR, &me.QM, &me.QO, &me.QK, me.QC, me.CI, []uint64{me.NP, uint64(me.SZ)}, &me.KZG} {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

func (me *Vk) ReadFrom(r io.Reader) (int64, error) {
	dec := bls12381.NewDecoder(r)
	var sizes []uint64
	for _, v := range []any{&me.S1, &me.S2, &me.S3, &me.QL, &me.QR, &me.QM, &me.QO, &me.QK, &me.QC, &me.CI, &sizes, &me.KZG} {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	if len(sizes) != 2 || sizes[1] > 63 || len(me.QC) != len(me.CI) {
		return dec.BytesRead(), errors.New("vk: malformed header")
	}
	me.NP = sizes[0]
	me.SZ = uint8(sizes[1])
	return dec.BytesRead(), nil
}
