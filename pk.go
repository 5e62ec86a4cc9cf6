package eondos

import (
	"errors"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/plonk"
	plonkbls12381 "github.com/consensys/gnark/backend/plonk/bls12-381"
	"github.com/consensys/gnark/constraint"
	csbls12381 "github.com/consensys/gnark/constraint/bls12-381"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/logger"
	"github.com/consensys/gnark/test/unsafekzg"
)

// Pk is a compiled circuit together with the KZG keys needed to prove it.
type Pk struct {
	vk          Vk
	ccs         csbls12381.SparseR1CS
	kzg         kzg.ProvingKey
	kzgLagrange kzg.ProvingKey
}

// Compile builds the constraint system of circuit and runs the PLONK setup against a
// locally sampled SRS. The SRS is not the output of a ceremony: proofs are sound only
// for parties that trust whoever ran Compile.
func (me *Pk) Compile(circuit frontend.Circuit) error {
	log := logger.Logger().With().Str("component", "pk").Logger()
	ccs, err := frontend.Compile(FIELD, scs.NewBuilder, circuit)
	if err != nil {
		return err
	}
	log.Info().Int("constraints", ccs.GetNbConstraints()).Int("publics", ccs.GetNbPublicVariables()).Msg("compiled")
	srs, srsLagrange, err := unsafekzg.NewSRS(ccs)
	if err != nil {
		return err
	}
	ipk, _, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		return err
	}
	return me.FromGnarkConstraintSystemAndProvingKey(ccs, ipk)
}

func (me *Pk) Vk() Vk {
	return me.vk
}

func (me *Pk) ToGnarkProvingKey() plonk.ProvingKey {
	return &plonkbls12381.ProvingKey{
		Kzg:         me.kzg,
		KzgLagrange: me.kzgLagrange,
		Vk:          me.vk.ToGnarkVerifyingKey().(*plonkbls12381.VerifyingKey),
	}
}

func (me *Pk) ToGnarkConstraintSystem() constraint.ConstraintSystem {
	return &me.ccs
}

func (me *Pk) FromGnarkConstraintSystemAndProvingKey(ccs constraint.ConstraintSystem, pk plonk.ProvingKey) error {
	cpk, ok := pk.(*plonkbls12381.ProvingKey)
	if !ok {
		return errors.New("pk: not a bls12-381 plonk proving key")
	}
	cs, ok := ccs.(*csbls12381.SparseR1CS)
	if !ok {
		return errors.New("pk: not a bls12-381 sparse constraint system")
	}
	if err := me.vk.FromGnarkVerifyingKey(cpk.Vk); err != nil {
		return err
	}
	me.ccs = *cs
	me.kzg = cpk.Kzg
	me.kzgLagrange = cpk.KzgLagrange
	return nil
}

// Prove solves and proves assignment. It returns the public inputs in declaration
// order along with the proof.
func (me *Pk) Prove(assignment frontend.Circuit, opts ...backend.ProverOption) ([]fr.Element, *Proof, error) {
	witness, err := frontend.NewWitness(assignment, FIELD)
	if err != nil {
		return nil, nil, err
	}
	gp, err := Prove(&me.ccs, me.ToGnarkProvingKey().(*plonkbls12381.ProvingKey), witness, opts...)
	if err != nil {
		return nil, nil, err
	}
	var proof Proof
	if err := proof.FromGnarkProof(gp); err != nil {
		return nil, nil, err
	}
	vec := witness.Vector().(fr.Vector)
	return append([]fr.Element{}, vec[:me.vk.NP]...), &proof, nil
}

func (me *Pk) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, v := range []io.WriterTo{&me.vk, &me.ccs, &me.kzg, &me.kzgLagrange} {
		n, err := v.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (me *Pk) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for _, v := range []io.ReaderFrom{&me.vk, &me.ccs, &me.kzg, &me.kzgLagrange} {
		n, err := v.ReadFrom(r)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
