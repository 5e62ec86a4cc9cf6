package eondos

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark/backend"
	plonkbls12381 "github.com/consensys/gnark/backend/plonk/bls12-381"
	"github.com/consensys/gnark/backend/witness"
	cs "github.com/consensys/gnark/constraint/bls12-381"
)

const ACCELERATOR_CPU = "cpu"
const ACCELERATOR_ICICLE = "icicle"

// ErrAcceleratorUnavailable is returned for accelerators the bls12-381 PLONK prover
// cannot use. gnark's PLONK backend ignores backend.WithIcicleAcceleration, so icicle
// is refused rather than silently proving on the cpu.
var ErrAcceleratorUnavailable = errors.New("accelerator not available for bls12-381 plonk")

// ProverOptions maps an accelerator name to prover options. The empty name means cpu.
func ProverOptions(accelerator string) ([]backend.ProverOption, error) {
	switch accelerator {
	case "", ACCELERATOR_CPU:
		return nil, nil
	case ACCELERATOR_ICICLE:
		return nil, fmt.Errorf("%w: %s", ErrAcceleratorUnavailable, accelerator)
	default:
		return nil, fmt.Errorf("unknown accelerator %q", accelerator)
	}
}

// Prove routes to the bls12-381 PLONK prover. Options requesting an accelerator are
// rejected since only the cpu prover exists for this backend.
func Prove(spr *cs.SparseR1CS, pk *plonkbls12381.ProvingKey, w witness.Witness, opts ...backend.ProverOption) (*plonkbls12381.Proof, error) {
	opt, err := backend.NewProverConfig(opts...)
	if err != nil {
		return nil, err
	}
	if opt.Accelerator != "" {
		return nil, fmt.Errorf("%w: %s", ErrAcceleratorUnavailable, opt.Accelerator)
	}
	return plonkbls12381.Prove(spr, pk, w, opts...)
}
