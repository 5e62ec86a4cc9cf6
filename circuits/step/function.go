package step

import (
	"encoding/hex"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/frontend"
	"golang.org/x/crypto/blake2b"

	"github.com/eon-protocol/eondos/attestation"
	"github.com/eon-protocol/eondos/chain"
	"github.com/eon-protocol/eondos/circuits/hasher"
)

// Function is the state-transition function a proving engine folds. It carries the
// single hash configuration shared by the native transition and the circuit.
type Function struct {
	cfg hasher.Config
}

func NewFunction(cfg hasher.Config) (*Function, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Function{cfg: cfg}, nil
}

func (me *Function) Config() hasher.Config {
	return me.cfg
}

func (me *Function) StateLen() int {
	return chain.STATE_LEN
}

// Transition is the native evaluation of the circuit. It fails with
// chain.ErrTransitionUnsatisfiable exactly when no witness satisfies the circuit, and
// with chain.ErrDegreeOverflow when the degree would leave the uint64 range.
func (me *Function) Transition(z []fr.Element, i int, att *attestation.Attestation) ([]fr.Element, error) {
	state, err := chain.StateFromElements(z)
	if err != nil {
		return nil, err
	}
	next, err := chain.Transition(me.cfg, state, i, att)
	if err != nil {
		return nil, err
	}
	out := next.Elements()
	return out[:], nil
}

// Placeholder is the circuit shape used for compilation.
func (me *Function) Placeholder() frontend.Circuit {
	return &Circuit{Config: me.cfg}
}

func (me *Function) Assign(z, next []fr.Element, att *attestation.Attestation) (frontend.Circuit, error) {
	if len(z) != chain.STATE_LEN || len(next) != chain.STATE_LEN {
		return nil, chain.ErrStateLength
	}
	c := &Circuit{Config: me.cfg}
	c.Assign(z, next, att)
	return c, nil
}

// Tag names the compiled circuit in the key cache. It changes with the hash config.
func (me *Function) Tag() string {
	sum := blake2b.Sum256([]byte(me.cfg.String()))
	return fmt.Sprintf("STEP.%s", hex.EncodeToString(sum[:8]))
}
