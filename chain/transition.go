package chain

import (
	"fmt"
	"math"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eon-protocol/eondos/attestation"
	"github.com/eon-protocol/eondos/circuits/hasher"
	"github.com/eon-protocol/eondos/signature"
)

// HashPublicKey is the message a new identity signs: Compress(pk.x, pk.y).
func HashPublicKey(cfg hasher.Config, pk *signature.PublicKey) fr.Element {
	return cfg.Compress(pk.X, pk.Y)
}

// Transition advances state by one link. step is informational only. On failure the
// zero State is returned together with an error wrapping ErrTransitionUnsatisfiable.
func Transition(cfg hasher.Config, state State, step int, att *attestation.Attestation) (State, error) {
	if state.Degree == math.MaxUint64 {
		return State{}, fmt.Errorf("%w: step %d", ErrDegreeOverflow, step)
	}
	msg := HashPublicKey(cfg, &state.Current)
	if err := signature.Verify(cfg, &att.PublicKey, msg, &att.Signature); err != nil {
		return State{}, fmt.Errorf("%w: step %d: %w", ErrTransitionUnsatisfiable, step, err)
	}
	return State{
		Origin:  state.Origin,
		Current: att.PublicKey,
		Degree:  state.Degree + 1,
	}, nil
}

// Replay applies atts in order starting from genesis.
func Replay(cfg hasher.Config, genesis State, atts []attestation.Attestation) (State, error) {
	state := genesis
	for i := range atts {
		next, err := Transition(cfg, state, i, &atts[i])
		if err != nil {
			return State{}, err
		}
		state = next
	}
	return state, nil
}
