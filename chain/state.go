// Package chain builds signed identity chains and advances the chain state one link
// at a time, exactly as the step circuit does.
//
// The genesis link signs the hash of its own public key, so every link, the first
// included, goes through the same transition. This makes the genesis identity
// self-certifying: whoever holds the origin key is trusted as the anchor.
package chain

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards"

	"github.com/eon-protocol/eondos/attestation"
	"github.com/eon-protocol/eondos/signature"
)

// STATE_LEN is the number of field elements of a State: origin.x, origin.y,
// current.x, current.y, degree.
const STATE_LEN = 5

var (
	ErrEmptyChain              = errors.New("chain: at least one link is required")
	ErrConstructionInvariant   = errors.New("chain: freshly built attestation failed self verification")
	ErrTransitionUnsatisfiable = errors.New("chain: attestation does not verify against the current identity")
	ErrStateLength             = fmt.Errorf("chain: state must have %d elements", STATE_LEN)
	ErrDegreeOverflow          = errors.New("chain: degree does not fit 64 bits")
)

type State struct {
	Origin  signature.PublicKey
	Current signature.PublicKey
	Degree  uint64
}

// Genesis returns (pk0, pk0, 0) for the first attestation of a chain.
func Genesis(first *attestation.Attestation) State {
	return State{Origin: first.PublicKey, Current: first.PublicKey}
}

func (me State) Elements() [STATE_LEN]fr.Element {
	var z [STATE_LEN]fr.Element
	z[0], z[1] = me.Origin.X, me.Origin.Y
	z[2], z[3] = me.Current.X, me.Current.Y
	z[4].SetUint64(me.Degree)
	return z
}

// StateFromElements is the inverse of Elements. The degree must fit a uint64.
func StateFromElements(z []fr.Element) (State, error) {
	if len(z) != STATE_LEN {
		return State{}, ErrStateLength
	}
	if !z[4].IsUint64() {
		return State{}, fmt.Errorf("chain: degree %s out of range", z[4].String())
	}
	return State{
		Origin:  twistededwards.NewPointAffine(z[0], z[1]),
		Current: twistededwards.NewPointAffine(z[2], z[3]),
		Degree:  z[4].Uint64(),
	}, nil
}

func (me State) Equal(o State) bool {
	return me.Origin.Equal(&o.Origin) && me.Current.Equal(&o.Current) && me.Degree == o.Degree
}

func (me State) String() string {
	return fmt.Sprintf("{origin: (%s, %s), current: (%s, %s), degree: %d}",
		me.Origin.X.Text(16), me.Origin.Y.Text(16), me.Current.X.Text(16), me.Current.Y.Text(16), me.Degree)
}
