// Package fold drives a step function over a sequence of attestations and produces a
// proof of the final state. Engine is the boundary a folding scheme plugs into;
// PlonkEngine is a reference engine that proves every step with its own PLONK proof,
// so its proofs grow linearly with the chain.
package fold

import (
	"errors"
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"

	"github.com/eon-protocol/eondos"
	"github.com/eon-protocol/eondos/attestation"
)

var (
	ErrNotInitialized  = errors.New("fold: engine not initialized")
	ErrStateMismatch   = errors.New("fold: state does not thread through the steps")
	ErrAddressMismatch = errors.New("fold: proof was produced for another circuit")
	ErrNoSteps         = errors.New("fold: proof has no steps")
)

// StepFunction is the state-transition function an engine folds.
type StepFunction interface {
	StateLen() int
	// Transition evaluates one step natively; an error means the step cannot be proven.
	Transition(z []fr.Element, i int, att *attestation.Attestation) ([]fr.Element, error)
	Placeholder() frontend.Circuit
	Assign(z, next []fr.Element, att *attestation.Attestation) (frontend.Circuit, error)
}

// Engine applies a step function one attestation at a time. Steps are strictly
// sequential: each consumes the state the previous one produced.
type Engine interface {
	Init(z0 []fr.Element) error
	ProveStep(att *attestation.Attestation) error
	State() []fr.Element
	Steps() int
	Proof() (*ChainProof, error)
}

type PlonkEngine struct {
	fn    StepFunction
	pk    *eondos.Pk
	opts  []backend.ProverOption
	log   zerolog.Logger
	z0    []fr.Element
	z     []fr.Element
	steps []StepProof
}

var _ Engine = (*PlonkEngine)(nil)

// NewPlonkEngine proves fn with pk, which must have been compiled from fn.Placeholder().
func NewPlonkEngine(fn StepFunction, pk *eondos.Pk, opts ...backend.ProverOption) (*PlonkEngine, error) {
	if fn.StateLen() != eondos.STATE_LEN {
		return nil, fmt.Errorf("fold: state length %d unsupported", fn.StateLen())
	}
	vk := pk.Vk()
	if vk.NP != uint64(2*fn.StateLen()) {
		return nil, fmt.Errorf("fold: proving key has %d public inputs, want %d", vk.NP, 2*fn.StateLen())
	}
	return &PlonkEngine{
		fn:   fn,
		pk:   pk,
		opts: opts,
		log:  logger.Logger().With().Str("component", "fold").Logger(),
	}, nil
}

// Init resets the engine to the initial state z0.
func (me *PlonkEngine) Init(z0 []fr.Element) error {
	if len(z0) != me.fn.StateLen() {
		return fmt.Errorf("%w: initial state has %d elements", ErrStateMismatch, len(z0))
	}
	me.z0 = append([]fr.Element{}, z0...)
	me.z = append([]fr.Element{}, z0...)
	me.steps = nil
	return nil
}

// ProveStep applies att to the current state. When the transition is unsatisfiable
// its error is returned unchanged and the engine state is left as it was.
func (me *PlonkEngine) ProveStep(att *attestation.Attestation) error {
	if me.z == nil {
		return ErrNotInitialized
	}
	i := len(me.steps)
	start := time.Now()
	next, err := me.fn.Transition(me.z, i, att)
	if err != nil {
		return err
	}
	assignment, err := me.fn.Assign(me.z, next, att)
	if err != nil {
		return err
	}
	publics, proof, err := me.pk.Prove(assignment, me.opts...)
	if err != nil {
		return fmt.Errorf("fold: step %d: %w", i, err)
	}
	if !equalElements(publics, append(append([]fr.Element{}, me.z...), next...)) {
		return fmt.Errorf("%w: step %d public inputs", ErrStateMismatch, i)
	}
	var in [eondos.STATE_LEN]fr.Element
	copy(in[:], me.z)
	me.steps = append(me.steps, StepProof{In: in, Proof: *proof})
	me.z = next
	me.log.Info().Int("step", i).Dur("took", time.Since(start)).Msg("step proved")
	return nil
}

func (me *PlonkEngine) State() []fr.Element {
	return append([]fr.Element{}, me.z...)
}

func (me *PlonkEngine) Steps() int {
	return len(me.steps)
}

// Proof bundles the steps proved so far.
func (me *PlonkEngine) Proof() (*ChainProof, error) {
	if me.z == nil {
		return nil, ErrNotInitialized
	}
	if len(me.steps) == 0 {
		return nil, ErrNoSteps
	}
	vk := me.pk.Vk()
	proof := ChainProof{Address: vk.Address(), Steps: append([]StepProof{}, me.steps...)}
	copy(proof.Z0[:], me.z0)
	copy(proof.Zn[:], me.z)
	return &proof, nil
}

// ProveChain initializes e at z0 and proves every attestation in order. progress, when
// not nil, is called after each step with the number of steps done.
func ProveChain(e Engine, z0 []fr.Element, atts []attestation.Attestation, progress func(done int)) (*ChainProof, error) {
	if err := e.Init(z0); err != nil {
		return nil, err
	}
	for i := range atts {
		if err := e.ProveStep(&atts[i]); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(i + 1)
		}
	}
	return e.Proof()
}

func equalElements(a, b []fr.Element) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(&b[i]) {
			return false
		}
	}
	return true
}
