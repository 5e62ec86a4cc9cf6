package fold

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"runtime"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/sync/errgroup"

	"github.com/eon-protocol/eondos"
	"github.com/eon-protocol/eondos/chain"
)

// MAX_STEPS bounds the step count accepted by ReadFrom.
const MAX_STEPS = 1 << 20

// StepProof proves the transition out of In. The output of step i is the input of
// step i+1, or Zn for the last step.
type StepProof struct {
	In    [eondos.STATE_LEN]fr.Element
	Proof eondos.Proof
}

// ChainProof attests that Zn is reached from Z0 by len(Steps) valid transitions of
// the circuit whose verifying key hashes to Address.
type ChainProof struct {
	Address fr.Element
	Z0, Zn  [eondos.STATE_LEN]fr.Element
	Steps   []StepProof
}

// Final decodes Zn.
func (me *ChainProof) Final() (chain.State, error) {
	return chain.StateFromElements(me.Zn[:])
}

// IsGenesis reports whether Z0 is a genesis state: origin equals current, degree 0.
func (me *ChainProof) IsGenesis() bool {
	return me.Z0[0].Equal(&me.Z0[2]) && me.Z0[1].Equal(&me.Z0[3]) && me.Z0[4].IsZero()
}

func (me *ChainProof) WriteTo(w io.Writer) (int64, error) {
	enc := bls12381.NewEncoder(w)
	if err := enc.Encode(&me.Address); err != nil {
		return enc.BytesWritten(), err
	}
	for i := range me.Z0 {
		if err := enc.Encode(&me.Z0[i]); err != nil {
			return enc.BytesWritten(), err
		}
	}
	for i := range me.Zn {
		if err := enc.Encode(&me.Zn[i]); err != nil {
			return enc.BytesWritten(), err
		}
	}
	buf := [4]byte{}
	binary.BigEndian.PutUint32(buf[:], uint32(len(me.Steps)))
	n, err := w.Write(buf[:])
	written := enc.BytesWritten() + int64(n)
	if err != nil {
		return written, err
	}
	for i := range me.Steps {
		m, err := me.Steps[i].WriteTo(w)
		written += m
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (me *ChainProof) ReadFrom(r io.Reader) (int64, error) {
	dec := bls12381.NewDecoder(r)
	if err := dec.Decode(&me.Address); err != nil {
		return dec.BytesRead(), err
	}
	for i := range me.Z0 {
		if err := dec.Decode(&me.Z0[i]); err != nil {
			return dec.BytesRead(), err
		}
	}
	for i := range me.Zn {
		if err := dec.Decode(&me.Zn[i]); err != nil {
			return dec.BytesRead(), err
		}
	}
	buf := [4]byte{}
	n, err := io.ReadFull(r, buf[:])
	read := dec.BytesRead() + int64(n)
	if err != nil {
		return read, err
	}
	count := binary.BigEndian.Uint32(buf[:])
	if count > MAX_STEPS {
		return read, fmt.Errorf("fold: %d steps exceeds %d", count, MAX_STEPS)
	}
	// count is untrusted: grow with the data actually read
	me.Steps = make([]StepProof, 0, min(count, 64))
	for i := uint32(0); i < count; i++ {
		var step StepProof
		m, err := step.ReadFrom(r)
		read += m
		if err != nil {
			return read, err
		}
		me.Steps = append(me.Steps, step)
	}
	return read, nil
}

func (me *StepProof) WriteTo(w io.Writer) (int64, error) {
	enc := bls12381.NewEncoder(w)
	for i := range me.In {
		if err := enc.Encode(&me.In[i]); err != nil {
			return enc.BytesWritten(), err
		}
	}
	n, err := me.Proof.WriteTo(w)
	return enc.BytesWritten() + n, err
}

func (me *StepProof) ReadFrom(r io.Reader) (int64, error) {
	dec := bls12381.NewDecoder(r)
	for i := range me.In {
		if err := dec.Decode(&me.In[i]); err != nil {
			return dec.BytesRead(), err
		}
	}
	n, err := me.Proof.ReadFrom(r)
	return dec.BytesRead() + n, err
}

// Verify checks proof against vk and returns the final chain state it attests.
// Step proofs are verified concurrently; the first failure cancels the rest.
func Verify(ctx context.Context, vk *eondos.Vk, proof *ChainProof) (chain.State, error) {
	address := vk.Address()
	if !address.Equal(&proof.Address) {
		return chain.State{}, ErrAddressMismatch
	}
	if len(proof.Steps) == 0 {
		return chain.State{}, ErrNoSteps
	}
	if proof.Steps[0].In != proof.Z0 {
		return chain.State{}, fmt.Errorf("%w: first step does not start at z0", ErrStateMismatch)
	}
	// origin and degree are enforced per step; checking them here fails fast
	if !proof.Zn[0].Equal(&proof.Z0[0]) || !proof.Zn[1].Equal(&proof.Z0[1]) {
		return chain.State{}, fmt.Errorf("%w: origin changed", ErrStateMismatch)
	}
	var degree fr.Element
	degree.SetUint64(uint64(len(proof.Steps)))
	degree.Add(&degree, &proof.Z0[4])
	if !degree.Equal(&proof.Zn[4]) {
		return chain.State{}, fmt.Errorf("%w: degree does not match %d steps", ErrStateMismatch, len(proof.Steps))
	}
	final, err := proof.Final()
	if err != nil {
		return chain.State{}, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range proof.Steps {
		next := proof.Zn
		if i+1 < len(proof.Steps) {
			next = proof.Steps[i+1].In
		}
		publics := append(append([]fr.Element{}, proof.Steps[i].In[:]...), next[:]...)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := vk.Verify(&proof.Steps[i].Proof, publics); err != nil {
				return fmt.Errorf("fold: step %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return chain.State{}, err
	}
	return final, nil
}
