// Package hasher provides the Poseidon2 gadget shared by the chain builder and the
// step circuit. The circuit side mirrors gnark-crypto's bls12-381 Poseidon2 exactly.
package hasher

import (
	"errors"
	"math/big"

	poseidonbls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381/fr/poseidon2"
	"github.com/consensys/gnark/frontend"
)

var (
	ErrInvalidSizebuffer = errors.New("the size of the input should match the size of the hash buffer")
)

// In-circuit Poseidon2 permutation implementation.
type Permutation struct {
	api    frontend.API
	params parameters
}

type parameters struct {
	width           int
	degreeSBox      int
	nbFullRounds    int
	nbPartialRounds int
	// [round][lane]
	roundKeys [][]big.Int
}

// NewPermutation builds the in-circuit permutation for cfg.
func NewPermutation(api frontend.API, cfg Config) (*Permutation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Permutation{api: api, params: parameters{
		width:           cfg.Width,
		degreeSBox:      poseidonbls12381.DegreeSBox(),
		nbFullRounds:    cfg.RoundsFull,
		nbPartialRounds: cfg.RoundsPartial,
		roundKeys:       cfg.roundKeys(),
	}}, nil
}

func (h *Permutation) sBox(index int, input []frontend.Variable) {
	tmp := input[index]
	switch h.params.degreeSBox {
	case 3:
		input[index] = h.api.Mul(input[index], input[index])
		input[index] = h.api.Mul(tmp, input[index])
	case 5:
		input[index] = h.api.Mul(input[index], input[index])
		input[index] = h.api.Mul(input[index], input[index])
		input[index] = h.api.Mul(input[index], tmp)
	case 7:
		input[index] = h.api.Mul(input[index], input[index])
		input[index] = h.api.Mul(input[index], tmp)
		input[index] = h.api.Mul(input[index], input[index])
		input[index] = h.api.Mul(input[index], tmp)
	default:
		panic("unsupported sBox degree")
	}
}

// matMulExternalInPlace multiplies by circ(2,1) or circ(2,1,1).
func (h *Permutation) matMulExternalInPlace(input []frontend.Variable) {
	switch h.params.width {
	case 2:
		tmp := h.api.Add(input[0], input[1])
		input[0] = h.api.Add(tmp, input[0])
		input[1] = h.api.Add(tmp, input[1])
	case 3:
		tmp := h.api.Add(input[0], input[1], input[2])
		input[0] = h.api.Add(input[0], tmp)
		input[1] = h.api.Add(input[1], tmp)
		input[2] = h.api.Add(input[2], tmp)
	default:
		panic("only T=2,3 is supported for external matrix")
	}
}

// matMulInternalInPlace multiplies by [[2,1],[1,3]] or [[2,1,1],[1,2,1],[1,1,3]].
func (h *Permutation) matMulInternalInPlace(input []frontend.Variable) {
	switch h.params.width {
	case 2:
		sum := h.api.Add(input[0], input[1])
		input[0] = h.api.Add(input[0], sum)
		input[1] = h.api.Mul(2, input[1])
		input[1] = h.api.Add(input[1], sum)
	case 3:
		sum := h.api.Add(input[0], input[1], input[2])
		input[0] = h.api.Add(input[0], sum)
		input[1] = h.api.Add(input[1], sum)
		input[2] = h.api.Mul(input[2], 2)
		input[2] = h.api.Add(input[2], sum)
	default:
		panic("only T=2,3 is supported for internal matrix")
	}
}

func (h *Permutation) addRoundKeyInPlace(round int, input []frontend.Variable) {
	for i := 0; i < len(h.params.roundKeys[round]); i++ {
		input[i] = h.api.Add(input[i], h.params.roundKeys[round][i])
	}
}

// Permutation applies the Poseidon2 permutation in place.
func (h *Permutation) Permutation(input []frontend.Variable) error {
	if len(input) != h.params.width {
		return ErrInvalidSizebuffer
	}

	h.matMulExternalInPlace(input)

	rf := h.params.nbFullRounds / 2
	for i := 0; i < rf; i++ {
		h.addRoundKeyInPlace(i, input)
		for j := 0; j < h.params.width; j++ {
			h.sBox(j, input)
		}
		h.matMulExternalInPlace(input)
	}
	// partial rounds only touch lane 0
	for i := rf; i < rf+h.params.nbPartialRounds; i++ {
		h.addRoundKeyInPlace(i, input)
		h.sBox(0, input)
		h.matMulInternalInPlace(input)
	}
	for i := rf + h.params.nbPartialRounds; i < h.params.nbFullRounds+h.params.nbPartialRounds; i++ {
		h.addRoundKeyInPlace(i, input)
		for j := 0; j < h.params.width; j++ {
			h.sBox(j, input)
		}
		h.matMulExternalInPlace(input)
	}
	return nil
}

// Compress returns perm([left,right])[1] + right.
func (h *Permutation) Compress(left, right frontend.Variable) frontend.Variable {
	if h.params.width != 2 {
		panic("poseidon2: Compress can only be used when t=2")
	}
	vars := [2]frontend.Variable{left, right}
	if err := h.Permutation(vars[:]); err != nil {
		panic(err)
	}
	return h.api.Add(vars[1], right)
}

// Sum folds values from zero using Compress, matching the native Sum.
func (h *Permutation) Sum(vals ...frontend.Variable) frontend.Variable {
	var acc frontend.Variable = 0
	for i := range vals {
		acc = h.Compress(acc, vals[i])
	}
	return acc
}

// FieldHasher adapts the permutation to gnark's hash.FieldHasher so std gadgets
// (eddsa in particular) hash with the shared config.
type FieldHasher struct {
	perm *Permutation
	data []frontend.Variable
}

func NewFieldHasher(api frontend.API, cfg Config) (*FieldHasher, error) {
	perm, err := NewPermutation(api, cfg)
	if err != nil {
		return nil, err
	}
	return &FieldHasher{perm: perm}, nil
}

func (me *FieldHasher) Write(data ...frontend.Variable) {
	me.data = append(me.data, data...)
}

func (me *FieldHasher) Sum() frontend.Variable {
	return me.perm.Sum(me.data...)
}

func (me *FieldHasher) Reset() {
	me.data = nil
}
