// Centralizes Poseidon2 parameters for both native and circuit code.
package hasher

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/poseidon2"
)

const WIDTH = 2
const ROUND_FULL = 8
const ROUND_PARTIAL = 56
const SEED = "EON_POSEIDON2_HASH_SEED"

// Config is the shared Poseidon2 instance description. The chain builder and the
// step circuit must be handed the same value; round keys are derived from it.
type Config struct {
	Width         int
	RoundsFull    int
	RoundsPartial int
	Seed          string
}

// DefaultConfig returns the parameters every eondos component uses unless told otherwise.
func DefaultConfig() Config {
	return Config{Width: WIDTH, RoundsFull: ROUND_FULL, RoundsPartial: ROUND_PARTIAL, Seed: SEED}
}

func (me Config) Equal(o Config) bool {
	return me == o
}

func (me Config) String() string {
	return fmt.Sprintf("poseidon2[t=%d,rf=%d,rp=%d,seed=%q]", me.Width, me.RoundsFull, me.RoundsPartial, me.Seed)
}

// Validate rejects configurations the 2-to-1 compression cannot run with.
func (me Config) Validate() error {
	if me.Width != 2 {
		return fmt.Errorf("poseidon2: width %d unsupported, need 2", me.Width)
	}
	if me.RoundsFull <= 0 || me.RoundsFull%2 != 0 {
		return fmt.Errorf("poseidon2: full rounds %d must be even and positive", me.RoundsFull)
	}
	if me.RoundsPartial <= 0 {
		return fmt.Errorf("poseidon2: partial rounds %d must be positive", me.RoundsPartial)
	}
	return nil
}

func (me Config) parameters() *poseidon2.Parameters {
	if me.Seed == "" {
		return poseidon2.NewParameters(me.Width, me.RoundsFull, me.RoundsPartial)
	}
	return poseidon2.NewParametersWithSeed(me.Width, me.RoundsFull, me.RoundsPartial, me.Seed)
}

// Permutation returns the native permutation for the config. Instances are cached
// per config since round key derivation runs keccak over every constant.
func (me Config) Permutation() *poseidon2.Permutation {
	if v, ok := permutations.Load(me); ok {
		return v.(*poseidon2.Permutation)
	}
	var perm *poseidon2.Permutation
	if me.Seed == "" {
		perm = poseidon2.NewPermutation(me.Width, me.RoundsFull, me.RoundsPartial)
	} else {
		perm = poseidon2.NewPermutationWithSeed(me.Width, me.RoundsFull, me.RoundsPartial, me.Seed)
	}
	v, _ := permutations.LoadOrStore(me, perm)
	return v.(*poseidon2.Permutation)
}

// roundKeys copies the round keys into big.Int constants for circuit use.
func (me Config) roundKeys() [][]big.Int {
	if v, ok := roundKeyCache.Load(me); ok {
		return v.([][]big.Int)
	}
	params := me.parameters()
	keys := make([][]big.Int, len(params.RoundKeys))
	for i := range keys {
		keys[i] = make([]big.Int, len(params.RoundKeys[i]))
		for j := range keys[i] {
			params.RoundKeys[i][j].BigInt(&keys[i][j])
		}
	}
	v, _ := roundKeyCache.LoadOrStore(me, keys)
	return v.([][]big.Int)
}

var (
	permutations  sync.Map
	roundKeyCache sync.Map
)
