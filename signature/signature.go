// Package signature implements EdDSA over Jubjub (the twisted Edwards curve defined
// over the bls12-381 scalar field) with a Poseidon2 challenge, so that verification
// is cheap inside a bls12-381 circuit.
//
// A signature on a field element msg under A = [a]B is (R, s) with
// s = k + H(R.x, R.y, A.x, A.y, msg)·a mod r. Verification checks
// [8]·(R - [s]B + [h]A) = O with the full-width challenge h and s < r. Public keys
// of small order, the identity included, are rejected.
package signature

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards"
	"golang.org/x/crypto/blake2b"

	"github.com/eon-protocol/eondos/circuits/hasher"
)

const SEED_SIZE = 32

var (
	ErrInvalidSignature = errors.New("signature: verification equation does not hold")
	ErrPointNotOnCurve  = errors.New("signature: point is not on the curve")
	ErrSmallOrderKey    = errors.New("signature: public key has small order")
	ErrScalarOutOfRange = errors.New("signature: scalar is not below the subgroup order")
	ErrZeroScalar       = errors.New("signature: derived secret scalar is zero")
	ErrSeedSize         = errors.New("signature: invalid seed size")
	errNilRandomness    = errors.New("signature: nil randomness source")
)

var (
	curveParams       = twistededwards.GetEdwardsCurve()
	scalarBitLen      = curveParams.Order.BitLen()
	cofactorDoublings = cofactorLog()
)

// PublicKey is a point of the prime order subgroup.
type PublicKey = twistededwards.PointAffine

type Signature struct {
	R twistededwards.PointAffine
	S big.Int
}

func (me *Signature) Equal(o *Signature) bool {
	return me.R.Equal(&o.R) && me.S.Cmp(&o.S) == 0
}

type KeyPair struct {
	Public PublicKey
	secret big.Int
	prefix [32]byte
}

// Order returns the prime subgroup order r.
func Order() *big.Int {
	return new(big.Int).Set(&curveParams.Order)
}

// ScalarBits is the bit length of r; in-circuit decomposition of s uses exactly this width.
func ScalarBits() int {
	return scalarBitLen
}

// CofactorDoublings is log2 of the curve cofactor.
func CofactorDoublings() int {
	return cofactorDoublings
}

// Base returns the subgroup generator.
func Base() twistededwards.PointAffine {
	return curveParams.Base
}

// GenerateKey draws a seed from rng and derives a key pair from it.
func GenerateKey(rng io.Reader) (*KeyPair, error) {
	if rng == nil {
		return nil, errNilRandomness
	}
	var seed [SEED_SIZE]byte
	if _, err := io.ReadFull(rng, seed[:]); err != nil {
		return nil, fmt.Errorf("signature: read seed: %w", err)
	}
	return NewKeyFromSeed(seed[:])
}

// NewKeyFromSeed derives the secret scalar from the first half of blake2b-512(seed)
// and the nonce prefix from the second half.
func NewKeyFromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != SEED_SIZE {
		return nil, ErrSeedSize
	}
	digest := blake2b.Sum512(seed)
	var kp KeyPair
	kp.secret.SetBytes(digest[:32])
	kp.secret.Mod(&kp.secret, &curveParams.Order)
	if kp.secret.Sign() == 0 {
		return nil, ErrZeroScalar
	}
	copy(kp.prefix[:], digest[32:])
	kp.Public.ScalarMultiplication(&curveParams.Base, &kp.secret)
	return &kp, nil
}

// Challenge computes H(R.x, R.y, A.x, A.y, msg).
func Challenge(cfg hasher.Config, r, a *twistededwards.PointAffine, msg fr.Element) fr.Element {
	return cfg.Sum(r.X, r.Y, a.X, a.Y, msg)
}

// Sign signs the field element msg. The nonce is derived deterministically from the
// key prefix and msg.
func (me *KeyPair) Sign(cfg hasher.Config, msg fr.Element) (Signature, error) {
	if err := cfg.Validate(); err != nil {
		return Signature{}, err
	}
	mb := msg.Bytes()
	h, err := blake2b.New512(nil)
	if err != nil {
		return Signature{}, err
	}
	h.Write(me.prefix[:])
	h.Write(mb[:])
	var k big.Int
	k.SetBytes(h.Sum(nil))
	k.Mod(&k, &curveParams.Order)

	var sig Signature
	sig.R.ScalarMultiplication(&curveParams.Base, &k)

	c := Challenge(cfg, &sig.R, &me.Public, msg)
	var hram big.Int
	c.BigInt(&hram)
	sig.S.Mul(&hram, &me.secret)
	sig.S.Add(&sig.S, &k)
	sig.S.Mod(&sig.S, &curveParams.Order)
	return sig, nil
}

// Verify checks sig over msg under pub. It accepts exactly the inputs the step
// circuit accepts.
func Verify(cfg hasher.Config, pub *PublicKey, msg fr.Element, sig *Signature) error {
	if !pub.IsOnCurve() || !sig.R.IsOnCurve() {
		return ErrPointNotOnCurve
	}
	if sig.S.Sign() < 0 || sig.S.Cmp(&curveParams.Order) >= 0 {
		return ErrScalarOutOfRange
	}
	if a8 := clearCofactor(*pub); a8.IsZero() {
		return ErrSmallOrderKey
	}
	c := Challenge(cfg, &sig.R, pub, msg)
	var hram big.Int
	c.BigInt(&hram)

	var sB, hA, q twistededwards.PointAffine
	sB.ScalarMultiplication(&curveParams.Base, &sig.S)
	hA.ScalarMultiplication(pub, &hram)
	hA.Neg(&hA)
	q.Add(&sB, &hA)
	q.Neg(&q)
	q.Add(&q, &sig.R)
	if q = clearCofactor(q); !q.IsZero() {
		return ErrInvalidSignature
	}
	return nil
}

func clearCofactor(p twistededwards.PointAffine) twistededwards.PointAffine {
	for i := 0; i < cofactorDoublings; i++ {
		p.Double(&p)
	}
	return p
}

func cofactorLog() int {
	var c big.Int
	curveParams.Cofactor.BigInt(&c)
	n := 0
	for c.Cmp(big.NewInt(1)) > 0 {
		c.Rsh(&c, 1)
		n++
	}
	return n
}
