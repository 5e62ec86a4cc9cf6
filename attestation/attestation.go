// Package attestation defines the (public key, signature) pair that links one identity
// to its predecessor, and its fixed binary layout:
//
//	R.x | R.y | s | pk.x | pk.y      (5 × 32 bytes, big-endian)
package attestation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards"

	"github.com/eon-protocol/eondos/signature"
)

const (
	POINT_SIZE  = 2 * fr.Bytes
	SCALAR_SIZE = fr.Bytes
	SIZE        = POINT_SIZE + SCALAR_SIZE + POINT_SIZE
)

var (
	// ErrParse marks input that is not even a well-formed attestation.
	ErrParse         = errors.New("attestation: parse error")
	ErrShortInput    = fmt.Errorf("%w: input shorter than %d bytes", ErrParse, SIZE)
	ErrTrailingBytes = fmt.Errorf("%w: input longer than %d bytes", ErrParse, SIZE)
	ErrNonCanonical  = fmt.Errorf("%w: non canonical encoding", ErrParse)
	ErrInvalidPoint  = fmt.Errorf("%w: point not on curve", ErrParse)
)

// Attestation states that the holder of PublicKey signed the hash of the previous
// identity's public key. The zero value is a padding placeholder and never verifies.
type Attestation struct {
	PublicKey signature.PublicKey
	Signature signature.Signature
}

// Zero returns the padding attestation: identity points and a zero scalar.
func Zero() Attestation {
	var a Attestation
	a.PublicKey.Y.SetOne()
	a.Signature.R.Y.SetOne()
	return a
}

func (me *Attestation) IsZero() bool {
	return me.PublicKey.IsZero() && me.Signature.R.IsZero() && me.Signature.S.Sign() == 0
}

func (me *Attestation) Equal(o *Attestation) bool {
	return me.PublicKey.Equal(&o.PublicKey) && me.Signature.Equal(&o.Signature)
}

// Clone returns a deep copy; the scalar is not shared with me.
func (me *Attestation) Clone() Attestation {
	c := Attestation{PublicKey: me.PublicKey}
	c.Signature.R = me.Signature.R
	c.Signature.S.Set(&me.Signature.S)
	return c
}

func (me *Attestation) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(SIZE)
	if _, err := me.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes exactly SIZE bytes; it never decodes partially.
func (me *Attestation) UnmarshalBinary(data []byte) error {
	if len(data) < SIZE {
		return ErrShortInput
	}
	if len(data) > SIZE {
		return ErrTrailingBytes
	}
	var a Attestation
	if err := decodePoint(&a.Signature.R, data[0:POINT_SIZE]); err != nil {
		return fmt.Errorf("signature R: %w", err)
	}
	if err := decodeScalar(&a.Signature.S, data[POINT_SIZE:POINT_SIZE+SCALAR_SIZE]); err != nil {
		return fmt.Errorf("signature s: %w", err)
	}
	if err := decodePoint(&a.PublicKey, data[POINT_SIZE+SCALAR_SIZE:]); err != nil {
		return fmt.Errorf("public key: %w", err)
	}
	*me = a
	return nil
}

func (me *Attestation) WriteTo(w io.Writer) (int64, error) {
	if me.Signature.S.Sign() < 0 || me.Signature.S.BitLen() > 8*SCALAR_SIZE {
		return 0, fmt.Errorf("attestation: scalar does not fit %d bytes", SCALAR_SIZE)
	}
	var out [SIZE]byte
	putPoint(out[0:POINT_SIZE], &me.Signature.R)
	me.Signature.S.FillBytes(out[POINT_SIZE : POINT_SIZE+SCALAR_SIZE])
	putPoint(out[POINT_SIZE+SCALAR_SIZE:], &me.PublicKey)
	n, err := w.Write(out[:])
	return int64(n), err
}

func (me *Attestation) ReadFrom(r io.Reader) (int64, error) {
	var in [SIZE]byte
	n, err := io.ReadFull(r, in[:])
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return int64(n), ErrShortInput
		}
		return int64(n), err
	}
	return int64(n), me.UnmarshalBinary(in[:])
}

// DecodeAll reads consecutive attestations until EOF.
func DecodeAll(r io.Reader) ([]Attestation, error) {
	var res []Attestation
	for i := 0; ; i++ {
		var a Attestation
		if _, err := a.ReadFrom(r); err != nil {
			if errors.Is(err, io.EOF) {
				return res, nil
			}
			return nil, fmt.Errorf("attestation %d: %w", i, err)
		}
		res = append(res, a)
	}
}

func putPoint(dst []byte, p *twistededwards.PointAffine) {
	x, y := p.X.Bytes(), p.Y.Bytes()
	copy(dst[:fr.Bytes], x[:])
	copy(dst[fr.Bytes:], y[:])
}

func decodePoint(p *twistededwards.PointAffine, src []byte) error {
	if err := p.X.SetBytesCanonical(src[:fr.Bytes]); err != nil {
		return ErrNonCanonical
	}
	if err := p.Y.SetBytesCanonical(src[fr.Bytes:]); err != nil {
		return ErrNonCanonical
	}
	if !p.IsOnCurve() {
		return ErrInvalidPoint
	}
	return nil
}

func decodeScalar(s *big.Int, src []byte) error {
	s.SetBytes(src)
	if s.Cmp(signature.Order()) >= 0 {
		return ErrNonCanonical
	}
	return nil
}
