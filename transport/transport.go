// Package transport moves attestations and proofs across text-only boundaries.
// Attestations travel as base64 of their fixed binary layout; proofs are zstd
// compressed before the base64 step.
package transport

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/eon-protocol/eondos/attestation"
)

const DEFAULT_LEVEL = 3

// MAX_PROOF_SIZE bounds the decompressed size of a proof.
const MAX_PROOF_SIZE = 1 << 30

var ErrEncoding = errors.New("transport: malformed text encoding")

func EncodeAttestation(a *attestation.Attestation) (string, error) {
	b, err := a.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeAttestation reverses EncodeAttestation. Codec failures wrap attestation.ErrParse.
func DecodeAttestation(s string) (attestation.Attestation, error) {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return attestation.Attestation{}, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	var a attestation.Attestation
	if err := a.UnmarshalBinary(b); err != nil {
		return attestation.Attestation{}, err
	}
	return a, nil
}

func EncodeAttestations(atts []attestation.Attestation) ([]string, error) {
	out := make([]string, len(atts))
	for i := range atts {
		s, err := EncodeAttestation(&atts[i])
		if err != nil {
			return nil, fmt.Errorf("transport: attestation %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// DecodeAttestations decodes every line and stops at the first failure, naming its index.
func DecodeAttestations(lines []string) ([]attestation.Attestation, error) {
	out := make([]attestation.Attestation, len(lines))
	for i := range lines {
		a, err := DecodeAttestation(lines[i])
		if err != nil {
			return nil, fmt.Errorf("transport: attestation %d: %w", i, err)
		}
		out[i] = a
	}
	return out, nil
}

// Compress writes v through a zstd encoder at level (1 fastest, 22 smallest).
func Compress(v io.WriterTo, level int) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, err
	}
	if _, err := v.WriteTo(enc); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress reads v from zstd compressed bytes. Trailing data after v is rejected.
func Decompress(b []byte, v io.ReaderFrom) error {
	dec, err := zstd.NewReader(bytes.NewReader(b), zstd.WithDecoderMaxMemory(MAX_PROOF_SIZE))
	if err != nil {
		return err
	}
	defer dec.Close()
	if _, err := v.ReadFrom(dec); err != nil {
		return err
	}
	if n, _ := io.Copy(io.Discard, dec); n != 0 {
		return fmt.Errorf("transport: %d trailing bytes", n)
	}
	return nil
}

// EncodeProof is Compress followed by base64.
func EncodeProof(v io.WriterTo, level int) (string, error) {
	b, err := Compress(v, level)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeProof(s string, v io.ReaderFrom) error {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return Decompress(b, v)
}
