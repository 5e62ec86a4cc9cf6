package transport

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eon-protocol/eondos/attestation"
	"github.com/eon-protocol/eondos/chain"
	"github.com/eon-protocol/eondos/circuits/hasher"
)

func TestAttestations(t *testing.T) {
	_, atts, err := chain.GenerateChain(3, rand.Reader, hasher.DefaultConfig())
	require.NoError(t, err)

	lines, err := EncodeAttestations(atts)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	for _, l := range lines {
		require.Len(t, l, base64.StdEncoding.EncodedLen(attestation.SIZE))
	}

	lines[1] += "\n"
	got, err := DecodeAttestations(lines)
	require.NoError(t, err)
	for i := range atts {
		require.True(t, atts[i].Equal(&got[i]))
	}

	lines[2] = "not base64!"
	_, err = DecodeAttestations(lines)
	require.ErrorIs(t, err, ErrEncoding)
	require.ErrorContains(t, err, "attestation 2")

	lines[2] = base64.StdEncoding.EncodeToString(make([]byte, attestation.SIZE-1))
	_, err = DecodeAttestations(lines)
	require.ErrorIs(t, err, attestation.ErrParse)
}

func TestCompressedAttestation(t *testing.T) {
	_, atts, err := chain.GenerateChain(1, rand.Reader, hasher.DefaultConfig())
	require.NoError(t, err)

	for _, level := range []int{1, DEFAULT_LEVEL, 19} {
		s, err := EncodeProof(&atts[0], level)
		require.NoError(t, err)

		var got attestation.Attestation
		require.NoError(t, DecodeProof(s, &got))
		require.True(t, atts[0].Equal(&got))
	}

	b, err := Compress(&atts[0], DEFAULT_LEVEL)
	require.NoError(t, err)
	var got attestation.Attestation
	require.Error(t, Decompress(b[:len(b)/2], &got))
	require.ErrorIs(t, DecodeProof("%%%", &got), ErrEncoding)

	// two records where one is expected
	twice, err := Compress(multi{&atts[0], &atts[0]}, DEFAULT_LEVEL)
	require.NoError(t, err)
	require.ErrorContains(t, Decompress(twice, &got), "trailing")
}

type multi []*attestation.Attestation

func (m multi) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, a := range m {
		n, err := a.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
