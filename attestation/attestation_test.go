package attestation

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"

	"github.com/eon-protocol/eondos/circuits/hasher"
	"github.com/eon-protocol/eondos/signature"
)

func randomAttestation(t *testing.T) Attestation {
	t.Helper()
	kp, err := signature.GenerateKey(rand.Reader)
	require.NoError(t, err)
	var msg fr.Element
	msg.SetRandom()
	sig, err := kp.Sign(hasher.DefaultConfig(), msg)
	require.NoError(t, err)
	return Attestation{PublicKey: kp.Public, Signature: sig}
}

func TestRoundTrip(t *testing.T) {
	for i := 0; i < 8; i++ {
		a := randomAttestation(t)
		b, err := a.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, b, SIZE)

		var d Attestation
		require.NoError(t, d.UnmarshalBinary(b))
		require.True(t, a.Equal(&d))
	}

	z := Zero()
	require.True(t, z.IsZero())
	b, err := z.MarshalBinary()
	require.NoError(t, err)
	var d Attestation
	require.NoError(t, d.UnmarshalBinary(b))
	require.True(t, d.IsZero())
}

func TestLayout(t *testing.T) {
	a := randomAttestation(t)
	b, err := a.MarshalBinary()
	require.NoError(t, err)

	rx := a.Signature.R.X.Bytes()
	pky := a.PublicKey.Y.Bytes()
	require.Equal(t, rx[:], b[:32])
	require.Equal(t, a.Signature.S.FillBytes(make([]byte, 32)), b[64:96])
	require.Equal(t, pky[:], b[128:160])
}

func TestUnmarshalRejects(t *testing.T) {
	a := randomAttestation(t)
	good, err := a.MarshalBinary()
	require.NoError(t, err)

	var d Attestation
	for _, n := range []int{0, 1, SIZE - 1} {
		require.ErrorIs(t, d.UnmarshalBinary(good[:n]), ErrShortInput)
	}
	require.ErrorIs(t, d.UnmarshalBinary(append(append([]byte{}, good...), 0)), ErrTrailingBytes)

	t.Run("off curve", func(t *testing.T) {
		bad := append([]byte{}, good...)
		bad[POINT_SIZE+SCALAR_SIZE+31] ^= 1
		err := d.UnmarshalBinary(bad)
		require.ErrorIs(t, err, ErrParse)
	})
	t.Run("non canonical coordinate", func(t *testing.T) {
		bad := append([]byte{}, good...)
		for i := 0; i < 32; i++ {
			bad[i] = 0xff
		}
		require.ErrorIs(t, d.UnmarshalBinary(bad), ErrNonCanonical)
	})
	t.Run("scalar above order", func(t *testing.T) {
		bad := append([]byte{}, good...)
		signature.Order().FillBytes(bad[POINT_SIZE : POINT_SIZE+SCALAR_SIZE])
		require.ErrorIs(t, d.UnmarshalBinary(bad), ErrNonCanonical)
	})

	// failed decodes leave the receiver untouched
	require.True(t, d.Equal(&Attestation{}))
}

func TestStreaming(t *testing.T) {
	var buf bytes.Buffer
	want := []Attestation{randomAttestation(t), randomAttestation(t), Zero()}
	for i := range want {
		n, err := want[i].WriteTo(&buf)
		require.NoError(t, err)
		require.EqualValues(t, SIZE, n)
	}
	got, err := DecodeAll(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		require.True(t, want[i].Equal(&got[i]))
	}

	_, err = DecodeAll(bytes.NewReader(buf.Bytes()[:2*SIZE+7]))
	require.ErrorIs(t, err, ErrShortInput)
}

func TestClone(t *testing.T) {
	a := randomAttestation(t)
	c := a.Clone()
	c.Signature.S.SetBit(&c.Signature.S, 3, c.Signature.S.Bit(3)^1)
	require.False(t, a.Equal(&c))
}
