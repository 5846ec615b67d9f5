package secret

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer(GenerateKey())
	require.NoError(t, err)

	sealed, err := s.Seal("sk_live_123")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "sk_live_123")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk_live_123", plain)
}

func TestSealer_SealIsRandomized(t *testing.T) {
	s, err := NewSealer(GenerateKey())
	require.NoError(t, err)

	a, _ := s.Seal("same")
	b, _ := s.Seal("same")
	assert.NotEqual(t, a, b)
}

func TestSealer_WrongKey(t *testing.T) {
	a, _ := NewSealer(GenerateKey())
	b, _ := NewSealer(GenerateKey())

	sealed, err := a.Seal("secret")
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrMalformedCiphertext)
}

func TestSealer_Malformed(t *testing.T) {
	s, _ := NewSealer(GenerateKey())

	_, err := s.Open("not base64 !!")
	assert.ErrorIs(t, err, ErrMalformedCiphertext)

	_, err = s.Open(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrMalformedCiphertext)
}

func TestNewSealer_KeyLength(t *testing.T) {
	_, err := NewSealer([]byte("too short"))
	assert.Error(t, err)

	_, err = NewSealerFromBase64(base64.StdEncoding.EncodeToString(GenerateKey()))
	assert.NoError(t, err)
}
