package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const owner = "8f0d1c7e-2a54-4b7a-9f0e-3c2d1b0a9e87"

func TestEncryptStringRoundTrip(t *testing.T) {
	enc, err := NewAESEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	sealed, err := EncryptString(enc, owner, "ya29.token")
	require.NoError(t, err)
	assert.NotEqual(t, "ya29.token", sealed)

	again, err := EncryptString(enc, owner, "ya29.token")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ between seals")

	plain, err := DecryptString(enc, owner, sealed)
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", plain)
}

func TestDecryptStringChecksOwner(t *testing.T) {
	enc, err := NewAESEncryptor([]byte("0123456789abcdef"))
	require.NoError(t, err)

	sealed, err := EncryptString(enc, owner, "ya29.token")
	require.NoError(t, err)

	_, err = DecryptString(enc, "someone-else", sealed)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestDecryptStringRejectsGarbage(t *testing.T) {
	enc, err := NewAESEncryptor([]byte("0123456789abcdef"))
	require.NoError(t, err)

	_, err = DecryptString(enc, owner, "not base64!")
	assert.ErrorIs(t, err, ErrDecryption)

	_, err = DecryptString(enc, owner, "c2hvcnQ=")
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestNewAESEncryptorKeySize(t *testing.T) {
	_, err := NewAESEncryptor([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.ErrorIs(t, h.Compare(hash, "wrong horse"), ErrPasswordMismatch)
}

func TestBcryptHasherNeedsRehash(t *testing.T) {
	weak := NewBcryptHasher(bcrypt.MinCost)
	hash, err := weak.Hash("correct horse")
	require.NoError(t, err)

	assert.False(t, weak.NeedsRehash(hash))
	assert.True(t, NewBcryptHasher(bcrypt.MinCost+1).NeedsRehash(hash))
	assert.True(t, weak.NeedsRehash("not a hash"))

	_, err = weak.Hash(string(make([]byte, MaxPasswordLen+1)))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestBcryptHasherClampsCost(t *testing.T) {
	h := NewBcryptHasher(100).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}
