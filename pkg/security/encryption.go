package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

var (
	ErrInvalidKeySize = errors.New("invalid key size")
	ErrEncryption     = errors.New("encryption failed")
	ErrDecryption     = errors.New("decryption failed")
)

// Encryptor seals secrets kept at rest. The owner passed to Seal must be
// given to Open again, so a sealed value copied onto another record will
// not open.
type Encryptor interface {
	Seal(plaintext, owner []byte) ([]byte, error)
	Open(sealed, owner []byte) ([]byte, error)
}

// NewAESEncryptor returns an AES-GCM encryptor. key must be 16, 24 or 32 bytes.
func NewAESEncryptor(key []byte) (Encryptor, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrInvalidKeySize
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrEncryption
	}
	return &aesGCM{aead: gcm}, nil
}

type aesGCM struct {
	aead cipher.AEAD
}

// Seal prefixes the random nonce to the ciphertext.
func (a *aesGCM) Seal(plaintext, owner []byte) ([]byte, error) {
	nonce := make([]byte, a.aead.NonceSize(), a.aead.NonceSize()+len(plaintext)+a.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, ErrEncryption
	}
	return a.aead.Seal(nonce, nonce, plaintext, owner), nil
}

func (a *aesGCM) Open(sealed, owner []byte) ([]byte, error) {
	n := a.aead.NonceSize()
	if len(sealed) < n+a.aead.Overhead() {
		return nil, ErrDecryption
	}
	plain, err := a.aead.Open(nil, sealed[:n], sealed[n:], owner)
	if err != nil {
		return nil, ErrDecryption
	}
	return plain, nil
}

// EncryptString seals s for owner and base64 encodes it for a text column.
func EncryptString(e Encryptor, owner, s string) (string, error) {
	sealed, err := e.Seal([]byte(s), []byte(owner))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func DecryptString(e Encryptor, owner, s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", ErrDecryption
	}
	plain, err := e.Open(raw, []byte(owner))
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
