// Package crypto implements the confidentiality layer: PBKDF2 key
// derivation, authenticated encryption of credential material, and the
// deterministic blind index used for equality search over ciphertext.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfIterations = 100_000
	keyLength     = 32
)

var (
	// ErrEncryption means the cipher could not be constructed, which only
	// happens with an absent or malformed key.
	ErrEncryption = errors.New("crypto: encryption failed")

	// ErrAuthentication means the ciphertext failed its integrity check:
	// wrong key, tampering, or corruption. Never swallowed.
	ErrAuthentication = errors.New("crypto: authentication failed")

	// ErrFormat means the token is too short or otherwise not well-formed.
	ErrFormat = errors.New("crypto: malformed token")
)

// DeriveKey stretches an operator passphrase into a 256-bit key using
// PBKDF2-HMAC-SHA256. Deterministic: the key is rederived at process start
// and never stored.
func DeriveKey(passphrase, salt []byte) []byte {
	return pbkdf2.Key(passphrase, salt, kdfIterations, keyLength, sha256.New)
}

// Encryptor performs authenticated encryption of arbitrary byte strings.
// Tokens are nonce-prefixed AES-256-GCM seals; a fresh nonce per call keeps
// identical plaintexts from producing identical tokens.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor derives the symmetric key from passphrase and salt and
// prepares the AEAD cipher.
func NewEncryptor(passphrase, salt string) (*Encryptor, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: empty passphrase", ErrEncryption)
	}

	key := DeriveKey([]byte(passphrase), []byte(salt))

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	return &Encryptor{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce. The returned token is
// nonce || ciphertext+tag.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a token produced by Encrypt. It fails with ErrFormat when
// the token cannot even carry a nonce, and with ErrAuthentication when the
// GCM tag does not verify. It never returns unverified plaintext.
func (e *Encryptor) Decrypt(token []byte) ([]byte, error) {
	if len(token) < e.aead.NonceSize() {
		return nil, ErrFormat
	}

	nonce, sealed := token[:e.aead.NonceSize()], token[e.aead.NonceSize():]

	plaintext, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrAuthentication
	}

	return plaintext, nil
}
