package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// NonceSize is the AES-GCM nonce length; TagSize the appended tag length.
const (
	NonceSize = 12
	TagSize   = 16
)

// Encrypt seals plaintext under key with AES-256-GCM and a fresh random
// nonce. The returned ciphertext carries the 16-byte tag at its end.
func Encrypt(plaintext []byte, key [KeySize]byte) (ciphertext, nonce []byte, err error) {
	return encryptFrom(rand.Reader, plaintext, key)
}

func encryptFrom(r io.Reader, plaintext []byte, key [KeySize]byte) (ciphertext, nonce []byte, err error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(r, nonce); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	return aead.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Decrypt opens ciphertext produced by Encrypt. Every failure is reported as
// ErrAuthenticationFailed.
func Decrypt(ciphertext []byte, key [KeySize]byte, nonce []byte) ([]byte, error) {
	if len(nonce) != NonceSize || len(ciphertext) < TagSize {
		return nil, ErrAuthenticationFailed
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	pt, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return pt, nil
}

func newGCM(key [KeySize]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
