package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Protocol constants. Shared with every client implementation.
const (
	HKDFSalt = "utter-relay-e2e-2024"
	HKDFInfo = "message-encryption-v1"

	// KeySize is the AES-256 key length.
	KeySize = 32
)

// DeriveSymmetricKey runs HKDF-SHA256 over an ECDH shared secret:
//
//	PRK = HMAC-SHA256(HKDFSalt, secret)
//	OKM = HMAC-SHA256(PRK, HKDFInfo || 0x01)
//
// The 32-byte OKM is the AES-256 key.
func DeriveSymmetricKey(secret [32]byte) [KeySize]byte {
	var key [KeySize]byte
	r := hkdf.New(sha256.New, secret[:], []byte(HKDFSalt), []byte(HKDFInfo))
	// A single SHA-256 block; HKDF cannot run short here.
	_, _ = io.ReadFull(r, key[:])
	return key
}
