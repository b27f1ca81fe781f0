package crypto

import (
	"crypto/rand"
	"io"

	"utter/internal/domain"
	"utter/internal/util/memzero"
)

// Sealed is the cryptographic part of an envelope.
type Sealed struct {
	Ciphertext         []byte
	Nonce              []byte
	EphemeralPublicKey domain.X25519Public
}

// SealMessage encrypts plaintext for the holder of recipient's private key.
//
// A one-shot ephemeral key pair is generated, combined with recipient via
// ECDH, run through DeriveSymmetricKey and used for AES-256-GCM. The
// ephemeral private key is wiped before returning.
func SealMessage(plaintext []byte, recipient domain.X25519Public) (Sealed, error) {
	return sealFrom(rand.Reader, plaintext, recipient)
}

func sealFrom(r io.Reader, plaintext []byte, recipient domain.X25519Public) (Sealed, error) {
	ephPriv, ephPub, err := GenerateX25519From(r)
	if err != nil {
		return Sealed{}, err
	}
	defer memzero.Zero(ephPriv[:])

	shared, err := DH(ephPriv, recipient)
	if err != nil {
		return Sealed{}, err
	}
	defer memzero.Zero(shared[:])

	key := DeriveSymmetricKey(shared)
	defer memzero.Zero(key[:])

	ct, nonce, err := encryptFrom(r, plaintext, key)
	if err != nil {
		return Sealed{}, err
	}
	return Sealed{Ciphertext: ct, Nonce: nonce, EphemeralPublicKey: ephPub}, nil
}

// OpenMessage reverses SealMessage using the recipient identity private key.
// Any failure, including a low-order ephemeral key, is ErrAuthenticationFailed.
func OpenMessage(s Sealed, identity domain.X25519Private) ([]byte, error) {
	// X25519 ignores the top bit of a public key; honest senders never set it.
	if s.EphemeralPublicKey[31]&0x80 != 0 {
		return nil, ErrAuthenticationFailed
	}
	shared, err := DH(identity, s.EphemeralPublicKey)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	defer memzero.Zero(shared[:])

	key := DeriveSymmetricKey(shared)
	defer memzero.Zero(key[:])

	return Decrypt(s.Ciphertext, key, s.Nonce)
}
