package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"

	"utter/internal/domain"
	"utter/internal/util/memzero"
)

// GenerateX25519 returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func GenerateX25519() (priv domain.X25519Private, pub domain.X25519Public, err error) {
	return GenerateX25519From(rand.Reader)
}

// GenerateX25519From is GenerateX25519 with an explicit random source.
func GenerateX25519From(r io.Reader) (priv domain.X25519Private, pub domain.X25519Public, err error) {
	if _, err = io.ReadFull(r, priv[:]); err != nil {
		return priv, pub, fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	clamp(&priv)
	pub, err = PublicKey(priv)
	return priv, pub, err
}

// PublicKey derives the public half of priv.
func PublicKey(priv domain.X25519Private) (pub domain.X25519Public, err error) {
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], pb)
	return pub, nil
}

// DH computes raw X25519 Diffie-Hellman. Both parties obtain the same 32
// bytes. A low-order peer key yields ErrInvalidKey.
func DH(priv domain.X25519Private, pub domain.X25519Public) (out [32]byte, err error) {
	secret, err := curve25519.X25519(priv.Slice(), pub.Slice())
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	copy(out[:], secret)
	memzero.Zero(secret)
	return out, nil
}

// ParsePublicKey copies a 32-byte public key out of b.
func ParsePublicKey(b []byte) (domain.X25519Public, error) {
	var pub domain.X25519Public
	if len(b) != len(pub) {
		return pub, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, len(pub), len(b))
	}
	copy(pub[:], b)
	return pub, nil
}

func clamp(k *domain.X25519Private) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
