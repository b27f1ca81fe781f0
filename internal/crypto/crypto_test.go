package crypto_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"utter/internal/crypto"
	"utter/internal/domain"
)

// RFC 7748 §6.1 test vectors.
const (
	alicePrivHex  = "77076d0a7318a57d3c16c17251b26645df4c2f87ebc0992ab177fba51db92c2a"
	alicePubHex   = "8520f0098930a754748b7ddcb43ef75a0dbf3a0d26381af4eba4a98eaa9b4e6a"
	bobPrivHex    = "5dab087e624a8a4b79e17f8b83800ee66f3bb1292618b6fd1c2f8b27ff88e0eb"
	bobPubHex     = "de9edb7d7b7dc1b4d35b61c2ece435373f8343c85b78674dadfc7e146f882b4f"
	sharedHex     = "4a5d9d5ba4ce2de1728e3bf480350f25e07e21c947d19e3376f09b3c1e161742"
	derivedKeyHex = "f4d38c5fb1e3e5adeb21df7d3f0beeb6c995c8bc177e433af1f01e7d3363e43e"
)

func mustHex32(t *testing.T, s string) (out [32]byte) {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	require.Len(t, b, 32)
	copy(out[:], b)
	return out
}

func makeIdentity(t *testing.T) (domain.X25519Private, domain.X25519Public) {
	t.Helper()
	priv, pub, err := crypto.GenerateX25519()
	require.NoError(t, err)
	return priv, pub
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestGenerateX25519_KnownPrivateKey(t *testing.T) {
	seed := mustHex32(t, alicePrivHex)
	_, pub, err := crypto.GenerateX25519From(bytes.NewReader(seed[:]))
	require.NoError(t, err)
	require.Equal(t, mustHex32(t, alicePubHex), [32]byte(pub))
}

func TestGenerateX25519_EntropyUnavailable(t *testing.T) {
	_, _, err := crypto.GenerateX25519From(failingReader{})
	require.ErrorIs(t, err, crypto.ErrEntropyUnavailable)
}

func TestDH_MatchesVectorBothDirections(t *testing.T) {
	alicePriv := domain.X25519Private(mustHex32(t, alicePrivHex))
	bobPriv := domain.X25519Private(mustHex32(t, bobPrivHex))
	alicePub := domain.X25519Public(mustHex32(t, alicePubHex))
	bobPub := domain.X25519Public(mustHex32(t, bobPubHex))

	ab, err := crypto.DH(alicePriv, bobPub)
	require.NoError(t, err)
	ba, err := crypto.DH(bobPriv, alicePub)
	require.NoError(t, err)

	require.Equal(t, ab, ba)
	require.Equal(t, mustHex32(t, sharedHex), ab)
}

func TestDH_RejectsLowOrderPoint(t *testing.T) {
	priv, _ := makeIdentity(t)
	_, err := crypto.DH(priv, domain.X25519Public{})
	require.ErrorIs(t, err, crypto.ErrInvalidKey)
}

func TestDeriveSymmetricKey_ProtocolVector(t *testing.T) {
	key := crypto.DeriveSymmetricKey(mustHex32(t, sharedHex))
	require.Equal(t, derivedKeyHex, hex.EncodeToString(key[:]))
}

func TestDeriveSymmetricKey_ProtocolConstants(t *testing.T) {
	require.Equal(t, "utter-relay-e2e-2024", crypto.HKDFSalt)
	require.Equal(t, "message-encryption-v1", crypto.HKDFInfo)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := crypto.DeriveSymmetricKey(mustHex32(t, sharedHex))
	ct, nonce, err := crypto.Encrypt([]byte("hello"), key)
	require.NoError(t, err)
	require.Len(t, nonce, crypto.NonceSize)
	require.Len(t, ct, len("hello")+crypto.TagSize)

	pt, err := crypto.Decrypt(ct, key, nonce)
	require.NoError(t, err)
	require.Equal(t, "hello", string(pt))
}

func TestEncrypt_FreshNonceEveryCall(t *testing.T) {
	key := crypto.DeriveSymmetricKey(mustHex32(t, sharedHex))
	seen := make(map[string]bool)
	var prev []byte
	for i := 0; i < 64; i++ {
		ct, nonce, err := crypto.Encrypt([]byte("same plaintext"), key)
		require.NoError(t, err)
		require.False(t, seen[string(nonce)], "nonce reused")
		seen[string(nonce)] = true
		require.NotEqual(t, prev, ct)
		prev = ct
	}
}

func TestDecrypt_WrongKeyOrShortInput(t *testing.T) {
	key := crypto.DeriveSymmetricKey(mustHex32(t, sharedHex))
	ct, nonce, err := crypto.Encrypt([]byte("hello"), key)
	require.NoError(t, err)

	var other [crypto.KeySize]byte
	_, err = crypto.Decrypt(ct, other, nonce)
	require.ErrorIs(t, err, crypto.ErrAuthenticationFailed)

	_, err = crypto.Decrypt(ct, key, nonce[:8])
	require.ErrorIs(t, err, crypto.ErrAuthenticationFailed)

	_, err = crypto.Decrypt(ct[:4], key, nonce)
	require.ErrorIs(t, err, crypto.ErrAuthenticationFailed)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	priv, pub := makeIdentity(t)
	for _, msg := range []string{"", "hello", "ünïcødé ✓", string(bytes.Repeat([]byte("x"), 4096))} {
		sealed, err := crypto.SealMessage([]byte(msg), pub)
		require.NoError(t, err)
		pt, err := crypto.OpenMessage(sealed, priv)
		require.NoError(t, err)
		require.Equal(t, msg, string(pt))
	}
}

func TestOpen_WrongRecipient(t *testing.T) {
	_, pub := makeIdentity(t)
	otherPriv, _ := makeIdentity(t)
	sealed, err := crypto.SealMessage([]byte("hello"), pub)
	require.NoError(t, err)
	_, err = crypto.OpenMessage(sealed, otherPriv)
	require.ErrorIs(t, err, crypto.ErrAuthenticationFailed)
}

func TestOpen_DetectsEveryBitFlip(t *testing.T) {
	priv, pub := makeIdentity(t)
	sealed, err := crypto.SealMessage([]byte("hello"), pub)
	require.NoError(t, err)

	flip := func(b []byte, bit int) []byte {
		out := append([]byte(nil), b...)
		out[bit/8] ^= 1 << (bit % 8)
		return out
	}

	for bit := 0; bit < len(sealed.Ciphertext)*8; bit++ {
		s := sealed
		s.Ciphertext = flip(sealed.Ciphertext, bit)
		_, err := crypto.OpenMessage(s, priv)
		require.ErrorIs(t, err, crypto.ErrAuthenticationFailed, "ciphertext bit %d", bit)
	}
	for bit := 0; bit < len(sealed.Nonce)*8; bit++ {
		s := sealed
		s.Nonce = flip(sealed.Nonce, bit)
		_, err := crypto.OpenMessage(s, priv)
		require.ErrorIs(t, err, crypto.ErrAuthenticationFailed, "nonce bit %d", bit)
	}
	for bit := 0; bit < 256; bit++ {
		s := sealed
		copy(s.EphemeralPublicKey[:], flip(sealed.EphemeralPublicKey[:], bit))
		_, err := crypto.OpenMessage(s, priv)
		require.ErrorIs(t, err, crypto.ErrAuthenticationFailed, "ephemeral key bit %d", bit)
	}
}

func TestSeal_DistinctEphemeralKeysAndNonces(t *testing.T) {
	_, pub := makeIdentity(t)
	a, err := crypto.SealMessage([]byte("hello"), pub)
	require.NoError(t, err)
	b, err := crypto.SealMessage([]byte("hello"), pub)
	require.NoError(t, err)
	require.NotEqual(t, a.EphemeralPublicKey, b.EphemeralPublicKey)
	require.NotEqual(t, a.Nonce, b.Nonce)
	require.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestParsePublicKey(t *testing.T) {
	_, err := crypto.ParsePublicKey(make([]byte, 31))
	require.ErrorIs(t, err, crypto.ErrInvalidKey)

	want := mustHex32(t, bobPubHex)
	got, err := crypto.ParsePublicKey(want[:])
	require.NoError(t, err)
	require.Equal(t, want, [32]byte(got))
}

func TestFingerprint(t *testing.T) {
	fp := crypto.Fingerprint(domain.X25519Public(mustHex32(t, bobPubHex)))
	require.Equal(t, domain.Fingerprint("f35e5616160a30bf3c6e"), fp)
}
