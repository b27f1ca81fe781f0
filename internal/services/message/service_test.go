package message_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"utter/internal/crypto"
	"utter/internal/domain"
	"utter/internal/services/message"
)

func newIdentity(t *testing.T) domain.Identity {
	t.Helper()
	priv, pub, err := crypto.GenerateX25519()
	require.NoError(t, err)
	return domain.Identity{Private: priv, Public: pub}
}

func TestEncryptDecrypt_BetweenDevices(t *testing.T) {
	alice := message.New(newIdentity(t))
	bobID := newIdentity(t)
	bob := message.New(bobID)

	env, err := alice.EncryptMessage("a1", "b1", bobID.Public, []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, domain.DeviceID("a1"), env.SenderID)
	require.Equal(t, domain.DeviceID("b1"), env.RecipientID)
	require.NotZero(t, env.Timestamp)
	require.NotContains(t, string(env.Ciphertext), "hello")

	got, err := bob.DecryptMessage(env)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got.Plaintext))
	require.Equal(t, domain.DeviceID("a1"), got.From)
	require.Equal(t, env.Timestamp, got.Timestamp)
}

func TestEncrypt_RecipientWithoutKey(t *testing.T) {
	alice := message.New(newIdentity(t))
	_, err := alice.EncryptMessage("a1", "b1", domain.X25519Public{}, []byte("hello"))
	require.ErrorIs(t, err, message.ErrNoPublicKey)
}

func TestDecrypt_NotForMe(t *testing.T) {
	alice := message.New(newIdentity(t))
	bobID := newIdentity(t)
	eve := message.New(newIdentity(t))

	env, err := alice.EncryptMessage("a1", "b1", bobID.Public, []byte("hello"))
	require.NoError(t, err)

	_, err = eve.DecryptMessage(env)
	require.ErrorIs(t, err, crypto.ErrAuthenticationFailed)
}
