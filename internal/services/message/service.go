package message

import (
	"errors"
	"time"

	"utter/internal/crypto"
	"utter/internal/domain"
)

// ErrNoPublicKey is returned when the recipient never published a key.
// Such devices cannot receive messages; nothing is ever sent in plaintext.
var ErrNoPublicKey = errors.New("recipient has no published public key")

// Service encrypts and decrypts envelopes for one local identity.
type Service struct {
	identity domain.Identity
	now      func() time.Time
}

// New returns a message service bound to identity.
func New(identity domain.Identity) *Service {
	return &Service{identity: identity, now: time.Now}
}

// EncryptMessage seals plaintext for recipientKey and addresses it.
func (s *Service) EncryptMessage(
	from domain.DeviceID,
	to domain.DeviceID,
	recipientKey domain.X25519Public,
	plaintext []byte,
) (domain.Envelope, error) {
	if recipientKey.IsZero() {
		return domain.Envelope{}, ErrNoPublicKey
	}
	sealed, err := crypto.SealMessage(plaintext, recipientKey)
	if err != nil {
		return domain.Envelope{}, err
	}
	return domain.Envelope{
		SenderID:           from,
		RecipientID:        to,
		Ciphertext:         sealed.Ciphertext,
		Nonce:              sealed.Nonce,
		EphemeralPublicKey: sealed.EphemeralPublicKey,
		Timestamp:          s.now().UnixMilli(),
	}, nil
}

// DecryptMessage opens an envelope addressed to the local identity. It fails
// with crypto.ErrAuthenticationFailed and never returns partial plaintext.
func (s *Service) DecryptMessage(env domain.Envelope) (domain.DecryptedMessage, error) {
	pt, err := crypto.OpenMessage(crypto.Sealed{
		Ciphertext:         env.Ciphertext,
		Nonce:              env.Nonce,
		EphemeralPublicKey: env.EphemeralPublicKey,
	}, s.identity.Private)
	if err != nil {
		return domain.DecryptedMessage{}, err
	}
	return domain.DecryptedMessage{
		From:      env.SenderID,
		To:        env.RecipientID,
		Plaintext: pt,
		Timestamp: env.Timestamp,
	}, nil
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
