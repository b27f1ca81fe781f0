package wire

import (
	"encoding/json"

	"utter/internal/crypto"
	"utter/internal/domain"
)

// FromEnvelope builds a message frame carrying env.
func FromEnvelope(env domain.Envelope) Message {
	epk := env.EphemeralPublicKey
	return Message{
		Type:               TypeMessage,
		From:               env.SenderID,
		To:                 env.RecipientID,
		Content:            env.Ciphertext,
		Nonce:              env.Nonce,
		EphemeralPublicKey: epk[:],
		Timestamp:          env.Timestamp,
		Encrypted:          true,
	}
}

// ValidateEnvelope checks the routing metadata of a message frame without
// touching its content.
func ValidateEnvelope(m Message) error {
	switch {
	case m.Type != TypeMessage:
		return Errorf(CodeProtocol, "expected %s, got %s", TypeMessage, m.Type)
	case m.To == "":
		return Errorf(CodeProtocol, "message has no recipient")
	case len(m.Content) == 0:
		return Errorf(CodeProtocol, "message has no content")
	case len(m.Nonce) != crypto.NonceSize:
		return Errorf(CodeProtocol, "nonce must be %d bytes", crypto.NonceSize)
	case len(m.EphemeralPublicKey) != crypto.KeySize:
		return Errorf(CodeProtocol, "ephemeral public key must be %d bytes", crypto.KeySize)
	}
	return nil
}

// IsEncrypted reports whether m carries the fields of an encrypted envelope.
func (m Message) IsEncrypted() bool {
	return len(m.Nonce) > 0 && len(m.EphemeralPublicKey) > 0
}

// Envelope extracts the envelope from a message frame.
func (m Message) Envelope() (domain.Envelope, error) {
	if err := ValidateEnvelope(m); err != nil {
		return domain.Envelope{}, err
	}
	var epk domain.X25519Public
	copy(epk[:], m.EphemeralPublicKey)
	return domain.Envelope{
		SenderID:           m.From,
		RecipientID:        m.To,
		Ciphertext:         m.Content,
		Nonce:              m.Nonce,
		EphemeralPublicKey: epk,
		Timestamp:          m.Timestamp,
	}, nil
}

// StampFrom sets the from field of an encoded frame. Every other field,
// including ones this package does not know, is kept as sent.
func StampFrom(frame []byte, from domain.DeviceID) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(frame, &fields); err != nil {
		return nil, Errorf(CodeProtocol, "malformed message: %v", err)
	}
	v, err := json.Marshal(from)
	if err != nil {
		return nil, err
	}
	fields["from"] = v
	return json.Marshal(fields)
}
