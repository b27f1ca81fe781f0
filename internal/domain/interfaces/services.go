package interfaces

import (
	domaintypes "utter/internal/domain/types"
)

// IdentityService creates, retrieves, and inspects the device identity.
type IdentityService interface {
	LoadOrGenerateIdentity(passphrase string) (
		domaintypes.Identity,
		domaintypes.Fingerprint,
		error,
	)
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
	FingerprintIdentity(passphrase string) (domaintypes.Fingerprint, error)
}

// MessageService seals plaintext for a recipient and opens envelopes
// addressed to the local identity.
type MessageService interface {
	EncryptMessage(
		from domaintypes.DeviceID,
		to domaintypes.DeviceID,
		recipientKey domaintypes.X25519Public,
		plaintext []byte,
	) (domaintypes.Envelope, error)
	DecryptMessage(envelope domaintypes.Envelope) (domaintypes.DecryptedMessage, error)
}
