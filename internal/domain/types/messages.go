package types

// Envelope is the encrypted message unit carried through the relay. The relay
// only reads SenderID, RecipientID, Nonce and EphemeralPublicKey. Its wire
// form lives in internal/protocol/wire.
type Envelope struct {
	SenderID           DeviceID
	RecipientID        DeviceID
	Ciphertext         []byte // includes the appended GCM tag
	Nonce              []byte
	EphemeralPublicKey X25519Public
	Timestamp          int64 // unix milliseconds
}

// DecryptedMessage is what MessageService.DecryptMessage returns.
type DecryptedMessage struct {
	From      DeviceID `json:"from"`
	To        DeviceID `json:"to"`
	Plaintext []byte   `json:"plaintext"`
	Timestamp int64    `json:"timestamp"`
}
