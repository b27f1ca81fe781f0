// Package crypto implements the per-message hybrid encryption shared by every
// utter client.
//
// Contents
//
//   - X25519 key generation and raw Diffie-Hellman (GenerateX25519, DH)
//   - HKDF-SHA256 key derivation with the protocol salt/info constants
//     (DeriveSymmetricKey)
//   - AES-256-GCM sealing with a fresh random nonce per call (Encrypt, Decrypt)
//   - Envelope composition: ephemeral sender key, static recipient key
//     (SealMessage, OpenMessage)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Protocol constants
//
// HKDFSalt and HKDFInfo must match every other implementation byte for byte.
// A mismatch produces incompatible keys and surfaces only as
// ErrAuthenticationFailed on the receiving side.
//
// # Notes
//
// The scheme authenticates nothing about the sender: anyone holding the
// recipient's public key can produce a valid envelope. Sender identity comes
// from the relay session that carried the envelope.
package crypto
