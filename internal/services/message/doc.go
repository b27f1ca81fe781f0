// Package message turns plaintext into relay envelopes and back.
//
// Each outbound message gets its own ephemeral X25519 key, so the sender
// keeps no state between messages. Inbound envelopes are opened with the
// local identity private key.
package message
