// Package wire defines the JSON messages exchanged between devices and the
// relay over a WebSocket connection.
//
// Every frame is a single JSON object discriminated by its "type" field.
// Binary fields (public keys, ciphertext, nonces) travel as standard base64,
// which encoding/json applies to []byte automatically. The relay only ever
// looks at routing metadata; "content" is opaque ciphertext.
package wire
