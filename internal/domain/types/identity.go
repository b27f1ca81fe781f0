package types

// Identity is the device's long-lived X25519 key pair. The private half never
// leaves the device; the public half is published at registration.
type Identity struct {
	Public  X25519Public  `json:"public"`
	Private X25519Private `json:"private"`
}
