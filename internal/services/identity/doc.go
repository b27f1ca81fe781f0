// Package identity manages creation and loading of the device identity.
//
// The identity is a single X25519 key pair generated on first run. It is
// persisted via the domain.IdentityStore, optionally sealed with a passphrase
// that must satisfy a basic strength policy.
package identity
