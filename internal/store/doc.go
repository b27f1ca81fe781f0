// Package store provides file-based persistence for a device's local state.
//
// It contains concrete implementations of the domain storage interfaces.
// All methods are concurrency-safe via internal locking. Files live under the
// configured home directory and are written owner-only (0600) through a
// temp-file-and-rename so a crash never leaves a torn key on disk.
//
// The package includes stores for:
//   - The identity key pair (IdentityFileStore), either as the raw 32-byte
//     private key or, with a passphrase, sealed with scrypt and
//     ChaCha20-Poly1305
//   - The last selected target device (TargetFileStore)
package store
