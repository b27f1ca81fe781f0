package client

import "errors"

var (
	// ErrNoTarget is returned by Send when no target is selected.
	ErrNoTarget = errors.New("no target selected")
	// ErrNoPublicKey is returned when the target cannot receive encrypted messages.
	ErrNoPublicKey = errors.New("target has no public key and cannot receive encrypted messages")
	// ErrRecipientUnavailable is returned when the target is not in the directory.
	ErrRecipientUnavailable = errors.New("recipient unavailable")
	// ErrNotRegistered is returned when sending without a registered session.
	ErrNotRegistered = errors.New("not registered with relay")
	// ErrTransport wraps socket-level failures.
	ErrTransport = errors.New("transport error")
	// ErrPlaintextRejected is reported for inbound messages that are not encrypted.
	ErrPlaintextRejected = errors.New("rejected unencrypted message")
	// ErrUnauthorized is reported when the relay refuses the registration.
	ErrUnauthorized = errors.New("relay rejected registration")
)
