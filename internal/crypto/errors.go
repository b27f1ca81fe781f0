package crypto

import "errors"

var (
	// ErrEntropyUnavailable is returned when the system random source cannot
	// be read. Nothing in this package can proceed without it.
	ErrEntropyUnavailable = errors.New("crypto: entropy unavailable")

	// ErrAuthenticationFailed is the only error OpenMessage and Decrypt report
	// for bad input. It does not say whether the nonce, key or ciphertext was
	// wrong.
	ErrAuthenticationFailed = errors.New("crypto: message authentication failed")

	// ErrInvalidKey is returned for keys of the wrong length or low-order
	// public points.
	ErrInvalidKey = errors.New("crypto: invalid key")
)
