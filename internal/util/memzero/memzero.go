// Package memzero wipes key material from memory on a best-effort basis.
package memzero

import "runtime"

// Zero overwrites b with zeros and keeps b live until the writes are done
// so the compiler cannot drop them.
//
//go:noinline
func Zero(b []byte) {
	clear(b)
	runtime.KeepAlive(&b)
}
