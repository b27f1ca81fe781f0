// Package server is the WebSocket relay.
//
// Each accepted socket becomes a session with its own read and write
// goroutines. The reader processes frames strictly in order; the writer owns
// every write to the socket, including keepalive pings, so a slow peer only
// ever backs up its own buffered send queue. Sessions are registered in a
// directory.Directory and envelopes are forwarded by a Router that never
// looks inside the ciphertext.
package server
