// Package main runs the utter relay: a WebSocket server that forwards
// end-to-end encrypted envelopes between registered devices.
//
// Endpoints
//
//	GET / and GET /ws
//	    Upgrade to a WebSocket session. The relay greets with "connected",
//	    then expects "register" before anything but "ping".
//
//	GET /health
//	    {"status":"ok","devices":N}
//
//	GET /metrics
//	    Prometheus metrics.
//
// Behaviour
//
//   - The device directory is held in memory and lost on exit.
//   - Nothing is queued: a message for a device that is not connected is
//     dropped and the sender receives a recipient_unavailable error.
//   - Sessions are pinged every --ping-interval and dropped when no pong
//     arrives within --pong-timeout.
//   - The relay never sees plaintext or private keys and never logs message
//     content.
package main
