// Package client is the device side of the relay protocol.
//
// A Client keeps one WebSocket session to the relay alive: it registers on
// every fresh connection, tracks the device directory, keeps the selected
// target bound across reconnects and encrypts every outbound message. The
// connection lifecycle is an explicit state machine (see FSM) so it can be
// exercised without a socket.
package client
