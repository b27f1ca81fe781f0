// Package relay holds the relay's HTTP-side helpers shared by the CLI.
//
// The relay itself lives in the server subpackage and its device registry in
// directory. This package offers a small HTTP client for the relay's
// operational endpoints, used to check a relay before opening a session.
//
// Requests accept a context for cancellation and deadlines. Non-2xx statuses
// are returned as errors with the path and status text to aid diagnostics.
package relay
