// Package app loads configuration and wires application dependencies for the
// utter and relay commands.
//
// Configuration comes from the environment, optionally seeded from a .env
// file, and commands override it with flags. NewWire builds the concrete
// stores and services from Config; NewRelay builds the relay server from
// RelayConfig.
package app
