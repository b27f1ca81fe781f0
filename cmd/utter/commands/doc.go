// Package commands defines the utter CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init           Create the local identity if missing and print its fingerprint
//   - fingerprint    Print the identity fingerprint
//   - status         Show identity, saved target and relay health
//   - devices        List devices currently connected to the relay
//   - send           Encrypt and send a message to the selected target
//   - listen         Stay connected and print incoming messages
//
// # Implementation
//
// Configuration is read from UTTER_* environment variables (and a .env file)
// and used as flag defaults, so flags always win. The root command builds the
// logger and the app.Wire before any subcommand runs.
package commands
