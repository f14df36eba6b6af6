// Package commands defines the packsync CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init           Create the local signing identity
//   - fingerprint    Print the identity fingerprint
//   - sign           Hash and sign a pack file, emitting minisign text
//   - verify         Verify a pack against the trust store
//   - trust          List, add or revoke trusted keys
//   - remove         Remove a pack everywhere it is materialised
//   - sync           Run the background sync agent
//
// # Implementation
//
// The root command loads the YAML config, applies flag overrides and builds
// the dependency graph (stores, crypto services, transport) before any
// subcommand runs, so handlers share one app context.
package commands
