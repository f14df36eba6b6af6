// Package app wires application dependencies for the CLI and the daemon.
//
// It loads Config from YAML, builds the concrete stores, crypto services and
// transports, and exposes them via the Wire struct for commands to use.
package app
