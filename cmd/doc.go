// Package cmd implements the command-line interface for the bracketd
// tournament bracket document server. It provides a hierarchical command
// structure with operations for running the server and interacting with it
// as a client.
//
// The package is organized into several subpackages:
//
//   - doc: Commands for document operations (get, submit, reset, perf)
//   - lock: Commands for the advisory edit lock (inspect, acquire)
//   - serve: Commands for starting and configuring the bracketd server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See bracketd -help for a list of all commands.
package cmd
