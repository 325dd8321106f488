// Package common contains the data structures shared across the RPC system:
// the Message protocol used for all requests and responses, the server and
// client configuration structures, and the logging setup.
package common
