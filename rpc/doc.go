// Package rpc provides the remote procedure call framework of bracketd. It
// is the communication layer between clients and the coordination server.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable
//     implementations (TCP, Unix sockets, HTTP). Requests are routed by
//     document name.
//
//   - serializer: Message serialization with multiple format options
//     (Binary, JSON, GOB) for converting between Message objects and byte
//     arrays.
//
//   - client: RPC client implementations for the coordinator and lock
//     manager interfaces, allowing applications to interact with a remote
//     bracketd server transparently.
//
//   - server: RPC server components that handle incoming requests, including
//     adapters for document and lock operations.
package rpc
