// Package server implements the RPC server for the bracket document system.
// It provides adapters for handling RPC requests to both document and lock
// manager operations, along with the core server implementation that manages
// hosted documents and request routing.
//
// The package focuses on:
//   - Server-side RPC request handling for document and lock operations
//   - Adapter pattern to decouple coordination logic from RPC mechanisms
//   - Flexible document configuration with file backed and in-memory storage
//   - Per document request counters exposed in Prometheus format
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests against a
//     coordinator.ICoordinator.
//
//   - NewDocumentServerAdapter: Factory function creating an adapter for document
//     operations (read, write, reset), translating RPC requests to coordinator
//     method calls and mapping coordinator errors back onto the wire, including
//     the recovery data for lock and revision conflicts.
//
//   - NewLockManagerServerAdapter: Factory function creating an adapter for the
//     advisory edit lock operations (inspect, acquire).
//
//   - NewRPCServer: Factory function creating a configured server with the
//     specified transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Documents: []common.ServerDocument{
//	    {Name: "bracket", Type: common.StorageTypeFile, Path: "./data/bracket.json"},
//	    {Name: "scratch", Type: common.StorageTypeMemory},
//	  },
//	  Transport: common.ServerTransportConfig{Endpoint: "0.0.0.0:8080"},
//	  TimeoutSecond: 5,
//	  LogLevel: "info",
//	}
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	// Start the server
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Each request is serialized by the coordinator
//	of the document it addresses. The Listen method is not thread-safe and
//	should be called only once.
package server
