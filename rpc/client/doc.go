// Package client implements RPC clients for the bracket document system.
// It provides implementations of the coordinator.ICoordinator and
// lockmgr.ILockManager interfaces that communicate with remote servers via RPC.
//
// The package focuses on:
//   - Transparent RPC access to document and lock manager implementations
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//
// Key Components:
//
//   - NewRPCDocument: Factory function that creates a client implementing the
//     coordinator.ICoordinator interface. This client forwards all operations to
//     remote servers via the configured transport layer. Coordination failures
//     (lock held, revision conflict) come back as *coordinator.Error, carrying
//     the same recovery data a local coordinator would attach.
//
//   - NewRPCLockMgr: Factory function that creates a client implementing the
//     lockmgr.ILockManager interface for the advisory edit lock.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{
//	  TimeoutSecond: 5,
//	  Transport: common.ClientTransportConfig{
//	    Endpoints:              []string{"localhost:5000"},
//	    RetryCount:             3,
//	    ConnectionsPerEndpoint: 1,
//	  },
//	}
//
//	// Create a serializer
//	serializer := serializer.NewBinarySerializer()
//
//	// Create document client
//	doc, _ := client.NewRPCDocument("bracket", config, tcp.NewTCPClientTransport(), serializer)
//
//	// Use the document
//	current, _ := doc.Read()
//	updated, err := doc.Write("editor-1", current.Rev(), payload)
//	if cErr := coordinator.AsError(err); cErr != nil && cErr.Code == coordinator.RetCRevisionConflict {
//	  // Re-read cErr.Current, merge and resubmit with cErr.ServerRev
//	}
//
//	// Acquire the edit lock before a writing session
//	result, _ := doc.Lock().AcquireOrRenew("editor-1")
//	if result.Granted {
//	  // safe to submit until result.ExpiresAt
//	}
//
// Performance Considerations:
//
//   - For applications that frequently send large documents, increasing
//     ConnectionsPerEndpoint can improve throughput by allowing parallel requests.
//
//   - For small documents, a single connection per endpoint is often more efficient
//     due to reduced connection overhead.
//
//   - The choice of serializer significantly affects performance. The binary serializer
//     provides the best performance and smallest payload size.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
