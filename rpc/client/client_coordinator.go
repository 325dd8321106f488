package client

import (
	"fmt"

	"github.com/ValentinKolb/bracketd/lib/coordinator"
	"github.com/ValentinKolb/bracketd/lib/document"
	"github.com/ValentinKolb/bracketd/lib/lockmgr"
	"github.com/ValentinKolb/bracketd/rpc/common"
	"github.com/ValentinKolb/bracketd/rpc/serializer"
	"github.com/ValentinKolb/bracketd/rpc/transport"
)

// NewRPCDocument creates a new RPC document client
// The function takes a document name, a config, a transport and a serializer as parameters
// It returns a coordinator.ICoordinator and an error
func NewRPCDocument(
	documentName string,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (coordinator.ICoordinator, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC document client
	c := rpcDocument{
		rpcClientAdapter{
			document:   documentName,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC document client
	return &c, nil
}

type rpcDocument struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the coordinator package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcDocument) Read() (document.Document, error) {
	req := common.NewReadRequest()
	resp, err := invokeRPCRequest(i.document, req, i.transport, i.serializer)
	if err != nil {
		return nil, err
	}
	return decodeDocument(resp.Document)
}

func (i *rpcDocument) Write(clientID string, baseRev int64, payload document.Document) (document.Document, error) {
	data, err := payload.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req := common.NewWriteRequest(clientID, baseRev, data)
	resp, err := invokeRPCRequest(i.document, req, i.transport, i.serializer)
	if err != nil {
		return nil, err
	}
	return decodeDocument(resp.Document)
}

func (i *rpcDocument) Reset(clientID string) (document.Document, error) {
	req := common.NewResetRequest(clientID)
	resp, err := invokeRPCRequest(i.document, req, i.transport, i.serializer)
	if err != nil {
		return nil, err
	}
	return decodeDocument(resp.Document)
}

func (i *rpcDocument) Lock() lockmgr.ILockManager {
	return &rpcLockMgr{i.rpcClientAdapter}
}

func (i *rpcDocument) Close() error {
	return i.transport.Close()
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// decodeDocument decodes a document from the wire
func decodeDocument(data []byte) (document.Document, error) {
	var doc document.Document
	if err := doc.Decode(data); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}
