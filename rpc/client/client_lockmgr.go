package client

import (
	"time"

	"github.com/ValentinKolb/bracketd/lib/lockmgr"
	"github.com/ValentinKolb/bracketd/rpc/common"
	"github.com/ValentinKolb/bracketd/rpc/serializer"
	"github.com/ValentinKolb/bracketd/rpc/transport"
)

// NewRPCLockMgr creates a new RPC ILockManager
// The function takes a document name, a config, a transport and a serializer as parameters
// It returns a lockmgr.ILockManager and an error
func NewRPCLockMgr(
	documentName string,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (lockmgr.ILockManager, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC lock manager
	l := rpcLockMgr{
		rpcClientAdapter{
			document:   documentName,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC lock manager
	return &l, nil
}

type rpcLockMgr struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the lockmgr package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcLockMgr) Inspect() lockmgr.LockInfo {
	req := common.NewInspectRequest()
	resp, err := invokeRPCRequest(i.document, req, i.transport, i.serializer)
	if err != nil {
		Logger.Errorf("Failed to inspect lock for document %q: %v", i.document, err)
		return lockmgr.LockInfo{}
	}
	return lockInfoFromMessage(resp)
}

func (i *rpcLockMgr) AcquireOrRenew(clientID string) (lockmgr.AcquireResult, error) {
	req := common.NewAcquireRequest(clientID)
	resp, err := invokeRPCRequest(i.document, req, i.transport, i.serializer)
	if err != nil {
		return lockmgr.AcquireResult{}, err
	}
	return lockmgr.AcquireResult{
		LockInfo: lockInfoFromMessage(resp),
		Granted:  resp.Granted,
	}, nil
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// lockInfoFromMessage rebuilds a lock snapshot from a response message
func lockInfoFromMessage(resp *common.Message) lockmgr.LockInfo {
	info := lockmgr.LockInfo{
		Owner: resp.Owner,
		Valid: resp.Valid,
	}
	if resp.ExpiresAt != 0 {
		info.ExpiresAt = time.UnixMilli(resp.ExpiresAt)
	}
	return info
}
