package client

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/bracketd/lib/coordinator"
	"github.com/ValentinKolb/bracketd/lib/document"
	"github.com/ValentinKolb/bracketd/lib/lockmgr"
	"github.com/ValentinKolb/bracketd/rpc/common"
	"github.com/ValentinKolb/bracketd/rpc/serializer"
	"github.com/ValentinKolb/bracketd/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
// Used by the RPCDocument and RPCLockMgr with composition pattern
type rpcClientAdapter struct {
	document   string
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest is a helper function used for all RPC Clients to send requests
// It takes a document name, a request message, a transport layer and a serializer as parameters
// It returns a response message and an error if any occurs
// This method also checks if the response is an error response and if the type of the response is the expected type
// Coordination errors (lock held, revision conflict, ...) are reconstructed as *coordinator.Error
// so callers can recover the same way they would against a local coordinator
func invokeRPCRequest(documentName string, req *common.Message, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*common.Message, error) {
	// Serialize the request
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	// Send the handler
	respBytes, err := transport.Send(documentName, reqBytes)
	if err != nil {
		return nil, err
	}

	// Deserialize the response
	resp := &common.Message{}
	err = serializer.Deserialize(respBytes, resp)
	if err != nil {
		return nil, fmt.Errorf("RPC DocumentAdapter - Error: %s", err)
	}

	// Check if the response is an error response
	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return nil, decodeError(resp)
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("RPC DocumentAdapter - Unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}

	// Return the response
	return resp, nil
}

// decodeError reconstructs a typed coordinator error from an error response
// Falls back to a plain error for responses without a known error code
func decodeError(resp *common.Message) error {
	var code coordinator.RetCode
	switch resp.ErrCode {
	case coordinator.RetCInvalidRequest.String():
		code = coordinator.RetCInvalidRequest
	case coordinator.RetCLockHeld.String():
		code = coordinator.RetCLockHeld
	case coordinator.RetCRevisionConflict.String():
		code = coordinator.RetCRevisionConflict
	case coordinator.RetCStorageUnavailable.String():
		code = coordinator.RetCStorageUnavailable
	case coordinator.RetCInternalError.String():
		code = coordinator.RetCInternalError
	default:
		return fmt.Errorf("RPC DocumentAdapter - Error: %s", resp.Err)
	}

	cErr := coordinator.NewError(code, resp.Err)

	switch code {
	case coordinator.RetCLockHeld:
		cErr.Lock = &lockmgr.LockInfo{
			Owner:     resp.Owner,
			ExpiresAt: time.UnixMilli(resp.ExpiresAt),
			Valid:     resp.Valid,
		}
	case coordinator.RetCRevisionConflict:
		cErr.ServerRev = resp.Rev
		if len(resp.Document) > 0 {
			var current document.Document
			if err := current.Decode(resp.Document); err == nil {
				cErr.Current = current
			}
		}
	}

	return cErr
}
