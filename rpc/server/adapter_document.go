package server

import (
	"fmt"

	"github.com/ValentinKolb/bracketd/lib/coordinator"
	"github.com/ValentinKolb/bracketd/lib/document"
	"github.com/ValentinKolb/bracketd/rpc/common"
)

func NewDocumentServerAdapter() IRPCServerAdapter {
	return &documentServerAdapterImpl{}
}

type documentServerAdapterImpl struct{}

func (adapter *documentServerAdapterImpl) Handle(req *common.Message, coord coordinator.ICoordinator) *common.Message {
	// Check for nil coordinator
	if coord == nil {
		return common.NewErrorResponse("handler: coordinator is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTDocRead:
		doc, err := coord.Read()
		if err != nil {
			return coordinatorErrorResponse(err)
		}
		return encodeDocResponse(common.NewReadResponse, doc)

	case common.MsgTDocWrite:
		// Decode the submitted payload
		var payload document.Document
		if err := payload.Decode(req.Document); err != nil {
			resp := common.NewErrorResponse(fmt.Sprintf("invalid document payload: %s", err))
			resp.ErrCode = coordinator.RetCInvalidRequest.String()
			return resp
		}

		// A write without a base revision claim is rejected by the
		// coordinator (negative means never supplied)
		baseRev := req.BaseRev
		if !req.HasBaseRev {
			baseRev = -1
		}

		doc, err := coord.Write(req.ClientID, baseRev, payload)
		if err != nil {
			return coordinatorErrorResponse(err)
		}
		return encodeDocResponse(common.NewWriteResponse, doc)

	case common.MsgTDocReset:
		doc, err := coord.Reset(req.ClientID)
		if err != nil {
			return coordinatorErrorResponse(err)
		}
		return encodeDocResponse(common.NewResetResponse, doc)

	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC DocumentAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// encodeDocResponse encodes the committed document into a response message
func encodeDocResponse(factory func([]byte) *common.Message, doc document.Document) *common.Message {
	data, err := doc.Encode()
	if err != nil {
		return common.NewErrorResponse(fmt.Sprintf("failed to encode document: %s", err))
	}
	resp := factory(data)
	resp.Rev = doc.Rev()
	return resp
}

// coordinatorErrorResponse maps a coordinator error to an error message,
// carrying the recovery data for the expected coordination outcomes
func coordinatorErrorResponse(err error) *common.Message {
	cErr := coordinator.AsError(err)
	if cErr == nil {
		return common.NewErrorResponse(err.Error())
	}

	resp := common.NewErrorResponse(cErr.Msg)
	resp.ErrCode = cErr.Code.String()

	switch cErr.Code {
	case coordinator.RetCLockHeld:
		// Attach the competing lock snapshot
		if cErr.Lock != nil {
			resp.Owner = cErr.Lock.Owner
			resp.ExpiresAt = cErr.Lock.ExpiresAt.UnixMilli()
			resp.Valid = cErr.Lock.Valid
		}
	case coordinator.RetCRevisionConflict:
		// Attach the server revision and the full current document so the
		// client can rebase without an extra read
		resp.Rev = cErr.ServerRev
		if cErr.Current != nil {
			if data, encErr := cErr.Current.Encode(); encErr == nil {
				resp.Document = data
			}
		}
	}

	return resp
}
