package server

import (
	"fmt"

	"github.com/ValentinKolb/bracketd/lib/coordinator"
	"github.com/ValentinKolb/bracketd/lib/lockmgr"
	"github.com/ValentinKolb/bracketd/rpc/common"
)

func NewLockManagerServerAdapter() IRPCServerAdapter {
	return &lockMgrServerAdapterImpl{}
}

type lockMgrServerAdapterImpl struct{}

func (adapter *lockMgrServerAdapterImpl) Handle(req *common.Message, coord coordinator.ICoordinator) (resp *common.Message) {
	// Check for nil coordinator
	if coord == nil {
		return common.NewErrorResponse("handler: coordinator is nil")
	}

	locks := coord.Lock()

	// Handle different message types
	switch req.MsgType {
	case common.MsgTLCKInspect:
		info := locks.Inspect()
		return common.NewInspectResponse(info.Owner, expiresAtUnixMs(info), info.Valid)

	case common.MsgTLCKAcquire:
		result, err := locks.AcquireOrRenew(req.ClientID)
		if err != nil {
			resp := common.NewErrorResponse(err.Error())
			resp.ErrCode = coordinator.RetCInvalidRequest.String()
			return resp
		}
		return common.NewAcquireResponse(result.Owner, expiresAtUnixMs(result.LockInfo), result.Valid, result.Granted)

	default:
		return common.NewErrorResponse(fmt.Sprintf("RPC LockManagerAdapter - Unsupported message type: %s", req.MsgType))
	}
}

// expiresAtUnixMs converts the lock deadline to unix milliseconds, keeping
// the zero time as 0 on the wire
func expiresAtUnixMs(info lockmgr.LockInfo) int64 {
	if info.ExpiresAt.IsZero() {
		return 0
	}
	return info.ExpiresAt.UnixMilli()
}
