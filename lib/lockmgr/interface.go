package lockmgr

import (
	"errors"
	"time"
)

// DefaultTTL is the lease duration granted on every acquire or renew.
// It must outlive a client's normal polling interval while still letting
// a crashed editor's lock self-heal promptly.
const DefaultTTL = 30 * time.Second

// ErrInvalidClientID is returned when an acquire is attempted with an
// empty client identifier. This is a client bug, not a contended lock.
var ErrInvalidClientID = errors.New("client id must not be empty")

// LockInfo is a point-in-time snapshot of the lock cell. Valid is computed
// from the clock at inspection time and must never be cached by callers.
type LockInfo struct {
	Owner     string        `json:"owner"`
	ExpiresAt time.Time     `json:"expires_at"`
	Valid     bool          `json:"valid"`
	TTL       time.Duration `json:"ttl"`
}

// AcquireResult is the outcome of an AcquireOrRenew call. Granted=false is a
// normal negative result: the snapshot then describes the competing holder.
type AcquireResult struct {
	LockInfo
	Granted bool `json:"granted"`
}

// ILockManager serializes write intent among competing clients with a single
// cooperative, renewable, self-expiring token. There is no release operation:
// a client that stops renewing simply lets the lock lapse.
type ILockManager interface {
	// Inspect returns the current lock state. It is a pure read and
	// always succeeds.
	Inspect() LockInfo

	// AcquireOrRenew grants the lock to clientID if the lock is currently
	// invalid (expired or never held) or already owned by clientID; renewal
	// by the current holder extends the deadline. If a different client
	// holds a still-valid lock, the unchanged state is returned with
	// Granted=false. Fails only on an empty clientID.
	AcquireOrRenew(clientID string) (AcquireResult, error)
}
