package lockmgr

import (
	"sync"
	"time"
)

type lockMgrImpl struct {
	mu        sync.Mutex
	owner     string
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// Option configures a lock manager created by NewLockManager.
type Option func(*lockMgrImpl)

// WithClock replaces the wall clock. Used by tests to drive expiry.
func WithClock(now func() time.Time) Option {
	return func(l *lockMgrImpl) {
		l.now = now
	}
}

// NewLockManager creates a lock manager with the given lease TTL.
// A non-positive ttl falls back to DefaultTTL. The lock starts unlocked;
// lock state is process-scoped and never persisted.
func NewLockManager(ttl time.Duration, opts ...Option) ILockManager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	l := &lockMgrImpl{
		ttl: ttl,
		now: time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// --------------------------------------------------------------------------
// Interface Methods (docu see lockmgr/interface.go)
// --------------------------------------------------------------------------

func (l *lockMgrImpl) Inspect() LockInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.snapshot()
}

func (l *lockMgrImpl) AcquireOrRenew(clientID string) (AcquireResult, error) {
	if clientID == "" {
		return AcquireResult{}, ErrInvalidClientID
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Grant when the lock is invalid (expired or never held) or when the
	// current valid holder renews. Expiry is evaluated lazily right here -
	// there is no background sweep.
	if !l.validLocked() || l.owner == clientID {
		l.owner = clientID
		l.expiresAt = l.now().Add(l.ttl)
		return AcquireResult{LockInfo: l.snapshot(), Granted: true}, nil
	}

	// A different client holds a still-valid lock: report its state
	// unchanged. This is a normal negative result, not an error.
	return AcquireResult{LockInfo: l.snapshot(), Granted: false}, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// validLocked computes validity from the current clock.
// Callers must hold l.mu.
func (l *lockMgrImpl) validLocked() bool {
	return l.owner != "" && l.now().Before(l.expiresAt)
}

// snapshot builds a LockInfo from the current cell state.
// Callers must hold l.mu.
func (l *lockMgrImpl) snapshot() LockInfo {
	return LockInfo{
		Owner:     l.owner,
		ExpiresAt: l.expiresAt,
		Valid:     l.validLocked(),
		TTL:       l.ttl,
	}
}
