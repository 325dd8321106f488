package coordinator

import (
	"fmt"
	"sync"

	"github.com/ValentinKolb/bracketd/lib/document"
	"github.com/ValentinKolb/bracketd/lib/lockmgr"
	"github.com/ValentinKolb/bracketd/lib/storage"
)

type coordinatorImpl struct {
	// mu is the single serialization point for the document cell. Writes
	// hold it exclusively so the load -> check revision -> save sequence
	// can never interleave with another write (the lost-update race).
	// Reads share it and see the last committed state.
	mu      sync.RWMutex
	lock    lockmgr.ILockManager
	storage storage.IStorage
}

// New creates a coordinator owning the given lock manager and storage
// backend. The pair of shared cells (lock + document) lives behind this one
// instance; request handlers get the coordinator injected instead of
// touching ambient state.
func New(lock lockmgr.ILockManager, store storage.IStorage) ICoordinator {
	return &coordinatorImpl{
		lock:    lock,
		storage: store,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see coordinator/interface.go)
// --------------------------------------------------------------------------

func (c *coordinatorImpl) Read() (document.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.loadLocked()
}

func (c *coordinatorImpl) Write(clientID string, baseRev int64, payload document.Document) (document.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 1. Lock admission: a valid lock held by someone else makes the
	// caller read-only. The snapshot rides along so the caller can show
	// who holds it.
	if err := c.admitLocked(clientID); err != nil {
		return nil, err
	}

	// 2. Load the committed state.
	current, err := c.loadLocked()
	if err != nil {
		return nil, err
	}
	serverRev := current.Rev()

	// 3. A missing or negative base revision is a client bug.
	if baseRev < 0 {
		return nil, NewError(RetCInvalidRequest, "missing or invalid base revision")
	}

	// 4. Optimistic check: one integer comparison decides admission.
	if baseRev != serverRev {
		return nil, &Error{
			Code:      RetCRevisionConflict,
			Msg:       fmt.Sprintf("base revision %d does not match server revision %d", baseRev, serverRev),
			ServerRev: serverRev,
			Current:   current,
		}
	}

	// 5. Commit: full replacement at the next revision. Whatever revision
	// the client smuggled into the payload is overwritten.
	return c.commitLocked(payload.WithRev(serverRev + 1))
}

func (c *coordinatorImpl) Reset(clientID string) (document.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.admitLocked(clientID); err != nil {
		return nil, err
	}

	current, err := c.loadLocked()
	if err != nil {
		return nil, err
	}

	// No revision check: reset is an unconditional override for whoever
	// is admitted. The revision still advances so concurrent optimistic
	// writers observe a conflict instead of silently landing on the
	// fresh document.
	return c.commitLocked(document.New().WithRev(current.Rev() + 1))
}

func (c *coordinatorImpl) Lock() lockmgr.ILockManager {
	return c.lock
}

func (c *coordinatorImpl) Close() error {
	return c.storage.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// admitLocked rejects the caller if a different client holds a valid lock.
// Callers must hold c.mu.
func (c *coordinatorImpl) admitLocked(clientID string) *Error {
	info := c.lock.Inspect()
	if info.Valid && info.Owner != clientID {
		return &Error{
			Code: RetCLockHeld,
			Msg:  fmt.Sprintf("document is locked by %q", info.Owner),
			Lock: &info,
		}
	}
	return nil
}

// loadLocked reads and decodes the persisted document, falling back to the
// default document when nothing was ever saved. Callers must hold c.mu (read
// or write side).
func (c *coordinatorImpl) loadLocked() (document.Document, error) {
	data, found, err := c.storage.Load()
	if err != nil {
		return nil, NewError(RetCStorageUnavailable, err.Error())
	}
	if !found {
		return document.New(), nil
	}

	var doc document.Document
	if err := doc.Decode(data); err != nil {
		// never hand out a partial or corrupt document
		return nil, NewError(RetCStorageUnavailable, err.Error())
	}
	return doc, nil
}

// commitLocked persists next durably and returns it as the new state. On any
// failure the previously committed document stays untouched - commits are
// all or nothing. Callers must hold c.mu exclusively.
func (c *coordinatorImpl) commitLocked(next document.Document) (document.Document, error) {
	data, err := next.Encode()
	if err != nil {
		return nil, NewError(RetCInvalidRequest, err.Error())
	}

	if err := c.storage.Save(data); err != nil {
		return nil, NewError(RetCStorageUnavailable, err.Error())
	}

	return next, nil
}
