package coordinator

import (
	"fmt"

	"github.com/ValentinKolb/bracketd/lib/document"
	"github.com/ValentinKolb/bracketd/lib/lockmgr"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ICoordinator is the write-admission authority over one shared document.
// It combines the advisory lock with an optimistic revision check: a write
// is committed only if the caller is not locked out and its claimed base
// revision matches the stored one. All write operations return either the
// newly committed document or a *Error describing why nothing changed.
type ICoordinator interface {
	// Read returns the current document - the persisted state, or the
	// default empty document if nothing was ever written. It fails only
	// when the storage backend does.
	Read() (document.Document, error)

	// Write replaces the document wholesale. payload must not contain a
	// meaningful revision field - whatever it carries is discarded and
	// the committed document gets the next revision. baseRev is the
	// revision the caller last read; a negative value means the caller
	// never supplied one and is rejected as invalid.
	Write(clientID string, baseRev int64, payload document.Document) (document.Document, error)

	// Reset replaces the document with the default empty payload at the
	// next revision. It passes the same lock admission as Write but
	// deliberately skips the revision check: starting over must not be
	// blockable by a stale base revision.
	Reset(clientID string) (document.Document, error)

	// Lock exposes the document's lock manager for inspect/acquire
	// operations.
	Lock() lockmgr.ILockManager

	// Close releases the underlying storage backend.
	Close() error
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the typed error returned by all coordinator write paths. The code
// tells the caller whether the failure is a client bug (InvalidRequest), an
// expected coordination outcome (LockHeld, RevisionConflict) or an
// infrastructure fault (StorageUnavailable). Expected outcomes carry the
// data the caller needs to recover: the lock snapshot, or the server
// revision plus the full current document for a rebase.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message

	// Lock is the current lock snapshot. Set for RetCLockHeld.
	Lock *lockmgr.LockInfo

	// ServerRev and Current describe the state the caller lost against.
	// Set for RetCRevisionConflict.
	ServerRev int64
	Current   document.Document
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("CoordinatorError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new coordinator Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// AsError returns err as a *Error if it is one, else nil.
func AsError(err error) *Error {
	if cErr, ok := err.(*Error); ok {
		return cErr
	}
	return nil
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess            RetCode = iota // 0: Operation completed successfully.
	RetCInternalError                     // 1: Operation failed due to an internal error.
	RetCInvalidRequest                    // 2: Malformed client id or base revision - a client bug, not a race.
	RetCLockHeld                          // 3: Another client owns a valid lock - retry after it lapses.
	RetCRevisionConflict                  // 4: Base revision mismatch - re-read and resubmit.
	RetCStorageUnavailable                // 5: Durable load/save failed - fatal for this request.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCInvalidRequest:
		return "InvalidRequest"
	case RetCLockHeld:
		return "LockHeld"
	case RetCRevisionConflict:
		return "RevisionConflict"
	case RetCStorageUnavailable:
		return "StorageUnavailable"
	default:
		return "Unknown"
	}
}
