package storage

import "fmt"

// StorageFactory is a function type that creates a new storage backend.
// This is used to abstract the creation of the backend from the coordinator
// and from the shared conformance tests.
type StorageFactory func() (IStorage, error)

// IStorage is the durable store consumed by the coordinator. It holds exactly
// one blob - the serialized document - with overwrite semantics; there is no
// append log and no key space.
type IStorage interface {
	// Load returns the current persisted blob. found=false (with a nil
	// error) means nothing was ever saved.
	Load() (data []byte, found bool, err error)

	// Save durably replaces the persisted blob. It must not return until
	// the data is durable, and a failed save must leave the previous blob
	// readable.
	Save(data []byte) error

	// Close releases any resources held by the backend.
	Close() error
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error wraps a storage failure. The coordinator surfaces these as
// StorageUnavailable - they are fatal for the request and never retried
// internally.
type Error struct {
	Op  string // The failed operation ("load" or "save")
	Msg string // The error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StorageError (%s): %s", e.Op, e.Msg)
}

// NewError creates a new storage Error for the given operation.
func NewError(op, msg string) *Error {
	return &Error{Op: op, Msg: msg}
}
