package mstorage

import (
	"sync"

	"github.com/ValentinKolb/bracketd/lib/storage"
)

type memoryStorage struct {
	mu    sync.RWMutex
	data  []byte
	found bool
}

// NewMemoryStorage creates an in-memory storage backend. Contents live for
// the lifetime of the process - useful for tests and ephemeral documents.
func NewMemoryStorage() storage.IStorage {
	return &memoryStorage{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (s *memoryStorage) Load() ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.found {
		return nil, false, nil
	}

	// copy so callers cannot mutate the stored blob
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, true, nil
}

func (s *memoryStorage) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]byte, len(data))
	copy(s.data, data)
	s.found = true
	return nil
}

func (s *memoryStorage) Close() error {
	return nil
}
