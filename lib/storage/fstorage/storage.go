package fstorage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ValentinKolb/bracketd/lib/storage"
)

type fileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage creates a file-backed storage rooted at path. The parent
// directory is created if it does not exist; the file itself is only created
// on the first Save.
func NewFileStorage(path string) (storage.IStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path must not be empty")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	return &fileStorage{path: path}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (s *fileStorage) Load() ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, storage.NewError("load", err.Error())
	}

	return data, true, nil
}

func (s *fileStorage) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Write to a temp file in the same directory and rename it over the
	// target. The rename keeps a crashed save from ever exposing a
	// half-written document.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return storage.NewError("save", err.Error())
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return storage.NewError("save", err.Error())
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return storage.NewError("save", err.Error())
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return storage.NewError("save", err.Error())
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return storage.NewError("save", err.Error())
	}

	return nil
}

func (s *fileStorage) Close() error {
	return nil
}
