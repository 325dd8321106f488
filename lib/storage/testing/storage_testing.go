package testing

import (
	"bytes"
	"testing"

	"github.com/ValentinKolb/bracketd/lib/storage"
)

// RunStorageTests runs the shared conformance suite against a storage
// backend. Every IStorage implementation must pass it.
func RunStorageTests(t *testing.T, name string, factory storage.StorageFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("EmptyLoad", func(t *testing.T) {
			testEmptyLoad(t, mustCreate(t, factory))
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, mustCreate(t, factory))
		})

		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, mustCreate(t, factory))
		})

		t.Run("CallerCannotMutate", func(t *testing.T) {
			testCallerCannotMutate(t, mustCreate(t, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustCreate(t *testing.T, factory storage.StorageFactory) storage.IStorage {
	t.Helper()

	s, err := factory()
	if err != nil {
		t.Fatalf("Failed to create storage backend: %v", err)
	}
	return s
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testEmptyLoad(t *testing.T, s storage.IStorage) {
	defer s.Close()

	data, found, err := s.Load()
	if err != nil {
		t.Fatalf("Load on empty storage failed: %v", err)
	}
	if found {
		t.Error("Expected found=false on a backend that was never saved to")
	}
	if len(data) != 0 {
		t.Errorf("Expected no data, got %d bytes", len(data))
	}
}

func testSaveLoad(t *testing.T, s storage.IStorage) {
	defer s.Close()

	blob := []byte(`{"players":["A","B"],"rev":1}`)
	if err := s.Save(blob); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, found, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !found {
		t.Fatal("Expected found=true after save")
	}
	if !bytes.Equal(data, blob) {
		t.Errorf("Expected %s, got %s", blob, data)
	}
}

func testOverwrite(t *testing.T, s storage.IStorage) {
	defer s.Close()

	if err := s.Save([]byte(`{"rev":1}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := []byte(`{"rev":2}`)
	if err := s.Save(second); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	data, found, err := s.Load()
	if err != nil || !found {
		t.Fatalf("Load failed: found=%v err=%v", found, err)
	}
	if !bytes.Equal(data, second) {
		t.Errorf("Expected overwrite semantics, got %s", data)
	}
}

func testCallerCannotMutate(t *testing.T, s storage.IStorage) {
	defer s.Close()

	if err := s.Save([]byte(`{"rev":5}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, _, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(data) > 0 {
		data[0] = 'X'
	}

	again, _, err := s.Load()
	if err != nil {
		t.Fatalf("Second load failed: %v", err)
	}
	if !bytes.Equal(again, []byte(`{"rev":5}`)) {
		t.Errorf("Expected stored blob to be immune to caller mutation, got %s", again)
	}
}
