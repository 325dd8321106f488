package coordinator

import (
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/bracketd/lib/document"
	"github.com/ValentinKolb/bracketd/lib/lockmgr"
	"github.com/ValentinKolb/bracketd/lib/storage"
	"github.com/ValentinKolb/bracketd/lib/storage/mstorage"
)

// testClock drives lock expiry without sleeping.
type testClock struct {
	mu      sync.Mutex
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

func newTestCoordinator(clock *testClock) ICoordinator {
	return New(
		lockmgr.NewLockManager(30*time.Second, lockmgr.WithClock(clock.now)),
		mstorage.NewMemoryStorage(),
	)
}

// failingStorage fails every save after the cutoff, simulating a dying disk.
type failingStorage struct {
	storage.IStorage
	failSaves bool
}

func (s *failingStorage) Save(data []byte) error {
	if s.failSaves {
		return storage.NewError("save", "disk gone")
	}
	return s.IStorage.Save(data)
}

func TestReadOnEmptyStore(t *testing.T) {
	coord := newTestCoordinator(newTestClock())
	defer coord.Close()

	doc, err := coord.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if doc.Rev() != 0 {
		t.Errorf("Expected default document with rev 0, got %d", doc.Rev())
	}
}

func TestWriteIncrementsRevision(t *testing.T) {
	coord := newTestCoordinator(newTestClock())
	defer coord.Close()

	got, err := coord.Write("alice", 0, document.Document{"players": []interface{}{"A", "B"}})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got.Rev() != 1 {
		t.Errorf("Expected committed rev 1, got %d", got.Rev())
	}

	// a subsequent read returns exactly the committed document
	read, err := coord.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if read.Rev() != 1 {
		t.Errorf("Expected read to observe rev 1, got %d", read.Rev())
	}
	players, ok := read["players"].([]interface{})
	if !ok || len(players) != 2 {
		t.Errorf("Expected committed payload on read, got %v", read["players"])
	}
}

func TestWriteDiscardsClientRevision(t *testing.T) {
	coord := newTestCoordinator(newTestClock())
	defer coord.Close()

	got, err := coord.Write("alice", 0, document.Document{"rev": int64(999)})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got.Rev() != 1 {
		t.Errorf("Expected client-supplied rev to be discarded, got %d", got.Rev())
	}
}

func TestStaleBaseRevisionConflicts(t *testing.T) {
	coord := newTestCoordinator(newTestClock())
	defer coord.Close()

	// store at rev 5
	for i := int64(0); i < 5; i++ {
		if _, err := coord.Write("alice", i, document.Document{}); err != nil {
			t.Fatalf("Seed write %d failed: %v", i, err)
		}
	}

	if _, err := coord.Write("alice", 5, document.Document{"players": []interface{}{"A", "B"}}); err != nil {
		t.Fatalf("Write at matching rev failed: %v", err)
	}

	// retry with the now-stale base rev
	_, err := coord.Write("alice", 5, document.Document{"players": []interface{}{"A"}})
	cErr := AsError(err)
	if cErr == nil || cErr.Code != RetCRevisionConflict {
		t.Fatalf("Expected RevisionConflict, got %v", err)
	}
	if cErr.ServerRev != 6 {
		t.Errorf("Expected conflict to report server rev 6, got %d", cErr.ServerRev)
	}
	if cErr.Current == nil || cErr.Current.Rev() != 6 {
		t.Errorf("Expected conflict to carry the full current document, got %v", cErr.Current)
	}

	// the store is unchanged afterwards
	read, _ := coord.Read()
	players, _ := read["players"].([]interface{})
	if read.Rev() != 6 || len(players) != 2 {
		t.Errorf("Expected rejected write to leave state intact, got rev=%d players=%v",
			read.Rev(), read["players"])
	}
}

func TestMissingBaseRevisionInvalid(t *testing.T) {
	coord := newTestCoordinator(newTestClock())
	defer coord.Close()

	_, err := coord.Write("alice", -1, document.Document{})
	cErr := AsError(err)
	if cErr == nil || cErr.Code != RetCInvalidRequest {
		t.Errorf("Expected InvalidRequest for missing base revision, got %v", err)
	}
}

func TestLockedOutWriterRejected(t *testing.T) {
	clock := newTestClock()
	coord := newTestCoordinator(clock)
	defer coord.Close()

	if res, err := coord.Lock().AcquireOrRenew("alice"); err != nil || !res.Granted {
		t.Fatalf("Acquire failed: granted=%v err=%v", res.Granted, err)
	}

	_, err := coord.Write("bob", 0, document.Document{})
	cErr := AsError(err)
	if cErr == nil || cErr.Code != RetCLockHeld {
		t.Fatalf("Expected LockHeld for bob, got %v", err)
	}
	if cErr.Lock == nil || cErr.Lock.Owner != "alice" {
		t.Errorf("Expected lock snapshot naming alice, got %+v", cErr.Lock)
	}

	// the holder itself writes fine
	if _, err := coord.Write("alice", 0, document.Document{}); err != nil {
		t.Errorf("Expected holder write to succeed: %v", err)
	}

	// after expiry bob is admitted again
	clock.advance(31 * time.Second)
	if _, err := coord.Write("bob", 1, document.Document{}); err != nil {
		t.Errorf("Expected write after lock expiry to succeed: %v", err)
	}
}

func TestWriteAllowedWhenUnlocked(t *testing.T) {
	coord := newTestCoordinator(newTestClock())
	defer coord.Close()

	if _, err := coord.Write("anyone", 0, document.Document{}); err != nil {
		t.Errorf("Expected write on an unlocked document to succeed: %v", err)
	}
}

func TestResetIgnoresBaseRevision(t *testing.T) {
	coord := newTestCoordinator(newTestClock())
	defer coord.Close()

	// bring the store to rev 6 with some payload
	for i := int64(0); i < 6; i++ {
		if _, err := coord.Write("alice", i, document.Document{"players": []interface{}{"A", "B"}}); err != nil {
			t.Fatalf("Seed write failed: %v", err)
		}
	}

	got, err := coord.Reset("alice")
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if got.Rev() != 7 {
		t.Errorf("Expected reset to advance revision to 7, got %d", got.Rev())
	}
	players, ok := got["players"].([]interface{})
	if !ok || len(players) != 0 {
		t.Errorf("Expected empty default payload after reset, got %v", got["players"])
	}
	for _, key := range []string{"mode", "groups", "winner"} {
		if v, ok := got[key]; !ok || v != nil {
			t.Errorf("Expected default field %q to be null, got %v", key, v)
		}
	}
}

func TestResetRespectsLock(t *testing.T) {
	coord := newTestCoordinator(newTestClock())
	defer coord.Close()

	coord.Lock().AcquireOrRenew("alice")

	_, err := coord.Reset("bob")
	if cErr := AsError(err); cErr == nil || cErr.Code != RetCLockHeld {
		t.Errorf("Expected LockHeld for reset by non-holder, got %v", err)
	}
}

func TestFailedSaveLeavesStateIntact(t *testing.T) {
	store := &failingStorage{IStorage: mstorage.NewMemoryStorage()}
	coord := New(lockmgr.NewLockManager(30*time.Second), store)
	defer coord.Close()

	if _, err := coord.Write("alice", 0, document.Document{"players": []interface{}{"A"}}); err != nil {
		t.Fatalf("Seed write failed: %v", err)
	}

	store.failSaves = true

	_, err := coord.Write("alice", 1, document.Document{"players": []interface{}{"B"}})
	if cErr := AsError(err); cErr == nil || cErr.Code != RetCStorageUnavailable {
		t.Fatalf("Expected StorageUnavailable, got %v", err)
	}

	store.failSaves = false

	read, err := coord.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	players, _ := read["players"].([]interface{})
	if read.Rev() != 1 || len(players) != 1 || players[0] != "A" {
		t.Errorf("Expected prior state to survive a failed save, got rev=%d players=%v",
			read.Rev(), read["players"])
	}
}

func TestConcurrentWritersExactlyOneWins(t *testing.T) {
	coord := newTestCoordinator(newTestClock())
	defer coord.Close()

	const writers = 8

	var (
		start     = make(chan struct{})
		wg        sync.WaitGroup
		mu        sync.Mutex
		accepted  int
		conflicts int
	)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			// every writer claims base revision 0
			_, err := coord.Write("", 0, document.Document{})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case AsError(err) != nil && AsError(err).Code == RetCRevisionConflict:
				if AsError(err).ServerRev != 1 {
					t.Errorf("Expected conflicts to report server rev 1, got %d", AsError(err).ServerRev)
				}
				conflicts++
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if accepted != 1 {
		t.Errorf("Expected exactly one accepted write, got %d", accepted)
	}
	if conflicts != writers-1 {
		t.Errorf("Expected %d conflicts, got %d", writers-1, conflicts)
	}

	read, _ := coord.Read()
	if read.Rev() != 1 {
		t.Errorf("Expected final revision 1, got %d", read.Rev())
	}
}

func TestRevisionSequenceIsDense(t *testing.T) {
	coord := newTestCoordinator(newTestClock())
	defer coord.Close()

	for i := int64(0); i < 20; i++ {
		got, err := coord.Write("alice", i, document.Document{})
		if err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
		if got.Rev() != i+1 {
			t.Fatalf("Expected rev %d, got %d", i+1, got.Rev())
		}
	}
}
