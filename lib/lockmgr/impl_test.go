package lockmgr

import (
	"testing"
	"time"
)

// testClock is a manually advanced clock for driving lock expiry.
type testClock struct {
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time {
	return c.current
}

func (c *testClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestAcquireWhenUnlocked(t *testing.T) {
	clock := newTestClock()
	mgr := NewLockManager(30*time.Second, WithClock(clock.now))

	res, err := mgr.AcquireOrRenew("alice")
	if err != nil {
		t.Fatalf("AcquireOrRenew failed: %v", err)
	}

	if !res.Granted {
		t.Error("Expected lock to be granted on an unlocked cell")
	}
	if res.Owner != "alice" {
		t.Errorf("Expected owner alice, got %q", res.Owner)
	}
	if want := clock.now().Add(30 * time.Second); !res.ExpiresAt.Equal(want) {
		t.Errorf("Expected expiry %v, got %v", want, res.ExpiresAt)
	}
	if !res.Valid {
		t.Error("Expected freshly granted lock to be valid")
	}
}

func TestAcquireDeniedWhileHeld(t *testing.T) {
	clock := newTestClock()
	mgr := NewLockManager(30*time.Second, WithClock(clock.now))

	if _, err := mgr.AcquireOrRenew("alice"); err != nil {
		t.Fatalf("AcquireOrRenew failed: %v", err)
	}

	res, err := mgr.AcquireOrRenew("bob")
	if err != nil {
		t.Fatalf("AcquireOrRenew failed: %v", err)
	}

	if res.Granted {
		t.Error("Expected bob to be denied while alice holds the lock")
	}
	if res.Owner != "alice" {
		t.Errorf("Expected reported owner alice, got %q", res.Owner)
	}
	if !res.Valid {
		t.Error("Expected reported lock to still be valid")
	}
}

func TestRenewIsIdempotentAndExtends(t *testing.T) {
	clock := newTestClock()
	mgr := NewLockManager(30*time.Second, WithClock(clock.now))

	first, _ := mgr.AcquireOrRenew("alice")

	clock.advance(20 * time.Second)

	second, err := mgr.AcquireOrRenew("alice")
	if err != nil {
		t.Fatalf("AcquireOrRenew failed: %v", err)
	}

	if !second.Granted {
		t.Error("Expected renewal by the holder to always be granted")
	}
	if !second.ExpiresAt.After(first.ExpiresAt) {
		t.Errorf("Expected renewal to extend deadline beyond %v, got %v",
			first.ExpiresAt, second.ExpiresAt)
	}
}

func TestExpiredLockReassigned(t *testing.T) {
	clock := newTestClock()
	mgr := NewLockManager(30*time.Second, WithClock(clock.now))

	mgr.AcquireOrRenew("alice")

	clock.advance(31 * time.Second)

	res, err := mgr.AcquireOrRenew("bob")
	if err != nil {
		t.Fatalf("AcquireOrRenew failed: %v", err)
	}

	if !res.Granted {
		t.Error("Expected expired lock to be handed to the next asker")
	}
	if res.Owner != "bob" {
		t.Errorf("Expected new owner bob, got %q", res.Owner)
	}
}

func TestEmptyClientIDRejected(t *testing.T) {
	mgr := NewLockManager(30 * time.Second)

	if _, err := mgr.AcquireOrRenew(""); err != ErrInvalidClientID {
		t.Errorf("Expected ErrInvalidClientID, got %v", err)
	}
}

func TestInspectIsPure(t *testing.T) {
	clock := newTestClock()
	mgr := NewLockManager(30*time.Second, WithClock(clock.now))

	if info := mgr.Inspect(); info.Valid || info.Owner != "" {
		t.Errorf("Expected unlocked state, got %+v", info)
	}

	mgr.AcquireOrRenew("alice")
	before := mgr.Inspect()

	// inspecting repeatedly must not mutate the cell
	for i := 0; i < 3; i++ {
		mgr.Inspect()
	}

	after := mgr.Inspect()
	if !after.ExpiresAt.Equal(before.ExpiresAt) || after.Owner != before.Owner {
		t.Errorf("Expected inspect to have no side effects: %+v vs %+v", before, after)
	}
}

func TestValidityComputedLazily(t *testing.T) {
	clock := newTestClock()
	mgr := NewLockManager(10*time.Second, WithClock(clock.now))

	mgr.AcquireOrRenew("alice")

	if info := mgr.Inspect(); !info.Valid {
		t.Error("Expected lock to be valid before the deadline")
	}

	clock.advance(11 * time.Second)

	info := mgr.Inspect()
	if info.Valid {
		t.Error("Expected lock to be invalid after the deadline with no sweep")
	}
	// owner remains in the cell until someone else acquires
	if info.Owner != "alice" {
		t.Errorf("Expected stale owner to remain visible, got %q", info.Owner)
	}
}
