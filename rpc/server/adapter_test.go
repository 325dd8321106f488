package server

import (
	"testing"
	"time"

	"github.com/ValentinKolb/bracketd/lib/coordinator"
	"github.com/ValentinKolb/bracketd/lib/document"
	"github.com/ValentinKolb/bracketd/lib/lockmgr"
	"github.com/ValentinKolb/bracketd/lib/storage/mstorage"
	"github.com/ValentinKolb/bracketd/rpc/common"
)

// newTestCoordinator creates an in-memory coordinator for adapter tests
func newTestCoordinator(t *testing.T) coordinator.ICoordinator {
	t.Helper()
	return coordinator.New(lockmgr.NewLockManager(time.Minute), mstorage.NewMemoryStorage())
}

// encodePayload marshals a document payload for the wire
func encodePayload(t *testing.T, doc document.Document) []byte {
	t.Helper()
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("failed to encode payload: %v", err)
	}
	return data
}

func TestDocumentAdapterReadEmpty(t *testing.T) {
	adapter := NewDocumentServerAdapter()
	coord := newTestCoordinator(t)
	defer coord.Close()

	resp := adapter.Handle(common.NewReadRequest(), coord)

	if resp.MsgType != common.MsgTDocRead {
		t.Fatalf("expected read response, got %s (err: %s)", resp.MsgType, resp.Err)
	}
	if resp.Rev != 0 {
		t.Errorf("expected revision 0 for the default document, got %d", resp.Rev)
	}

	var doc document.Document
	if err := doc.Decode(resp.Document); err != nil {
		t.Fatalf("failed to decode response document: %v", err)
	}
	if doc.Rev() != 0 {
		t.Errorf("expected default document at revision 0, got %d", doc.Rev())
	}
}

func TestDocumentAdapterWriteAndRead(t *testing.T) {
	adapter := NewDocumentServerAdapter()
	coord := newTestCoordinator(t)
	defer coord.Close()

	payload := document.New()
	payload["players"] = []interface{}{"alice", "bob"}

	resp := adapter.Handle(common.NewWriteRequest("editor-1", 0, encodePayload(t, payload)), coord)
	if resp.MsgType != common.MsgTDocWrite {
		t.Fatalf("expected write response, got %s (err: %s)", resp.MsgType, resp.Err)
	}
	if resp.Rev != 1 {
		t.Errorf("expected revision 1 after first write, got %d", resp.Rev)
	}

	// Read it back
	resp = adapter.Handle(common.NewReadRequest(), coord)
	if resp.Rev != 1 {
		t.Errorf("expected revision 1 on read, got %d", resp.Rev)
	}
}

func TestDocumentAdapterStaleWriteCarriesCurrentState(t *testing.T) {
	adapter := NewDocumentServerAdapter()
	coord := newTestCoordinator(t)
	defer coord.Close()

	// First write moves the document to revision 1
	payload := document.New()
	payload["players"] = []interface{}{"alice"}
	resp := adapter.Handle(common.NewWriteRequest("editor-1", 0, encodePayload(t, payload)), coord)
	if resp.MsgType != common.MsgTDocWrite {
		t.Fatalf("setup write failed: %s", resp.Err)
	}

	// Competing write still claims base revision 0
	resp = adapter.Handle(common.NewWriteRequest("editor-2", 0, encodePayload(t, document.New())), coord)
	if resp.MsgType != common.MsgTError {
		t.Fatalf("expected error response for stale write, got %s", resp.MsgType)
	}
	if resp.ErrCode != coordinator.RetCRevisionConflict.String() {
		t.Errorf("expected revision conflict code, got %q", resp.ErrCode)
	}
	if resp.Rev != 1 {
		t.Errorf("expected server revision 1 in conflict response, got %d", resp.Rev)
	}
	if len(resp.Document) == 0 {
		t.Error("expected conflict response to carry the current document")
	}
}

func TestDocumentAdapterMissingBaseRevRejected(t *testing.T) {
	adapter := NewDocumentServerAdapter()
	coord := newTestCoordinator(t)
	defer coord.Close()

	// Request without a base revision claim
	req := &common.Message{
		MsgType:  common.MsgTDocWrite,
		ClientID: "editor-1",
		Document: encodePayload(t, document.New()),
	}

	resp := adapter.Handle(req, coord)
	if resp.MsgType != common.MsgTError {
		t.Fatalf("expected error response, got %s", resp.MsgType)
	}
	if resp.ErrCode != coordinator.RetCInvalidRequest.String() {
		t.Errorf("expected invalid request code, got %q", resp.ErrCode)
	}
}

func TestDocumentAdapterInvalidPayloadRejected(t *testing.T) {
	adapter := NewDocumentServerAdapter()
	coord := newTestCoordinator(t)
	defer coord.Close()

	resp := adapter.Handle(common.NewWriteRequest("editor-1", 0, []byte("not json")), coord)
	if resp.MsgType != common.MsgTError {
		t.Fatalf("expected error response, got %s", resp.MsgType)
	}
	if resp.ErrCode != coordinator.RetCInvalidRequest.String() {
		t.Errorf("expected invalid request code, got %q", resp.ErrCode)
	}
}

func TestDocumentAdapterLockedOutWriteCarriesLockSnapshot(t *testing.T) {
	docAdapter := NewDocumentServerAdapter()
	lockAdapter := NewLockManagerServerAdapter()
	coord := newTestCoordinator(t)
	defer coord.Close()

	// alice takes the lock
	resp := lockAdapter.Handle(common.NewAcquireRequest("alice"), coord)
	if resp.MsgType != common.MsgTLCKAcquire || !resp.Granted {
		t.Fatalf("expected alice to get the lock, got %s (err: %s)", resp.MsgType, resp.Err)
	}

	// bob's write is rejected with the lock snapshot attached
	resp = docAdapter.Handle(common.NewWriteRequest("bob", 0, encodePayload(t, document.New())), coord)
	if resp.MsgType != common.MsgTError {
		t.Fatalf("expected error response, got %s", resp.MsgType)
	}
	if resp.ErrCode != coordinator.RetCLockHeld.String() {
		t.Errorf("expected lock held code, got %q", resp.ErrCode)
	}
	if resp.Owner != "alice" {
		t.Errorf("expected lock owner alice in response, got %q", resp.Owner)
	}
	if !resp.Valid {
		t.Error("expected a valid lock snapshot in response")
	}
	if resp.ExpiresAt == 0 {
		t.Error("expected a lock deadline in response")
	}
}

func TestDocumentAdapterResetSkipsRevisionCheck(t *testing.T) {
	adapter := NewDocumentServerAdapter()
	coord := newTestCoordinator(t)
	defer coord.Close()

	// Move the document forward
	resp := adapter.Handle(common.NewWriteRequest("editor-1", 0, encodePayload(t, document.New())), coord)
	if resp.Rev != 1 {
		t.Fatalf("setup write failed: %s", resp.Err)
	}

	// Reset needs no base revision
	resp = adapter.Handle(common.NewResetRequest("editor-1"), coord)
	if resp.MsgType != common.MsgTDocReset {
		t.Fatalf("expected reset response, got %s (err: %s)", resp.MsgType, resp.Err)
	}
	if resp.Rev != 2 {
		t.Errorf("expected revision 2 after reset, got %d", resp.Rev)
	}

	var doc document.Document
	if err := doc.Decode(resp.Document); err != nil {
		t.Fatalf("failed to decode reset document: %v", err)
	}
	if players, ok := doc["players"].([]interface{}); !ok || len(players) != 0 {
		t.Errorf("expected empty players after reset, got %v", doc["players"])
	}
}

func TestLockAdapterInspectAndAcquire(t *testing.T) {
	adapter := NewLockManagerServerAdapter()
	coord := newTestCoordinator(t)
	defer coord.Close()

	// Inspect on a never held lock
	resp := adapter.Handle(common.NewInspectRequest(), coord)
	if resp.MsgType != common.MsgTLCKInspect {
		t.Fatalf("expected inspect response, got %s (err: %s)", resp.MsgType, resp.Err)
	}
	if resp.Valid {
		t.Error("expected an invalid lock before any acquire")
	}

	// alice acquires
	resp = adapter.Handle(common.NewAcquireRequest("alice"), coord)
	if !resp.Granted || resp.Owner != "alice" {
		t.Errorf("expected alice to be granted the lock, got granted=%v owner=%q", resp.Granted, resp.Owner)
	}

	// bob is denied and sees alice's lock
	resp = adapter.Handle(common.NewAcquireRequest("bob"), coord)
	if resp.Granted {
		t.Error("expected bob to be denied while alice holds the lock")
	}
	if resp.Owner != "alice" {
		t.Errorf("expected owner alice in denial response, got %q", resp.Owner)
	}

	// Empty client id is a client bug
	resp = adapter.Handle(common.NewAcquireRequest(""), coord)
	if resp.MsgType != common.MsgTError {
		t.Fatalf("expected error response for empty client id, got %s", resp.MsgType)
	}
	if resp.ErrCode != coordinator.RetCInvalidRequest.String() {
		t.Errorf("expected invalid request code, got %q", resp.ErrCode)
	}
}
