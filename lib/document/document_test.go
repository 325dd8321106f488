package document

import (
	"encoding/json"
	"testing"
)

func TestNewDocumentDefaults(t *testing.T) {
	d := New()

	if d.Rev() != 0 {
		t.Errorf("Expected new document to have rev 0, got %d", d.Rev())
	}

	for _, key := range []string{"players", "mode", "groups", "matches", "winner"} {
		if _, ok := d[key]; !ok {
			t.Errorf("Expected default document to contain field %q", key)
		}
	}
}

func TestDocumentRevCoercion(t *testing.T) {
	tests := []struct {
		name string
		rev  interface{}
		want int64
	}{
		{"int64", int64(7), 7},
		{"int", 3, 3},
		{"float64", float64(12), 12},
		{"json.Number", json.Number("42"), 42},
		{"missing", nil, 0},
		{"string junk", "7", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Document{}
			if tc.rev != nil {
				d[RevisionKey] = tc.rev
			}
			if got := d.Rev(); got != tc.want {
				t.Errorf("Expected rev %d, got %d", tc.want, got)
			}
		})
	}
}

func TestWithRevDoesNotMutate(t *testing.T) {
	d := Document{"players": []interface{}{"A"}, RevisionKey: int64(4)}
	next := d.WithRev(5)

	if d.Rev() != 4 {
		t.Errorf("Expected original document to keep rev 4, got %d", d.Rev())
	}
	if next.Rev() != 5 {
		t.Errorf("Expected copy to have rev 5, got %d", next.Rev())
	}
	if next["players"] == nil {
		t.Error("Expected payload fields to be carried over")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	d := New().WithRev(9)
	d["players"] = []interface{}{"alice", "bob"}

	b, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var got Document
	if err := got.Decode(b); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got.Rev() != 9 {
		t.Errorf("Expected rev 9 after round trip, got %d", got.Rev())
	}

	players, ok := got["players"].([]interface{})
	if !ok || len(players) != 2 {
		t.Errorf("Expected two players after round trip, got %v", got["players"])
	}
}

func TestDecodeNormalizesPartialDocument(t *testing.T) {
	var got Document
	if err := got.Decode([]byte(`{"players":["A"]}`)); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got.Rev() != 0 {
		t.Errorf("Expected missing rev to normalize to 0, got %d", got.Rev())
	}
	if _, ok := got["matches"]; !ok {
		t.Error("Expected missing default field to be filled in")
	}

	players, ok := got["players"].([]interface{})
	if !ok || len(players) != 1 {
		t.Errorf("Expected client-supplied field to be untouched, got %v", got["players"])
	}
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`null`, `broken`} {
		var got Document
		if err := got.Decode([]byte(raw)); err == nil {
			t.Errorf("Expected decode of %q to fail", raw)
		}
	}
}
