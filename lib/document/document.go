package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RevisionKey is the name of the mandatory revision field every document carries.
const RevisionKey = "rev"

// Document is a single JSON object with named fields. All fields except the
// revision are opaque payload owned entirely by the clients - the coordinator
// passes them through unchanged and only ever reads or rewrites RevisionKey.
type Document map[string]interface{}

// New returns the default empty document with revision 0.
// This is the state of a document that was never written to.
func New() Document {
	return Document{
		"players":   []interface{}{},
		"mode":      nil,
		"groups":    nil,
		"matches":   []interface{}{},
		"winner":    nil,
		RevisionKey: int64(0),
	}
}

// Rev returns the document's revision. A missing or non-numeric revision
// field is reported as 0.
func (d Document) Rev() int64 {
	switch v := d[RevisionKey].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// WithRev returns a copy of the document with the revision field set to rev.
// The payload fields are copied by reference - the document is replaced
// wholesale on every write, so entries are never mutated in place.
func (d Document) WithRev(rev int64) Document {
	next := make(Document, len(d)+1)
	for k, v := range d {
		next[k] = v
	}
	next[RevisionKey] = rev
	return next
}

// Normalize fills in the mandatory revision field and any missing
// default-payload fields. Fields the client did supply are left untouched.
func (d Document) Normalize() Document {
	for k, v := range New() {
		if _, ok := d[k]; !ok {
			d[k] = v
		}
	}
	// re-coerce so a client supplied junk revision cannot survive a load
	d[RevisionKey] = d.Rev()
	return d
}

// Encode serializes the document to JSON.
func (d Document) Encode() ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return b, nil
}

// Decode parses a JSON object into the Document and normalizes it.
// Numbers are kept as json.Number so large revisions survive the round trip.
func (d *Document) Decode(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var parsed Document
	if err := dec.Decode(&parsed); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	if parsed == nil {
		return fmt.Errorf("failed to decode document: not a JSON object")
	}
	*d = parsed.Normalize()
	return nil
}
