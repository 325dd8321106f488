package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// Request fields
	ClientID   string `json:"client_id,omitempty"`    // Used for: Write, Reset, Acquire
	BaseRev    int64  `json:"base_rev,omitempty"`     // Used for: Write requests
	HasBaseRev bool   `json:"has_base_rev,omitempty"` // Distinguishes base_rev=0 from a missing base revision

	// Shared fields
	Document []byte `json:"document,omitempty"` // Serialized document. Used for: Write (request), Read/Write/Reset (response), conflict errors

	// Response fields
	Rev       int64  `json:"rev,omitempty"`        // Server revision. Used for: conflict errors
	Owner     string `json:"owner,omitempty"`      // Used for: Inspect/Acquire responses, lock errors
	ExpiresAt int64  `json:"expires_at,omitempty"` // Lock deadline as unix milliseconds
	Valid     bool   `json:"valid,omitempty"`      // Used for: Inspect/Acquire responses
	Granted   bool   `json:"granted,omitempty"`    // Used for: Acquire responses
	ErrCode   string `json:"err_code,omitempty"`   // Machine readable error kind, see coordinator.RetCode
	Err       string `json:"err,omitempty"`        // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Unused, can be used for additional Adapters
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewReadRequest creates a new document Read request
func NewReadRequest() *Message {
	return &Message{MsgType: MsgTDocRead}
}

// NewReadResponse creates a new document Read response
func NewReadResponse(doc []byte) *Message {
	return &Message{
		MsgType:  MsgTDocRead,
		Document: doc,
	}
}

// NewWriteRequest creates a new document Write request
func NewWriteRequest(clientID string, baseRev int64, doc []byte) *Message {
	return &Message{
		MsgType:    MsgTDocWrite,
		ClientID:   clientID,
		BaseRev:    baseRev,
		HasBaseRev: true,
		Document:   doc,
	}
}

// NewWriteResponse creates a new document Write response
func NewWriteResponse(doc []byte) *Message {
	return &Message{
		MsgType:  MsgTDocWrite,
		Document: doc,
	}
}

// NewResetRequest creates a new document Reset request
func NewResetRequest(clientID string) *Message {
	return &Message{
		MsgType:  MsgTDocReset,
		ClientID: clientID,
	}
}

// NewResetResponse creates a new document Reset response
func NewResetResponse(doc []byte) *Message {
	return &Message{
		MsgType:  MsgTDocReset,
		Document: doc,
	}
}

// NewInspectRequest creates a new lock Inspect request
func NewInspectRequest() *Message {
	return &Message{MsgType: MsgTLCKInspect}
}

// NewInspectResponse creates a new lock Inspect response
func NewInspectResponse(owner string, expiresAtUnixMs int64, valid bool) *Message {
	return &Message{
		MsgType:   MsgTLCKInspect,
		Owner:     owner,
		ExpiresAt: expiresAtUnixMs,
		Valid:     valid,
	}
}

// NewAcquireRequest creates a new lock Acquire request
func NewAcquireRequest(clientID string) *Message {
	return &Message{
		MsgType:  MsgTLCKAcquire,
		ClientID: clientID,
	}
}

// NewAcquireResponse creates a new lock Acquire response
func NewAcquireResponse(owner string, expiresAtUnixMs int64, valid, granted bool) *Message {
	return &Message{
		MsgType:   MsgTLCKAcquire,
		Owner:     owner,
		ExpiresAt: expiresAtUnixMs,
		Valid:     valid,
		Granted:   granted,
	}
}

// NewCustomRequest creates a new Custom request
func NewCustomRequest(meta []byte) *Message {
	return &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTDocRead:
		return "read"
	case MsgTDocWrite:
		return "write"
	case MsgTDocReset:
		return "reset"
	case MsgTLCKInspect:
		return "inspect"
	case MsgTLCKAcquire:
		return "acquire"
	case MsgTCustom:
		return "custom"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "read":
		*t = MsgTDocRead
	case "write":
		*t = MsgTDocWrite
	case "reset":
		*t = MsgTDocReset
	case "inspect":
		*t = MsgTLCKInspect
	case "acquire":
		*t = MsgTLCKAcquire
	case "custom":
		*t = MsgTCustom
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// ICoordinator document operations

	MsgTDocRead  // Read the current document
	MsgTDocWrite // Replace the document (optimistic, base revision checked)
	MsgTDocReset // Reset the document to the default payload

	// ILockManager operations

	MsgTLCKInspect // Inspect the edit lock
	MsgTLCKAcquire // Acquire or renew the edit lock

	// Custom operations

	MsgTCustom // Custom operation type
)
