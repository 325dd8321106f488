package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/bracketd/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasClientID  uint16 = 1 << 0
	hasBaseRev   uint16 = 1 << 1
	hasDocument  uint16 = 1 << 2
	hasRev       uint16 = 1 << 3
	hasOwner     uint16 = 1 << 4
	hasExpiresAt uint16 = 1 << 5
	hasValid     uint16 = 1 << 6
	hasGranted   uint16 = 1 << 7
	hasErrCode   uint16 = 1 << 8
	hasErr       uint16 = 1 << 9
	hasMeta      uint16 = 1 << 10
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags
	var flags uint16 = 0

	// Set position for writing (after MsgType and flags)
	pos := 3

	writeString := func(s string) {
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(s)))
		pos += 4
		copy(result[pos:pos+len(s)], s)
		pos += len(s)
	}

	writeBytes := func(v []byte) {
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(v)))
		pos += 4
		if len(v) > 0 {
			copy(result[pos:pos+len(v)], v)
			pos += len(v)
		}
	}

	writeInt64 := func(v int64) {
		binary.BigEndian.PutUint64(result[pos:pos+8], uint64(v))
		pos += 8
	}

	// Handle ClientID
	if msg.ClientID != "" {
		flags |= hasClientID
		writeString(msg.ClientID)
	}

	// Handle BaseRev (presence tracked by HasBaseRev, not by value -
	// base revision 0 is a legal claim)
	if msg.HasBaseRev {
		flags |= hasBaseRev
		writeInt64(msg.BaseRev)
	}

	// Handle Document
	if msg.Document != nil {
		flags |= hasDocument
		writeBytes(msg.Document)
	}

	// Handle Rev
	if msg.Rev != 0 {
		flags |= hasRev
		writeInt64(msg.Rev)
	}

	// Handle Owner
	if msg.Owner != "" {
		flags |= hasOwner
		writeString(msg.Owner)
	}

	// Handle ExpiresAt
	if msg.ExpiresAt != 0 {
		flags |= hasExpiresAt
		writeInt64(msg.ExpiresAt)
	}

	// Handle Valid and Granted (flag presence is the value)
	if msg.Valid {
		flags |= hasValid
	}
	if msg.Granted {
		flags |= hasGranted
	}

	// Handle ErrCode
	if msg.ErrCode != "" {
		flags |= hasErrCode
		writeString(msg.ErrCode)
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		writeString(msg.Err)
	}

	// Handle Meta
	if msg.Meta != nil {
		flags |= hasMeta
		writeBytes(msg.Meta)
	}

	// Set flags after knowing which fields are present
	binary.BigEndian.PutUint16(result[1:3], flags)

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 3 {
		return fmt.Errorf("data too short for message header")
	}

	// Read message type and flags
	msg.MsgType = common.MessageType(data[0])
	flags := binary.BigEndian.Uint16(data[1:3])

	// Initialize read position
	pos := 3

	readString := func(field string) (string, error) {
		if pos+4 > len(data) {
			return "", fmt.Errorf("data too short for %s length", field)
		}
		n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if pos+n > len(data) {
			return "", fmt.Errorf("data too short for %s data", field)
		}
		s := string(data[pos : pos+n])
		pos += n
		return s, nil
	}

	readBytes := func(field string) ([]byte, error) {
		if pos+4 > len(data) {
			return nil, fmt.Errorf("data too short for %s length", field)
		}
		n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if pos+n > len(data) {
			return nil, fmt.Errorf("data too short for %s data", field)
		}
		v := make([]byte, n)
		copy(v, data[pos:pos+n])
		pos += n
		return v, nil
	}

	readInt64 := func(field string) (int64, error) {
		if pos+8 > len(data) {
			return 0, fmt.Errorf("data too short for %s", field)
		}
		v := int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
		return v, nil
	}

	var err error

	// Read ClientID if present
	msg.ClientID = ""
	if flags&hasClientID != 0 {
		if msg.ClientID, err = readString("client id"); err != nil {
			return err
		}
	}

	// Read BaseRev if present
	msg.BaseRev = 0
	msg.HasBaseRev = flags&hasBaseRev != 0
	if msg.HasBaseRev {
		if msg.BaseRev, err = readInt64("base revision"); err != nil {
			return err
		}
	}

	// Read Document if present
	msg.Document = nil
	if flags&hasDocument != 0 {
		if msg.Document, err = readBytes("document"); err != nil {
			return err
		}
	}

	// Read Rev if present
	msg.Rev = 0
	if flags&hasRev != 0 {
		if msg.Rev, err = readInt64("revision"); err != nil {
			return err
		}
	}

	// Read Owner if present
	msg.Owner = ""
	if flags&hasOwner != 0 {
		if msg.Owner, err = readString("owner"); err != nil {
			return err
		}
	}

	// Read ExpiresAt if present
	msg.ExpiresAt = 0
	if flags&hasExpiresAt != 0 {
		if msg.ExpiresAt, err = readInt64("expiry"); err != nil {
			return err
		}
	}

	// Valid and Granted are carried in the flags themselves
	msg.Valid = flags&hasValid != 0
	msg.Granted = flags&hasGranted != 0

	// Read ErrCode if present
	msg.ErrCode = ""
	if flags&hasErrCode != 0 {
		if msg.ErrCode, err = readString("error code"); err != nil {
			return err
		}
	}

	// Read Err if present
	msg.Err = ""
	if flags&hasErr != 0 {
		if msg.Err, err = readString("error"); err != nil {
			return err
		}
	}

	// Read Meta if present
	msg.Meta = nil
	if flags&hasMeta != 0 {
		if msg.Meta, err = readBytes("meta"); err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 2 bytes for flags
	size := 3

	if msg.ClientID != "" {
		size += 4 + len(msg.ClientID)
	}
	if msg.HasBaseRev {
		size += 8
	}
	if msg.Document != nil {
		size += 4 + len(msg.Document)
	}
	if msg.Rev != 0 {
		size += 8
	}
	if msg.Owner != "" {
		size += 4 + len(msg.Owner)
	}
	if msg.ExpiresAt != 0 {
		size += 8
	}
	if msg.ErrCode != "" {
		size += 4 + len(msg.ErrCode)
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}

	return size
}
