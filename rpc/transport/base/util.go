package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net"
)

// writeFrame writes a frame to the connection with the format:
// - 2 bytes: document name length (uint16, big endian)
// - N bytes: document name
// - 8 bytes: requestID (uint64, big endian)
// - 4 bytes: data length (uint32, big endian)
// - M bytes: data payload
func writeFrame(conn net.Conn, document string, requestID uint64, data []byte) error {
	if len(document) > math.MaxUint16 {
		return fmt.Errorf("document name too long: %d bytes", len(document))
	}

	// Create the header (2 bytes name length + name + 8 bytes requestID + 4 bytes content length)
	header := make([]byte, 2+len(document)+12)
	binary.BigEndian.PutUint16(header[:2], uint16(len(document)))
	copy(header[2:2+len(document)], document)
	binary.BigEndian.PutUint64(header[2+len(document):10+len(document)], requestID)
	binary.BigEndian.PutUint32(header[10+len(document):14+len(document)], uint32(len(data)))

	b := net.Buffers{header, data}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads a frame from the connection using the provided buffer
// If the buffer is too small, it will allocate a new temporary buffer for the data
func readFrame(conn net.Conn, buf []byte) (string, uint64, []byte, error) {
	// Check if buffer is large enough for the fixed header parts
	if buf == nil || len(buf) < 12 {
		buf = make([]byte, 12)
	}

	// Read document name length
	if _, err := io.ReadFull(conn, buf[:2]); err != nil {
		return "", 0, nil, err
	}
	nameLength := int(binary.BigEndian.Uint16(buf[:2]))

	// Read document name
	if len(buf) < nameLength {
		buf = make([]byte, nameLength)
	}
	if _, err := io.ReadFull(conn, buf[:nameLength]); err != nil {
		return "", 0, nil, err
	}
	document := string(buf[:nameLength])

	// Read requestID and content length
	if _, err := io.ReadFull(conn, buf[:12]); err != nil {
		return "", 0, nil, err
	}
	requestID := binary.BigEndian.Uint64(buf[:8])
	contentLength := binary.BigEndian.Uint32(buf[8:12])

	// If no data, return empty slice
	if contentLength == 0 {
		return document, requestID, []byte{}, nil
	}

	// Check if buffer is large enough for data
	if len(buf) < int(contentLength) {
		buf = make([]byte, contentLength)
	}

	// Read data
	if _, err := io.ReadFull(conn, buf[:contentLength]); err != nil {
		return "", 0, nil, err
	}

	// Return data
	return document, requestID, buf[:contentLength], nil
}
