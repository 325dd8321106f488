package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Document table
// --------------------------------------------------------------------------

// DocumentStorageType selects the storage backend for a served document.
type DocumentStorageType string

const (
	StorageTypeFile   DocumentStorageType = "file"
	StorageTypeMemory DocumentStorageType = "memory"
)

// ServerDocument describes one document the server hosts. Each document gets
// its own lock manager, storage backend and coordinator - the server is the
// single authority for every document it serves.
type ServerDocument struct {
	// Name is the routing key clients address the document by
	Name string
	// Type selects the storage backend
	Type DocumentStorageType
	// Path is the storage file location (file storage only)
	Path string
}

// --------------------------------------------------------------------------
// Shared transport tuning
// --------------------------------------------------------------------------

// SocketConf holds buffer settings shared by the socket based transports.
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific connection settings.
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerTransportConfig holds the transport settings of the server.
type ServerTransportConfig struct {
	// Endpoint is the address the transport listens on
	// (e.g. 0.0.0.0:8080 for http/tcp, /tmp/bracketd.sock for unix)
	Endpoint string

	SocketConf
	TCPConf
}

// ServerConfig holds all configuration parameters for the bracketd server.
type ServerConfig struct {
	// Documents the server hosts
	Documents []ServerDocument

	// LockTTLMillis is the edit lock lease duration in milliseconds
	LockTTLMillis uint64

	// TimeoutSecond is the per request read/write deadline for the
	// socket based transports
	TimeoutSecond int64

	// Transport settings
	Transport ServerTransportConfig

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("RPC Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	addSection("Coordination")
	addField("Lock TTL", fmt.Sprintf("%d ms", c.LockTTLMillis))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	addSection("Documents")
	for _, doc := range c.Documents {
		location := string(doc.Type)
		if doc.Type == StorageTypeFile {
			location = fmt.Sprintf("file (%s)", doc.Path)
		}
		addField(doc.Name, location)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the transport settings of the client.
type ClientTransportConfig struct {
	// Endpoints of the servers. Transports that support load balancing
	// rotate over all of them.
	Endpoints []string

	// RetryCount is how many times a request is retried before giving up
	RetryCount int

	// ConnectionsPerEndpoint is the number of simultaneous connections
	// per endpoint (socket based transports only)
	ConnectionsPerEndpoint int

	SocketConf
	TCPConf
}

// ClientConfig holds all configuration parameters for the bracketd client.
type ClientConfig struct {
	TimeoutSecond int
	Transport     ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(maxInt(1, c.Transport.ConnectionsPerEndpoint)))

	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// --------------------------------------------------------------------------
// Document table parsing
// --------------------------------------------------------------------------

// ParseDocuments parses the comma separated document table used by the serve
// command. Each entry is NAME=PATH for file storage or NAME=memory for an
// ephemeral document, e.g. "bracket=./data/bracket.json,scratch=memory".
func ParseDocuments(table string) ([]ServerDocument, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("no documents configured")
	}

	var docs []ServerDocument
	seen := make(map[string]bool)

	for _, entry := range strings.Split(table, ",") {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid document format: %s (expected NAME=PATH or NAME=memory)", entry)
		}

		name := strings.TrimSpace(parts[0])
		target := strings.TrimSpace(parts[1])

		if name == "" || target == "" {
			return nil, fmt.Errorf("invalid document format: %s (empty name or target)", entry)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate document name: %s", name)
		}
		seen[name] = true

		if target == string(StorageTypeMemory) {
			docs = append(docs, ServerDocument{Name: name, Type: StorageTypeMemory})
		} else {
			docs = append(docs, ServerDocument{Name: name, Type: StorageTypeFile, Path: target})
		}
	}

	return docs, nil
}
