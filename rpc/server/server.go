package server

import (
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/bracketd/lib/coordinator"
	"github.com/ValentinKolb/bracketd/lib/lockmgr"
	"github.com/ValentinKolb/bracketd/lib/storage"
	"github.com/ValentinKolb/bracketd/lib/storage/fstorage"
	"github.com/ValentinKolb/bracketd/lib/storage/mstorage"
	"github.com/ValentinKolb/bracketd/rpc/common"
	"github.com/ValentinKolb/bracketd/rpc/serializer"
	"github.com/ValentinKolb/bracketd/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"

	_ "net/http/pprof"
)

var Logger = logger.GetLogger("rpc")

// serverDocument is a struct that represents one hosted document in the RPC
// server. It contains the coordinator that owns the document plus the
// adapters that handle document and lock requests for it
type serverDocument struct {
	Coordinator coordinator.ICoordinator
	DocAdapter  IRPCServerAdapter
	LockAdapter IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	// Create documents map
	documentMap := xsync.NewMapOf[string, serverDocument]()

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		documents:  documentMap,
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	documents  *xsync.MapOf[string, serverDocument]
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(documentName string, req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		// Get appropriate document
		doc, ok := s.documents.Load(documentName)

		// Case document does not exist -> error
		if !ok {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("document not found: %s", documentName),
			}
		} else {
			// Decode the request
			err := s.serializer.Deserialize(req, &msg)

			if err != nil {
				respMsg = common.Message{
					MsgType: common.MsgTError,
					Err:     fmt.Sprintf("failed to deserialize request: %s", err),
				}
			} else {
				// Route the request to the document or lock adapter
				switch msg.MsgType {
				case common.MsgTLCKInspect, common.MsgTLCKAcquire:
					respMsg = *doc.LockAdapter.Handle(&msg, doc.Coordinator)
				default:
					respMsg = *doc.DocAdapter.Handle(&msg, doc.Coordinator)
				}
			}
		}

		// Count the request outcome per document and operation
		countRequest(documentName, &msg, &respMsg)

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to serialize response: %s", err),
			}
		}
		return val
	})
}

func (s *rpcServer) init() error {

	// Init logger
	common.InitLoggers(s.config)

	// Lock TTL used by every hosted document
	ttl := lockmgr.DefaultTTL
	if s.config.LockTTLMillis > 0 {
		ttl = time.Duration(s.config.LockTTLMillis) * time.Millisecond
	}

	// CREATE DOCUMENTS

	/*
		Note: A single RPC Server can host any number of documents. Each
		document gets its own lock manager, storage backend and coordinator.
		The following loop creates all of them for the RPC server.
	*/

	for _, docConfig := range s.config.Documents {

		// Create the storage backend for the document
		var store storage.IStorage
		var err error
		switch docConfig.Type {
		case common.StorageTypeFile:
			store, err = fstorage.NewFileStorage(docConfig.Path)
			if err != nil {
				return fmt.Errorf("failed to create file storage for document %q: %w", docConfig.Name, err)
			}
			Logger.Infof("created file backed document %q at %s", docConfig.Name, docConfig.Path)
		case common.StorageTypeMemory:
			store = mstorage.NewMemoryStorage()
			Logger.Infof("created in-memory document %q", docConfig.Name)
		default:
			return fmt.Errorf("invalid storage type for document %q: %s", docConfig.Name, docConfig.Type)
		}

		// Create the coordinator and register the document
		s.documents.Store(docConfig.Name, serverDocument{
			Coordinator: coordinator.New(lockmgr.NewLockManager(ttl), store),
			DocAdapter:  NewDocumentServerAdapter(),
			LockAdapter: NewLockManagerServerAdapter(),
		})
	}

	Logger.Infof("bracketd setup completed successfully")

	// Configure the transport layer
	s.registerTransportHandler()

	return nil
}

// Serve starts the RPC server
// This function will also initialize the server plus the hosted documents
// and start the transport layer
func (s *rpcServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// Close releases the storage backends of all hosted documents
func (s *rpcServer) Close() error {
	var firstErr error
	s.documents.Range(func(name string, doc serverDocument) bool {
		if err := doc.Coordinator.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close document %q: %w", name, err)
		}
		return true
	})
	return firstErr
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

// countRequest increments the request counter for the processed message
func countRequest(documentName string, req *common.Message, resp *common.Message) {
	outcome := "success"
	if resp.MsgType == common.MsgTError {
		outcome = "error"
		if resp.ErrCode != "" {
			outcome = resp.ErrCode
		}
	}

	counter := metrics.GetOrCreateCounter(fmt.Sprintf(
		`bracketd_requests_total{document=%q,op=%q,outcome=%q}`,
		documentName, req.MsgType.String(), outcome,
	))
	counter.Inc()
}
