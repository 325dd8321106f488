package serve

import (
	"fmt"
	"strings"

	cmdUtil "github.com/ValentinKolb/bracketd/cmd/util"
	"github.com/ValentinKolb/bracketd/rpc/common"
	"github.com/ValentinKolb/bracketd/rpc/serializer"
	"github.com/ValentinKolb/bracketd/rpc/server"
	"github.com/ValentinKolb/bracketd/rpc/transport"
	"github.com/ValentinKolb/bracketd/rpc/transport/http"
	"github.com/ValentinKolb/bracketd/rpc/transport/tcp"
	"github.com/ValentinKolb/bracketd/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the bracketd server",
		Long:    `Start the bracketd server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is BRACKETD_<flag> (e.g. BRACKETD_LOCK_TTL=60000)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "documents"
	ServeCmd.PersistentFlags().String(key, "bracket=./data/bracket.json", cmdUtil.WrapString("Comma-separated list of documents to serve. Format: NAME=PATH for a file backed document or NAME=memory for an ephemeral one"))

	key = "lock-ttl"
	ServeCmd.PersistentFlags().Uint64(key, 30000, cmdUtil.WrapString("Edit lock lease duration in milliseconds. A client that stops renewing loses the lock after this long"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Per request read/write timeout in seconds (socket based transports)"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/bracketd.sock, ...)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// parse the document table
	docs, err := common.ParseDocuments(viper.GetString("documents"))
	if err != nil {
		return err
	}
	serveCmdConfig.Documents = docs

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.LockTTLMillis = viper.GetUint64("lock-ttl")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Transport.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the bracketd server
func run(_ *cobra.Command, _ []string) error {

	// parse the serializer
	var s serializer.IRPCSerializer
	switch viper.GetString("serializer") {
	case "json":
		s = serializer.NewJSONSerializer()
	case "gob":
		s = serializer.NewGOBSerializer()
	case "binary":
		s = serializer.NewBinarySerializer()
	default:
		return fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}

	// Parse the transport
	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "http":
		t = http.NewHttpServerTransport()
	case "tcp":
		t = tcp.NewTCPDefaultServerTransport()
	case "unix":
		t = unix.NewUnixDefaultServerTransport()
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
	)

	return serv.Serve()
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("bracketd")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
