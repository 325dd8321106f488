package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/bracketd/cmd/doc"
	"github.com/ValentinKolb/bracketd/cmd/lock"
	"github.com/ValentinKolb/bracketd/cmd/serve"
	"github.com/ValentinKolb/bracketd/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "bracketd",
		Short: "tournament bracket document server",
		Long: fmt.Sprintf(`bracketd (v%s)

A coordination server for shared tournament bracket documents written in Go,
combining an advisory edit lock with optimistic revision checks so competing
editors never silently overwrite each other.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of bracketd",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bracketd v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(doc.DocumentCommands)
	RootCmd.AddCommand(lock.LockCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
