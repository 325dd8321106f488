package lock

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/bracketd/cmd/util"
	"github.com/ValentinKolb/bracketd/lib/lockmgr"
	"github.com/ValentinKolb/bracketd/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcLockMgr      lockmgr.ILockManager
	acquireClientID string

	// LockCommands represents the lock command group
	LockCommands = &cobra.Command{
		Use:               "lock",
		Short:             "Perform edit lock operations",
		PersistentPreRunE: setupLockClient,
	}

	// inspectCmd represents the inspect command
	inspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Inspect the edit lock",
		Long:  "Shows the current edit lock state of the document: the owner, whether the lock is still valid and when it expires.",
		Args:  cobra.NoArgs,
		RunE:  runInspect,
	}

	// acquireCmd represents the acquire command
	acquireCmd = &cobra.Command{
		Use:   "acquire",
		Short: "Acquire or renew the edit lock",
		Long:  "Acquires the edit lock for the given client id, or renews it if that client already holds it. There is no release command: a lock that is not renewed simply expires.",
		Args:  cobra.NoArgs,
		RunE:  runAcquire,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add subcommands to lock command
	LockCommands.AddCommand(inspectCmd)
	LockCommands.AddCommand(acquireCmd)

	// Add common RPC flags to the lock command
	util.SetupRPCClientFlags(LockCommands)

	// Set default document name
	LockCommands.PersistentFlags().String("document", "bracket", util.WrapString("Name of the document whose lock to operate on"))

	// Add flags specific to acquire
	acquireCmd.Flags().StringVar(&acquireClientID, "client-id", "", "Client identifier to acquire the lock for")
}

// setupLockClient initializes the lock manager client
func setupLockClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()
	documentName := util.GetDocumentName()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the lock manager client
	rpcLockMgr, err = client.NewRPCLockMgr(
		documentName,
		*config,
		t,
		s,
	)

	return err
}

// runInspect handles the inspect lock command
func runInspect(_ *cobra.Command, _ []string) error {
	info := rpcLockMgr.Inspect()

	if !info.Valid {
		if info.Owner == "" {
			fmt.Println("lock is free (never held)")
		} else {
			fmt.Printf("lock is free (last held by %q, expired %s)\n", info.Owner, info.ExpiresAt.Format(time.RFC3339))
		}
		return nil
	}

	fmt.Printf("locked by %q until %s\n", info.Owner, info.ExpiresAt.Format(time.RFC3339))
	return nil
}

// runAcquire handles the acquire lock command
func runAcquire(_ *cobra.Command, _ []string) error {
	result, err := rpcLockMgr.AcquireOrRenew(acquireClientID)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %v", err)
	}

	if !result.Granted {
		fmt.Printf("granted=false, held by %q until %s\n", result.Owner, result.ExpiresAt.Format(time.RFC3339))
		return nil
	}

	fmt.Printf("granted=true, held by %q until %s\n", result.Owner, result.ExpiresAt.Format(time.RFC3339))
	return nil
}
