package doc

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/bracketd/cmd/util"
	"github.com/ValentinKolb/bracketd/lib/coordinator"
	"github.com/ValentinKolb/bracketd/lib/document"
	"github.com/ValentinKolb/bracketd/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcDocument coordinator.ICoordinator

	// DocumentCommands represents the document command group
	DocumentCommands = &cobra.Command{
		Use:               "doc",
		Short:             "Perform document operations",
		PersistentPreRunE: setupDocumentClient,
	}

	submitClientID string
	submitBaseRev  int64
	resetClientID  string
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the document command
	util.SetupRPCClientFlags(DocumentCommands)

	// Set default document name
	DocumentCommands.PersistentFlags().String("document", "bracket", util.WrapString("Name of the document to connect to"))

	// Add subcommands
	DocumentCommands.AddCommand(getCmd)
	DocumentCommands.AddCommand(submitCmd)
	DocumentCommands.AddCommand(resetCmd)
	DocumentCommands.AddCommand(perfCmd)

	// Add flags specific to submit
	submitCmd.Flags().StringVar(&submitClientID, "client-id", "", "Client identifier of the submitting editor")
	submitCmd.Flags().Int64Var(&submitBaseRev, "base-rev", -1, "Revision the submitted state is based on (required)")

	// Add flags specific to reset
	resetCmd.Flags().StringVar(&resetClientID, "client-id", "", "Client identifier of the resetting editor")
}

// setupDocumentClient initializes the RPC document client
func setupDocumentClient(cmd *cobra.Command, _ []string) error {
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

	// Create the document client
	rpcDocument, err = client.NewRPCDocument(
		documentName,
		*config,
		t,
		s,
	)

	return err
}

var (
	getCmd = &cobra.Command{
		Use:   "get",
		Short: "Reads the current document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := rpcDocument.Read()
			if err != nil {
				return err
			}
			return printDocument(doc)
		},
	}
	submitCmd = &cobra.Command{
		Use:   "submit [payload]",
		Short: "Submits a full replacement document",
		Long:  "Submits a full replacement document as JSON. The submission is only accepted if --base-rev matches the server revision and no other editor holds a valid edit lock.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload document.Document
			if err := payload.Decode([]byte(args[0])); err != nil {
				return fmt.Errorf("invalid payload: %w", err)
			}

			doc, err := rpcDocument.Write(submitClientID, submitBaseRev, payload)
			if err != nil {
				return describeConflict(err)
			}

			fmt.Printf("submitted successfully, now at revision %d\n", doc.Rev())
			return printDocument(doc)
		},
	}
	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Resets the document to the default empty state",
		Long:  "Resets the document to the default empty state at the next revision. The reset passes the same lock admission as a submit but deliberately skips the revision check.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := rpcDocument.Reset(resetClientID)
			if err != nil {
				return describeConflict(err)
			}

			fmt.Printf("reset successfully, now at revision %d\n", doc.Rev())
			return printDocument(doc)
		},
	}
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// printDocument prints a document as JSON
func printDocument(doc document.Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// describeConflict turns the typed coordination errors into actionable
// messages, leaving all other errors untouched
func describeConflict(err error) error {
	cErr := coordinator.AsError(err)
	if cErr == nil {
		return err
	}

	switch cErr.Code {
	case coordinator.RetCLockHeld:
		if cErr.Lock != nil {
			return fmt.Errorf("rejected: %q holds the edit lock until %s",
				cErr.Lock.Owner, cErr.Lock.ExpiresAt.Format(time.RFC3339))
		}
		return fmt.Errorf("rejected: another editor holds the edit lock")
	case coordinator.RetCRevisionConflict:
		return fmt.Errorf("rejected: the document moved to revision %d - re-read and resubmit", cErr.ServerRev)
	default:
		return err
	}
}
