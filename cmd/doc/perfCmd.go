package doc

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ValentinKolb/bracketd/cmd/util"
	"github.com/ValentinKolb/bracketd/lib/coordinator"
	"github.com/ValentinKolb/bracketd/lib/document"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	gometrics "github.com/rcrowley/go-metrics"
)

var (
	perfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for bracketd servers",
		Long:    "Runs a mixed read/submit load against the configured document and reports latency and conflict statistics. Submissions race on purpose: every worker reads, modifies and resubmits, so revision conflicts are part of the measured workload.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfNumWorkers  = 10
	perfDurationSec = 10
)

func init() {
	// add flags
	key := "workers"
	perfCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent workers"))
	key = "duration"
	perfCmd.Flags().Int(key, 10, util.WrapString("How long to run the load in seconds"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfNumWorkers = viper.GetInt("workers")
	perfDurationSec = viper.GetInt("duration")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for bracketd servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Document: %s\n", util.GetDocumentName())
	fmt.Printf("Workers: %d\n", perfNumWorkers)
	fmt.Printf("Duration: %ds\n", perfDurationSec)
	fmt.Println()

	// Create the metrics registry
	registry := gometrics.NewRegistry()
	readTimer := gometrics.GetOrRegisterTimer("read", registry)
	submitTimer := gometrics.GetOrRegisterTimer("submit", registry)
	inspectTimer := gometrics.GetOrRegisterTimer("lock.inspect", registry)
	acceptedCounter := gometrics.GetOrRegisterCounter("submit.accepted", registry)
	conflictCounter := gometrics.GetOrRegisterCounter("submit.conflicts", registry)
	lockedCounter := gometrics.GetOrRegisterCounter("submit.locked", registry)
	errorCounter := gometrics.GetOrRegisterCounter("errors", registry)

	fmt.Println("starting load...")

	deadline := time.Now().Add(time.Duration(perfDurationSec) * time.Second)
	var wg sync.WaitGroup

	for worker := 0; worker < perfNumWorkers; worker++ {
		wg.Add(1)
		clientID := fmt.Sprintf("perf-worker-%d", worker)

		go func() {
			defer wg.Done()

			for time.Now().Before(deadline) {

				// Read the current document
				var current document.Document
				var err error
				readTimer.Time(func() {
					current, err = rpcDocument.Read()
				})
				if err != nil {
					errorCounter.Inc(1)
					continue
				}

				// Inspect the lock the way a polling editor would
				inspectTimer.Time(func() {
					rpcDocument.Lock().Inspect()
				})

				// Modify and resubmit against the revision just read
				payload := current.WithRev(0)
				payload["players"] = []interface{}{clientID}

				submitTimer.Time(func() {
					_, err = rpcDocument.Write(clientID, current.Rev(), payload)
				})

				if err == nil {
					acceptedCounter.Inc(1)
					continue
				}

				// Classify the rejection
				if cErr := coordinator.AsError(err); cErr != nil {
					switch cErr.Code {
					case coordinator.RetCRevisionConflict:
						conflictCounter.Inc(1)
						continue
					case coordinator.RetCLockHeld:
						lockedCounter.Inc(1)
						continue
					}
				}
				errorCounter.Inc(1)
			}
		}()
	}

	wg.Wait()

	// Print the collected metrics
	fmt.Println()
	fmt.Println("Results:")
	printTimer("read", readTimer)
	printTimer("submit", submitTimer)
	printTimer("lock.inspect", inspectTimer)
	fmt.Println()
	fmt.Printf("%-20s%d\n", "accepted", acceptedCounter.Count())
	fmt.Printf("%-20s%d\n", "conflicts", conflictCounter.Count())
	fmt.Printf("%-20s%d\n", "locked out", lockedCounter.Count())
	fmt.Printf("%-20s%d\n", "errors", errorCounter.Count())

	// Full registry dump for anyone who wants the raw numbers
	fmt.Println()
	gometrics.WriteOnce(registry, os.Stdout)

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// printTimer prints the summary of one operation timer
func printTimer(name string, timer gometrics.Timer) {
	if timer.Count() == 0 {
		fmt.Printf("%-20sskipped\n", name)
		return
	}

	ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})
	fmt.Printf("%-20s%d ops\t%.0f ops/sec\tp50 %s\tp95 %s\tp99 %s\n",
		name,
		timer.Count(),
		timer.RateMean(),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		time.Duration(ps[2]),
	)
}
