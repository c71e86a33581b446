// Command notifier performs one overdue-reminder run and prints the result as
// JSON. It exits non-zero when the run fails, so a cron or Cloud Scheduler
// job can alert on it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"roadlines/internal/app"
	"roadlines/internal/config"
	"roadlines/internal/service"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code. Deferred cleanup, including the New
// Relic flush, happens before main exits.
func run() int {
	cfg := config.Load()

	timeout := cfg.Notifier.RunTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	nrApp := app.NewNewRelic(cfg.NewRelic)
	if nrApp != nil {
		defer nrApp.Shutdown(10 * time.Second)
		_ = nrApp.WaitForConnection(5 * time.Second)
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		err = fmt.Errorf("failed to connect to database: %w", err)
		if nrApp != nil {
			nrApp.RecordCustomEvent("NotifierRunFailed", map[string]any{"error": err.Error()})
		}
		log.Print(err)
		writeResult(os.Stdout, failedResult(err))
		return 1
	}
	defer db.Close()

	// Redis is only needed for the dedup ledger.
	redisClient := app.OptionalRedisClient(ctx, cfg, nrApp)
	if redisClient != nil {
		defer redisClient.Close()
	}

	notifier := app.NewNotifier(ctx, cfg, db, redisClient, nrApp)

	result, runErr := notifier.Run(ctx)
	if result == nil && runErr != nil {
		result = failedResult(runErr)
	}
	writeResult(os.Stdout, result)

	if runErr != nil {
		log.Printf("notifier run failed: %v", runErr)
		return 1
	}
	return 0
}

// failedResult is the result reported when a run cannot complete.
func failedResult(err error) *service.RunResult {
	return &service.RunResult{Success: false, Error: err.Error(), Results: []service.MessageResult{}}
}

func writeResult(w io.Writer, result *service.RunResult) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Printf("failed to encode result: %v", err)
	}
}
