package main

import (
	"fmt"
	"time"

	syncapp "github.com/exportdesk/backend/internal/application/sync"
	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/spf13/cobra"
)

var (
	syncResource string
	syncFull     bool
	syncSince    string
	runsLimit    int
)

// syncCmd runs one sync from the commerce store
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull orders or products from the commerce store",
	Long: `Run one sync in the foreground. The run takes the same lock as the
server, so it fails with a conflict while another run holds it.`,
	RunE: runSync,
}

// runsCmd lists recent sync runs
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent sync runs",
	RunE:  runRuns,
}

func init() {
	syncCmd.Flags().StringVarP(&syncResource, "resource", "r", string(commerce.ResourceOrders), "orders or products")
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "Ignore the last successful run and pull everything")
	syncCmd.Flags().StringVar(&syncSince, "since", "", "Pull records updated after this RFC 3339 time")

	runsCmd.Flags().StringVarP(&syncResource, "resource", "r", "", "Only runs for orders or products")
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum runs to show")
}

func parseSyncRequest() (syncapp.SyncRequest, error) {
	req := syncapp.SyncRequest{
		Resource: commerce.Resource(syncResource),
		Full:     syncFull,
		Trigger:  commerce.TriggerCLI,
	}
	if !req.Resource.IsValid() {
		return req, fmt.Errorf("unknown resource %q (want orders or products)", syncResource)
	}
	if syncSince != "" {
		t, err := time.Parse(time.RFC3339, syncSince)
		if err != nil {
			return req, fmt.Errorf("--since: %w", err)
		}
		req.Since = &t
	}
	return req, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	req, err := parseSyncRequest()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	return withApp(ctx, func(a *app) error {
		summary, err := a.sync.Run(ctx, req)
		if summary != nil {
			if werr := writeSummary(cmd.OutOrStdout(), summary); werr != nil {
				return werr
			}
		}
		return err
	})
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	return withApp(ctx, func(a *app) error {
		runs, err := a.sync.ListRuns(ctx, syncapp.RunListFilter{
			Resource: commerce.Resource(syncResource),
			Limit:    runsLimit,
		})
		if err != nil {
			return err
		}
		return writeRuns(cmd.OutOrStdout(), runs)
	})
}
