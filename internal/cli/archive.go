package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"benchcore/internal/archive"
	"benchcore/internal/blob"
	"benchcore/internal/index"
)

func newArchiveCommand(opts *RootOptions) *cobra.Command {
	var requestedBy string
	cmd := &cobra.Command{
		Use:   "archive <file>...",
		Short: "Upload finished result files to blob storage and catalog them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(opts, cmd, args, requestedBy)
		},
	}
	cmd.Flags().StringVar(&requestedBy, "requested-by", "", "actor recorded in the audit trail")
	return cmd
}

func runArchive(opts *RootOptions, cmd *cobra.Command, paths []string, requestedBy string) error {
	ctx := cmd.Context()
	store, err := blob.Open(ctx)
	if err != nil {
		return err
	}
	catalog, err := index.Open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = catalog.Close() }()

	worker := archive.NewWorker(store, catalog, nil, opts.diagnostics(cmd.ErrOrStderr()))
	worker.Start()
	defer func() { _ = worker.Stop(ctx) }()

	ids := make([]string, 0, len(paths))
	for _, path := range paths {
		record, err := worker.Enqueue(ctx, archive.Input{Path: path, RequestedBy: requestedBy})
		if err != nil {
			return err
		}
		ids = append(ids, record.ID)
	}

	records := make([]archive.Record, 0, len(ids))
	for _, id := range ids {
		record, err := waitForArchive(worker, id)
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	out := cmd.OutOrStdout()
	if opts.Output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	for _, record := range records {
		fmt.Fprintf(out, "%s -> %s (%d bytes)\n", record.Path, record.Key, record.SizeBytes)
	}
	return nil
}

func waitForArchive(worker *archive.Worker, id string) (archive.Record, error) {
	for {
		record, ok := worker.Get(id)
		if !ok {
			return archive.Record{}, fmt.Errorf("archive job %s vanished", id)
		}
		switch record.Status {
		case archive.StatusSucceeded:
			return record, nil
		case archive.StatusFailed:
			return archive.Record{}, fmt.Errorf("archive %s: %s", record.Path, record.Error)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
