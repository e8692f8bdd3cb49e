package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"benchcore/internal/index"
)

func newScanCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <dir>",
		Short: "Index every result file under a directory into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(opts, cmd, args[0])
		},
	}
}

func runScan(opts *RootOptions, cmd *cobra.Command, dir string) error {
	ctx := cmd.Context()
	store, err := index.Open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	scanner := index.NewScanner(store, opts.diagnostics(cmd.ErrOrStderr()))
	indexed, err := scanner.Scan(ctx, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d result file(s) under %s\n", indexed, dir)
	return nil
}

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	store, err := index.Open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.List(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.Output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	for _, entry := range entries {
		fmt.Fprintf(out, "%s\t%s\t%d rows\t%s\n", entry.Path, entry.Procedure, entry.Rows, entry.Status)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "catalog is empty")
	}
	return nil
}
