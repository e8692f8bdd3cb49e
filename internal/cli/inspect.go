package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"benchcore/internal/results"
)

// inspectReport is the JSON shape of `benchres inspect`.
type inspectReport struct {
	Path       string            `json:"path"`
	Format     string            `json:"format"`
	Procedure  string            `json:"procedure"`
	Known      bool              `json:"known"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Columns    []string          `json:"columns,omitempty"`
	Rows       int               `json:"rows"`
}

func newInspectCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the header and shape of a result file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, cmd, args[0])
		},
	}
}

func runInspect(opts *RootOptions, cmd *cobra.Command, path string) error {
	diag := opts.diagnostics(cmd.ErrOrStderr())
	header, format, err := results.DecodeHeaderFile(path)
	if err != nil {
		return err
	}
	rehydrated, err := results.Rehydrate(opts.registry, header, diag)
	if err != nil {
		return err
	}
	rows, err := results.CountRows(path)
	if err != nil {
		return err
	}
	columns, err := results.ReadColumns(path)
	if err != nil {
		return err
	}

	report := inspectReport{
		Path:       path,
		Format:     string(format),
		Procedure:  header.Identity.String(),
		Known:      rehydrated.Known,
		Parameters: make(map[string]string, len(header.Params)),
		Columns:    columns,
		Rows:       rows,
	}
	for _, p := range header.Params {
		report.Parameters[p.Name] = p.Value
	}

	out := cmd.OutOrStdout()
	if opts.Output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "File:      %s (%s)\n", report.Path, report.Format)
	fmt.Fprintf(out, "Procedure: %s", report.Procedure)
	if !report.Known {
		fmt.Fprint(out, " (unregistered)")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows:      %d\n", report.Rows)
	fmt.Fprintln(out, "Parameters:")
	for _, p := range header.Params {
		fmt.Fprintf(out, "  %s: %s\n", p.Name, p.Value)
	}
	fmt.Fprintf(out, "Columns:   %v\n", report.Columns)
	return nil
}
