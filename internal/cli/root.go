// Package cli implements the benchres command line tool: header
// inspection, directory scanning into the result catalog, and archival
// of finished result files.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"benchcore/internal/results"
	"benchcore/pkg/procedure"
)

// RootOptions holds global flags shared by all subcommands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Output     string // "text" | "json"

	registry *procedure.Registry
}

var validOutputs = []string{"text", "json"}

// NewRootCommand creates the benchres root command. reg supplies the
// procedures known to this build for header rehydration.
func NewRootCommand(reg *procedure.Registry) *cobra.Command {
	opts := &RootOptions{registry: reg}

	cmd := &cobra.Command{
		Use:           "benchres",
		Short:         "Inspect, catalog, and archive measurement result files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			valid := false
			for _, o := range validOutputs {
				if o == opts.Output {
					valid = true
				}
			}
			if !valid {
				return fmt.Errorf("invalid output %q: must be one of %v", opts.Output, validOutputs)
			}
			return LoadConfig(opts.ConfigPath)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to benchres.yaml")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Output, "output", "text", "output format (text|json)")

	cmd.AddCommand(newInspectCommand(opts))
	cmd.AddCommand(newScanCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newArchiveCommand(opts))

	return cmd
}

// diagnostics returns a sink writing to w when verbose mode is on.
func (o *RootOptions) diagnostics(w io.Writer) results.Diagnostics {
	if !o.Verbose {
		return results.NopDiagnostics{}
	}
	return writerDiagnostics{w: w}
}

// writerDiagnostics prints one line per event for interactive use.
type writerDiagnostics struct {
	w io.Writer
}

func (d writerDiagnostics) Debug(msg string, args ...any) { d.print("debug", msg, args) }
func (d writerDiagnostics) Info(msg string, args ...any)  { d.print("info", msg, args) }
func (d writerDiagnostics) Warn(msg string, args ...any)  { d.print("warn", msg, args) }
func (d writerDiagnostics) Error(msg string, args ...any) { d.print("error", msg, args) }

func (d writerDiagnostics) print(level, msg string, args []any) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteString(": ")
	b.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	fmt.Fprintln(d.w, b.String())
}
