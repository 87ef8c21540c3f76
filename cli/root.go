// Package cli implements kjsbctl, the office maintenance tool.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"kjsb_flow_app_go/config"
	"kjsb_flow_app_go/logger"
	"kjsb_flow_app_go/services"
	"kjsb_flow_app_go/services/backend"

	"github.com/spf13/cobra"
)

// Exit codes for kjsbctl
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // some rows or inputs were rejected
	ExitCommandError = 2 // bad flags, unreachable backend
)

// ExitError carries the process exit code of a failed command
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// GetExitCode returns the exit code for err, ExitFailure when unknown
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// RootOptions holds global flags and the lazily opened backend
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	Config *config.Config
	Store  backend.Store
	flush  func()
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the kjsbctl root command
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kjsbctl",
		Short:         "KJSB tracker maintenance",
		Long:          "Maintenance commands for the KJSB case tracker: office password, workbook import/export, boundary uploads and surveyors.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)}
			}
			if opts.Config == nil {
				opts.Config = config.Load()
			}
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}
			_, flush, err := logger.Install(level, "console", "kjsbctl")
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "failed to build logger", Err: err}
			}
			opts.flush = flush
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.flush != nil {
				opts.flush()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newHashPasswordCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newGeoJSONCommand(opts))
	cmd.AddCommand(newSurveyorCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// store opens the configured backend on first use
func (o *RootOptions) store() (backend.Store, error) {
	if o.Store != nil {
		return o.Store, nil
	}
	if err := services.InitializeBackend(o.Config); err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "failed to open backend", Err: err}
	}
	o.Store = services.Backend
	services.InitializeCache(o.Config)
	services.InitializeStorage(o.Config)
	return o.Store, nil
}

// output writes v as JSON or the text line
func (o *RootOptions) output(w io.Writer, v interface{}, text string) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
