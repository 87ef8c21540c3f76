package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kjsb_flow_app_go/config"
	"kjsb_flow_app_go/services"

	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the local database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Store == nil && opts.Config.Backend != config.BackendLocal {
				return &ExitError{Code: ExitCommandError, Message: "migrate only applies to BACKEND=local"}
			}
			// Opening the local backend migrates it
			if _, err := opts.store(); err != nil {
				return err
			}
			return opts.output(cmd.OutOrStdout(), map[string]string{"status": "ok"}, "database migrated")
		},
	}
}

func newExportCommand(opts *RootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every case to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			buf, err := services.ExportCasesXLSX(cmd.Context(), store)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "export failed", Err: err}
			}
			if out == "" {
				out = fmt.Sprintf("proyek_kjsb_%s.xlsx", time.Now().Format("20060102"))
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return &ExitError{Code: ExitCommandError, Message: "failed to write workbook", Err: err}
			}
			return opts.output(cmd.OutOrStdout(), map[string]string{"file": out}, "wrote "+out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default proyek_kjsb_YYYYMMDD.xlsx)")
	return cmd
}

func newImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Create cases from a workbook laid out like the export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "failed to open workbook", Err: err}
			}
			defer f.Close()

			result, err := services.ImportCasesXLSX(cmd.Context(), store, f)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "import failed", Err: err}
			}
			if result.SuccessCount > 0 {
				services.Cache.Invalidate(cmd.Context())
			}

			text := fmt.Sprintf("%d of %d rows imported", result.SuccessCount, result.TotalProcessed)
			if len(result.Errors) > 0 {
				text += "\n" + strings.Join(result.Errors, "\n")
			}
			if err := opts.output(cmd.OutOrStdout(), result, text); err != nil {
				return err
			}
			if result.FailedCount > 0 {
				return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d rows rejected", result.FailedCount)}
			}
			return nil
		},
	}
}

func newGeoJSONCommand(opts *RootOptions) *cobra.Command {
	var srid string
	cmd := &cobra.Command{
		Use:   "upload-geojson <kode_kjsb> <file.geojson>",
		Short: "Store the boundary of a case like the stage 4 form does",
		Long: `Upload a Polygon/MultiPolygon boundary for one case. The stage 4 fields
already stored on the case are kept.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			existing, err := services.LookupCase(ctx, store, args[0])
			if err != nil {
				return &ExitError{Code: ExitFailure, Message: services.UserMessage(err), Err: err}
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "failed to read file", Err: err}
			}

			upload := services.Stage4Upload{FileName: filepath.Base(args[1]), Data: data, SRID: srid}
			res, err := services.UploadStage4(ctx, store, existing, services.NewDraft(4, existing), upload, opts.Config.MaxUploadBytes)
			if err != nil {
				return &ExitError{Code: ExitFailure, Message: services.UserMessage(err), Err: err}
			}
			return opts.output(cmd.OutOrStdout(), res, res.Message)
		},
	}
	cmd.Flags().StringVar(&srid, "srid", "4326", "coordinate system of the file (4326 or 23835)")
	return cmd
}
