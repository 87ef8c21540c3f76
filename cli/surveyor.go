package cli

import (
	"fmt"
	"strings"

	"kjsb_flow_app_go/services"

	"github.com/spf13/cobra"
)

func newSurveyorCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surveyor",
		Short: "Manage surveyors",
	}
	cmd.AddCommand(newSurveyorAddCommand(opts))
	cmd.AddCommand(newSurveyorListCommand(opts))
	return cmd
}

func newSurveyorAddCommand(opts *RootOptions) *cobra.Command {
	var in services.SurveyorInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a surveyor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			created, err := services.CreateSurveyor(cmd.Context(), store, in)
			if err != nil {
				return &ExitError{Code: ExitFailure, Message: services.UserMessage(err), Err: err}
			}
			return opts.output(cmd.OutOrStdout(), created, fmt.Sprintf("%s\t%s", created.ID, created.Nama))
		},
	}
	cmd.Flags().StringVar(&in.Name, "nama", "", "surveyor name (required)")
	cmd.Flags().StringVar(&in.Phone, "hp", "", "phone number")
	cmd.Flags().StringVar(&in.License, "lisensi", "", "license number")
	return cmd
}

func newSurveyorListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List surveyors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			surveyors, err := store.ListSurveyors(cmd.Context())
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "failed to list surveyors", Err: err}
			}
			lines := make([]string, 0, len(surveyors))
			for _, s := range surveyors {
				line := s.ID + "\t" + s.Nama
				if s.Lisensi != nil {
					line += "\t" + *s.Lisensi
				}
				lines = append(lines, line)
			}
			return opts.output(cmd.OutOrStdout(), surveyors, strings.Join(lines, "\n"))
		},
	}
}
