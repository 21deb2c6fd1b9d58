package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/canvasstrack/voterroll/internal/logging"
	"github.com/canvasstrack/voterroll/internal/report"
)

const reportTitle = "Voters List Report"

func newExportPDFCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export-pdf",
		Short: "Write the canvassing progress report",
		Long: `Write the same PDF report the admin download serves: per-canvasser
marking statistics followed by the complete voter list.`,
		Example: `  rollctl export-pdf
  rollctl export-pdf -o ward12.pdf --font NotoSansDevanagari-Regular.ttf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportPDF(cmd, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to a timestamped name)")
	return cmd
}

func runExportPDF(cmd *cobra.Command, opts *rootOptions, output string) error {
	application, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(application, application.Logger, "application")

	ctx := cmd.Context()
	users, err := application.Canvass.UserWiseStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load user statistics: %w", err)
	}
	voters, err := application.Canvass.FullList(ctx)
	if err != nil {
		return fmt.Errorf("failed to load voters: %w", err)
	}

	now := application.Clock.Now()
	if output == "" {
		output = report.Filename(now)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}

	err = application.Reports.Render(f, report.Report{
		Title:       reportTitle,
		GeneratedAt: now,
		Users:       users,
		Voters:      voters,
	})
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write %s: %w", output, closeErr)
	}
	if err != nil {
		if rmErr := os.Remove(output); rmErr != nil {
			logging.LogError(slog.Default(), "failed to remove partial report", rmErr, slog.String("path", output))
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d voters)\n", output, len(voters))
	return nil
}
