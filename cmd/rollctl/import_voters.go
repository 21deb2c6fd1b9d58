package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/canvasstrack/voterroll/internal/logging"
	"github.com/canvasstrack/voterroll/internal/rollimport"
)

func newImportVotersCmd(opts *rootOptions) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import-voters <csv-file>",
		Short: "Load an electoral roll from a CSV file",
		Long: `Load voters from a CSV file with a header row. The voter_id, serial_no and
voter_name columns are required; voter_name_en, relative_name, house_no,
age, gender and booth_id are optional.

By default the voters are appended to the roll. With --replace the whole
roll is swapped in one transaction. Visit marks are kept either way.`,
		Example: `  rollctl import-voters roll.csv
  rollctl import-voters roll.csv --replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportVoters(cmd, opts, args[0], replace)
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the existing roll instead of appending")
	return cmd
}

func runImportVoters(cmd *cobra.Command, opts *rootOptions, path string, replace bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open roll file: %w", err)
	}
	defer logging.SafeCloseWithLogging(f, slog.Default(), "roll file")

	voters, err := rollimport.ReadVoters(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	application, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(application, application.Logger, "application")

	ctx := cmd.Context()
	if replace {
		err = application.DB.ReplaceVoters(ctx, voters)
	} else {
		err = application.DB.BulkInsertVoters(ctx, voters)
	}
	if err != nil {
		return fmt.Errorf("failed to import voters: %w", err)
	}

	verb := "Imported"
	if replace {
		verb = "Replaced roll with"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d voters\n", verb, len(voters))

	counts, err := application.DB.TableCounts(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Roll holds %d voters, %d marked visited\n", counts["voters"], counts["voter_visits"])
	return nil
}
