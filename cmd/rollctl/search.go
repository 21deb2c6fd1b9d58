package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canvasstrack/voterroll/internal/logging"
	"github.com/canvasstrack/voterroll/internal/models"
	"github.com/canvasstrack/voterroll/internal/report"
	"github.com/canvasstrack/voterroll/internal/search"
)

type searchOptions struct {
	page    int
	limit   int
	asJSON  bool
	details bool
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	so := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search the roll the way the API does",
		Long: `Run a ranked voter search. Latin terms are also matched against their
Devanagari spellings. Terms shorter than the minimum query length list the
roll in serial order.`,
		Example: `  rollctl search akshay
  rollctl search "patil akshay" --limit 5 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, strings.Join(args, " "), so)
		},
	}

	cmd.Flags().IntVar(&so.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&so.limit, "limit", 0, "Results per page (0 uses the default page size)")
	cmd.Flags().BoolVar(&so.asJSON, "json", false, "Print the page as JSON")
	cmd.Flags().BoolVar(&so.details, "variants", false, "Also print the spellings that were searched")
	return cmd
}

func runSearch(cmd *cobra.Command, opts *rootOptions, term string, so *searchOptions) error {
	if so.page < 1 {
		return errors.New("--page must be at least 1")
	}
	if so.limit < 0 {
		return errors.New("--limit must not be negative")
	}

	application, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(application, application.Logger, "application")

	res, err := application.Searcher.Search(cmd.Context(), term, so.page, so.limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if so.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"list":         models.NewScoredVoters(res.Rows, res.Query.Active),
			"page":         res.Page,
			"pageSize":     res.PageSize,
			"totalResults": res.TotalMatches,
			"showing":      res.Showing(),
		})
	}

	if so.details && res.Query.Active {
		fmt.Fprintf(out, "Searched: %s\n", strings.Join(res.Query.Terms(), ", "))
	}
	printVoterTable(cmd, res)
	return nil
}

func printVoterTable(cmd *cobra.Command, res search.Result) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SR\tVOTER ID\tNAME\tNAME (EN)\tAGE\tGENDER\tSTATUS\tSCORE")
	for _, row := range res.Rows {
		age := "-"
		if row.Age.Valid {
			age = strconv.FormatInt(row.Age.Int64, 10)
		}
		status := "-"
		if row.Visited() {
			status = "visited by " + row.VisitedByName.String
		}
		score := "-"
		if res.Query.Active {
			score = strconv.Itoa(row.Score)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.SerialNo, row.VoterID, row.VoterName, row.VoterNameEn,
			age, report.GenderLabel(row.Gender.String), status, score)
	}
	_ = tw.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "Showing %d of %d (page %d)\n", res.Showing(), res.TotalMatches, res.Page)
}
