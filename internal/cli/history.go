package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/linecheck/internal/store"
	"github.com/roach88/linecheck/internal/suite"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	RunID    string
	Case     string
	Variant  string
	Limit    int
}

// RunDetail is the JSON payload of history --run.
type RunDetail struct {
	Run      store.Run       `json:"run"`
	Outcomes []store.Outcome `json:"outcomes"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded suite runs",
		Long: `Show suite runs recorded with suite --history.

Without selectors the most recent runs are listed. --run shows one run's
outcomes; --case with --variant shows how one case fared across runs.

Examples:
  linecheck history --db .linecheck/history.db
  linecheck history --db .linecheck/history.db --run 0190a5c4-...
  linecheck history --db .linecheck/history.db --case ibaction --variant ios`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "history database (default from config)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show the outcomes of this run")
	cmd.Flags().StringVar(&opts.Case, "case", "", "show the history of this case (needs --variant)")
	cmd.Flags().StringVar(&opts.Variant, "variant", "", "variant for --case")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "most recent entries to show (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	path := opts.config().History
	if cmd.Flags().Changed("db") {
		path = opts.Database
	}
	if path == "" {
		return f.Fail(ExitCommandError, ErrCodeGeneric, errors.New("no history database: pass --db or set [suite].history"))
	}
	if opts.RunID != "" && opts.Case != "" {
		return f.Fail(ExitCommandError, ErrCodeGeneric, errors.New("--run and --case are mutually exclusive"))
	}
	if (opts.Case == "") != (opts.Variant == "") {
		return f.Fail(ExitCommandError, ErrCodeGeneric, errors.New("--case and --variant must be given together"))
	}
	if _, err := os.Stat(path); err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("history database not found: %s", path))
	}

	st, err := store.OpenReadOnly(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeHistory, err)
	}
	defer st.Close()

	ctx := cmd.Context()
	switch {
	case opts.RunID != "":
		run, err := st.ReadRun(ctx, opts.RunID)
		if err != nil {
			code := ErrCodeHistory
			if errors.Is(err, store.ErrRunNotFound) {
				code = ErrCodeNotFound
			}
			return f.Fail(ExitCommandError, code, err)
		}
		outcomes, err := st.ReadOutcomes(ctx, opts.RunID)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeHistory, err)
		}
		if f.JSON() {
			return f.Success(RunDetail{Run: run, Outcomes: outcomes})
		}
		printRunDetail(f, run, outcomes)

	case opts.Case != "":
		outcomes, err := st.CaseHistory(ctx, opts.Case, opts.Variant, opts.Limit)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeHistory, err)
		}
		if f.JSON() {
			return f.Success(outcomes)
		}
		printCaseHistory(f, outcomes)

	default:
		runs, err := st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeHistory, err)
		}
		if f.JSON() {
			return f.Success(runs)
		}
		printRuns(f, runs)
	}
	return nil
}

func statusMark(s suite.Status) string {
	switch s {
	case suite.StatusPass:
		return passMark()
	case suite.StatusFail:
		return failMark()
	}
	return errorMark()
}

func printRuns(f *OutputFormatter, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tSUITE\tSTARTED\tPASSED\tFAILED\tERRORED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.Seq, r.ID, r.Suite, r.StartedAt.Format(time.RFC3339), r.Passed, r.Failed, r.Errored)
	}
	tw.Flush()
}

func printRunDetail(f *OutputFormatter, run store.Run, outcomes []store.Outcome) {
	fmt.Fprintf(f.Writer, "run %s (#%d) of %s at %s\n", run.ID, run.Seq, run.Suite, run.StartedAt.Format(time.RFC3339))
	for _, o := range outcomes {
		fmt.Fprintf(f.Writer, "%s %s [%s]", statusMark(o.Status), o.Case, o.Variant)
		if o.Reason != "" {
			fmt.Fprintf(f.Writer, ": %s", o.Reason)
		}
		fmt.Fprintln(f.Writer)
	}
	fmt.Fprintf(f.Writer, "\n%d passed, %d failed, %d errored\n", run.Passed, run.Failed, run.Errored)
}

func printCaseHistory(f *OutputFormatter, outcomes []store.Outcome) {
	if len(outcomes) == 0 {
		fmt.Fprintln(f.Writer, "No outcomes recorded.")
		return
	}
	for _, o := range outcomes {
		fmt.Fprintf(f.Writer, "#%d %s %s %s", o.RunSeq, o.StartedAt.Format(time.RFC3339), statusMark(o.Status), o.Status)
		if o.FixtureDigest != "" {
			fmt.Fprintf(f.Writer, " fixture %s", shortDigest(o.FixtureDigest))
		}
		if o.Reason != "" {
			fmt.Fprintf(f.Writer, ": %s", o.Reason)
		}
		fmt.Fprintln(f.Writer)
	}
}

// shortDigest abbreviates a fixture digest for display.
func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
