package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/linecheck/internal/store"
	"github.com/roach88/linecheck/internal/suite"
)

// SuiteOptions holds flags for the suite command.
type SuiteOptions struct {
	*RootOptions
	Filter  string
	Jobs    int
	History string

	// IDs overrides the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs suite.IDGenerator

	// Clock overrides time.Now (for testing).
	Clock func() time.Time
}

// NewSuiteCommand creates the suite command.
func NewSuiteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SuiteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "suite <suite-file>",
		Short: "Run every case of a suite file",
		Long: `Run the cases listed in a YAML (.yaml, .yml) or CUE (.cue) suite file, each
under every one of its variants, and print one line per outcome.

Exit codes:
  0 - Every case passed
  1 - One or more cases failed to match
  2 - Command error, or a case could not be checked

Examples:
  linecheck suite attr.yaml
  linecheck suite attr.cue --filter "ibaction*" --jobs 4
  linecheck suite attr.yaml --history .linecheck/history.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run cases whose name matches this glob")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "verifications to run at once (default from config, else 1)")
	cmd.Flags().StringVar(&opts.History, "history", "", "record the report in this history database")

	return cmd
}

func runSuite(opts *SuiteOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg := opts.config()
	log := opts.logger()

	s, err := suite.Load(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, err)
	}

	jobs := cfg.Jobs
	if cmd.Flags().Changed("jobs") {
		jobs = opts.Jobs
	}
	r := &suite.Runner{
		Jobs:       jobs,
		Filter:     opts.Filter,
		Policy:     cfg.Policy,
		Prefix:     cfg.Prefix,
		ExitPolicy: cfg.ExitPolicy,
		Timeout:    cfg.Timeout,
		Logger:     log,
		Clock:      opts.Clock,
		IDs:        opts.IDs,
	}
	report, err := r.Run(cmd.Context(), s)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	history := cfg.History
	if cmd.Flags().Changed("history") {
		history = opts.History
	}
	if history != "" {
		if err := recordReport(cmd, history, report); err != nil {
			return f.Fail(ExitCommandError, ErrCodeHistory, err)
		}
		log.Debug("report recorded", zap.String("db", history), zap.String("run_id", report.RunID))
	}

	return outputReport(f, report)
}

func recordReport(cmd *cobra.Command, path string, report *suite.Report) error {
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer st.Close()
	if err := st.RecordReport(cmd.Context(), report); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

func outputReport(f *OutputFormatter, report *suite.Report) error {
	var exitErr *ExitError
	switch {
	case report.Errored > 0:
		exitErr = &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("%d case(s) could not be checked", report.Errored), Reported: true}
	case report.Failed > 0:
		exitErr = &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d case(s) failed", report.Failed), Reported: true}
	}

	if f.JSON() {
		if exitErr == nil {
			return f.Success(report)
		}
		code := ErrCodeMismatch
		if exitErr.Code == ExitCommandError {
			code = ErrCodeGeneric
		}
		if err := f.Failed(code, exitErr.Message, report); err != nil {
			return err
		}
		return exitErr
	}

	w := f.Writer
	for _, o := range report.Outcomes {
		label := fmt.Sprintf("%s [%s]", o.Case, o.Variant)
		switch o.Status {
		case suite.StatusPass:
			fmt.Fprintf(w, "%s %s\n", passMark(), label)
		case suite.StatusFail:
			fmt.Fprintf(w, "%s %s\n", failMark(), label)
			fmt.Fprint(w, indent(o.Detail, "  "))
		default:
			fmt.Fprintf(w, "%s %s: %s\n", errorMark(), label, o.Reason)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d errored (%d total)\n",
		report.Passed, report.Failed, report.Errored, report.Total())

	if exitErr != nil {
		return exitErr
	}
	return nil
}

// indent prefixes every non-empty line of s.
func indent(s, prefix string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	var b strings.Builder
	for _, l := range lines {
		if l != "" {
			b.WriteString(prefix)
			b.WriteString(l)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
