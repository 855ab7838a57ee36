package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/linecheck/internal/diagline"
	"github.com/roach88/linecheck/internal/harness"
	"github.com/roach88/linecheck/internal/matcher"
)

// MatchOptions holds the matching flags shared by run and check.
type MatchOptions struct {
	Variant             string
	Prefix              string
	IgnoreUnclaimed     bool
	UnclaimedSeverities []string
}

func (m *MatchOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&m.Variant, "variant", "", "platform variant whose directives are checked (required)")
	cmd.Flags().StringVar(&m.Prefix, "prefix", "", "directive prefix (default CHECK)")
	cmd.Flags().BoolVar(&m.IgnoreUnclaimed, "ignore-unclaimed", false, "allow diagnostics no directive matches")
	cmd.Flags().StringSliceVar(&m.UnclaimedSeverities, "unclaimed-severity", nil, "only these severities must be claimed (repeatable)")
	_ = cmd.MarkFlagRequired("variant")
}

// request builds a harness request from the flags, falling back to the
// project configuration for anything not given on the command line.
func (m *MatchOptions) request(cmd *cobra.Command, root *RootOptions, fixturePath string) (harness.Request, error) {
	cfg := root.config()

	req := harness.Request{
		FixturePath: fixturePath,
		Variant:     m.Variant,
		Prefix:      cfg.Prefix,
		ExitPolicy:  cfg.ExitPolicy,
		Policy:      cfg.Policy,
	}
	if cmd.Flags().Changed("prefix") {
		req.Prefix = m.Prefix
	}
	if m.IgnoreUnclaimed {
		req.Policy.Exhaustive = false
	}
	if cmd.Flags().Changed("unclaimed-severity") {
		sevs, err := diagline.ParseSeverities(m.UnclaimedSeverities)
		if err != nil {
			return harness.Request{}, err
		}
		req.Policy.UnclaimedSeverities = sevs
	}
	return req, nil
}

// MatchResult is the JSON payload of run and check.
type MatchResult struct {
	Fixture    string           `json:"fixture"`
	Variant    string           `json:"variant"`
	Passed     bool             `json:"passed"`
	Directives int              `json:"directives"`
	Ran        bool             `json:"ran"`
	ExitCode   int              `json:"exit_code,omitempty"`
	Failure    *matcher.Failure `json:"failure,omitempty"`
	Report     string           `json:"report,omitempty"`
}

// verifyAndReport runs the request and writes the outcome. A passing text
// run prints nothing.
func verifyAndReport(ctx context.Context, root *RootOptions, f *OutputFormatter, req harness.Request) error {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := harness.Verify(ctx, req, harness.WithLogger(root.logger()))
	if err != nil {
		return f.Fail(ExitCommandError, errorCode(err), err)
	}
	return reportResult(f, res)
}

func reportResult(f *OutputFormatter, res *harness.Result) error {
	if f.JSON() {
		out := MatchResult{
			Fixture:    res.Fixture,
			Variant:    res.Variant,
			Passed:     res.Passed(),
			Directives: len(res.Directives),
			Ran:        res.Ran,
			ExitCode:   res.ExitCode,
			Failure:    res.Failure,
		}
		if res.Passed() {
			return f.Success(out)
		}
		out.Report = res.Failure.Error()
		if err := f.Failed(ErrCodeMismatch, res.Failure.Reason(), out); err != nil {
			return err
		}
		return mismatch(res)
	}

	if res.Passed() {
		return nil
	}
	if err := harness.RenderFailure(f.GetErrWriter(), res); err != nil {
		return err
	}
	return mismatch(res)
}

func mismatch(res *harness.Result) error {
	return &ExitError{
		Code:     ExitFailure,
		Message:  "match failed",
		Err:      res.Failure,
		Reported: true,
	}
}

// openInput opens a captured-output file, or stdin for "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	file, err := openFile(path)
	if err != nil {
		return nil, err
	}
	return file, nil
}
