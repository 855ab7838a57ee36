package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/linecheck/internal/runner"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	MatchOptions

	ExpectExit string
	Timeout    time.Duration
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <fixture> --variant V -- <tool> [args...]",
		Short: "Run a tool on a fixture and check its output",
		Long: `Run the tool under test and check its combined stdout and stderr against the
fixture's directives for one variant.

In tool arguments %s expands to the fixture path, %variant to the variant
and %% to a literal percent sign.

Exit codes:
  0 - The output matched (nothing is printed)
  1 - The output did not match; a report is written to stderr
  2 - Command error (bad directive, tool could not run, etc.)

Examples:
  linecheck run attr.swift --variant ios -- swiftc -typecheck %s -target arm64-apple-ios13
  linecheck run attr.swift --variant macosx --expect-exit failure -- ./compile.sh %s %variant`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.ArgsLenAtDash() != 1 {
				return NewExitError(ExitCommandError, "expected <fixture> -- <tool> [args...]")
			}
			return runTool(opts, args[0], args[1], args[2:], cmd)
		},
	}

	opts.MatchOptions.register(cmd)
	cmd.Flags().StringVar(&opts.ExpectExit, "expect-exit", "", "required exit status: any, success or failure")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "kill the tool after this long (0 disables)")

	return cmd
}

func runTool(opts *RunOptions, fixturePath, tool string, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg := opts.config()

	req, err := opts.request(cmd, opts.RootOptions, fixturePath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	if cmd.Flags().Changed("expect-exit") {
		policy, err := runner.ParseExitPolicy(opts.ExpectExit)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, err)
		}
		req.ExitPolicy = policy
	}

	timeout := cfg.Timeout
	if cmd.Flags().Changed("timeout") {
		timeout = opts.Timeout
	}
	req.Invocation = &runner.Invocation{
		Tool:    tool,
		Args:    args,
		Timeout: timeout,
	}

	return verifyAndReport(cmd.Context(), opts.RootOptions, f, req)
}
