package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	MatchOptions

	Input string
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <fixture> --variant V [--input FILE]",
		Short: "Check captured tool output against a fixture",
		Long: `Check output that was captured earlier, read from a file or standard input,
against the fixture's directives for one variant. No tool is run and the exit
policy does not apply.

Examples:
  swiftc -typecheck attr.swift 2>&1 | linecheck check attr.swift --variant ios
  linecheck check attr.swift --variant macosx --input build/attr.log`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	opts.MatchOptions.register(cmd)
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "-", "captured output file (- for stdin)")

	return cmd
}

func runCheck(opts *CheckOptions, fixturePath string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	req, err := opts.request(cmd, opts.RootOptions, fixturePath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	in, err := openInput(cmd, opts.Input)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, err)
	}
	defer in.Close()
	req.Output = in

	return verifyAndReport(cmd.Context(), opts.RootOptions, f, req)
}

func openFile(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("input file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return file, nil
}
