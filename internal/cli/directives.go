package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/linecheck/internal/directive"
	"github.com/roach88/linecheck/internal/fixture"
)

// DirectivesOptions holds flags for the directives command.
type DirectivesOptions struct {
	*RootOptions
	Variant string
	Prefix  string
}

// DirectivesResult is the JSON payload of the directives command.
type DirectivesResult struct {
	Fixture    string                `json:"fixture"`
	Variants   []string              `json:"variants"`
	Directives []directive.Directive `json:"directives"`
}

// NewDirectivesCommand creates the directives command.
func NewDirectivesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DirectivesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "directives <fixture>",
		Short: "List the directives in a fixture",
		Long: `List the directives extracted from a fixture, in file order, with their
resolved patterns. With --variant only that variant's directives are shown.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDirectives(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Variant, "variant", "", "only list this variant's directives")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "directive prefix (default CHECK)")

	return cmd
}

func runDirectives(opts *DirectivesOptions, fixturePath string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	prefix := opts.config().Prefix
	if cmd.Flags().Changed("prefix") {
		prefix = opts.Prefix
	}

	fx, err := fixture.Load(fixturePath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, err)
	}
	ds, err := directive.NewExtractor(prefix).Extract(fx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeParse, err)
	}
	variants := directive.Variants(ds)
	if opts.Variant != "" {
		ds = directive.Select(ds, opts.Variant)
	}
	if ds == nil {
		ds = []directive.Directive{}
	}

	if f.JSON() {
		return f.Success(DirectivesResult{Fixture: fixturePath, Variants: variants, Directives: ds})
	}

	w := f.Writer
	if len(ds) == 0 {
		fmt.Fprintln(w, "No directives found.")
		return nil
	}
	for _, d := range ds {
		fmt.Fprintf(w, "%s\t%s\n", d.Location(), d.String())
		if d.Pattern.Text != d.RawPattern {
			fmt.Fprintf(w, "\tpattern: %s\n", d.Pattern.Text)
		}
	}
	if opts.Variant == "" {
		fmt.Fprintf(w, "\nvariants: %s\n", strings.Join(variants, ", "))
	}
	return nil
}
