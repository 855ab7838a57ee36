package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/linecheck/internal/directive"
	"github.com/roach88/linecheck/internal/fixture"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Prefix string
}

// FileValidation is the result for one fixture.
type FileValidation struct {
	Path       string   `json:"path"`
	Valid      bool     `json:"valid"`
	Directives int      `json:"directives"`
	Variants   []string `json:"variants,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <fixture>...",
		Short: "Check directive syntax without running anything",
		Long: `Parse the directives of each fixture and report every malformed one. Faster
than run for development feedback: no tool is launched and nothing is matched.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "directive prefix (default CHECK)")

	return cmd
}

func runValidate(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	prefix := opts.config().Prefix
	if cmd.Flags().Changed("prefix") {
		prefix = opts.Prefix
	}
	ex := directive.NewExtractor(prefix)

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	errCount := 0
	for _, path := range paths {
		fv := validateFile(ex, path)
		if !fv.Valid {
			result.Valid = false
			errCount += len(fv.Errors)
		}
		result.Files = append(result.Files, fv)
	}

	if f.JSON() {
		if result.Valid {
			return f.Success(result)
		}
		if err := f.Failed(ErrCodeParse, fmt.Sprintf("validation failed with %d error(s)", errCount), result); err != nil {
			return err
		}
	} else {
		outputValidateText(f, result)
	}

	if !result.Valid {
		return &ExitError{
			Code:     ExitCommandError,
			Message:  fmt.Sprintf("validation failed with %d error(s)", errCount),
			Reported: true,
		}
	}
	return nil
}

func validateFile(ex *directive.Extractor, path string) FileValidation {
	fv := FileValidation{Path: path}

	fx, err := fixture.Load(path)
	if err != nil {
		fv.Errors = []string{err.Error()}
		return fv
	}

	ds, parseErrs := ex.ExtractAll(fx)
	for _, pe := range parseErrs {
		fv.Errors = append(fv.Errors, pe.Error())
	}
	fv.Valid = len(fv.Errors) == 0
	fv.Directives = len(ds)
	fv.Variants = directive.Variants(ds)
	return fv
}

func outputValidateText(f *OutputFormatter, result ValidationResult) {
	for _, fv := range result.Files {
		if fv.Valid {
			fmt.Fprintf(f.Writer, "%s %s (%d directives)\n", passMark(), fv.Path, fv.Directives)
			continue
		}
		fmt.Fprintf(f.Writer, "%s %s\n", failMark(), fv.Path)
		for _, e := range fv.Errors {
			fmt.Fprintf(f.Writer, "  %s\n", e)
		}
	}
}
