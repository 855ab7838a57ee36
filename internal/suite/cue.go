package suite

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSource string

// CUEError is a suite file error with its CUE source position.
type CUEError struct {
	Message string
	Pos     token.Pos
}

func (e *CUEError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// parseCUE compiles the file, unifies it with #Suite and decodes the result.
// The file's fields are at the top level, not under a #Suite label.
func parseCUE(path string, data []byte) (*Suite, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling suite schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Suite")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var s Suite
	if err := unified.Decode(&s); err != nil {
		return nil, formatCUEError(err)
	}
	return &s, nil
}

// formatCUEError keeps the first error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	cerr := &CUEError{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		cerr.Pos = positions[0]
	}
	return cerr
}
