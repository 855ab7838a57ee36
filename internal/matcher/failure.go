package matcher

import (
	"fmt"
	"strings"

	"github.com/roach88/linecheck/internal/diagline"
	"github.com/roach88/linecheck/internal/directive"
)

// Kind classifies a match failure.
type Kind string

const (
	// KindMissing: a must-match directive found no line.
	KindMissing Kind = "missing"
	// KindForbidden: a must-not-match pattern occurred in the output.
	KindForbidden Kind = "forbidden"
	// KindUnclaimed: a diagnostic line was not claimed by any directive.
	KindUnclaimed Kind = "unclaimed"
	// KindExitStatus: the tool's exit status violated the exit policy.
	KindExitStatus Kind = "exit-status"
)

// Failure describes the first mismatch found. It implements error.
type Failure struct {
	Kind Kind `json:"kind"`

	// Directive is the offending directive. Nil for KindUnclaimed and
	// KindExitStatus.
	Directive *directive.Directive `json:"directive,omitempty"`

	// Line is the offending output line for KindForbidden and KindUnclaimed.
	Line *diagline.Line `json:"line,omitempty"`

	// After is the line claimed by the previous must-match directive, the
	// point from which KindMissing searched.
	After *diagline.Line `json:"after,omitempty"`

	// Early is set for KindMissing when the pattern does occur, but before
	// After: the directives are out of order.
	Early *diagline.Line `json:"early,omitempty"`

	// Detail carries free-form context, e.g. the exit status.
	Detail string `json:"detail,omitempty"`
}

// Reason is a one-line summary without locations.
func (f *Failure) Reason() string {
	switch f.Kind {
	case KindMissing:
		if f.Early != nil {
			return "expected pattern found only out of order"
		}
		return "expected pattern not found in output"
	case KindForbidden:
		return "forbidden pattern found in output"
	case KindUnclaimed:
		return "diagnostic not matched by any directive"
	case KindExitStatus:
		return "unexpected exit status"
	}
	return "match failed"
}

// Error renders the failure on one or more lines, location first.
func (f *Failure) Error() string {
	var b strings.Builder

	switch {
	case f.Directive != nil:
		fmt.Fprintf(&b, "%s: %s", f.Directive.Location(), f.Reason())
		fmt.Fprintf(&b, "\n  %s", f.Directive.String())
	case f.Line != nil:
		fmt.Fprintf(&b, "output:%d: %s", f.Line.Number, f.Reason())
	default:
		b.WriteString(f.Reason())
	}

	if d := f.Directive; d != nil && d.Pattern.Text != d.RawPattern {
		fmt.Fprintf(&b, "\n  pattern: %s", d.Pattern.Text)
	}
	if f.Line != nil {
		fmt.Fprintf(&b, "\n  output:%d: %s", f.Line.Number, f.Line.Text)
	}
	if f.Early != nil {
		fmt.Fprintf(&b, "\n  matched output:%d, before output:%d claimed by the previous directive", f.Early.Number, f.After.Number)
	} else if f.After != nil && f.Kind == KindMissing {
		fmt.Fprintf(&b, "\n  searched after output:%d", f.After.Number)
	}
	if f.Detail != "" {
		fmt.Fprintf(&b, "\n  %s", f.Detail)
	}
	return b.String()
}
