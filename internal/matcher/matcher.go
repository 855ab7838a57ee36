// Package matcher checks captured tool output against a variant's directives.
//
// Matching runs in three passes and stops at the first failure:
//
//  1. Must-match directives, in order. Each claims the first remaining output
//     line that contains its pattern. Lines may be skipped; the directives may
//     not be satisfied out of order.
//  2. Must-not-match directives. Any occurrence on any output line fails,
//     regardless of position or of whether the line was claimed.
//  3. Exhaustiveness (when enabled). Every diagnostic line must have been
//     claimed in pass 1.
package matcher

import (
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/linecheck/internal/diagline"
	"github.com/roach88/linecheck/internal/directive"
)

// Policy configures the matcher.
type Policy struct {
	// Exhaustive requires every diagnostic line to be claimed by a directive.
	Exhaustive bool

	// UnclaimedSeverities restricts the exhaustiveness check to these
	// severities. Empty means every severity.
	UnclaimedSeverities []diagline.Severity

	// Normalize compares text in Unicode NFC form.
	Normalize bool
}

// DefaultPolicy is strict exhaustiveness with normalization.
func DefaultPolicy() Policy {
	return Policy{Exhaustive: true, Normalize: true}
}

func (p Policy) counts(sev diagline.Severity) bool {
	if len(p.UnclaimedSeverities) == 0 {
		return true
	}
	for _, s := range p.UnclaimedSeverities {
		if s == sev {
			return true
		}
	}
	return false
}

// Match verifies lines against ds. It returns nil when every check passes.
// ds must already be restricted to one variant.
func Match(ds []directive.Directive, lines []diagline.Line, p Policy) *Failure {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
		if p.Normalize {
			texts[i] = norm.NFC.String(l.Text)
		}
	}

	claimed := make([]bool, len(lines))
	cursor := 0
	for i := range ds {
		d := &ds[i]
		if d.Polarity != directive.MustMatch {
			continue
		}
		f := d.Pattern.Finder(p.Normalize)

		found := -1
		for j := cursor; j < len(lines); j++ {
			if f.Match(texts[j]) {
				found = j
				break
			}
		}
		if found < 0 {
			return missing(d, f, lines, texts, cursor)
		}
		claimed[found] = true
		cursor = found + 1
	}

	for i := range ds {
		d := &ds[i]
		if d.Polarity != directive.MustNotMatch {
			continue
		}
		f := d.Pattern.Finder(p.Normalize)
		for j := range lines {
			if f.Match(texts[j]) {
				line := lines[j]
				return &Failure{Kind: KindForbidden, Directive: d, Line: &line}
			}
		}
	}

	if p.Exhaustive {
		for j, l := range lines {
			if claimed[j] || !l.IsDiagnostic || !p.counts(l.Severity) {
				continue
			}
			line := l
			return &Failure{Kind: KindUnclaimed, Line: &line}
		}
	}

	return nil
}

// missing builds a KindMissing failure. If the pattern does occur before the
// cursor, the directive is out of order and the hint points at that line.
func missing(d *directive.Directive, f *directive.Finder, lines []diagline.Line, texts []string, cursor int) *Failure {
	fail := &Failure{Kind: KindMissing, Directive: d}
	if cursor > 0 && cursor <= len(lines) {
		prev := lines[cursor-1]
		fail.After = &prev
	}
	for j := 0; j < cursor && j < len(lines); j++ {
		if f.Match(texts[j]) {
			early := lines[j]
			fail.Early = &early
			break
		}
	}
	return fail
}
