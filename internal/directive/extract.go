package directive

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roach88/linecheck/internal/fixture"
)

// unsupportedModifiers are FileCheck suffixes that linecheck recognizes but
// does not implement. Writing one is a parse error rather than a silent
// variant named "ios-NEXT".
var unsupportedModifiers = map[string]bool{
	"NEXT":  true,
	"SAME":  true,
	"DAG":   true,
	"EMPTY": true,
	"LABEL": true,
	"COUNT": true,
}

// Extractor scans fixture text for directives with a given tag prefix.
type Extractor struct {
	prefix string
}

// NewExtractor creates an extractor. An empty prefix selects DefaultPrefix.
func NewExtractor(prefix string) *Extractor {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Extractor{prefix: prefix}
}

// Prefix returns the tag prefix the extractor looks for.
func (e *Extractor) Prefix() string {
	return e.prefix
}

// Extract returns the fixture's directives in file order.
// The first malformed directive aborts extraction with a *ParseError.
func (e *Extractor) Extract(f *fixture.Fixture) ([]Directive, error) {
	var out []Directive
	for i, text := range f.Lines {
		d, found, err := e.parseLine(f.Path, i+1, text)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, d)
		}
	}
	return out, nil
}

// ExtractAll is like Extract but keeps going after a malformed directive and
// returns every parse error found.
func (e *Extractor) ExtractAll(f *fixture.Fixture) ([]Directive, []*ParseError) {
	var (
		out  []Directive
		errs []*ParseError
	)
	for i, text := range f.Lines {
		d, found, err := e.parseLine(f.Path, i+1, text)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if found {
			out = append(out, d)
		}
	}
	return out, errs
}

// parseLine looks for the first directive tag on one line.
func (e *Extractor) parseLine(path string, line int, text string) (Directive, bool, *ParseError) {
	marker := e.prefix + "-"
	searchFrom := 0

	for {
		idx := strings.Index(text[searchFrom:], marker)
		if idx < 0 {
			return Directive{}, false, nil
		}
		start := searchFrom + idx
		searchFrom = start + len(marker)

		if start > 0 && isTagByte(text[start-1]) {
			continue
		}

		col := utf8.RuneCountInString(text[:start]) + 1
		fail := func(format string, args ...any) (Directive, bool, *ParseError) {
			return Directive{}, false, &ParseError{
				Path:   path,
				Line:   line,
				Column: col,
				Msg:    fmt.Sprintf(format, args...),
			}
		}

		nameEnd := scanName(text, searchFrom)
		name := text[searchFrom:nameEnd]
		hasColon := nameEnd < len(text) && text[nameEnd] == ':'

		if name == "" {
			if hasColon {
				return fail("missing variant after %q", marker)
			}
			// e.g. "-check-prefix=CHECK-%target-os" on a RUN line
			continue
		}

		tag := text[start:nameEnd]
		if !hasColon {
			return fail("expected ':' after %q", tag)
		}

		variant, polarity := name, MustMatch
		segs := strings.Split(name, "-")
		last := segs[len(segs)-1]
		switch {
		case last == "NOT":
			polarity = MustNotMatch
			variant = strings.Join(segs[:len(segs)-1], "-")
		case unsupportedModifiers[last]:
			return fail("unsupported directive modifier %q in %q", last, tag)
		}
		if variant == "" {
			return fail("missing variant in %q", tag)
		}

		raw := strings.TrimSpace(text[nameEnd+1:])
		if raw == "" {
			return fail("empty pattern after %q", tag+":")
		}

		pattern, err := compilePattern(raw, line)
		if err != nil {
			return fail("%v", err)
		}

		return Directive{
			Path:       path,
			Line:       line,
			Column:     col,
			Tag:        tag,
			Variant:    variant,
			Polarity:   polarity,
			RawPattern: raw,
			Pattern:    pattern,
		}, true, nil
	}
}

// scanName consumes a variant name: identifier segments joined by single
// dashes. A trailing dash is not part of the name.
func scanName(text string, i int) int {
	end := i
	for {
		j := end
		for j < len(text) && isIdentByte(text[j]) {
			j++
		}
		if j == end {
			return end
		}
		end = j
		if end+1 < len(text) && text[end] == '-' && isIdentByte(text[end+1]) {
			end++
			continue
		}
		return end
	}
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

func isTagByte(c byte) bool {
	return isIdentByte(c) || c == '-'
}
