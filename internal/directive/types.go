package directive

import "fmt"

// DefaultPrefix is the tag prefix used when none is configured.
const DefaultPrefix = "CHECK"

// Polarity says whether a directive requires or forbids its pattern.
type Polarity int

const (
	// MustMatch requires a matching output line, in order.
	MustMatch Polarity = iota
	// MustNotMatch forbids the pattern anywhere in the output.
	MustNotMatch
)

func (p Polarity) String() string {
	switch p {
	case MustMatch:
		return "match"
	case MustNotMatch:
		return "not"
	}
	return "unknown"
}

// MarshalText renders the polarity for JSON output.
func (p Polarity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a polarity written by MarshalText.
func (p *Polarity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "match":
		*p = MustMatch
	case "not":
		*p = MustNotMatch
	default:
		return fmt.Errorf("unknown polarity %q", text)
	}
	return nil
}

// Directive is one expectation record extracted from a fixture.
type Directive struct {
	// Path is the fixture the directive was read from.
	Path string `json:"path"`

	// Line is the 1-based line the directive is written on.
	Line int `json:"line"`

	// Column is the 1-based column (in runes) where the tag starts.
	Column int `json:"column"`

	// Tag is the tag as written, e.g. "CHECK-ios-NOT".
	Tag string `json:"tag"`

	// Variant is the platform variant the directive belongs to.
	Variant string `json:"variant"`

	Polarity Polarity `json:"polarity"`

	// RawPattern is the pattern text as written, before substitution.
	RawPattern string `json:"raw_pattern"`

	// Pattern is the resolved pattern.
	Pattern Pattern `json:"pattern"`
}

// Location returns path:line:column of the directive tag.
func (d *Directive) Location() string {
	return fmt.Sprintf("%s:%d:%d", d.Path, d.Line, d.Column)
}

// String renders the directive the way it appears in the fixture.
func (d *Directive) String() string {
	return d.Tag + ": " + d.RawPattern
}

// ParseError reports malformed directive syntax. It is fatal: no matching is
// attempted for a fixture that fails to parse.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: invalid directive: %s", e.Path, e.Line, e.Column, e.Msg)
}
