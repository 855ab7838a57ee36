package directive

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// Pattern is a directive pattern with line placeholders already resolved.
type Pattern struct {
	// Text is the resolved pattern. Regex blocks are kept as written.
	Text string `json:"text"`

	// Targets lists the absolute lines the [[@LINE]] placeholders resolved to,
	// in the order they appear.
	Targets []int `json:"targets,omitempty"`

	segments []segment
}

type segment struct {
	text  string
	regex bool
}

// HasRegex reports whether the pattern embeds any {{re}} block.
func (p Pattern) HasRegex() bool {
	for _, s := range p.segments {
		if s.regex {
			return true
		}
	}
	return false
}

// Finder matches a pattern against output text.
type Finder struct {
	literal string
	re      *regexp.Regexp
}

// Finder builds a matcher for the pattern. With normalize set, literal text is
// converted to Unicode NFC so it compares equal to NFC-normalized output.
func (p Pattern) Finder(normalize bool) *Finder {
	if !p.HasRegex() {
		lit := p.Text
		if normalize {
			lit = norm.NFC.String(lit)
		}
		return &Finder{literal: lit}
	}

	var expr strings.Builder
	for _, s := range p.segments {
		if s.regex {
			expr.WriteString("(?:" + s.text + ")")
			continue
		}
		lit := s.text
		if normalize {
			lit = norm.NFC.String(lit)
		}
		expr.WriteString(regexp.QuoteMeta(lit))
	}
	// Every regex block was compiled once during extraction.
	return &Finder{re: regexp.MustCompile(expr.String())}
}

// Match reports whether s contains the pattern.
func (f *Finder) Match(s string) bool {
	if f.re != nil {
		return f.re.MatchString(s)
	}
	return strings.Contains(s, f.literal)
}

// Match reports whether s contains the pattern, without normalization.
func (p Pattern) Match(s string) bool {
	return p.Finder(false).Match(s)
}

// compilePattern resolves placeholders in raw against the directive line and
// validates embedded regular expressions. Errors are plain messages; the
// extractor attaches the location.
func compilePattern(raw string, line int) (Pattern, error) {
	var (
		p    Pattern
		text strings.Builder
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			p.segments = append(p.segments, segment{text: lit.String()})
			lit.Reset()
		}
	}

	rest := raw
	for rest != "" {
		subst := strings.Index(rest, "[[")
		block := strings.Index(rest, "{{")

		switch {
		case subst < 0 && block < 0:
			lit.WriteString(rest)
			text.WriteString(rest)
			rest = ""

		case subst >= 0 && (block < 0 || subst < block):
			lit.WriteString(rest[:subst])
			text.WriteString(rest[:subst])
			end := strings.Index(rest[subst+2:], "]]")
			if end < 0 {
				return Pattern{}, fmt.Errorf("unterminated '[[' in pattern")
			}
			target, err := resolveLine(rest[subst+2:subst+2+end], line)
			if err != nil {
				return Pattern{}, err
			}
			s := strconv.Itoa(target)
			lit.WriteString(s)
			text.WriteString(s)
			p.Targets = append(p.Targets, target)
			rest = rest[subst+2+end+2:]

		default:
			lit.WriteString(rest[:block])
			text.WriteString(rest[:block])
			end := strings.Index(rest[block+2:], "}}")
			if end < 0 {
				return Pattern{}, fmt.Errorf("unterminated '{{' in pattern")
			}
			expr := rest[block+2 : block+2+end]
			if expr == "" {
				return Pattern{}, fmt.Errorf("empty regular expression '{{}}'")
			}
			if _, err := regexp.Compile(expr); err != nil {
				return Pattern{}, fmt.Errorf("invalid regular expression %q: %v", expr, err)
			}
			flush()
			p.segments = append(p.segments, segment{text: expr, regex: true})
			text.WriteString("{{" + expr + "}}")
			rest = rest[block+2+end+2:]
		}
	}
	flush()

	p.Text = text.String()
	return p, nil
}

// resolveLine evaluates the inside of a [[...]] block.
func resolveLine(expr string, line int) (int, error) {
	body := strings.TrimSpace(expr)
	if !strings.HasPrefix(body, "@LINE") {
		return 0, fmt.Errorf("unsupported substitution [[%s]]", expr)
	}
	body = strings.TrimSpace(strings.TrimPrefix(body, "@LINE"))
	if body == "" {
		return line, nil
	}

	sign := body[0]
	if sign != '+' && sign != '-' {
		return 0, fmt.Errorf("invalid line offset in [[%s]]", expr)
	}
	digits := strings.TrimSpace(body[1:])
	if digits == "" || digits[0] < '0' || digits[0] > '9' {
		return 0, fmt.Errorf("invalid line offset in [[%s]]", expr)
	}
	offset, err := strconv.Atoi(digits)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return 0, fmt.Errorf("line offset out of range in [[%s]]", expr)
	case err != nil:
		return 0, fmt.Errorf("invalid line offset in [[%s]]", expr)
	}

	if sign == '-' {
		target := line - offset
		if target < 1 {
			return 0, fmt.Errorf("[[%s]] resolves to line %d, before the start of the fixture", expr, target)
		}
		return target, nil
	}
	// Both operands are non-negative ints, so the uint64 sum cannot wrap.
	target, err := safecast.Conv[int](uint64(line) + uint64(offset))
	if err != nil {
		return 0, fmt.Errorf("line offset out of range in [[%s]]", expr)
	}
	return target, nil
}
