// Package fixture loads directive-annotated source fixtures.
//
// A Fixture is an ordered, immutable sequence of source lines. Line numbers
// are 1-based everywhere in linecheck so they can be compared directly with
// the locations a compiler prints.
package fixture

import (
	"fmt"
	"os"
	"strings"
)

// Fixture is a loaded source file. It is never modified after loading.
type Fixture struct {
	// Path is the path the fixture was loaded from, as given by the caller.
	Path string

	// Lines holds the fixture text split on line breaks, without terminators.
	Lines []string
}

// Load reads a fixture from disk.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return FromBytes(path, data), nil
}

// FromBytes builds a fixture from in-memory content.
// CRLF and lone CR terminators are treated as LF. A final terminator does not
// produce an extra empty line.
func FromBytes(path string, data []byte) *Fixture {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")

	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	return &Fixture{Path: path, Lines: lines}
}

// Len returns the number of lines.
func (f *Fixture) Len() int {
	return len(f.Lines)
}

// Line returns the text of 1-based line n.
func (f *Fixture) Line(n int) (string, bool) {
	if n < 1 || n > len(f.Lines) {
		return "", false
	}
	return f.Lines[n-1], true
}
