// Package diagline splits captured tool output into diagnostic lines.
package diagline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Severity is the importance label a compiler puts in front of a message.
type Severity string

const (
	SevFatal   Severity = "fatal error"
	SevError   Severity = "error"
	SevWarning Severity = "warning"
	SevNote    Severity = "note"
	SevRemark  Severity = "remark"
)

// Severities lists every recognized severity.
var Severities = []Severity{SevFatal, SevError, SevWarning, SevNote, SevRemark}

// ParseSeverity maps a label to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	for _, sev := range Severities {
		if string(sev) == s {
			return sev, true
		}
	}
	return "", false
}

// ParseSeverities maps labels to severities, failing on the first unknown one.
func ParseSeverities(labels []string) ([]Severity, error) {
	out := make([]Severity, 0, len(labels))
	for _, l := range labels {
		sev, ok := ParseSeverity(strings.TrimSpace(l))
		if !ok {
			return nil, fmt.Errorf("unknown severity %q", l)
		}
		out = append(out, sev)
	}
	return out, nil
}

func (s Severity) String() string {
	return string(s)
}

// Line is one non-blank line of tool output.
type Line struct {
	// Number is the 1-based line number within the captured output.
	Number int `json:"number"`

	// Text is the line as printed, without the terminator.
	Text string `json:"text"`

	// IsDiagnostic is set when the line carries a severity label.
	// Source snippets and caret lines are kept but are not diagnostics.
	IsDiagnostic bool `json:"is_diagnostic"`

	Path     string   `json:"path,omitempty"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Severity Severity `json:"severity,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// Location renders the structured location, or "" if there is none.
func (l *Line) Location() string {
	switch {
	case l.Line > 0 && l.Column > 0:
		return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Column)
	case l.Line > 0:
		return fmt.Sprintf("%s:%d", l.Path, l.Line)
	}
	return l.Path
}

var (
	// Location is lazy so "a.swift:3:18: error: x" splits before the severity.
	diagPattern = regexp.MustCompile(`^(.*?):\s*(fatal error|error|warning|note|remark):\s?(.*)$`)

	// Driver messages carry no location: "error: no input files".
	bareDiagPattern = regexp.MustCompile(`^(fatal error|error|warning|note|remark):\s?(.*)$`)

	lineColLoc = regexp.MustCompile(`^(.*):(\d+):(\d+)$`)
	lineLoc    = regexp.MustCompile(`^(.*):(\d+)$`)
)

// Parse splits output into lines, dropping blank ones. Line numbers refer to
// the original output, so dropped lines leave gaps.
func Parse(output []byte) []Line {
	text := strings.ReplaceAll(string(output), "\r\n", "\n")
	raw := strings.Split(text, "\n")

	lines := make([]Line, 0, len(raw))
	for i, s := range raw {
		s = strings.TrimRight(s, "\r")
		if strings.TrimSpace(s) == "" {
			continue
		}
		lines = append(lines, ParseLine(i+1, s))
	}
	return lines
}

// ParseLine parses a single output line.
func ParseLine(number int, text string) Line {
	l := Line{Number: number, Text: text}

	if m := bareDiagPattern.FindStringSubmatch(text); m != nil {
		l.IsDiagnostic = true
		l.Severity = Severity(m[1])
		l.Message = m[2]
		return l
	}

	m := diagPattern.FindStringSubmatch(text)
	if m == nil {
		return l
	}

	// A location either ends in :line[:col] or is a bare path. Anything else
	// is an echoed snippet that happens to contain ": error:".
	loc := strings.TrimSpace(m[1])
	if lm := lineColLoc.FindStringSubmatch(loc); lm != nil {
		l.Path = lm[1]
		l.Line, _ = strconv.Atoi(lm[2])
		l.Column, _ = strconv.Atoi(lm[3])
	} else if lm := lineLoc.FindStringSubmatch(loc); lm != nil {
		l.Path = lm[1]
		l.Line, _ = strconv.Atoi(lm[2])
	} else if loc != "" && !strings.ContainsAny(loc, " \t") {
		l.Path = loc
	} else {
		return l
	}
	l.IsDiagnostic = true
	l.Severity = Severity(m[2])
	l.Message = m[3]
	return l
}

// Diagnostics returns only the lines that carry a severity.
func Diagnostics(lines []Line) []Line {
	var out []Line
	for _, l := range lines {
		if l.IsDiagnostic {
			out = append(out, l)
		}
	}
	return out
}
