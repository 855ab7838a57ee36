package harness

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// MaxRenderedLines caps the captured output shown under a failure.
const MaxRenderedLines = 40

// RenderFailure writes a human-readable report of res.Failure to w: the
// failure itself, the directive's source line with a caret under its tag, and
// the captured output. It writes nothing for a passing result.
func RenderFailure(w io.Writer, res *Result) error {
	if res == nil || res.Failure == nil {
		return nil
	}
	var b strings.Builder
	b.WriteString(res.Failure.Error())
	b.WriteString("\n")

	if d := res.Failure.Directive; d != nil && res.Source != nil {
		if src, ok := res.Source.Line(d.Line); ok {
			gutter := strconv.Itoa(d.Line)
			pad := strings.Repeat(" ", len(gutter))
			fmt.Fprintf(&b, "\n  %s | %s\n", gutter, src)
			fmt.Fprintf(&b, "  %s | %s\n", pad, caretLine(src, d.Column))
		}
	}

	b.WriteString("\n")
	renderOutput(&b, res)

	_, err := io.WriteString(w, b.String())
	return err
}

func renderOutput(b *strings.Builder, res *Result) {
	header := fmt.Sprintf("output for variant %s", res.Variant)
	if res.Ran {
		header += fmt.Sprintf(", exit status %d", res.ExitCode)
	}
	if len(res.Lines) == 0 {
		fmt.Fprintf(b, "%s: (empty)\n", header)
		return
	}
	fmt.Fprintf(b, "%s:\n", header)

	last := res.Lines[len(res.Lines)-1].Number
	width := len(strconv.Itoa(last))
	for i, l := range res.Lines {
		if i == MaxRenderedLines {
			fmt.Fprintf(b, "  %s (%d more lines)\n", strings.Repeat(".", width), len(res.Lines)-i)
			return
		}
		fmt.Fprintf(b, "  %*d | %s\n", width, l.Number, l.Text)
	}
}

// caretLine returns a line that puts '^' under the 1-based rune column col of
// src, as rendered in a terminal. Tabs are kept so the caret lines up with
// the source however the terminal expands them.
func caretLine(src string, col int) string {
	var b strings.Builder
	i := 1
	for _, r := range src {
		if i >= col {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
		i++
	}
	b.WriteByte('^')
	return b.String()
}
