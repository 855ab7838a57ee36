package harness

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linecheck/internal/diagline"
	"github.com/roach88/linecheck/internal/matcher"
)

func TestCaretLine(t *testing.T) {
	tests := []struct {
		name string
		src  string
		col  int
		want string
	}{
		{"first column", "CHECK-ios: x", 1, "^"},
		{"indented", "  // CHECK-ios: x", 6, "     ^"},
		{"tab", "\t// CHECK-ios: x", 5, "\t   ^"},
		{"wide runes", "漢字 // CHECK-ios: x", 7, "        ^"},
		{"past end", "ab", 9, "  ^"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, caretLine(tt.src, tt.col))
		})
	}
}

func TestRenderFailure_Passing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderFailure(&buf, &Result{Phase: PhasePass}))
	assert.Empty(t, buf.String())
}

func TestRenderFailure_TruncatesOutput(t *testing.T) {
	var out strings.Builder
	for i := 1; i <= MaxRenderedLines+5; i++ {
		fmt.Fprintf(&out, "note %d\n", i)
	}
	res := &Result{
		Phase:   PhaseFail,
		Variant: "ios",
		Lines:   diagline.Parse([]byte(out.String())),
		Failure: &matcher.Failure{Kind: matcher.KindExitStatus, Detail: "x"},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderFailure(&buf, res))
	assert.Contains(t, buf.String(), "  40 | note 40\n")
	assert.NotContains(t, buf.String(), "note 41")
	assert.Contains(t, buf.String(), "  .. (5 more lines)\n")
}

func TestRenderFailure_EmptyOutput(t *testing.T) {
	res := &Result{
		Phase:    PhaseFail,
		Variant:  "ios",
		Ran:      true,
		ExitCode: 0,
		Failure:  &matcher.Failure{Kind: matcher.KindExitStatus, Detail: "tool exited with status 0, expected failure"},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderFailure(&buf, res))
	assert.Equal(t,
		"unexpected exit status\n  tool exited with status 0, expected failure\n\noutput for variant ios, exit status 0: (empty)\n",
		buf.String())
}
