package harness

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linecheck/internal/directive"
	"github.com/roach88/linecheck/internal/matcher"
)

const (
	attrIBAction = "testdata/attr_ibaction_ios.swift"
	attrIOSOut   = "testdata/attr_ibaction_ios.ios.out"
	attrMacOut   = "testdata/attr_ibaction_ios.macosx.out"
)

func verifyAttr(t *testing.T, variant string, output []byte) *Result {
	t.Helper()
	res, err := Verify(context.Background(), Request{
		FixturePath: attrIBAction,
		Variant:     variant,
		Output:      bytes.NewReader(output),
		Policy:      matcher.DefaultPolicy(),
	})
	require.NoError(t, err)
	return res
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func targets(ds []directive.Directive, p directive.Polarity) []int {
	var out []int
	for _, d := range ds {
		if d.Polarity == p {
			out = append(out, d.Pattern.Targets...)
		}
	}
	return out
}

func TestAttrIBAction_Passes(t *testing.T) {
	for _, tt := range []struct {
		variant string
		out     string
	}{
		{"ios", attrIOSOut},
		{"macosx", attrMacOut},
	} {
		t.Run(tt.variant, func(t *testing.T) {
			res := verifyAttr(t, tt.variant, readFile(t, tt.out))
			assert.True(t, res.Passed(), "failure: %v", res.Failure)
			assert.Len(t, res.Directives, 14)
		})
	}
}

func TestAttrIBAction_RelativeOffsets(t *testing.T) {
	mac := verifyAttr(t, "macosx", readFile(t, attrMacOut))
	assert.Equal(t,
		[]int{4, 8, 9, 10, 11, 12, 13, 14, 15, 16, 36, 40, 44, 49},
		targets(mac.Directives, directive.MustMatch))
	assert.Empty(t, targets(mac.Directives, directive.MustNotMatch))

	ios := verifyAttr(t, "ios", readFile(t, attrIOSOut))
	assert.Equal(t, []int{36, 40, 44, 44, 49}, targets(ios.Directives, directive.MustMatch))
	assert.Equal(t, []int{4, 8, 9, 10, 11, 12, 13, 14, 15, 16}, targets(ios.Directives, directive.MustNotMatch))
}

func TestAttrIBAction_ForbiddenLineReported(t *testing.T) {
	out := append(readFile(t, attrIOSOut), "attr_ibaction_ios:12:18: error: 'IBAction' methods must have a single argument\n"...)

	res := verifyAttr(t, "ios", out)
	require.Equal(t, PhaseFail, res.Phase)
	assert.Equal(t, matcher.KindForbidden, res.Failure.Kind)
	assert.Equal(t, 21, res.Failure.Directive.Line)
	assert.Equal(t, 16, res.Failure.Line.Number)
}

func TestAttrIBAction_MissingDiagnostic(t *testing.T) {
	var kept []string
	for _, l := range strings.Split(string(readFile(t, attrMacOut)), "\n") {
		if !strings.HasPrefix(l, "attr_ibaction_ios.swift:9:") {
			kept = append(kept, l)
		}
	}

	res := verifyAttr(t, "macosx", []byte(strings.Join(kept, "\n")))
	require.Equal(t, PhaseFail, res.Phase)
	assert.Equal(t, matcher.KindMissing, res.Failure.Kind)
	assert.Equal(t, 27, res.Failure.Directive.Line)
}

func TestAttrIBAction_WrongVariantOutput(t *testing.T) {
	res := verifyAttr(t, "macosx", readFile(t, attrIOSOut))
	require.Equal(t, PhaseFail, res.Phase)
	assert.Equal(t, matcher.KindMissing, res.Failure.Kind)
	assert.Equal(t, 6, res.Failure.Directive.Line)
}
