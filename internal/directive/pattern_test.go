package directive

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePattern_Literal(t *testing.T) {
	p, err := compilePattern("error: X (y)", 1)
	require.NoError(t, err)
	assert.False(t, p.HasRegex())
	assert.True(t, p.Match("a.swift:5:1: error: X (y)"))
	assert.False(t, p.Match("a.swift:5:1: error: X"))
}

func TestCompilePattern_LiteralMetacharactersAreQuoted(t *testing.T) {
	p, err := compilePattern("f(a.b) {{[0-9]+}} [x]", 1)
	require.NoError(t, err)
	assert.True(t, p.HasRegex())
	assert.Equal(t, "f(a.b) {{[0-9]+}} [x]", p.Text)
	assert.True(t, p.Match("call f(a.b) 42 [x]"))
	assert.False(t, p.Match("call f(aXb) 42 [x]"))
	assert.False(t, p.Match("call f(a.b) nn [x]"))
}

func TestCompilePattern_RegexAndPlaceholder(t *testing.T) {
	p, err := compilePattern("a.swift:[[@LINE-1]]:{{[0-9]+}}: error", 10)
	require.NoError(t, err)
	assert.Equal(t, "a.swift:9:{{[0-9]+}}: error", p.Text)
	assert.Equal(t, []int{9}, p.Targets)
	assert.True(t, p.Match("a.swift:9:18: error: boom"))
	assert.False(t, p.Match("a.swift:10:18: error: boom"))
}

func TestFinder_Normalize(t *testing.T) {
	p, err := compilePattern("cafe\u0301", 1)
	require.NoError(t, err)

	composed := "warning: caf\u00e9"
	assert.False(t, p.Finder(false).Match(composed))
	assert.True(t, p.Finder(true).Match(composed))
}

func TestResolveLine(t *testing.T) {
	tests := []struct {
		expr string
		line int
		want int
	}{
		{"@LINE", 7, 7},
		{"@LINE+3", 7, 10},
		{"@LINE-6", 7, 1},
		{" @LINE + 0 ", 7, 7},
	}
	for _, tt := range tests {
		got, err := resolveLine(tt.expr, tt.line)
		require.NoError(t, err, tt.expr)
		assert.Equal(t, tt.want, got, tt.expr)
	}

	_, err := resolveLine("@LINE-7", 7)
	assert.ErrorContains(t, err, "resolves to line 0, before the start of the fixture")
	_, err = resolveLine("@LINE--1", 7)
	assert.ErrorContains(t, err, "invalid line offset")
	_, err = resolveLine("@LINE++1", 7)
	assert.ErrorContains(t, err, "invalid line offset")
}

func TestResolveLine_OffsetOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		expr string
		line int
	}{
		{"sum overflows int", fmt.Sprintf("@LINE+%d", math.MaxInt), 2},
		{"sum overflows at the edge", fmt.Sprintf("@LINE+%d", math.MaxInt-1), 2},
		{"offset overflows int", "@LINE+99999999999999999999", 2},
		{"negative offset overflows int", "@LINE-99999999999999999999", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveLine(tt.expr, tt.line)
			assert.ErrorContains(t, err, "line offset out of range")
		})
	}

	got, err := resolveLine(fmt.Sprintf("@LINE+%d", math.MaxInt-2), 2)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)
}
