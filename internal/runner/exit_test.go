package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExitPolicy(t *testing.T) {
	for in, want := range map[string]ExitPolicy{
		"":        ExitAny,
		"any":     ExitAny,
		"success": ExitSuccess,
		"failure": ExitFailure,
	} {
		got, err := ParseExitPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseExitPolicy("crash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid exit policy "crash"`)
}

func TestExitPolicy_Allows(t *testing.T) {
	assert.True(t, ExitAny.Allows(0))
	assert.True(t, ExitAny.Allows(1))
	assert.True(t, ExitSuccess.Allows(0))
	assert.False(t, ExitSuccess.Allows(2))
	assert.True(t, ExitFailure.Allows(1))
	assert.False(t, ExitFailure.Allows(0))
}

func TestExitPolicy_Describe(t *testing.T) {
	assert.Equal(t, "tool exited with status 0, expected failure", ExitFailure.Describe(0))
	assert.Equal(t, "tool exited with status 3, expected success", ExitSuccess.Describe(3))
}
