package runner

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linecheck/internal/testutil"
)

func fake(mode string, args ...string) Invocation {
	tool, env := testutil.FakeTool(mode)
	return Invocation{Tool: tool, Args: args, Env: env}
}

func TestRun_CapturesCombinedOutput(t *testing.T) {
	out, err := Run(context.Background(), fake(testutil.FakeEmit, "first", "stderr:second", "third"))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\nthird\n", string(out.Combined))
	assert.Equal(t, 0, out.ExitCode)
	assert.False(t, out.Truncated)
}

func TestRun_NonZeroExitIsNotAnError(t *testing.T) {
	out, err := Run(context.Background(), fake(testutil.FakeEmit, "stderr:x.swift:1:1: error: bad", "exit=1"))
	require.NoError(t, err)
	assert.Equal(t, 1, out.ExitCode)
	assert.Equal(t, "x.swift:1:1: error: bad\n", string(out.Combined))
}

func TestRun_LaunchFailure(t *testing.T) {
	_, err := Run(context.Background(), Invocation{Tool: "/nonexistent/linecheck-tool"})
	require.Error(t, err)

	var serr *SubprocessError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "/nonexistent/linecheck-tool", serr.Tool)
	assert.Equal(t, -1, serr.ExitCode)
	assert.NotNil(t, serr.Err)
}

func TestRun_EmptyTool(t *testing.T) {
	_, err := Run(context.Background(), Invocation{})
	var serr *SubprocessError
	require.True(t, errors.As(err, &serr))
	assert.Contains(t, serr.Error(), "no tool given")
}

func TestRun_Timeout(t *testing.T) {
	inv := fake(testutil.FakeSleep)
	inv.Timeout = 200 * time.Millisecond

	_, err := Run(context.Background(), inv)
	var serr *SubprocessError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 200*time.Millisecond, serr.Timeout)
	assert.Contains(t, serr.Error(), "timed out after 200ms")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err := Run(ctx, fake(testutil.FakeSleep))
	var serr *SubprocessError
	require.True(t, errors.As(err, &serr))
	assert.Zero(t, serr.Timeout)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_KilledBySignal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no signals on windows")
	}
	_, err := Run(context.Background(), fake(testutil.FakeKill))
	var serr *SubprocessError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "killed", serr.Signal)
	assert.Contains(t, serr.Error(), "killed by signal")
}

func TestRun_TruncatesOutput(t *testing.T) {
	e := Executor{MaxOutputBytes: 4}
	out, err := e.Run(context.Background(), fake(testutil.FakeEmit, "abcdef"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(out.Combined))
	assert.True(t, out.Truncated)
}

func TestRun_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "out.txt", "from dir\n")

	inv := fake(testutil.FakeEmit, "@out.txt")
	inv.Dir = dir
	out, err := Run(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, "from dir\n", string(out.Combined))
}
