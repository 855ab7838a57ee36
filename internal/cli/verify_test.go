package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linecheck/internal/testutil"
)

const ibaction = "testdata/ibaction.swift"

func TestCheck_Passes(t *testing.T) {
	res := execute(t, "", "check", ibaction, "--variant", "ios", "--input", "testdata/ios.out")
	require.NoError(t, res.err)
	assert.Equal(t, ExitSuccess, res.code)
	assert.Empty(t, res.stdout)
	assert.Empty(t, res.stderr)
}

func TestCheck_ReadsStdin(t *testing.T) {
	data, err := os.ReadFile("testdata/ios.out")
	require.NoError(t, err)

	res := execute(t, string(data), "check", ibaction, "--variant", "ios")
	assert.Equal(t, ExitSuccess, res.code)
}

func TestCheck_WrongLineFails(t *testing.T) {
	res := execute(t, "", "check", ibaction, "--variant", "ios", "--input", "testdata/ios_wrong_line.out")
	assert.Equal(t, ExitFailure, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "testdata/ibaction.swift:9:6: expected pattern not found in output")
	assert.Contains(t, res.stderr, "output for variant ios:")
}

func TestCheck_IgnoreUnclaimed(t *testing.T) {
	// The wrong-line output has an unclaimed diagnostic besides the missing one.
	out := testutil.WriteFile(t, t.TempDir(), "extra.out",
		"ibaction.swift:8:18: error: argument to 'IBAction' method cannot have non-object type\n"+
			"ibaction.swift:1:1: warning: unrelated\n")

	strict := execute(t, "", "check", ibaction, "--variant", "ios", "--input", out)
	assert.Equal(t, ExitFailure, strict.code)
	assert.Contains(t, strict.stderr, "diagnostic not matched by any directive")

	lenient := execute(t, "", "check", ibaction, "--variant", "ios", "--input", out, "--ignore-unclaimed")
	assert.Equal(t, ExitSuccess, lenient.code)

	errorsOnly := execute(t, "", "check", ibaction, "--variant", "ios", "--input", out, "--unclaimed-severity", "error")
	assert.Equal(t, ExitSuccess, errorsOnly.code)
}

func TestCheck_BadSeverity(t *testing.T) {
	res := execute(t, "", "check", ibaction, "--variant", "ios", "--input", "testdata/ios.out", "--unclaimed-severity", "loud")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, `unknown severity "loud"`)
}

func TestCheck_JSON(t *testing.T) {
	res := execute(t, "", "--format", "json", "check", ibaction, "--variant", "ios", "--input", "testdata/ios_wrong_line.out")
	assert.Equal(t, ExitFailure, res.code)

	var resp struct {
		Status string      `json:"status"`
		Data   MatchResult `json:"data"`
		Error  *CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMismatch, resp.Error.Code)
	assert.Equal(t, "expected pattern not found in output", resp.Error.Message)
	assert.False(t, resp.Data.Passed)
	assert.Equal(t, 2, resp.Data.Directives)
	require.NotNil(t, resp.Data.Failure)
	assert.Equal(t, 9, resp.Data.Failure.Directive.Line)
}

func TestCheck_JSONPass(t *testing.T) {
	res := execute(t, "", "--format", "json", "check", ibaction, "--variant", "macosx", "--input", "testdata/attr/ibaction.macosx.out")
	assert.Equal(t, ExitSuccess, res.code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCheck_MissingVariant(t *testing.T) {
	res := execute(t, "", "check", ibaction, "--input", "testdata/ios.out")
	assert.Equal(t, ExitCommandError, res.code)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "required flag")
	assert.Contains(t, res.err.Error(), "variant")
}

func TestCheck_ParseError(t *testing.T) {
	res := execute(t, "", "check", "testdata/bad_directive.swift", "--variant", "ios", "--input", "testdata/ios.out")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "Error [E101]")
	assert.Contains(t, res.stderr, "invalid directive")
}

func TestCheck_MissingInput(t *testing.T) {
	res := execute(t, "", "check", ibaction, "--variant", "ios", "--input", "testdata/nope.out")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "input file not found: testdata/nope.out")
}

func TestCheck_ConfigPrefix(t *testing.T) {
	dir := t.TempDir()
	cfg := testutil.WriteFile(t, dir, "linecheck.toml", "[check]\nprefix = \"EXPECT\"\n")
	fixture := testutil.WriteFile(t, dir, "f.swift", "// EXPECT-ios: error: boom\n")
	out := testutil.WriteFile(t, dir, "f.out", "f.swift:1:1: error: boom\n")

	res := execute(t, "", "--config", cfg, "check", fixture, "--variant", "ios", "--input", out)
	assert.Equal(t, ExitSuccess, res.code, res.stderr)

	// The flag wins over the file.
	res = execute(t, "", "--config", cfg, "check", fixture, "--variant", "ios", "--input", out, "--prefix", "CHECK")
	assert.Equal(t, ExitFailure, res.code)
}

func TestRun_Passes(t *testing.T) {
	tool := fakeTool(t)
	res := execute(t, "", "run", ibaction, "--variant", "ios", "--", tool, "@testdata/ios.out")
	assert.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Empty(t, res.stdout)
	assert.Empty(t, res.stderr)
}

func TestRun_ExpandsFixturePath(t *testing.T) {
	tool := fakeTool(t)
	res := execute(t, "", "run", ibaction, "--variant", "ios", "--",
		tool, "%s:8:18: error: argument to 'IBAction' method cannot have non-object type")
	assert.Equal(t, ExitSuccess, res.code, res.stderr)
}

func TestRun_ExitPolicy(t *testing.T) {
	tool := fakeTool(t)

	res := execute(t, "", "run", ibaction, "--variant", "ios", "--expect-exit", "success", "--", tool, "@testdata/ios.out", "exit=1")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "tool exited with status 1, expected success")

	res = execute(t, "", "run", ibaction, "--variant", "ios", "--expect-exit", "failure", "--", tool, "@testdata/ios.out", "exit=1")
	assert.Equal(t, ExitSuccess, res.code, res.stderr)
}

func TestRun_ConfigExitPolicy(t *testing.T) {
	tool := fakeTool(t)
	cfg := testutil.WriteFile(t, t.TempDir(), "linecheck.toml", "[run]\nexpect_exit = \"failure\"\n")

	res := execute(t, "", "--config", cfg, "run", ibaction, "--variant", "ios", "--", tool, "@testdata/ios.out")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "expected failure")

	res = execute(t, "", "--config", cfg, "run", ibaction, "--variant", "ios", "--expect-exit", "any", "--", tool, "@testdata/ios.out")
	assert.Equal(t, ExitSuccess, res.code, res.stderr)
}

func TestRun_BadExitPolicy(t *testing.T) {
	tool := fakeTool(t)
	res := execute(t, "", "run", ibaction, "--variant", "ios", "--expect-exit", "maybe", "--", tool)
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, `invalid exit policy "maybe"`)
}

func TestRun_RequiresDash(t *testing.T) {
	res := execute(t, "", "run", ibaction, "--variant", "ios", "swiftc")
	assert.Equal(t, ExitCommandError, res.code)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "expected <fixture> -- <tool> [args...]")
}

func TestRun_ToolNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-tool")
	res := execute(t, "", "run", ibaction, "--variant", "ios", "--", missing)
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "Error [E201]")
}

func TestRun_Timeout(t *testing.T) {
	t.Setenv(testutil.FakeToolEnv, testutil.FakeSleep)
	res := execute(t, "", "run", ibaction, "--variant", "ios", "--timeout", "200ms", "--", os.Args[0])
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "timed out after 200ms")
}

func TestRun_VerboseLogsPhases(t *testing.T) {
	tool := fakeTool(t)
	res := execute(t, "", "-v", "run", ibaction, "--variant", "ios", "--", tool, "@testdata/ios.out")
	assert.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stderr, "launching tool")
	assert.Contains(t, res.stderr, "phase")
}
