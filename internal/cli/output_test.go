package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linecheck/internal/directive"
	"github.com/roach88/linecheck/internal/runner"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "a < b"}
	err := formatter.Success(data)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "a < b")

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeParse, "invalid directive", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParse, resp.Error.Code)
	assert.Equal(t, "invalid directive", resp.Error.Message)
}

func TestOutputFormatter_TextErrorGoesToErrWriter(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "text",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	require.NoError(t, formatter.Error(ErrCodeGeneric, "boom", "more"))
	assert.Empty(t, out.String())
	assert.Equal(t, "Error [E001]: boom\nDetails: more\n", errOut.String())
}

func TestOutputFormatter_Fail(t *testing.T) {
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}, ErrWriter: errOut}

	err := formatter.Fail(ExitCommandError, ErrCodeNotFound, errors.New("missing"))
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.True(t, exitErr.Reported)
	assert.Equal(t, ExitCommandError, exitErr.Code)
	assert.Equal(t, "Error [E002]: missing\n", errOut.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "mismatch")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "bad"))))
	assert.Equal(t, ExitCommandError, GetExitCode(errors.New("unknown flag")))
}

func TestExitError(t *testing.T) {
	inner := errors.New("inner")
	err := WrapExitError(ExitCommandError, "outer", inner)
	assert.Equal(t, "outer: inner", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeParse, errorCode(&directive.ParseError{Path: "f", Line: 1, Column: 1, Msg: "x"}))
	assert.Equal(t, ErrCodeSubprocess, errorCode(fmt.Errorf("run: %w", &runner.SubprocessError{Tool: "t", Err: errors.New("x")})))
	assert.Equal(t, ErrCodeGeneric, errorCode(errors.New("other")))
}

func TestMarks(t *testing.T) {
	assert.Equal(t, "✓", passMark())
	assert.Equal(t, "✗", failMark())
	assert.Equal(t, "!", errorMark())
}

func TestNewLogger(t *testing.T) {
	quiet := &bytes.Buffer{}
	log := newLogger(quiet, false)
	log.Debug("hidden")
	log.Warn("shown")
	assert.NotContains(t, quiet.String(), "hidden")
	assert.Contains(t, quiet.String(), "shown")

	loud := &bytes.Buffer{}
	newLogger(loud, true).Debug("visible")
	assert.Contains(t, loud.String(), "visible")
}
