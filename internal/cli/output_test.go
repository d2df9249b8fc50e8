package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]int{"passed": 2}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONFailure(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Failure("SCENARIO_FAILED", "1 scenario(s) failed", map[string]int{"failed": 1}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SCENARIO_FAILED", resp.Error.Code)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}

	f := &OutputFormatter{Writer: out, ErrWriter: diag}
	f.VerboseLog("hidden")
	assert.Empty(t, diag.String())

	f.Verbose = true
	f.VerboseLog("shown %d", 1)
	assert.Equal(t, "shown 1\n", diag.String())
	assert.Empty(t, out.String())
}

func TestOutputFormatter_Table(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Writer: buf}

	f.Table([]string{"Status", "Scenario"}, [][]any{{f.Status(true), "a"}, {f.Status(false), "b"}})

	out := buf.String()
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "FAIL")
	assert.NotContains(t, out, "\x1b[", "no colour on a non-terminal writer")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "failed", errors.New("inner")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Equal(t, "outer: failed: inner", wrapped.Error())
}
