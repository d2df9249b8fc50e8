package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seqharness/internal/scenario"
)

func TestRun_AllPass(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"users_list.yaml": passingScenario})

	out, err := execute(t, "run", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "users_list")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestRun_FailureExitCode(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"users_list.yaml":  passingScenario,
		"users_wrong.yaml": failingScenario,
		"typo.yaml":        invalidScenario,
	})

	out, err := execute(t, "run", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "1 passed, 2 failed, 3 total")
	assert.Contains(t, out, "failed to load scenario")
	assert.Contains(t, out, "expectation failed: count")
}

func TestRun_JSON(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"users_list.yaml": passingScenario})

	out, err := execute(t, "run", dir, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	got := resp.Data.Scenarios[0]
	assert.True(t, got.Pass)
	assert.Equal(t, 1, got.Requests)
	assert.Equal(t, "/users", got.Path)
	assert.Equal(t, GoldenMissing, got.Golden)
}

func TestRun_Filter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"users_list.yaml":  passingScenario,
		"users_wrong.yaml": failingScenario,
	})

	out, err := execute(t, "run", dir, "--filter", "*_list")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestRun_UpdateThenMatchGolden(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"users_list.yaml": passingScenario})
	file := filepath.Join(dir, "users_list.yaml")

	_, err := execute(t, "run", dir, "--update")
	require.NoError(t, err)

	golden, err := os.ReadFile(scenario.GoldenPath(file))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"name":"users_list"`)

	out, err := execute(t, "run", dir)
	require.NoError(t, err)
	assert.Contains(t, out, GoldenMatch)

	require.NoError(t, os.WriteFile(scenario.GoldenPath(file), []byte("{}"), 0644))
	out, err = execute(t, "run", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestRun_Parallel(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d"} {
		files[name+".yaml"] = passingScenario
	}
	dir := writeScenarios(t, files)

	out, err := execute(t, "run", dir, "--parallel", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "4 passed, 0 failed, 4 total")
}

func TestRun_CommandErrors(t *testing.T) {
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "run", t.TempDir(), "--parallel", "0")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "run", t.TempDir(), "--filter", "[")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_NoScenarios(t *testing.T) {
	out, err := execute(t, "run", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}
