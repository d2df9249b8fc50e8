package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const passingScenario = `name: users_list
description: the user list renders every user
login: true
route: /users
steps:
  - respond: {fixture: users, count: 2}
expect:
  path: /users
  count:
    "#user-list-table tbody tr": 2
`

const failingScenario = `name: users_wrong
description: expects the wrong row count
login: true
route: /users
steps:
  - respond: {fixture: users, count: 2}
expect:
  count:
    "#user-list-table tbody tr": 9
`

const invalidScenario = `name: typo
description: unknown key
rout: /users
`

// writeScenarios creates a directory holding the given files.
func writeScenarios(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

// execute runs the CLI with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
