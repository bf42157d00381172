package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCommand executes the root command with the given args and captures
// both output streams.
func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeDefs writes a CUE definition file into a fresh temp dir and returns
// the dir path.
func writeDefs(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defs.cue"), []byte(src), 0o644))
	return dir
}

const validDefsCUE = `
class: User: {
	qualified: "app.User"
	table:     "users"
	dataclass: true
	attributes: [
		{name: "id", kind: "column", primary_key: true, init: false},
		{name: "name", kind: "column"},
		{name: "nick", kind: "column", default: null},
	]
}
`

const conflictingDefsCUE = `
class: Broken: {
	options: {order: true, eq: false}
	attributes: [{name: "x", kind: "column"}]
}
`
