package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcekit/forcekit/internal/adapters/inbound/cli"
)

// newProject lays out a temp project with external collaborators disabled
// so tests never shell out to the sf CLI.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := strings.Join([]string{
		"scan:",
		"  enabled: false",
		"plan:",
		"  enabled: false",
		"history:",
		"  enabled: false",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".forcekit.yaml"), []byte(cfg), 0644))
	return dir
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "forcekit")
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "", "bogus")
	assert.Error(t, err)
}
