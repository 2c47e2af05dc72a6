package packaging

import (
	"os"
	"os/exec"
	"path/filepath"
)

// detectProbes pair each detectable target with its binary name and the
// home directory its CLI creates. Cline is not probed; it is an editor
// extension with no binary or home marker.
var detectProbes = []struct {
	target  string
	binary  string
	homeDir string
}{
	{"claude", "claude", ".claude"},
	{"opencode", "opencode", ".opencode"},
	{"codex", "codex", ".codex"},
	{"gemini", "gemini", ".gemini"},
	{"droid", "droid", ".factory"},
	{"cursor", "cursor", ".cursor"},
}

// Detect reports which supported targets look installed on this system:
// a binary on PATH or the CLI's home directory.
func Detect() []string {
	home, _ := os.UserHomeDir()

	var found []string
	for _, p := range detectProbes {
		if _, err := exec.LookPath(p.binary); err == nil {
			found = append(found, p.target)
			continue
		}
		if home == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(home, p.homeDir)); err == nil {
			found = append(found, p.target)
		}
	}
	return found
}
