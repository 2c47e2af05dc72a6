package packaging

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/forcekit/forcekit/internal/domain/skills"
)

// Codex installs into the Codex home directory. A skills_path set in
// ~/.codex/config.toml overrides the default root.
type Codex struct{}

func (Codex) Name() string { return "codex" }

func (Codex) DefaultRoot(string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	var cfg struct {
		SkillsPath string `toml:"skills_path"`
	}
	data, err := os.ReadFile(filepath.Join(home, ".codex", "config.toml"))
	if err == nil && toml.Unmarshal(data, &cfg) == nil && cfg.SkillsPath != "" {
		return expandHome(cfg.SkillsPath, home), nil
	}
	return filepath.Join(home, ".codex", "skills"), nil
}

func (Codex) Target(root, name string) string { return filepath.Join(root, name) }

func (Codex) Transform(b *skills.Bundle) (*TransformedSkill, error) {
	return common(b), nil
}

func (Codex) Write(out *TransformedSkill, root, name string) error {
	return writeAgentSkill(out, filepath.Join(root, name))
}
