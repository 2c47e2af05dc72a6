package packaging

import (
	"os"
	"path/filepath"

	"github.com/forcekit/forcekit/internal/domain/skills"
)

// common applies the rewrite every non-claude target needs: plugin
// marketplace paths only resolve inside the authoring host.
func common(b *skills.Bundle) *TransformedSkill {
	out := identity(b)
	out.SkillMD = skills.StripPluginPaths(out.SkillMD)
	return out
}

// Claude installs bundles unchanged; skills are authored in the layout
// Claude Code loads.
type Claude struct{}

func (Claude) Name() string { return "claude" }

func (Claude) DefaultRoot(projectDir string) (string, error) {
	return filepath.Join(projectDir, ".claude", "skills"), nil
}

func (Claude) Target(root, name string) string { return filepath.Join(root, name) }

func (Claude) Transform(b *skills.Bundle) (*TransformedSkill, error) {
	return identity(b), nil
}

func (Claude) Write(out *TransformedSkill, root, name string) error {
	return writeAgentSkill(out, filepath.Join(root, name))
}

// OpenCode follows the agent-skills standard under the project-level
// .opencode/skill directory.
type OpenCode struct{}

func (OpenCode) Name() string { return "opencode" }

func (OpenCode) DefaultRoot(projectDir string) (string, error) {
	return filepath.Join(projectDir, ".opencode", "skill"), nil
}

func (OpenCode) Target(root, name string) string { return filepath.Join(root, name) }

func (OpenCode) Transform(b *skills.Bundle) (*TransformedSkill, error) {
	return common(b), nil
}

func (OpenCode) Write(out *TransformedSkill, root, name string) error {
	return writeAgentSkill(out, filepath.Join(root, name))
}

// Gemini installs into the user-level Gemini CLI skill directory.
type Gemini struct{}

func (Gemini) Name() string { return "gemini" }

func (Gemini) DefaultRoot(string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gemini", "skills"), nil
}

func (Gemini) Target(root, name string) string { return filepath.Join(root, name) }

func (Gemini) Transform(b *skills.Bundle) (*TransformedSkill, error) {
	return common(b), nil
}

func (Gemini) Write(out *TransformedSkill, root, name string) error {
	return writeAgentSkill(out, filepath.Join(root, name))
}
