package packaging

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/forcekit/forcekit/internal/domain/skills"
)

// Droid installs into Factory's project-level skill directory. Droid
// reads the Claude skill layout directly, so the transform only appends
// a usage section and bundles the shared script modules.
type Droid struct{}

func (Droid) Name() string { return "droid" }

func (Droid) DefaultRoot(projectDir string) (string, error) {
	return filepath.Join(projectDir, ".factory", "skills"), nil
}

func (Droid) Target(root, name string) string { return filepath.Join(root, name) }

func (Droid) Transform(b *skills.Bundle) (*TransformedSkill, error) {
	out := common(b)
	if !strings.Contains(out.SkillMD, droidUsageHeading) {
		out.SkillMD += droidUsage(b.Name)
	}
	bundleShared(out, b)
	return out, nil
}

func (Droid) Write(out *TransformedSkill, root, name string) error {
	return writeAgentSkill(out, filepath.Join(root, name))
}

const droidUsageHeading = "## Droid CLI Usage"

func droidUsage(name string) string {
	return fmt.Sprintf(`

---

%s

This skill is compatible with Factory.ai Droid CLI (v0.26.0+). To use:

`+"```bash"+`
# Skills are auto-discovered from .factory/skills/%s/
# Use the /skills command to manage skills

# To run validation scripts manually:
cd .factory/skills/%s/scripts
python validate_*.py path/to/your/file
`+"```"+`

### Features

Droid CLI with this skill provides:
- Claude Code skills compatibility
- Auto-discovery from .claude/skills/ directory
- Self-healing and auto-debugging capabilities
- Custom Droids for specialized workflows

### Enabling Skills

Ensure Custom Droids are enabled:
`+"```bash"+`
# Via settings
/settings → Experimental → Custom Droids

# Or add to ~/.factory/settings.json
{"enableCustomDroids": true}
`+"```"+`

See `+"`scripts/README.md`"+` for validation script usage.
`, droidUsageHeading, name, name)
}
