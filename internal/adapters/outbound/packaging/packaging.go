// Package packaging rewrites skill bundles into the directory layouts
// of supported agentic CLI targets and installs them.
//
// Five targets follow the agent-skills standard layout
// (SKILL.md, scripts/, references/, assets/, examples/); cursor and
// cline use their own rule formats and lay files out themselves.
package packaging

import (
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/forcekit/forcekit/internal/domain/skills"
)

// TransformedSkill is a bundle rewritten for one target. The type lives
// with the bundle model so the application layer can consume transforms
// through the domain port.
type TransformedSkill = skills.Transformed

// Adapter rewrites and installs skill bundles for one target CLI.
type Adapter interface {
	// Name is the target identifier used by config and flags.
	Name() string
	// DefaultRoot resolves the install root when config does not
	// override it. projectDir anchors project-local targets.
	DefaultRoot(projectDir string) (string, error)
	// Target is the path whose existence marks the skill as already
	// installed. Forced reinstalls remove it first.
	Target(root, name string) string
	// Transform rewrites the bundle for this target.
	Transform(b *skills.Bundle) (*TransformedSkill, error)
	// Write lays the transformed bundle out under root.
	Write(out *TransformedSkill, root, name string) error
}

// Registry returns the supported adapters in display order.
func Registry() []Adapter {
	return []Adapter{
		Claude{}, OpenCode{}, Codex{}, Gemini{}, Droid{}, Cursor{}, Cline{},
	}
}

// ByName returns the adapter for a target name.
func ByName(name string) (Adapter, bool) {
	for _, a := range Registry() {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// identity copies a bundle into a TransformedSkill without rewriting.
func identity(b *skills.Bundle) *TransformedSkill {
	return &TransformedSkill{
		SkillMD:   b.SkillMD,
		Scripts:   maps.Clone(b.Scripts),
		Templates: maps.Clone(b.Templates),
		Docs:      maps.Clone(b.Docs),
		Examples:  maps.Clone(b.Examples),
	}
}

// bundleShared adds the shared script modules under scripts/shared when
// the bundle's scripts import them.
func bundleShared(out *TransformedSkill, b *skills.Bundle) {
	if !skills.NeedsSharedModules(out.Scripts) {
		return
	}
	for rel, content := range skills.SharedModules(b) {
		out.Scripts["shared/"+rel] = content
	}
}

// writeAgentSkill lays out the agent-skills standard directory: SKILL.md
// at the top, scripts/, assets/ for templates, references/ for docs and
// examples/.
func writeAgentSkill(out *TransformedSkill, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(out.SkillMD), 0o644); err != nil {
		return err
	}
	if err := writeTree(filepath.Join(dir, "scripts"), out.Scripts); err != nil {
		return err
	}
	if err := writeTree(filepath.Join(dir, "assets"), out.Templates); err != nil {
		return err
	}
	if err := writeTree(filepath.Join(dir, "references"), out.Docs); err != nil {
		return err
	}
	if err := writeTree(filepath.Join(dir, "examples"), out.Examples); err != nil {
		return err
	}
	return writeTree(dir, out.Extra)
}

// writeTree writes files keyed by relative path under dir, creating
// parent directories as needed. A nil map writes nothing.
func writeTree(dir string, files map[string]string) error {
	for rel, content := range files {
		fp := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(fp, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// expandHome resolves a leading ~/ against the given home directory.
func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
