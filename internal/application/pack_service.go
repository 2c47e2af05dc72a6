package application

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/forcekit/forcekit/internal/domain"
	"github.com/forcekit/forcekit/internal/domain/skills"
	"github.com/forcekit/forcekit/internal/logging"
)

// SkillPackager rewrites and installs skill bundles for one target CLI.
// The packaging adapters satisfy this interface.
type SkillPackager interface {
	Name() string
	DefaultRoot(projectDir string) (string, error)
	Target(root, name string) string
	Transform(b *skills.Bundle) (*skills.Transformed, error)
	Write(out *skills.Transformed, root, name string) error
}

// InstallRequest selects what to install and where.
type InstallRequest struct {
	SkillsDir  string   // bundle source; config default when empty
	ProjectDir string   // anchors project-local targets
	Targets    []string // packager names
	Skills     []string // skill names; empty means all discovered
	Force      bool     // reinstall over existing skills
}

// TargetSummary is the install outcome for one target CLI.
type TargetSummary struct {
	Target    string   `json:"target"`
	Root      string   `json:"root"`
	Installed []string `json:"installed,omitempty"`
	Skipped   []string `json:"skipped,omitempty"`
	Failed    []string `json:"failed,omitempty"`
}

// PackService repackages skill bundles into target-CLI layouts.
type PackService struct {
	cfg       domain.Config
	packagers []SkillPackager
	logger    hclog.Logger
}

// NewPackService creates a PackService over the available packagers.
func NewPackService(cfg domain.Config, packagers []SkillPackager) *PackService {
	return &PackService{cfg: cfg, packagers: packagers, logger: logging.New("pack")}
}

// Skills lists the skill bundles under dir, sorted by name.
func (s *PackService) Skills(dir string) ([]string, error) {
	return skills.Discover(s.skillsDir(dir))
}

// Install repackages the selected skills for every requested target.
// Unknown targets and unknown skill names fail up front; a skill that
// fails mid-install lands in the summary's Failed list and the rest of
// the batch continues.
func (s *PackService) Install(req InstallRequest) ([]TargetSummary, error) {
	// 1. Resolve targets against the available packagers
	packagers := make([]SkillPackager, 0, len(req.Targets))
	for _, name := range req.Targets {
		p, err := s.packager(name)
		if err != nil {
			return nil, err
		}
		packagers = append(packagers, p)
	}
	if len(packagers) == 0 {
		return nil, fmt.Errorf("no targets selected")
	}

	// 2. Resolve the skill selection
	names, err := s.selectSkills(req)
	if err != nil {
		return nil, err
	}

	// 3. Install per target
	summaries := make([]TargetSummary, 0, len(packagers))
	for _, p := range packagers {
		summaries = append(summaries, s.installTarget(p, req, names))
	}
	return summaries, nil
}

// Preview returns the transformed SKILL.md (or rule file) one target
// would install for a skill, without writing anything.
func (s *PackService) Preview(dir, skillName, target string) (string, error) {
	p, err := s.packager(target)
	if err != nil {
		return "", err
	}

	b, err := skills.Load(filepath.Join(s.skillsDir(dir), skillName))
	if err != nil {
		return "", err
	}
	out, err := p.Transform(b)
	if err != nil {
		return "", fmt.Errorf("transforming %s for %s: %w", skillName, target, err)
	}
	if out.SkillMD != "" {
		return out.SkillMD, nil
	}

	// Rule-file targets carry their content in Extra.
	keys := make([]string, 0, len(out.Extra))
	for k := range out.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return "", fmt.Errorf("%s transform produced no document for %s", target, skillName)
	}
	return out.Extra[keys[0]], nil
}

func (s *PackService) packager(name string) (SkillPackager, error) {
	for _, p := range s.packagers {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown target %q (valid: %v)", name, domain.ValidTargets)
}

func (s *PackService) skillsDir(dir string) string {
	if dir != "" {
		return dir
	}
	if s.cfg.Packaging.SkillsDir != "" {
		return s.cfg.Packaging.SkillsDir
	}
	return "skills"
}

func (s *PackService) selectSkills(req InstallRequest) ([]string, error) {
	available, err := skills.Discover(s.skillsDir(req.SkillsDir))
	if err != nil {
		return nil, fmt.Errorf("discovering skills: %w", err)
	}
	if len(req.Skills) == 0 {
		return available, nil
	}

	known := make(map[string]bool, len(available))
	for _, n := range available {
		known[n] = true
	}
	for _, n := range req.Skills {
		if !known[n] {
			return nil, fmt.Errorf("unknown skill %q (available: %v)", n, available)
		}
	}
	return req.Skills, nil
}

func (s *PackService) installTarget(p SkillPackager, req InstallRequest, names []string) TargetSummary {
	summary := TargetSummary{Target: p.Name()}

	root, ok := s.cfg.Packaging.Roots[p.Name()]
	if !ok {
		var err error
		root, err = p.DefaultRoot(req.ProjectDir)
		if err != nil {
			summary.Failed = append(summary.Failed,
				fmt.Sprintf("resolving install root: %v", err))
			return summary
		}
	}
	summary.Root = root

	for _, name := range names {
		if err := s.installSkill(p, req, root, name); err != nil {
			if errors.Is(err, os.ErrExist) {
				summary.Skipped = append(summary.Skipped, name)
				continue
			}
			s.logger.Warn("skill install failed",
				"target", p.Name(), "skill", name, "error", err)
			summary.Failed = append(summary.Failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		summary.Installed = append(summary.Installed, name)
	}
	return summary
}

func (s *PackService) installSkill(p SkillPackager, req InstallRequest, root, name string) error {
	target := p.Target(root, name)
	if _, err := os.Stat(target); err == nil {
		if !req.Force {
			return os.ErrExist
		}
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("removing previous install: %w", err)
		}
	}

	b, err := skills.Load(filepath.Join(s.skillsDir(req.SkillsDir), name))
	if err != nil {
		return err
	}
	out, err := p.Transform(b)
	if err != nil {
		return fmt.Errorf("transforming: %w", err)
	}
	return p.Write(out, root, name)
}
