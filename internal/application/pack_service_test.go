package application_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcekit/forcekit/internal/application"
	"github.com/forcekit/forcekit/internal/domain"
	"github.com/forcekit/forcekit/internal/domain/skills"
)

type fakePackager struct {
	name     string
	ruleFile bool // emit Extra instead of SkillMD, like rule-file targets
}

func (f *fakePackager) Name() string { return f.name }
func (f *fakePackager) DefaultRoot(projectDir string) (string, error) {
	return filepath.Join(projectDir, "."+f.name), nil
}
func (f *fakePackager) Target(root, name string) string {
	return filepath.Join(root, name)
}
func (f *fakePackager) Transform(b *skills.Bundle) (*skills.Transformed, error) {
	if f.ruleFile {
		return &skills.Transformed{Extra: map[string]string{b.Name + ".md": "rule: " + b.Name}}, nil
	}
	return &skills.Transformed{SkillMD: b.SkillMD}, nil
}
func (f *fakePackager) Write(out *skills.Transformed, root, name string) error {
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(out.SkillMD), 0644)
}

// newSkillsDir lays out n minimal skill bundles named skill-1..skill-n.
func newSkillsDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("skill-%d", i)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0755))
		md := "---\nname: " + name + "\n---\n\n# " + name + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name, "SKILL.md"), []byte(md), 0644))
	}
	return dir
}

func newPackService(packagers ...application.SkillPackager) *application.PackService {
	return application.NewPackService(domain.DefaultConfig(), packagers)
}

func TestPack_SkillsListsBundles(t *testing.T) {
	dir := newSkillsDir(t, 2)
	svc := newPackService(&fakePackager{name: "fake"})

	names, err := svc.Skills(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"skill-1", "skill-2"}, names)
}

func TestPack_InstallAllSkills(t *testing.T) {
	dir := newSkillsDir(t, 2)
	project := t.TempDir()
	svc := newPackService(&fakePackager{name: "fake"})

	summaries, err := svc.Install(application.InstallRequest{
		SkillsDir:  dir,
		ProjectDir: project,
		Targets:    []string{"fake"},
	})
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	assert.Equal(t, "fake", summaries[0].Target)
	assert.Equal(t, []string{"skill-1", "skill-2"}, summaries[0].Installed)
	assert.FileExists(t, filepath.Join(project, ".fake", "skill-1", "SKILL.md"))
}

func TestPack_InstallSkipsExisting(t *testing.T) {
	dir := newSkillsDir(t, 1)
	project := t.TempDir()
	svc := newPackService(&fakePackager{name: "fake"})

	req := application.InstallRequest{
		SkillsDir:  dir,
		ProjectDir: project,
		Targets:    []string{"fake"},
	}
	_, err := svc.Install(req)
	require.NoError(t, err)

	summaries, err := svc.Install(req)
	require.NoError(t, err)
	assert.Empty(t, summaries[0].Installed)
	assert.Equal(t, []string{"skill-1"}, summaries[0].Skipped)
}

func TestPack_InstallForceReinstalls(t *testing.T) {
	dir := newSkillsDir(t, 1)
	project := t.TempDir()
	svc := newPackService(&fakePackager{name: "fake"})

	req := application.InstallRequest{
		SkillsDir:  dir,
		ProjectDir: project,
		Targets:    []string{"fake"},
	}
	_, err := svc.Install(req)
	require.NoError(t, err)

	req.Force = true
	summaries, err := svc.Install(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"skill-1"}, summaries[0].Installed)
	assert.Empty(t, summaries[0].Skipped)
}

func TestPack_InstallUnknownTarget(t *testing.T) {
	svc := newPackService(&fakePackager{name: "fake"})

	_, err := svc.Install(application.InstallRequest{
		SkillsDir: newSkillsDir(t, 1),
		Targets:   []string{"nope"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target")
}

func TestPack_InstallUnknownSkill(t *testing.T) {
	svc := newPackService(&fakePackager{name: "fake"})

	_, err := svc.Install(application.InstallRequest{
		SkillsDir: newSkillsDir(t, 1),
		Targets:   []string{"fake"},
		Skills:    []string{"missing"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown skill")
}

func TestPack_PreviewSkillMD(t *testing.T) {
	dir := newSkillsDir(t, 1)
	svc := newPackService(&fakePackager{name: "fake"})

	out, err := svc.Preview(dir, "skill-1", "fake")
	require.NoError(t, err)
	assert.Contains(t, out, "# skill-1")
}

func TestPack_PreviewRuleFileTarget(t *testing.T) {
	dir := newSkillsDir(t, 1)
	svc := newPackService(&fakePackager{name: "rules", ruleFile: true})

	out, err := svc.Preview(dir, "skill-1", "rules")
	require.NoError(t, err)
	assert.Equal(t, "rule: skill-1", out)
}
