package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/forcekit/forcekit/internal/adapters/outbound/config"
	"github.com/forcekit/forcekit/internal/domain"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".forcekit.yaml"), []byte(content), 0644))
}

func TestYAMLLoader_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_ExplicitValuesOverlayDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
max_attempts: 5
limits:
  soql_queries: 50
skip:
  rules:
    - apex-missing-sharing
`)
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, int64(50), cfg.Limits["soql_queries"])
	assert.Equal(t, []string{"apex-missing-sharing"}, cfg.Skip.Rules)

	// Untouched fields keep their defaults.
	assert.Equal(t, 30, cfg.Scan.TimeoutSeconds)
	assert.Equal(t, 15, cfg.Plan.TimeoutSeconds)
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{{{invalid yaml`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .forcekit.yaml")
}

func TestYAMLLoader_RejectsUnknownCategory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
skip:
  categories:
    - typo_category
`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid .forcekit.yaml")
	assert.Contains(t, err.Error(), "typo_category")
}

func TestYAMLLoader_RejectsUnknownPackagingTarget(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
packaging:
  roots:
    emacs: ~/.emacs.d/skills
`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown target "emacs"`)
}

func TestYAMLLoader_PackagingRoots(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
packaging:
  skills_dir: ./skills
  roots:
    gemini: /opt/gemini/skills
`)
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "./skills", cfg.Packaging.SkillsDir)
	assert.Equal(t, "/opt/gemini/skills", cfg.Packaging.Roots["gemini"])
}

func TestYAMLLoader_EmptyFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_DisableScan(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
scan:
  enabled: false
`)
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.False(t, cfg.Scan.IsEnabled())
	assert.True(t, cfg.Plan.IsEnabled())
}
