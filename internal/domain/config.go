package domain

import "fmt"

// Category names per artifact kind. Config skip lists and weight overrides
// are validated against these.
var (
	ApexCategories = []string{
		"bulkification", "security", "testing", "architecture",
		"clean_code", "error_handling", "performance", "documentation",
	}
	FlowCategories = []string{
		"design_naming", "logic_structure", "architecture_orchestration",
		"performance_bulk", "error_handling", "security_governance",
	}
	SOQLCategories = []string{
		"syntax", "selectivity", "limits", "safety", "style",
	}
	SkillCategories = []string{
		"frontmatter", "structure", "references",
	}
)

// ValidTargets enumerates the packaging targets config may reference.
var ValidTargets = []string{
	"claude", "opencode", "codex", "gemini", "droid", "cursor", "cline",
}

// ValidLimitNames enumerates the governor limits whose thresholds can be
// overridden for debug-log analysis.
var ValidLimitNames = []string{
	"soql_queries", "dml_statements", "dml_rows",
	"cpu_time", "heap_size", "callouts",
}

// Config holds project-level configuration loaded from .forcekit.yaml.
type Config struct {
	MaxAttempts int              `yaml:"max_attempts" json:"max_attempts,omitempty"`
	Scan        ScanConfig       `yaml:"scan"         json:"scan,omitempty"`
	Plan        PlanConfig       `yaml:"plan"         json:"plan,omitempty"`
	Skip        SkipConfig       `yaml:"skip"         json:"skip,omitempty"`
	History     HistoryConfig    `yaml:"history"      json:"history,omitempty"`
	Packaging   PackagingConfig  `yaml:"packaging"    json:"packaging,omitempty"`
	Limits      map[string]int64 `yaml:"limits"       json:"limits,omitempty"`
}

// ScanConfig controls the external static-analyzer pass.
// Enabled is a pointer so that "not specified" means on.
type ScanConfig struct {
	Enabled        *bool  `yaml:"enabled"         json:"enabled,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds,omitempty"`
	RuleSelector   string `yaml:"rule_selector"   json:"rule_selector,omitempty"`
}

func (s ScanConfig) IsEnabled() bool { return s.Enabled == nil || *s.Enabled }

// PlanConfig controls live query-plan analysis against a connected org.
type PlanConfig struct {
	Enabled        *bool  `yaml:"enabled"         json:"enabled,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds,omitempty"`
	TargetOrg      string `yaml:"target_org"      json:"target_org,omitempty"`
	MaxQueries     int    `yaml:"max_queries"     json:"max_queries,omitempty"`
}

func (p PlanConfig) IsEnabled() bool { return p.Enabled == nil || *p.Enabled }

// SkipConfig excludes rules or whole categories from scoring.
type SkipConfig struct {
	Rules      []string `yaml:"rules"      json:"rules,omitempty"`
	Categories []string `yaml:"categories" json:"categories,omitempty"`
}

// HistoryConfig controls the validation history log.
type HistoryConfig struct {
	Enabled *bool `yaml:"enabled" json:"enabled,omitempty"`
}

func (h HistoryConfig) IsEnabled() bool { return h.Enabled == nil || *h.Enabled }

// PackagingConfig sets skill bundle sources and install root overrides.
type PackagingConfig struct {
	SkillsDir string            `yaml:"skills_dir" json:"skills_dir,omitempty"`
	Roots     map[string]string `yaml:"roots"      json:"roots,omitempty"`
}

// DefaultConfig returns the configuration used when no .forcekit.yaml
// exists.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Scan:        ScanConfig{TimeoutSeconds: 30, RuleSelector: "Recommended"},
		Plan:        PlanConfig{TimeoutSeconds: 15, MaxQueries: 5},
	}
}

// IsSkippedCategory reports whether the named category is excluded.
func (c Config) IsSkippedCategory(name string) bool {
	for _, s := range c.Skip.Categories {
		if s == name {
			return true
		}
	}
	return false
}

// IsSkippedRule reports whether the named rule is excluded.
func (c Config) IsSkippedRule(id string) bool {
	for _, s := range c.Skip.Rules {
		if s == id {
			return true
		}
	}
	return false
}

// Validate checks the config for invalid values and returns a descriptive
// error.
func (c Config) Validate() error {
	// 1. max_attempts must be at least 1
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1 (got %d)", c.MaxAttempts)
	}

	// 2. timeouts must be positive
	if c.Scan.TimeoutSeconds <= 0 {
		return fmt.Errorf("scan.timeout_seconds must be > 0 (got %d)", c.Scan.TimeoutSeconds)
	}
	if c.Plan.TimeoutSeconds <= 0 {
		return fmt.Errorf("plan.timeout_seconds must be > 0 (got %d)", c.Plan.TimeoutSeconds)
	}
	if c.Plan.MaxQueries < 1 {
		return fmt.Errorf("plan.max_queries must be >= 1 (got %d)", c.Plan.MaxQueries)
	}

	// 3. skip.categories must name known categories
	for _, cat := range c.Skip.Categories {
		if !isValidCategory(cat) {
			return fmt.Errorf("unknown category %q in skip.categories", cat)
		}
	}

	// 4. limits keys must name known governor limits, values positive
	for k, v := range c.Limits {
		if !isValidLimitName(k) {
			return fmt.Errorf("unknown limit %q in limits (valid: soql_queries, dml_statements, dml_rows, cpu_time, heap_size, callouts)", k)
		}
		if v <= 0 {
			return fmt.Errorf("limits[%q] = %d (must be > 0)", k, v)
		}
	}

	// 5. packaging.roots keys must name known targets
	for k := range c.Packaging.Roots {
		if !isValidTarget(k) {
			return fmt.Errorf("unknown target %q in packaging.roots (valid: claude, opencode, codex, gemini, droid, cursor, cline)", k)
		}
	}

	return nil
}

func isValidCategory(name string) bool {
	for _, set := range [][]string{ApexCategories, FlowCategories, SOQLCategories, SkillCategories} {
		for _, c := range set {
			if c == name {
				return true
			}
		}
	}
	return false
}

func isValidLimitName(name string) bool {
	for _, n := range ValidLimitNames {
		if n == name {
			return true
		}
	}
	return false
}

func isValidTarget(name string) bool {
	for _, t := range ValidTargets {
		if t == name {
			return true
		}
	}
	return false
}
