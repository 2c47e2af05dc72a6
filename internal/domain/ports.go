package domain

import "context"

// ConfigLoader loads project configuration, falling back to defaults when
// no config file exists.
type ConfigLoader interface {
	Load(projectPath string) (Config, error)
}

// ExternalScanner runs an external static analyzer over one artifact.
// An absent or broken analyzer is reported through ScanStatus, never as an
// error that fails validation.
type ExternalScanner interface {
	Scan(ctx context.Context, path string) (*ScanStatus, []ExternalViolation)
}

// QueryPlanner asks a connected org for the execution plan of one query.
type QueryPlanner interface {
	TargetOrg(ctx context.Context) (string, error)
	Plan(ctx context.Context, query string) (*QueryPlan, error)
}

// QueryPlan is the org's selectivity estimate for one query.
type QueryPlan struct {
	RelativeCost       float64  `json:"relative_cost"`
	Cardinality        int64    `json:"cardinality"`
	SObjectCardinality int64    `json:"sobject_cardinality"`
	SObjectType        string   `json:"sobject_type,omitempty"`
	LeadingOperation   string   `json:"leading_operation"`
	Fields             []string `json:"fields,omitempty"`
	Notes              []string `json:"notes,omitempty"`
}

// Selective reports whether the plan can use an index instead of scanning
// the full data set.
func (p QueryPlan) Selective() bool { return p.RelativeCost <= 1.0 }

// CostRating maps relative cost to a coarse label.
func (p QueryPlan) CostRating() string {
	switch {
	case p.RelativeCost <= 0.5:
		return "Excellent"
	case p.RelativeCost <= 1.0:
		return "Good (Selective)"
	case p.RelativeCost <= 2.0:
		return "Fair (Non-selective)"
	case p.RelativeCost <= 5.0:
		return "Poor"
	default:
		return "Critical"
	}
}

// AttemptCounter tracks repeated validation attempts per key. Implemented
// as a small file-backed map; read-modify-write without locking is accepted
// because the mediating caller runs at most one hook per artifact at a time.
type AttemptCounter interface {
	Get(key string) (int, error)
	Increment(key string) (int, error)
	Reset(key string) error
}

// HistoryEntry is one recorded validation outcome.
type HistoryEntry struct {
	Timestamp  string       `json:"timestamp"`
	CommitHash string       `json:"commit_hash,omitempty"`
	Artifact   string       `json:"artifact"`
	Kind       ArtifactKind `json:"kind"`
	Score      int          `json:"score"`
	MaxScore   int          `json:"max_score"`
	Stars      int          `json:"stars"`
}

// ValidationHistory persists validation outcomes per project.
type ValidationHistory interface {
	Save(projectPath string, entry HistoryEntry) error
	Load(projectPath string) ([]HistoryEntry, error)
}

// CommitReader reports version-control state for history stamping.
type CommitReader interface {
	IsRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
}
