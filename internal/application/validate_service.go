package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/forcekit/forcekit/internal/domain"
	"github.com/forcekit/forcekit/internal/domain/apex"
	"github.com/forcekit/forcekit/internal/domain/flow"
	"github.com/forcekit/forcekit/internal/domain/skillmd"
	"github.com/forcekit/forcekit/internal/domain/soql"
	"github.com/forcekit/forcekit/internal/logging"
)

// ErrUnsupportedArtifact marks paths no validator claims.
var ErrUnsupportedArtifact = errors.New("unsupported artifact type")

// ValidateService scores a single Salesforce artifact: validator run,
// optional external scan merge, optional live query plan, history append.
// Collaborator failures degrade the report, they never fail the run.
type ValidateService struct {
	cfg     domain.Config
	scanner domain.ExternalScanner
	planner domain.QueryPlanner
	history domain.ValidationHistory
	commits domain.CommitReader
	logger  hclog.Logger
}

// NewValidateService creates a ValidateService with all required dependencies.
// The config is loaded once by the composition root; hook and CLI runs are
// one-shot processes, so it cannot go stale.
func NewValidateService(
	cfg domain.Config,
	scanner domain.ExternalScanner,
	planner domain.QueryPlanner,
	history domain.ValidationHistory,
	commits domain.CommitReader,
) *ValidateService {
	return &ValidateService{
		cfg: cfg, scanner: scanner, planner: planner,
		history: history, commits: commits,
		logger: logging.New("validate"),
	}
}

// Validate scores one artifact and appends the outcome to the project
// history. An unreadable file yields a zero-score report rather than an
// error; only a path no validator claims is rejected.
func (s *ValidateService) Validate(ctx context.Context, projectPath, artifactPath string) (*domain.ValidationReport, error) {
	// 1. Classify by suffix
	kind := domain.DetectKind(artifactPath)
	if kind == domain.KindUnknown || kind == domain.KindCredential {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArtifact, filepath.Base(artifactPath))
	}

	// 2. Load and score
	art, err := domain.LoadArtifact(artifactPath)
	if err != nil {
		s.logger.Debug("artifact unreadable", "path", artifactPath, "error", err)
		return domain.Unreadable(artifactPath, kind, err), nil
	}
	report := s.dispatch(art)

	// 3. External scan, Apex classes and triggers only
	if kind == domain.KindApex && s.cfg.Scan.IsEnabled() {
		status, violations := s.scanner.Scan(ctx, artifactPath)
		report.MergeExternal(status, violations, domain.LadderFor(kind))
	}

	// 4. Live query plan, whole-file queries only
	if kind == domain.KindSOQL && s.cfg.Plan.IsEnabled() {
		s.enrichPlan(ctx, art, report)
	}

	// 5. Record the outcome
	s.record(projectPath, report)

	return report, nil
}

func (s *ValidateService) dispatch(art *domain.Artifact) *domain.ValidationReport {
	switch art.Kind {
	case domain.KindApex:
		return apex.Validate(art, s.cfg)
	case domain.KindAnonApex:
		return soql.ValidateScript(art, s.cfg)
	case domain.KindFlow:
		return flow.Validate(art, s.cfg)
	case domain.KindSOQL:
		return soql.Validate(art, s.cfg)
	default:
		return skillmd.Validate(art, s.cfg)
	}
}

// enrichPlan attaches the org's selectivity estimate to a .soql report.
// Planner outcomes land in Meta so renderers can say what is missing:
// "plan"=unavailable when no org answers, "plan_error" when the org
// rejects the query.
func (s *ValidateService) enrichPlan(ctx context.Context, art *domain.Artifact, report *domain.ValidationReport) {
	if report.Meta == nil {
		report.Meta = make(map[string]string)
	}

	orgName, err := s.planner.TargetOrg(ctx)
	if err != nil {
		report.Meta["plan"] = "unavailable"
		s.logger.Debug("query plan skipped", "reason", err)
		return
	}
	report.Meta["org"] = orgName

	q, ok := soql.ExtractFile(art.Content)
	if !ok {
		return
	}

	plan, err := s.planner.Plan(ctx, q.Text)
	if err != nil {
		report.Meta["plan_error"] = err.Error()
		return
	}

	report.Plans = append(report.Plans, soql.Assess(q, *plan))
	report.Recommendations = append(report.Recommendations, soql.PlanSuggestions(*plan)...)
}

// record appends the outcome to the project history. Bookkeeping failures
// are logged and dropped; a report is never blocked on them.
func (s *ValidateService) record(projectPath string, report *domain.ValidationReport) {
	if !s.cfg.History.IsEnabled() {
		return
	}

	commit := "none"
	if s.commits.IsRepo(projectPath) {
		if hash, err := s.commits.CommitHash(projectPath); err == nil && hash != "" {
			commit = hash
		}
	}

	entry := domain.HistoryEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		CommitHash: commit,
		Artifact:   report.Artifact,
		Kind:       report.Kind,
		Score:      report.Score,
		MaxScore:   report.MaxScore,
		Stars:      report.Stars,
	}
	if err := s.history.Save(projectPath, entry); err != nil {
		s.logger.Warn("history append failed", "error", err)
	}
}
