package application

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/forcekit/forcekit/internal/domain"
	"github.com/forcekit/forcekit/internal/domain/soql"
	"github.com/forcekit/forcekit/internal/logging"
)

// PlanOutcome is one query planned against a live org.
type PlanOutcome struct {
	Org         string            `json:"org"`
	Query       string            `json:"query"`
	Prepared    string            `json:"prepared_query,omitempty"`
	Plan        *domain.QueryPlan `json:"plan"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// PlanService runs ad-hoc query-plan analysis outside the validate
// pipeline, for the plan command and the MCP query_plan tool.
type PlanService struct {
	planner domain.QueryPlanner
	logger  hclog.Logger
}

// NewPlanService creates a PlanService around a query planner.
func NewPlanService(planner domain.QueryPlanner) *PlanService {
	return &PlanService{planner: planner, logger: logging.New("plan")}
}

// Explain resolves the target org and plans one query. Unlike hook
// enrichment this is an explicit user request, so an unavailable org or
// a rejected query comes back as an error instead of a silent omission.
func (s *PlanService) Explain(ctx context.Context, query string) (*PlanOutcome, error) {
	org, err := s.planner.TargetOrg(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving target org: %w", err)
	}

	// Bind variables are substituted and org-mode clauses stripped; the
	// explain endpoint rejects both.
	prepared := soql.PrepareQuery(query)
	plan, err := s.planner.Plan(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("planning query: %w", err)
	}

	s.logger.Debug("query planned", "org", org, "cost", plan.RelativeCost)
	outcome := &PlanOutcome{
		Org:         org,
		Query:       query,
		Plan:        plan,
		Suggestions: soql.PlanSuggestions(*plan),
	}
	if prepared != query {
		outcome.Prepared = prepared
	}
	return outcome, nil
}
