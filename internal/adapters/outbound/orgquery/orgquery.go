// Package orgquery asks a connected Salesforce org for live query plans
// through the sf CLI, which fronts the REST explain endpoint.
package orgquery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/forcekit/forcekit/internal/domain"
	"github.com/forcekit/forcekit/internal/domain/soql"
	"github.com/forcekit/forcekit/internal/logging"
)

// These surface verbatim in advisory output, so they read as sentences.
var (
	errCLIMissing = errors.New("sf CLI not found - install Salesforce CLI")
	errNoOrg      = errors.New("No Salesforce org connected. Run 'sf org login' first.")
	errEmptyQuery = errors.New("Empty query after preparation")
)

const (
	orgDisplayTimeout = 10 * time.Second
	configGetTimeout  = 5 * time.Second
)

// Planner implements domain.QueryPlanner over `sf data query --plan`.
// Org detection runs once and is cached for the life of the planner.
type Planner struct {
	cfg    domain.PlanConfig
	logger hclog.Logger

	mu     sync.Mutex
	cached *org
}

type org struct {
	available bool
	name      string
}

func New(cfg domain.PlanConfig) *Planner {
	return &Planner{cfg: cfg, logger: logging.New("orgquery")}
}

// TargetOrg returns the org alias or username plans will run against.
func (p *Planner) TargetOrg(ctx context.Context) (string, error) {
	if _, err := exec.LookPath("sf"); err != nil {
		return "", errCLIMissing
	}
	current := p.checkOrg(ctx)
	if !current.available {
		return "", errNoOrg
	}
	return current.name, nil
}

// Plan fetches the execution plan for one query. The query may carry Apex
// bind variables and mode clauses; those are rewritten before the call.
func (p *Planner) Plan(ctx context.Context, query string) (*domain.QueryPlan, error) {
	if _, err := exec.LookPath("sf"); err != nil {
		return nil, errCLIMissing
	}
	current := p.checkOrg(ctx)
	if !current.available {
		return nil, errNoOrg
	}

	prepared := soql.PrepareQuery(query)
	if prepared == "" {
		return nil, errEmptyQuery
	}

	args := []string{"data", "query", "--query", prepared, "--plan", "--json"}
	if current.name != "" {
		args = append(args, "--target-org", current.name)
	}

	timeout := time.Duration(p.cfg.TimeoutSeconds) * time.Second
	stdout, stderr, err := run(ctx, timeout, args...)
	if errors.Is(err, context.DeadlineExceeded) {
		p.logger.Warn("query plan timed out", "timeout_seconds", p.cfg.TimeoutSeconds)
		return nil, fmt.Errorf("Query plan timed out after %ds", p.cfg.TimeoutSeconds)
	}
	if err != nil {
		return nil, errors.New(truncate(cliError(stdout, stderr), 200))
	}

	return parsePlan(stdout, query)
}

// checkOrg resolves the org to plan against, preferring the configured
// alias and falling back to the CLI's default target-org.
func (p *Planner) checkOrg(ctx context.Context) org {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != nil {
		return *p.cached
	}

	resolved := p.probeOrg(ctx)
	p.cached = &resolved
	if resolved.available {
		p.logger.Debug("org resolved", "target_org", resolved.name)
	} else {
		p.logger.Debug("no org connected")
	}
	return resolved
}

func (p *Planner) probeOrg(ctx context.Context) org {
	if p.cfg.TargetOrg != "" {
		_, _, err := run(ctx, orgDisplayTimeout, "org", "display", "--target-org", p.cfg.TargetOrg, "--json")
		if err == nil {
			return org{available: true, name: p.cfg.TargetOrg}
		}
	}

	stdout, _, err := run(ctx, configGetTimeout, "config", "get", "target-org", "--json")
	if err != nil {
		return org{}
	}

	var resp struct {
		Result []struct {
			Value string `json:"value"`
		} `json:"result"`
	}
	if json.Unmarshal([]byte(stdout), &resp) != nil || len(resp.Result) == 0 || resp.Result[0].Value == "" {
		return org{}
	}
	return org{available: true, name: resp.Result[0].Value}
}

// run executes one sf invocation with its own deadline. A deadline hit is
// reported as context.DeadlineExceeded regardless of how the process died.
func run(ctx context.Context, timeout time.Duration, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "sf", args...)
	// Unblocks Wait when a child of the killed CLI keeps the pipes open.
	cmd.WaitDelay = time.Second
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		err = context.DeadlineExceeded
	}
	return stdout.String(), stderr.String(), err
}

// cliError extracts a readable message from a failed sf call. The CLI puts
// structured errors on stdout as JSON even when exiting non-zero.
func cliError(stdout, stderr string) string {
	var resp struct {
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(stdout), &resp) == nil && resp.Message != "" {
		return resp.Message
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		return msg
	}
	return "Query plan failed"
}

type planDoc struct {
	RelativeCost         float64    `json:"relativeCost"`
	LeadingOperationType string     `json:"leadingOperationType"`
	Cardinality          int64      `json:"cardinality"`
	SObjectCardinality   int64      `json:"sobjectCardinality"`
	SObjectType          string     `json:"sobjectType"`
	Fields               []string   `json:"fields"`
	Notes                []planNote `json:"notes"`
}

type planNote struct {
	Description string `json:"description"`
}

// parsePlan reads the first plan from the response. No plans at all is a
// valid outcome and maps to a zero-cost NoPlan result.
func parsePlan(stdout, original string) (*domain.QueryPlan, error) {
	var resp struct {
		Result struct {
			Plans []planDoc `json:"plans"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		return nil, fmt.Errorf("parsing plan response: %w", err)
	}

	plans := resp.Result.Plans
	if plans == nil {
		// Raw explain responses are not wrapped in a result envelope.
		var bare struct {
			Plans []planDoc `json:"plans"`
		}
		if json.Unmarshal([]byte(stdout), &bare) == nil {
			plans = bare.Plans
		}
	}

	if len(plans) == 0 {
		return &domain.QueryPlan{
			LeadingOperation: "NoPlan",
			SObjectType:      soql.SObjectOf(original),
		}, nil
	}

	doc := plans[0]
	plan := &domain.QueryPlan{
		RelativeCost:       doc.RelativeCost,
		Cardinality:        doc.Cardinality,
		SObjectCardinality: doc.SObjectCardinality,
		SObjectType:        doc.SObjectType,
		LeadingOperation:   doc.LeadingOperationType,
		Fields:             doc.Fields,
	}
	if plan.SObjectType == "" {
		plan.SObjectType = soql.SObjectOf(original)
	}
	if plan.LeadingOperation == "" {
		plan.LeadingOperation = "Unknown"
	}
	for _, note := range doc.Notes {
		if note.Description != "" {
			plan.Notes = append(plan.Notes, note.Description)
		}
	}
	return plan, nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
