// Package scanner shells out to Salesforce Code Analyzer and normalizes its
// findings for the composite score. A missing or failing analyzer degrades to
// an unavailable status so validation continues with custom rules only.
package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/forcekit/forcekit/internal/domain"
	"github.com/forcekit/forcekit/internal/logging"
)

// CodeAnalyzer implements domain.ExternalScanner by invoking
// `sf code-analyzer run` and reading the JSON results file it writes.
type CodeAnalyzer struct {
	cfg    domain.ScanConfig
	logger hclog.Logger
}

func New(cfg domain.ScanConfig) *CodeAnalyzer {
	return &CodeAnalyzer{cfg: cfg, logger: logging.New("scanner")}
}

// severityNames maps the analyzer's numeric severities to report labels.
var severityNames = map[int]string{
	1: domain.SeverityCritical,
	2: domain.SeverityHigh,
	3: domain.SeverityModerate,
	4: domain.SeverityLow,
	5: domain.SeverityInfo,
}

// analyzerResults is the document `sf code-analyzer run` writes through
// --output-file. Versions lists the engines that ran keyed by name.
type analyzerResults struct {
	Versions   map[string]string   `json:"versions"`
	Violations []analyzerViolation `json:"violations"`
}

type analyzerViolation struct {
	Rule                 string             `json:"rule"`
	Engine               string             `json:"engine"`
	Severity             int                `json:"severity"`
	Message              string             `json:"message"`
	PrimaryLocationIndex *int               `json:"primaryLocationIndex"`
	Locations            []analyzerLocation `json:"locations"`
}

type analyzerLocation struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
}

// Scan runs the analyzer over one artifact. Failures never surface as
// errors: the returned status carries what went wrong and the caller keeps
// its custom-rule result.
func (s *CodeAnalyzer) Scan(ctx context.Context, path string) (*domain.ScanStatus, []domain.ExternalViolation) {
	if _, err := exec.LookPath("sf"); err != nil {
		return &domain.ScanStatus{Error: "sf CLI not found - install Salesforce CLI"}, nil
	}

	out, err := os.CreateTemp("", "forcekit-scan-*.json")
	if err != nil {
		return &domain.ScanStatus{Error: fmt.Sprintf("creating results file: %v", err)}, nil
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	args := []string{
		"code-analyzer", "run",
		"--workspace", path,
		"--rule-selector", s.cfg.RuleSelector,
		"--output-file", outPath,
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, "sf", args...)
	// Unblocks Wait when a child of the killed CLI keeps stderr open.
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	if ctx.Err() == context.DeadlineExceeded {
		s.logger.Warn("scan timed out", "path", path, "timeout_seconds", s.cfg.TimeoutSeconds)
		return &domain.ScanStatus{
			ElapsedMS: elapsed,
			Error:     fmt.Sprintf("scan timed out after %ds", s.cfg.TimeoutSeconds),
		}, nil
	}
	if runErr != nil {
		// The analyzer exits non-zero when findings cross its severity
		// threshold. Results written before exit still count.
		s.logger.Debug("code-analyzer exited non-zero", "path", path, "error", runErr)
	}

	data, readErr := os.ReadFile(outPath)
	if readErr != nil || len(data) == 0 {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "no scan results produced"
		}
		return &domain.ScanStatus{ElapsedMS: elapsed, Error: truncate(msg, 200)}, nil
	}

	violations, engines, parseErr := parseResults(data)
	if parseErr != nil {
		return &domain.ScanStatus{ElapsedMS: elapsed, Error: fmt.Sprintf("parsing scan results: %v", parseErr)}, nil
	}

	s.logger.Debug("scan complete", "path", path, "violations", len(violations), "elapsed_ms", elapsed)
	return &domain.ScanStatus{
		Available:  true,
		Engines:    engines,
		Violations: len(violations),
		ElapsedMS:  elapsed,
	}, violations
}

// parseResults normalizes the analyzer's results document into domain
// violations plus the sorted list of engines that ran.
func parseResults(data []byte) ([]domain.ExternalViolation, []string, error) {
	var results analyzerResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, nil, err
	}

	violations := make([]domain.ExternalViolation, 0, len(results.Violations))
	for _, v := range results.Violations {
		severity, ok := severityNames[v.Severity]
		if !ok {
			severity = domain.SeverityInfo
		}

		ev := domain.ExternalViolation{
			Engine:   v.Engine,
			Rule:     v.Rule,
			Severity: severity,
			Message:  v.Message,
		}
		if loc, ok := primaryLocation(v); ok {
			ev.File = loc.File
			ev.Line = loc.StartLine
		}
		violations = append(violations, ev)
	}

	return violations, engineNames(results, violations), nil
}

// primaryLocation picks the location the violation points at. The index is
// optional and may be stale, so out-of-range values fall back to the first
// location.
func primaryLocation(v analyzerViolation) (analyzerLocation, bool) {
	if len(v.Locations) == 0 {
		return analyzerLocation{}, false
	}
	idx := 0
	if v.PrimaryLocationIndex != nil && *v.PrimaryLocationIndex >= 0 && *v.PrimaryLocationIndex < len(v.Locations) {
		idx = *v.PrimaryLocationIndex
	}
	return v.Locations[idx], true
}

// engineNames lists the engines from the versions map, excluding the
// analyzer's own entry. Older result documents lack versions, so the
// violations themselves are the fallback.
func engineNames(results analyzerResults, violations []domain.ExternalViolation) []string {
	seen := make(map[string]bool)
	for name := range results.Versions {
		if name != "code-analyzer" {
			seen[name] = true
		}
	}
	if len(seen) == 0 {
		for _, v := range violations {
			if v.Engine != "" {
				seen[v.Engine] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
