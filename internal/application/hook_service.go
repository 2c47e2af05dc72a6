package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/forcekit/forcekit/internal/domain"
	"github.com/forcekit/forcekit/internal/domain/debuglog"
	"github.com/forcekit/forcekit/internal/domain/testresults"
	"github.com/forcekit/forcekit/internal/logging"
)

// Commands whose output the hook service will try to parse.
var (
	logCommands  = []string{"sf apex get log", "sf apex tail log", "sf apex list log"}
	testCommands = []string{"sf apex run test", "sf apex get test"}
)

// HookResult is what one hook invocation should surface. A nil result
// means stay silent; at most one field is set.
type HookResult struct {
	Report *domain.ValidationReport
	Log    *debuglog.Analysis
	Tests  *testresults.Results
	Notice string
}

// HookService decides what a post-tool hook reports back: a scored
// artifact, a parsed log or test run, a loop-guard notice, or nothing.
// Every path is advisory; the service never blocks the triggering tool.
type HookService struct {
	validate *ValidateService
	attempts domain.AttemptCounter
	cfg      domain.Config
	logger   hclog.Logger
}

// NewHookService creates a HookService with all required dependencies.
func NewHookService(validate *ValidateService, attempts domain.AttemptCounter, cfg domain.Config) *HookService {
	return &HookService{
		validate: validate, attempts: attempts, cfg: cfg,
		logger: logging.New("hook"),
	}
}

// FileWritten validates a just-written artifact. The attempt counter caps
// agent fix loops: once a file has been rewritten more than MaxAttempts
// times without coming back clean, validation steps aside until the next
// edit session.
func (s *HookService) FileWritten(ctx context.Context, projectPath, filePath string) *HookResult {
	kind := domain.DetectKind(filePath)
	if kind == domain.KindUnknown || kind == domain.KindCredential {
		return nil
	}

	// 1. Count this attempt
	count, err := s.attempts.Increment(filePath)
	if err != nil {
		s.logger.Warn("attempt counter unavailable", "error", err)
		count = 1
	}
	if count > s.cfg.MaxAttempts {
		s.reset(filePath)
		return &HookResult{Notice: fmt.Sprintf(
			"⚠️ Validation: Maximum attempts (%d) exceeded for %s\n   Manual review may be required.",
			s.cfg.MaxAttempts, filePath)}
	}

	// 2. Score the artifact
	report, err := s.validate.Validate(ctx, projectPath, filePath)
	if err != nil {
		s.logger.Debug("validation skipped", "path", filePath, "error", err)
		return nil
	}

	// 3. A clean pass ends the fix loop
	if report.CriticalCount() == 0 {
		s.reset(filePath)
	}

	return &HookResult{Report: report}
}

// CommandRan inspects a finished CLI command for parseable debug-log or
// test-run output. Unrelated commands and empty output stay silent, as do
// parses that find nothing worth reporting.
func (s *HookService) CommandRan(command, output string) *HookResult {
	if output == "" {
		return nil
	}

	switch {
	case matchesCommand(command, logCommands) && debuglog.LooksLikeLog(output):
		analysis := debuglog.Parse(output, s.cfg)
		if !analysis.Interesting() {
			return nil
		}
		return &HookResult{Log: analysis}

	case matchesCommand(command, testCommands) && testresults.LooksLikeTestOutput(output):
		results := testresults.Parse(output)
		if !results.Interesting() {
			return nil
		}
		return &HookResult{Tests: results}
	}

	return nil
}

func (s *HookService) reset(filePath string) {
	if err := s.attempts.Reset(filePath); err != nil {
		s.logger.Warn("attempt counter reset failed", "error", err)
	}
}

func matchesCommand(command string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(command, p) {
			return true
		}
	}
	return false
}
