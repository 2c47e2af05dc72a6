// Package hook implements the PostToolUse envelope: one JSON object on
// stdin describing the tool call that just finished, one JSON object on
// stdout saying whether to continue and what, if anything, to report.
//
// Every path answers {"continue": true}. Validation is advisory by
// contract; nothing here may block the write or command that triggered
// the hook, so malformed envelopes, unknown files and even panics all
// degrade to a silent or one-line response with exit code zero.
package hook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/forcekit/forcekit/internal/adapters/outbound/report"
	"github.com/forcekit/forcekit/internal/application"
	"github.com/forcekit/forcekit/internal/domain"
	"github.com/forcekit/forcekit/internal/logging"
)

// Input is the envelope the caller writes to stdin.
type Input struct {
	ToolName     string        `json:"tool_name,omitempty"`
	ToolInput    ToolInput     `json:"tool_input"`
	ToolResponse *ToolResponse `json:"tool_response,omitempty"`
}

// ToolInput carries what the triggering tool was asked to do: a file
// path for write tools, a command line for shell tools.
type ToolInput struct {
	FilePath string `json:"file_path,omitempty"`
	Command  string `json:"command,omitempty"`
}

// ToolResponse carries how the triggering tool finished. Success is a
// pointer because an absent field means the write went through.
type ToolResponse struct {
	Success *bool  `json:"success,omitempty"`
	Stdout  string `json:"stdout,omitempty"`
}

// Succeeded reports whether the tool call completed.
func (r *ToolResponse) Succeeded() bool {
	return r == nil || r.Success == nil || *r.Success
}

// Output is the envelope written to stdout. Continue is always true.
type Output struct {
	Continue           bool            `json:"continue"`
	Output             string          `json:"output,omitempty"`
	HookSpecificOutput *SpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// SpecificOutput feeds context back to the agent without surfacing it as
// tool output. Used for credential setup suggestions.
type SpecificOutput struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext"`
}

// Runner dispatches one hook invocation.
type Runner struct {
	hooks      *application.HookService
	projectDir string
	logger     hclog.Logger
}

// NewRunner creates a Runner rooted at projectDir.
func NewRunner(hooks *application.HookService, projectDir string) *Runner {
	return &Runner{hooks: hooks, projectDir: projectDir, logger: logging.New("hook")}
}

// Run reads one envelope from stdin and writes one response to stdout.
// It never returns an error; the response itself is the outcome.
func (r *Runner) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) {
	out := r.respond(ctx, stdin)
	if err := json.NewEncoder(stdout).Encode(out); err != nil {
		r.logger.Error("writing hook response", "error", err)
	}
}

func (r *Runner) respond(ctx context.Context, stdin io.Reader) (out Output) {
	out = Output{Continue: true}

	// Advisory contract: a bug in scoring becomes one line of output,
	// never a failed hook.
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("hook panicked", "panic", p)
			out = Output{Continue: true, Output: fmt.Sprintf("⚠️ Validation error: %v", p)}
		}
	}()

	var in Input
	if err := json.NewDecoder(stdin).Decode(&in); err != nil {
		r.logger.Debug("invalid hook envelope", "error", err)
		return out
	}
	if !in.ToolResponse.Succeeded() {
		return out
	}

	if in.ToolInput.FilePath != "" {
		return r.fileWritten(ctx, in.ToolInput.FilePath)
	}

	// Shell hooks deliver the transcript in the envelope; older callers
	// export TOOL_INPUT/TOOL_OUTPUT instead.
	command, transcript := in.ToolInput.Command, ""
	if in.ToolResponse != nil {
		transcript = in.ToolResponse.Stdout
	}
	if command == "" {
		command = os.Getenv("TOOL_INPUT")
	}
	if transcript == "" {
		transcript = os.Getenv("TOOL_OUTPUT")
	}
	if command != "" {
		return r.commandRan(command, transcript)
	}

	return out
}

func (r *Runner) fileWritten(ctx context.Context, path string) Output {
	if domain.DetectKind(path) == domain.KindCredential {
		return Output{
			Continue: true,
			HookSpecificOutput: &SpecificOutput{
				HookEventName:     "PostToolUse",
				AdditionalContext: Suggest(path),
			},
		}
	}

	result := r.hooks.FileWritten(ctx, r.projectDir, path)
	switch {
	case result == nil:
		return Output{Continue: true}
	case result.Notice != "":
		return Output{Continue: true, Output: result.Notice}
	default:
		return Output{Continue: true, Output: report.Render(result.Report)}
	}
}

func (r *Runner) commandRan(command, transcript string) Output {
	result := r.hooks.CommandRan(command, transcript)
	switch {
	case result == nil:
		return Output{Continue: true}
	case result.Log != nil:
		return Output{Continue: true, Output: report.RenderLog(result.Log)}
	case result.Tests != nil:
		return Output{Continue: true, Output: report.RenderTests(result.Tests)}
	default:
		return Output{Continue: true}
	}
}
