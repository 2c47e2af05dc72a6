package hook_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcekit/forcekit/internal/adapters/inbound/hook"
	"github.com/forcekit/forcekit/internal/adapters/outbound/attempts"
	"github.com/forcekit/forcekit/internal/adapters/outbound/gitinfo"
	"github.com/forcekit/forcekit/internal/adapters/outbound/history"
	"github.com/forcekit/forcekit/internal/adapters/outbound/orgquery"
	"github.com/forcekit/forcekit/internal/adapters/outbound/scanner"
	"github.com/forcekit/forcekit/internal/application"
	"github.com/forcekit/forcekit/internal/domain"
)

// newRunner wires a runner with external collaborators disabled, so tests
// never shell out to the sf CLI.
func newRunner(t *testing.T) (*hook.Runner, string) {
	t.Helper()
	dir := t.TempDir()

	off := false
	cfg := domain.DefaultConfig()
	cfg.Scan.Enabled = &off
	cfg.Plan.Enabled = &off
	cfg.History.Enabled = &off

	validate := application.NewValidateService(
		cfg, scanner.New(cfg.Scan), orgquery.New(cfg.Plan), history.New(), gitinfo.New())
	hooks := application.NewHookService(validate, attempts.New(dir), cfg)
	return hook.NewRunner(hooks, dir), dir
}

func run(t *testing.T, r *hook.Runner, envelope string) hook.Output {
	t.Helper()
	var buf strings.Builder
	r.Run(context.Background(), strings.NewReader(envelope), &buf)

	var out hook.Output
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &out))
	return out
}

func TestRunner_InvalidEnvelope(t *testing.T) {
	r, _ := newRunner(t)

	out := run(t, r, "not json at all")
	assert.True(t, out.Continue)
	assert.Empty(t, out.Output)
	assert.Nil(t, out.HookSpecificOutput)
}

func TestRunner_FailedToolCallStaysSilent(t *testing.T) {
	r, _ := newRunner(t)

	out := run(t, r, `{"tool_input":{"file_path":"classes/Broken.cls"},"tool_response":{"success":false}}`)
	assert.True(t, out.Continue)
	assert.Empty(t, out.Output)
}

func TestRunner_UnknownSuffixStaysSilent(t *testing.T) {
	r, _ := newRunner(t)

	out := run(t, r, `{"tool_input":{"file_path":"README.md"},"tool_response":{"success":true}}`)
	assert.True(t, out.Continue)
	assert.Empty(t, out.Output)
}

func TestRunner_ApexWriteProducesReport(t *testing.T) {
	r, dir := newRunner(t)

	src := `public class ContactSync {
    public void sync(List<Account> accounts) {
        for (Account a : accounts) {
            List<Contact> contacts = [SELECT Id FROM Contact WHERE AccountId = :a.Id];
            update contacts;
        }
    }
}`
	path := filepath.Join(dir, "ContactSync.cls")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	envelope, err := json.Marshal(hook.Input{
		ToolInput: hook.ToolInput{FilePath: path},
	})
	require.NoError(t, err)

	out := run(t, r, string(envelope))
	assert.True(t, out.Continue)
	assert.Contains(t, out.Output, "ContactSync.cls")
	assert.Contains(t, out.Output, "CRITICAL")
}

func TestRunner_CredentialFileSuggestsSetup(t *testing.T) {
	r, dir := newRunner(t)

	xml := `<?xml version="1.0" encoding="UTF-8"?>
<NamedCredential xmlns="http://soap.sforce.com/2006/04/metadata">
    <endpoint>https://api.example.com</endpoint>
    <authProtocol>OAuth</authProtocol>
</NamedCredential>`
	path := filepath.Join(dir, "ExampleAPI.namedCredential-meta.xml")
	require.NoError(t, os.WriteFile(path, []byte(xml), 0o644))

	out := run(t, r, `{"tool_input":{"file_path":"`+path+`"},"tool_response":{"success":true}}`)
	assert.True(t, out.Continue)
	assert.Empty(t, out.Output)
	require.NotNil(t, out.HookSpecificOutput)
	assert.Equal(t, "PostToolUse", out.HookSpecificOutput.HookEventName)
	assert.Contains(t, out.HookSpecificOutput.AdditionalContext, "CREDENTIAL CONFIGURATION DETECTED")
	assert.Contains(t, out.HookSpecificOutput.AdditionalContext, "ExampleAPI")
	assert.Contains(t, out.HookSpecificOutput.AdditionalContext, "OAuth 2.0")
	assert.Contains(t, out.HookSpecificOutput.AdditionalContext, "https://api.example.com")
}

func TestRunner_DebugLogCommandOutputParsed(t *testing.T) {
	r, _ := newRunner(t)

	log := strings.Join([]string{
		"09:00:00.0 (1)|CODE_UNIT_STARTED|[EXTERNAL]|execute_anonymous_apex",
		"09:00:00.1 (2)|LOOP_BEGIN|[4]",
		"09:00:00.2 (3)|SOQL_EXECUTE_BEGIN|[5]|Aggregations:0|SELECT Id FROM Contact",
		"09:00:00.3 (4)|SOQL_EXECUTE_END|[5]|Rows:1 [1 rows]",
		"09:00:00.4 (5)|LOOP_END|[4]",
	}, "\n")

	envelope, err := json.Marshal(hook.Input{
		ToolInput:    hook.ToolInput{Command: "sf apex get log --number 1"},
		ToolResponse: &hook.ToolResponse{Stdout: log},
	})
	require.NoError(t, err)

	out := run(t, r, string(envelope))
	assert.True(t, out.Continue)
	assert.Contains(t, out.Output, "SOQL in loop")
}

func TestRunner_UnrelatedCommandStaysSilent(t *testing.T) {
	r, _ := newRunner(t)

	out := run(t, r, `{"tool_input":{"command":"ls -la"},"tool_response":{"stdout":"total 0"}}`)
	assert.True(t, out.Continue)
	assert.Empty(t, out.Output)
}

func TestSuggest_RemoteSiteWithoutScript(t *testing.T) {
	msg := hook.Suggest("unwritten/MySite.remoteSite-meta.xml")

	assert.Contains(t, msg, "Remote Site Setting")
	assert.Contains(t, msg, "MySite")
	assert.Contains(t, msg, "RemoteSiteSetting:<name>")
	assert.NotContains(t, msg, "AUTOMATION SCRIPT")
}
