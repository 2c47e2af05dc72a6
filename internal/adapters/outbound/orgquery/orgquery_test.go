package orgquery_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcekit/forcekit/internal/adapters/outbound/orgquery"
	"github.com/forcekit/forcekit/internal/domain"
)

const connectedOrg = `{"status": 0, "result": [{"name": "target-org", "value": "devhub"}]}`

const accountPlan = `{
  "status": 0,
  "result": {
    "plans": [
      {
        "cardinality": 120,
        "fields": ["Industry"],
        "leadingOperationType": "Index",
        "notes": [
          {"description": "Not considering filter for optimization because Industry is not indexed", "fields": ["Industry"], "tableEnumOrId": "Account"}
        ],
        "relativeCost": 0.4,
        "sobjectCardinality": 50000,
        "sobjectType": "Account"
      }
    ]
  }
}`

// installStubSF places a fake sf executable at the front of PATH and returns
// the log file the stub appends its arguments to.
func installStubSF(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	argsLog := filepath.Join(dir, "args.log")
	t.Setenv("SF_ARGS_LOG", argsLog)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sf"), []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return argsLog
}

// planScript answers the org probe with orgJSON and the plan call with
// planJSON, logging every invocation.
func planScript(orgJSON, planJSON string) string {
	return fmt.Sprintf(`#!/bin/sh
echo "$@" >> "$SF_ARGS_LOG"
case "$1 $2" in
  "config get") cat <<'JSON'
%s
JSON
;;
  "data query") cat <<'JSON'
%s
JSON
;;
  *) exit 1
;;
esac
`, orgJSON, planJSON)
}

func planConfig() domain.PlanConfig {
	return domain.PlanConfig{TimeoutSeconds: 15, MaxQueries: 5}
}

func TestPlan_ParsesPlan(t *testing.T) {
	argsLog := installStubSF(t, planScript(connectedOrg, accountPlan))

	planner := orgquery.New(planConfig())
	plan, err := planner.Plan(context.Background(),
		"SELECT Id FROM Account WHERE OwnerId = :ownerId WITH SECURITY_ENFORCED FOR UPDATE")

	require.NoError(t, err)
	assert.InDelta(t, 0.4, plan.RelativeCost, 0.001)
	assert.True(t, plan.Selective())
	assert.Equal(t, "Index", plan.LeadingOperation)
	assert.Equal(t, "Account", plan.SObjectType)
	assert.Equal(t, int64(120), plan.Cardinality)
	assert.Equal(t, int64(50000), plan.SObjectCardinality)
	assert.Equal(t, []string{"Industry"}, plan.Fields)
	require.Len(t, plan.Notes, 1)
	assert.Contains(t, plan.Notes[0], "not indexed")

	logged, err := os.ReadFile(argsLog)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "'001000000000000AAA'")
	assert.NotContains(t, string(logged), "FOR UPDATE")
	assert.NotContains(t, string(logged), "SECURITY_ENFORCED")
	assert.Contains(t, string(logged), "--target-org devhub")
}

func TestPlan_NoOrgConnected(t *testing.T) {
	installStubSF(t, planScript(`{"status": 0, "result": []}`, accountPlan))

	_, err := orgquery.New(planConfig()).Plan(context.Background(), "SELECT Id FROM Account")

	assert.EqualError(t, err, "No Salesforce org connected. Run 'sf org login' first.")
}

func TestPlan_EmptyQueryAfterPreparation(t *testing.T) {
	installStubSF(t, planScript(connectedOrg, accountPlan))

	_, err := orgquery.New(planConfig()).Plan(context.Background(), "  WITH SECURITY_ENFORCED")

	assert.EqualError(t, err, "Empty query after preparation")
}

func TestPlan_CLIErrorSurfacesMessage(t *testing.T) {
	installStubSF(t, fmt.Sprintf(`#!/bin/sh
echo "$@" >> "$SF_ARGS_LOG"
case "$1 $2" in
  "config get") cat <<'JSON'
%s
JSON
;;
  "data query") cat <<'JSON'
{"status": 1, "message": "INVALID_TYPE: sObject type 'Acount' is not supported.", "name": "Error"}
JSON
exit 1
;;
esac
`, connectedOrg))

	_, err := orgquery.New(planConfig()).Plan(context.Background(), "SELECT Id FROM Acount")

	assert.EqualError(t, err, "INVALID_TYPE: sObject type 'Acount' is not supported.")
}

func TestPlan_Timeout(t *testing.T) {
	installStubSF(t, fmt.Sprintf(`#!/bin/sh
echo "$@" >> "$SF_ARGS_LOG"
case "$1 $2" in
  "config get") cat <<'JSON'
%s
JSON
;;
  "data query") exec sleep 5
;;
esac
`, connectedOrg))

	cfg := domain.PlanConfig{TimeoutSeconds: 1}
	_, err := orgquery.New(cfg).Plan(context.Background(), "SELECT Id FROM Account")

	assert.EqualError(t, err, "Query plan timed out after 1s")
}

func TestPlan_MissingCLI(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := orgquery.New(planConfig()).Plan(context.Background(), "SELECT Id FROM Account")

	assert.EqualError(t, err, "sf CLI not found - install Salesforce CLI")
}

func TestPlan_NoPlansReturned(t *testing.T) {
	installStubSF(t, planScript(connectedOrg, `{"status": 0, "result": {"plans": []}}`))

	plan, err := orgquery.New(planConfig()).Plan(context.Background(), "SELECT Id FROM Account")

	require.NoError(t, err)
	assert.Equal(t, "NoPlan", plan.LeadingOperation)
	assert.Zero(t, plan.RelativeCost)
	assert.True(t, plan.Selective())
	assert.Equal(t, "Account", plan.SObjectType)
}

func TestPlan_ExplicitTargetOrg(t *testing.T) {
	argsLog := installStubSF(t, fmt.Sprintf(`#!/bin/sh
echo "$@" >> "$SF_ARGS_LOG"
case "$1 $2" in
  "org display") echo '{"status": 0}'
;;
  "config get") exit 1
;;
  "data query") cat <<'JSON'
%s
JSON
;;
esac
`, accountPlan))

	cfg := planConfig()
	cfg.TargetOrg = "sandbox"
	_, err := orgquery.New(cfg).Plan(context.Background(), "SELECT Id FROM Account")

	require.NoError(t, err)
	logged, err := os.ReadFile(argsLog)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "--target-org sandbox")
}

func TestPlan_CachesOrgProbe(t *testing.T) {
	argsLog := installStubSF(t, planScript(connectedOrg, accountPlan))

	planner := orgquery.New(planConfig())
	_, err := planner.Plan(context.Background(), "SELECT Id FROM Account")
	require.NoError(t, err)
	_, err = planner.Plan(context.Background(), "SELECT Id FROM Contact")
	require.NoError(t, err)

	logged, err := os.ReadFile(argsLog)
	require.NoError(t, err)
	probes := strings.Count(string(logged), "config get")
	assert.Equal(t, 1, probes)
}

func TestTargetOrg(t *testing.T) {
	installStubSF(t, planScript(connectedOrg, accountPlan))

	name, err := orgquery.New(planConfig()).TargetOrg(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "devhub", name)
}

func TestTargetOrg_Unavailable(t *testing.T) {
	installStubSF(t, planScript(`{"status": 0, "result": []}`, accountPlan))

	_, err := orgquery.New(planConfig()).TargetOrg(context.Background())

	assert.EqualError(t, err, "No Salesforce org connected. Run 'sf org login' first.")
}
