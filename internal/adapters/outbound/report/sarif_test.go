package report_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcekit/forcekit/internal/adapters/outbound/report"
	"github.com/forcekit/forcekit/internal/domain"
)

type sarifDoc struct {
	Version string `json:"version"`
	Runs    []struct {
		Tool struct {
			Driver struct {
				Name string `json:"name"`
			} `json:"driver"`
		} `json:"tool"`
		Results []struct {
			RuleID    string `json:"ruleId"`
			Level     string `json:"level"`
			Locations []struct {
				PhysicalLocation struct {
					ArtifactLocation struct {
						URI string `json:"uri"`
					} `json:"artifactLocation"`
					Region struct {
						StartLine int `json:"startLine"`
					} `json:"region"`
				} `json:"physicalLocation"`
			} `json:"locations"`
		} `json:"results"`
	} `json:"runs"`
}

func TestWriteSARIF(t *testing.T) {
	r := apexReport()
	r.Issues = []domain.Issue{
		{Severity: domain.SeverityCritical, Category: "security", Rule: "ApexCRUDViolation",
			Line: 14, Message: "CRUD check missing before DML"},
		{Severity: domain.SeverityLow, Category: "clean_code",
			Line: 3, Message: "Method name should be camelCase"},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteSARIF(r, &buf))

	var doc sarifDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Runs, 1)

	run := doc.Runs[0]
	assert.Equal(t, "2.1.0", doc.Version)
	assert.Equal(t, "forcekit", run.Tool.Driver.Name)
	require.Len(t, run.Results, 2)

	assert.Equal(t, "ApexCRUDViolation", run.Results[0].RuleID)
	assert.Equal(t, "error", run.Results[0].Level)
	assert.Equal(t, "clean_code", run.Results[1].RuleID)
	assert.Equal(t, "note", run.Results[1].Level)

	loc := run.Results[0].Locations[0].PhysicalLocation
	assert.Equal(t, "force-app/main/default/classes/AccountService.cls", loc.ArtifactLocation.URI)
	assert.Equal(t, 14, loc.Region.StartLine)
}

func TestWriteSARIF_ModerateMapsToWarning(t *testing.T) {
	r := apexReport()
	r.Issues = []domain.Issue{
		{Severity: domain.SeverityModerate, Category: "performance", Message: "Nested loop over query results"},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteSARIF(r, &buf))

	assert.Contains(t, buf.String(), `"level": "warning"`)
}
