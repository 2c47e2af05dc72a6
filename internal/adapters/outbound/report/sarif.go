package report

import (
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/forcekit/forcekit/internal/domain"
)

// WriteSARIF exports a validation report as SARIF 2.1.0 for code-scanning
// upload. Issues without a rule ID are keyed by their category.
func WriteSARIF(r *domain.ValidationReport, w io.Writer) error {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("forcekit", "https://github.com/forcekit/forcekit")
	for _, issue := range r.Issues {
		ruleID := issue.Rule
		if ruleID == "" {
			ruleID = issue.Category
		}
		if ruleID == "" {
			ruleID = "forcekit"
		}
		rule := run.AddRule(ruleID).
			WithDescription(issue.Message).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: sarifLevel(issue.Severity),
			})

		path := issue.File
		if path == "" {
			path = r.Artifact
		}
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(path)).
				WithRegion(sarif.NewRegion().WithStartLine(issue.Line)),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(issue.Message)).
			WithLevel(sarifLevel(issue.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	doc.AddRun(run)

	return doc.PrettyWrite(w)
}

func sarifLevel(severity string) string {
	switch severity {
	case domain.SeverityCritical, domain.SeverityHigh:
		return "error"
	case domain.SeverityModerate, domain.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
