package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/lexandro/codexray/profile"
)

const (
	toolName           = "codexray"
	toolInformationURI = "https://github.com/lexandro/codexray"
)

// WriteSARIF writes one SARIF run with a rule per risk category and a result
// per finding, in record path order.
func WriteSARIF(w io.Writer, bundle *Bundle) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolInformationURI)
	for _, rec := range bundle.Records {
		for _, risk := range rec.Risks {
			rule := run.AddRule(RuleID(risk.Category)).
				WithDescription(string(risk.Category)).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: toSarifLevel(risk.Severity),
				})

			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(rec.RelativePath)).
					WithRegion(sarif.NewRegion().WithStartLine(risk.Line)),
			)

			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(fmt.Sprintf("%s (%s): %s", risk.Category, risk.Severity, risk.Remediation))).
				WithLevel(toSarifLevel(risk.Severity)).
				WithLocations([]*sarif.Location{location})
			run.AddResult(result)
		}
	}
	report.AddRun(run)

	if err := report.PrettyWrite(w); err != nil {
		return fmt.Errorf("writing SARIF report: %w", err)
	}
	return nil
}

// RuleID turns a risk category into a stable SARIF rule id.
func RuleID(category profile.Category) string {
	return strings.ReplaceAll(string(category), " ", "-")
}

func toSarifLevel(severity profile.Severity) string {
	switch severity {
	case profile.SeverityCritical, profile.SeverityHigh:
		return "error"
	case profile.SeverityMedium:
		return "warning"
	case profile.SeverityLow:
		return "note"
	default:
		return "none"
	}
}
