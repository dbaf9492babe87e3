// Package sarif converts analysis results into SARIF 2.1.0 reports so the
// findings can flow into code-scanning dashboards and SARIF-aware tooling.
package sarif

import (
	"io"

	gosarif "github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/iacshield/iacshield/internal/findings"
)

const (
	toolName           = "iacshield"
	toolInformationURI = "https://github.com/iacshield/iacshield"
)

// FromAnalysisResult maps an analysis result into a single-run SARIF report.
// Synthetic parse/rule-error findings are carried over as results too, so a
// SARIF consumer sees the full picture of the run.
func FromAnalysisResult(result *findings.AnalysisResult, toolVersion string) (*gosarif.Report, error) {
	report, err := gosarif.New(gosarif.Version210)
	if err != nil {
		return nil, err
	}

	run := gosarif.NewRunWithInformationURI(toolName, toolInformationURI)
	if toolVersion != "" {
		run.Tool.Driver.WithVersion(toolVersion)
	}

	seenRules := map[string]bool{}
	for _, f := range result.Findings {
		if f.RuleID == "" {
			continue
		}

		if !seenRules[f.RuleID] {
			seenRules[f.RuleID] = true
			rule := run.AddRule(f.RuleID).WithDescription(f.RuleName)
			if len(f.References) > 0 {
				rule.WithHelpURI(f.References[0])
			}
			if f.FixSuggestion != "" {
				rule.WithFullDescription(gosarif.NewMultiformatMessageString(f.FixSuggestion))
			}
		}

		run.AddDistinctArtifact(f.File)

		sarifResult := run.CreateResultForRule(f.RuleID).
			WithLevel(severityToLevel(f.Severity)).
			WithMessage(gosarif.NewTextMessage(f.Message))
		sarifResult.AddLocation(gosarif.NewLocationWithPhysicalLocation(
				gosarif.NewPhysicalLocation().
					WithArtifactLocation(gosarif.NewSimpleArtifactLocation(f.File)).
					WithRegion(gosarif.NewSimpleRegion(f.Line, f.Line).WithStartColumn(f.Column)),
			))
		if f.Resource != "" {
			sarifResult.Properties = gosarif.Properties{"resource": f.Resource}
		}
	}

	report.AddRun(run)
	return report, nil
}

// Write renders the result as SARIF JSON to w.
func Write(result *findings.AnalysisResult, toolVersion string, w io.Writer) error {
	report, err := FromAnalysisResult(result, toolVersion)
	if err != nil {
		return err
	}
	return report.Write(w)
}

// severityToLevel maps the severity order onto the three SARIF levels.
func severityToLevel(s findings.Severity) string {
	switch s {
	case findings.SeverityCritical, findings.SeverityHigh:
		return "error"
	case findings.SeverityLow:
		return "note"
	default:
		return "warning"
	}
}
