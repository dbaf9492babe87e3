package report

import (
	_ "embed"
	"html/template"
	"io"

	"github.com/iacshield/iacshield/internal/findings"
)

//go:embed templates/report.html
var reportTemplate string

// severityClass picks the CSS class for a severity badge.
func severityClass(s findings.Severity) string {
	switch s {
	case findings.SeverityCritical:
		return "critical"
	case findings.SeverityHigh:
		return "high"
	case findings.SeverityLow:
		return "low"
	default:
		return "medium"
	}
}

func writeHTML(result *findings.AnalysisResult, w io.Writer) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"severityClass": severityClass,
	}).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, result)
}
