package analyse

import (
	"fmt"

	"github.com/iacshield/iacshield/pkg/shared/config"
)

var (
	knownFormats  = map[string]bool{"terraform": true, "cloudformation": true, "arm": true}
	knownClouds   = map[string]bool{"aws": true, "azure": true, "gcp": true, "all": true}
	knownSeverity = map[string]bool{"low": true, "medium": true, "high": true, "critical": true}
	reportFormats = map[string]bool{"json": true, "yaml": true, "html": true, "sarif": true}
)

// validateAnalyseArgs checks the command-line options and fills the
// severity and report-format defaults from the configuration.
func validateAnalyseArgs(options *RunOptionsAnalyse, cfg *config.Config) error {
	if options.Format == "" {
		return fmt.Errorf("the --format flag is required")
	}
	if !knownFormats[options.Format] {
		return fmt.Errorf("unknown format %q: must be terraform, cloudformation or arm", options.Format)
	}
	if !knownClouds[options.Cloud] {
		return fmt.Errorf("unknown cloud provider %q: must be aws, azure, gcp or all", options.Cloud)
	}

	if options.Severity == "" {
		options.Severity = cfg.Analysis.SeverityThreshold
	}
	if options.Severity == "" {
		options.Severity = "medium"
	}
	if !knownSeverity[options.Severity] {
		return fmt.Errorf("unknown severity %q: must be low, medium, high or critical", options.Severity)
	}

	if options.ReportFormat == "" {
		options.ReportFormat = cfg.Analysis.OutputFormat
	}
	if options.ReportFormat == "" {
		options.ReportFormat = "json"
	}
	if !reportFormats[options.ReportFormat] {
		return fmt.Errorf("unknown report format %q: must be json, yaml, html or sarif", options.ReportFormat)
	}

	return nil
}
