// Package analyzer orchestrates one analysis pass: parser selection, file
// discovery, rule dispatch per provider, severity filtering, and result
// aggregation. Files are independent units; one bad file never aborts the
// batch.
package analyzer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/iacshield/iacshield/internal/document"
	"github.com/iacshield/iacshield/internal/engine"
	"github.com/iacshield/iacshield/internal/findings"
	"github.com/iacshield/iacshield/internal/parser"
	"github.com/iacshield/iacshield/internal/remediation"
	"github.com/iacshield/iacshield/internal/rules"
	"github.com/iacshield/iacshield/pkg/shared/config"
)

// providerOrder fixes the rule-set evaluation order for provider "all".
var providerOrder = []string{"aws", "azure", "gcp"}

// UnsupportedFormatError reports an unknown format token. It is the only
// failure that aborts a whole analysis call; it fires before any file-level
// work begins.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %s", e.Format)
}

// Analyzer holds the parsers, rule-sets and remediation engine for repeated
// analysis passes. It carries its own logger; there is no ambient global.
type Analyzer struct {
	cfg        *config.Config
	logger     hclog.Logger
	parsers    map[string]parser.Parser
	ruleSets   map[string]*rules.Set
	remediator *remediation.Engine
}

// New builds an analyzer from the given configuration.
func New(cfg *config.Config, logger hclog.Logger) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Analyzer{
		cfg:    cfg,
		logger: logger,
		parsers: map[string]parser.Parser{
			"terraform":      parser.NewTerraform(),
			"cloudformation": parser.NewCloudFormation(),
			"arm":            parser.NewARM(),
		},
		ruleSets:   rules.Sets(),
		remediator: remediation.NewEngine(logger.Named("remediation"), cfg.Remediation.BackupSuffix),
	}
}

// AnalyzePath analyzes a single file or every matching file under a
// directory. cloudProvider selects the rule-set ("all" runs every provider;
// an unknown provider yields no rules). minSeverity drops findings below the
// threshold before aggregation.
func (a *Analyzer) AnalyzePath(path, format, cloudProvider string, minSeverity findings.Severity) (*findings.AnalysisResult, error) {
	p, ok := a.parsers[format]
	if !ok {
		return nil, &UnsupportedFormatError{Format: format}
	}

	targets, err := a.collectFiles(path, p.Extensions())
	if err != nil {
		return nil, err
	}
	a.logger.Debug("resolved analysis targets", "path", path, "format", p.Format(), "files", len(targets))

	result := &findings.AnalysisResult{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Findings:  []findings.Finding{},
	}

	for _, file := range targets {
		doc, err := p.Parse(file)
		if err != nil {
			a.logger.Warn("failed to parse file", "file", file, "error", err)
			result.Findings = append(result.Findings, parseErrorFinding(file, err))
			continue
		}
		result.Summary.FilesAnalyzed++

		fileFindings := a.evaluateDocument(doc, file, cloudProvider)
		result.Findings = append(result.Findings, engine.FilterBySeverity(fileFindings, minSeverity)...)
	}

	result.Recount()
	a.logger.Info("analysis completed",
		"files", result.Summary.FilesAnalyzed,
		"issues", result.Summary.TotalIssues,
		"errors", result.Summary.Errors,
	)
	return result, nil
}

// RemediatePath analyzes the path and drives the remediation engine over the
// findings. Remediation always evaluates with provider "all" at the default
// medium threshold; caller-side severity and provider filters do not apply.
// Individual fix failures are recorded and never abort the pass.
func (a *Analyzer) RemediatePath(path, format string, applyFixes, createBackup bool) (*remediation.Summary, error) {
	result, err := a.AnalyzePath(path, format, "all", findings.SeverityMedium)
	if err != nil {
		return nil, err
	}

	summary := &remediation.Summary{}
	for _, f := range result.Findings {
		if f.IsError() {
			continue
		}
		summary.TotalIssues++

		if !a.remediator.CanAutoFix(f) {
			summary.ManualReview++
			continue
		}
		summary.AutoFixable++

		if !applyFixes {
			continue
		}
		res := a.remediator.ApplyFix(f, createBackup)
		summary.Results = append(summary.Results, res)
		if res.Success {
			summary.Fixed++
		} else {
			summary.Failed++
		}
	}
	return summary, nil
}

// evaluateDocument runs every applicable rule against one parsed document.
func (a *Analyzer) evaluateDocument(doc document.Document, file, cloudProvider string) []findings.Finding {
	providers := providerOrder
	if cloudProvider != "all" {
		providers = []string{cloudProvider}
	}

	var out []findings.Finding
	for _, provider := range providers {
		set, ok := a.ruleSets[provider]
		if !ok {
			continue
		}
		before := len(out)
		for _, rule := range set.Rules(doc) {
			out = append(out, engine.EvaluateRule(rule, doc, file)...)
		}
		a.logger.Trace("evaluated rule-set", "provider", set.Provider(), "file", file, "findings", len(out)-before)
	}
	return out
}

// collectFiles resolves the target file set: the path itself when it is a
// matching file, or a recursive walk when it is a directory. Walk order is
// lexical, so repeated runs see files in the same order.
func (a *Analyzer) collectFiles(path string, exts []string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %q: %w", path, err)
	}

	if !info.IsDir() {
		if parser.HasExtension(strings.ToLower(filepath.Ext(path)), exts) {
			return []string{path}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if parser.HasExtension(strings.ToLower(filepath.Ext(p)), exts) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", path, err)
	}
	return files, nil
}

// parseErrorFinding builds the synthetic finding recorded when a file cannot
// be parsed. It carries a severity so it survives threshold filtering into
// reports, but Recount keeps it out of the severity tallies.
func parseErrorFinding(file string, err error) findings.Finding {
	return findings.Finding{
		File:     file,
		RuleID:   "parse_error",
		RuleName: "File Parse Failure",
		Severity: findings.SeverityHigh,
		Category: findings.CategoryParseError,
		Message:  fmt.Sprintf("Failed to analyze: %v", err),
		Line:     1,
		Column:   1,
		Error:    err.Error(),
	}
}
