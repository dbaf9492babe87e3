// Package remediation applies textual auto-fixes to a small enumerated set
// of findings. Fixes are literal, order-preserving substitutions on the raw
// source text; the parsed document tree is never touched.
package remediation

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/iacshield/iacshield/internal/findings"
	"github.com/iacshield/iacshield/pkg/shared/files"
)

// Result records the outcome of one fix attempt.
type Result struct {
	Success    bool      `json:"success" yaml:"success"`
	RuleID     string    `json:"rule_id" yaml:"rule_id"`
	File       string    `json:"file" yaml:"file"`
	BackupPath string    `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	FixApplied string    `json:"fix_applied,omitempty" yaml:"fix_applied,omitempty"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary tallies one remediation pass over a set of findings.
type Summary struct {
	TotalIssues  int      `json:"total_issues" yaml:"total_issues"`
	AutoFixable  int      `json:"auto_fixable" yaml:"auto_fixable"`
	Fixed        int      `json:"fixed" yaml:"fixed"`
	Failed       int      `json:"failed" yaml:"failed"`
	ManualReview int      `json:"manual_review" yaml:"manual_review"`
	Results      []Result `json:"results,omitempty" yaml:"results,omitempty"`
}

// fixFunc rewrites the file in place and returns a human-readable
// description of the change, or "No changes needed" when nothing matched.
type fixFunc func(filePath string) (string, error)

const noChanges = "No changes needed"

// Engine maps fixable rule identifiers to their fix functions.
type Engine struct {
	logger       hclog.Logger
	backupSuffix string
	fixes        map[string]fixFunc
}

// NewEngine builds a remediation engine. backupSuffix is inserted into
// backup file names (default ".backup" when empty).
func NewEngine(logger hclog.Logger, backupSuffix string) *Engine {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if backupSuffix == "" {
		backupSuffix = ".backup"
	}
	e := &Engine{
		logger:       logger,
		backupSuffix: backupSuffix,
	}
	e.fixes = map[string]fixFunc{
		"aws_s3_public_bucket":    fixS3PublicBucket,
		"aws_security_group_open": fixSecurityGroupOpen,
		"azure_storage_public":    fixAzureStoragePublic,
		"gcp_compute_public_ip":   fixGCPComputePublicIP,
	}
	return e
}

// CanAutoFix reports whether a fix function exists for the finding's rule.
func (e *Engine) CanAutoFix(f findings.Finding) bool {
	_, ok := e.fixes[f.RuleID]
	return ok
}

// ApplyFix runs the finding's fix function against its source file,
// optionally creating a timestamped backup first. If the backup fails, the
// original file is left unmodified. Failures never escape this boundary;
// they come back as a failed Result.
func (e *Engine) ApplyFix(f findings.Finding, createBackup bool) Result {
	fix, ok := e.fixes[f.RuleID]
	if !ok {
		return Result{
			Success: false,
			RuleID:  f.RuleID,
			File:    f.File,
			Error:   fmt.Sprintf("no auto-fix available for rule: %s", f.RuleID),
		}
	}

	var backupPath string
	if createBackup {
		var err error
		backupPath, err = e.createBackup(f.File)
		if err != nil {
			e.logger.Error("backup creation failed", "file", f.File, "error", err)
			return Result{
				Success: false,
				RuleID:  f.RuleID,
				File:    f.File,
				Error:   fmt.Sprintf("backup failed: %v", err),
			}
		}
		e.logger.Debug("created backup", "file", f.File, "backup", backupPath)
	}

	applied, err := fix(f.File)
	if err != nil {
		return Result{
			Success:    false,
			RuleID:     f.RuleID,
			File:       f.File,
			BackupPath: backupPath,
			Error:      err.Error(),
		}
	}

	e.logger.Info("applied fix", "rule", f.RuleID, "file", f.File, "result", applied)
	return Result{
		Success:    true,
		RuleID:     f.RuleID,
		File:       f.File,
		BackupPath: backupPath,
		FixApplied: applied,
		Timestamp:  time.Now().UTC(),
	}
}

// createBackup copies the target to <name><suffix>_<YYYYMMDDHHMMSS><ext>
// next to it and returns the backup path.
func (e *Engine) createBackup(filePath string) (string, error) {
	ext := filepath.Ext(filePath)
	base := strings.TrimSuffix(filePath, ext)
	stamp := time.Now().Format("20060102150405")
	backupPath := fmt.Sprintf("%s%s_%s%s", base, e.backupSuffix, stamp, ext)

	if err := files.CopyFile(filePath, backupPath); err != nil {
		return "", err
	}
	return backupPath, nil
}
