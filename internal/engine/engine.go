// Package engine executes individual rules against parsed documents and
// converts their raw violations into findings. A misbehaving predicate is
// isolated here: its failure becomes a synthetic finding instead of aborting
// the analysis.
package engine

import (
	"fmt"

	"github.com/iacshield/iacshield/internal/document"
	"github.com/iacshield/iacshield/internal/findings"
	"github.com/iacshield/iacshield/internal/rules"
)

// EvaluateRule runs one rule's predicate against one document and maps each
// violation 1:1 into a finding carrying the rule's static metadata. A
// panicking predicate yields a single rule_error finding for the (file,
// rule) pair and never propagates.
func EvaluateRule(rule rules.Rule, doc document.Document, filePath string) (result []findings.Finding) {
	defer func() {
		if r := recover(); r != nil {
			result = []findings.Finding{{
				File:     filePath,
				RuleID:   rule.ID,
				RuleName: rule.Name,
				Severity: findings.SeverityMedium,
				Category: findings.CategoryRuleError,
				Message:  fmt.Sprintf("Rule evaluation failed: %v", r),
				Line:     1,
				Column:   1,
				Error:    fmt.Sprintf("%v", r),
			}}
		}
	}()

	if rule.Evaluate == nil {
		return nil
	}

	for _, v := range rule.Evaluate(doc) {
		message := v.Message
		if message == "" {
			message = rule.Description
		}
		line := v.Line
		if line <= 0 {
			line = 1
		}
		result = append(result, findings.Finding{
			File:          filePath,
			RuleID:        rule.ID,
			RuleName:      rule.Name,
			Severity:      rule.Severity,
			Category:      rule.Category,
			Message:       message,
			Line:          line,
			Column:        1,
			Resource:      v.Resource,
			FixSuggestion: rule.FixSuggestion,
			References:    rule.References,
		})
	}
	return result
}

// FilterBySeverity returns the findings at or above the minimum severity.
// The filter is pure; the input slice is never modified.
func FilterBySeverity(fs []findings.Finding, min findings.Severity) []findings.Finding {
	out := make([]findings.Finding, 0, len(fs))
	for _, f := range fs {
		if f.Severity.MeetsThreshold(min) {
			out = append(out, f)
		}
	}
	return out
}
