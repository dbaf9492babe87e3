package engine

import (
	"reflect"
	"strings"
	"testing"

	"github.com/iacshield/iacshield/internal/document"
	"github.com/iacshield/iacshield/internal/findings"
	"github.com/iacshield/iacshield/internal/rules"
)

func TestEvaluateRuleMapsViolationsToFindings(t *testing.T) {
	rule := rules.Rule{
		ID:            "test_rule",
		Name:          "Test Rule",
		Category:      "storage",
		Severity:      findings.SeverityHigh,
		Description:   "fallback description",
		FixSuggestion: "do the fix",
		References:    []string{"https://example.com/doc"},
		Evaluate: func(doc document.Document) []rules.Violation {
			return []rules.Violation{
				{Message: "first problem", Resource: "aws_s3_bucket.a", Line: 12},
				{Resource: "aws_s3_bucket.b"},
			}
		},
	}

	got := EvaluateRule(rule, document.Document{}, "main.tf")
	if len(got) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(got))
	}

	first := got[0]
	if first.File != "main.tf" || first.RuleID != "test_rule" || first.RuleName != "Test Rule" {
		t.Fatalf("metadata not carried over: %+v", first)
	}
	if first.Severity != findings.SeverityHigh || first.Category != "storage" {
		t.Fatalf("severity/category not carried over: %+v", first)
	}
	if first.Message != "first problem" || first.Line != 12 || first.Column != 1 {
		t.Fatalf("violation fields not mapped: %+v", first)
	}
	if first.FixSuggestion != "do the fix" || len(first.References) != 1 {
		t.Fatalf("fix metadata not mapped: %+v", first)
	}
	if first.IsError() {
		t.Fatal("a regular finding must not report as an error")
	}

	// Empty message falls back to the rule description, zero line clamps to 1.
	second := got[1]
	if second.Message != "fallback description" {
		t.Fatalf("expected description fallback, got %q", second.Message)
	}
	if second.Line != 1 {
		t.Fatalf("expected line clamped to 1, got %d", second.Line)
	}
}

func TestEvaluateRuleNoViolations(t *testing.T) {
	rule := rules.Rule{
		ID:       "quiet_rule",
		Evaluate: func(doc document.Document) []rules.Violation { return nil },
	}
	if got := EvaluateRule(rule, document.Document{}, "main.tf"); len(got) != 0 {
		t.Fatalf("expected no findings, got %v", got)
	}
}

func TestEvaluateRuleRecoversFromPanic(t *testing.T) {
	rule := rules.Rule{
		ID:   "broken_rule",
		Name: "Broken Rule",
		Evaluate: func(doc document.Document) []rules.Violation {
			var m map[string]string
			m["boom"] = "x" // nil map write
			return nil
		},
	}

	got := EvaluateRule(rule, document.Document{}, "main.tf")
	if len(got) != 1 {
		t.Fatalf("a panicking rule must yield exactly one finding, got %d", len(got))
	}

	f := got[0]
	if f.Category != findings.CategoryRuleError {
		t.Fatalf("expected category %q, got %q", findings.CategoryRuleError, f.Category)
	}
	if f.Severity != findings.SeverityMedium {
		t.Fatalf("expected medium severity, got %q", f.Severity)
	}
	if f.RuleID != "broken_rule" || f.File != "main.tf" {
		t.Fatalf("error finding must identify the (file, rule) pair: %+v", f)
	}
	if !strings.HasPrefix(f.Message, "Rule evaluation failed:") {
		t.Fatalf("unexpected message %q", f.Message)
	}
	if f.Error == "" || !f.IsError() {
		t.Fatalf("error finding must carry a non-empty Error field: %+v", f)
	}
}

func TestEvaluateRuleIsDeterministic(t *testing.T) {
	rule := rules.Rule{
		ID:       "det_rule",
		Severity: findings.SeverityLow,
		Evaluate: func(doc document.Document) []rules.Violation {
			return []rules.Violation{{Message: "m", Resource: "r", Line: 3}}
		},
	}
	doc := document.Document{"resource": map[string]any{}}

	first := EvaluateRule(rule, doc, "a.tf")
	second := EvaluateRule(rule, doc, "a.tf")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same inputs must yield identical findings: %v vs %v", first, second)
	}
}

func TestFilterBySeverityThresholds(t *testing.T) {
	mk := func(s findings.Severity) findings.Finding {
		return findings.Finding{RuleID: string(s), Severity: s}
	}
	all := []findings.Finding{
		mk(findings.SeverityLow),
		mk(findings.SeverityMedium),
		mk(findings.SeverityHigh),
		mk(findings.SeverityCritical),
	}

	cases := []struct {
		min  findings.Severity
		want int
	}{
		{findings.SeverityLow, 4},
		{findings.SeverityMedium, 3},
		{findings.SeverityHigh, 2},
		{findings.SeverityCritical, 1},
	}
	for _, tc := range cases {
		got := FilterBySeverity(all, tc.min)
		if len(got) != tc.want {
			t.Fatalf("min=%s: expected %d findings, got %d", tc.min, tc.want, len(got))
		}
		for _, f := range got {
			if !f.Severity.MeetsThreshold(tc.min) {
				t.Fatalf("min=%s: finding %q below threshold survived", tc.min, f.RuleID)
			}
		}
	}
}

func TestFilterBySeverityUnknownTreatedAsMedium(t *testing.T) {
	fs := []findings.Finding{{RuleID: "odd", Severity: findings.Severity("bogus")}}

	if got := FilterBySeverity(fs, findings.SeverityMedium); len(got) != 1 {
		t.Fatal("unknown severity must rank as medium and pass a medium threshold")
	}
	if got := FilterBySeverity(fs, findings.SeverityHigh); len(got) != 0 {
		t.Fatal("unknown severity must rank as medium and fail a high threshold")
	}
}

func TestFilterBySeverityDoesNotMutateInput(t *testing.T) {
	fs := []findings.Finding{
		{RuleID: "a", Severity: findings.SeverityLow},
		{RuleID: "b", Severity: findings.SeverityCritical},
	}
	snapshot := make([]findings.Finding, len(fs))
	copy(snapshot, fs)

	FilterBySeverity(fs, findings.SeverityHigh)
	if !reflect.DeepEqual(fs, snapshot) {
		t.Fatal("input slice was modified")
	}
}
