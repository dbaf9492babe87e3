package sarif

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iacshield/iacshield/internal/findings"
)

func testResult() *findings.AnalysisResult {
	return &findings.AnalysisResult{
		ID:        "run-1",
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Findings: []findings.Finding{
			{
				File:          "a.tf",
				RuleID:        "aws_s3_public_bucket",
				RuleName:      "S3 Bucket Public Access",
				Severity:      findings.SeverityHigh,
				Category:      "storage",
				Message:       "S3 bucket pub allows public access",
				Line:          3,
				Column:        1,
				Resource:      "aws_s3_bucket.pub",
				FixSuggestion: "Set bucket ACL to private",
				References:    []string{"https://example.com/s3"},
			},
			{
				File:     "a.tf",
				RuleID:   "aws_s3_public_bucket",
				RuleName: "S3 Bucket Public Access",
				Severity: findings.SeverityHigh,
				Category: "storage",
				Message:  "S3 bucket logs allows public access",
				Line:     10,
				Column:   1,
				Resource: "aws_s3_bucket.logs",
			},
			{
				File:     "b.tf",
				RuleID:   "gcp_compute_public_ip",
				RuleName: "Compute Instance Public IP",
				Severity: findings.SeverityMedium,
				Category: "compute",
				Message:  "Compute instance vm has a public IP",
				Line:     1,
				Column:   1,
			},
		},
	}
}

func TestFromAnalysisResultSingleRun(t *testing.T) {
	report, err := FromAnalysisResult(testResult(), "1.2.3")
	require.NoError(t, err)
	require.Len(t, report.Runs, 1)

	run := report.Runs[0]
	assert.Equal(t, "iacshield", run.Tool.Driver.Name)
	require.NotNil(t, run.Tool.Driver.Version)
	assert.Equal(t, "1.2.3", *run.Tool.Driver.Version)

	// Two distinct rules even though one produced two results.
	assert.Len(t, run.Tool.Driver.Rules, 2)
	assert.Len(t, run.Results, 3)
}

func TestFromAnalysisResultLevels(t *testing.T) {
	report, err := FromAnalysisResult(testResult(), "")
	require.NoError(t, err)

	run := report.Runs[0]
	require.NotNil(t, run.Results[0].Level)
	assert.Equal(t, "error", *run.Results[0].Level)
	require.NotNil(t, run.Results[2].Level)
	assert.Equal(t, "warning", *run.Results[2].Level)
}

func TestSeverityToLevel(t *testing.T) {
	cases := map[findings.Severity]string{
		findings.SeverityCritical:  "error",
		findings.SeverityHigh:      "error",
		findings.SeverityMedium:    "warning",
		findings.SeverityLow:       "note",
		findings.Severity("bogus"): "warning",
	}
	for severity, want := range cases {
		if got := severityToLevel(severity); got != want {
			t.Fatalf("%s: expected %q, got %q", severity, want, got)
		}
	}
}

func TestWriteProducesValidSARIFJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(testResult(), "1.2.3", &buf))

	var decoded struct {
		Version string `json:"version"`
		Runs    []struct {
			Results []json.RawMessage `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2.1.0", decoded.Version)
	require.Len(t, decoded.Runs, 1)
	assert.Len(t, decoded.Runs[0].Results, 3)
}

func TestWriteEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&findings.AnalysisResult{ID: "empty"}, "", &buf))
	assert.Contains(t, buf.String(), "2.1.0")
}

func TestFindingsWithoutRuleIDSkipped(t *testing.T) {
	result := &findings.AnalysisResult{
		Findings: []findings.Finding{{File: "x.tf", Message: "anonymous"}},
	}
	report, err := FromAnalysisResult(result, "")
	require.NoError(t, err)
	assert.Empty(t, report.Runs[0].Results)
}
