package findings

import "time"

// Severity is the ordered criticality tag attached to rules and findings.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityWeights defines the total order low < medium < high < critical.
var severityWeights = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Weight returns the numeric rank of the severity. Unknown severities rank
// as medium so malformed rule metadata never drops below the default
// reporting threshold.
func (s Severity) Weight() int {
	if w, ok := severityWeights[s]; ok {
		return w
	}
	return severityWeights[SeverityMedium]
}

// MeetsThreshold reports whether the severity is at or above min.
func (s Severity) MeetsThreshold(min Severity) bool {
	return s.Weight() >= min.Weight()
}

// Categories reserved for synthetic findings that report infrastructure
// failures rather than security violations.
const (
	CategoryParseError = "parse_error"
	CategoryRuleError  = "rule_error"
)

// Finding is one reported rule violation, or a synthetic entry describing a
// parse or rule-evaluation failure. Synthetic entries carry a non-empty
// Error and one of the reserved categories above; they are excluded from
// remediation and from per-severity summary counts.
type Finding struct {
	File          string   `json:"file" yaml:"file"`
	RuleID        string   `json:"rule_id" yaml:"rule_id"`
	RuleName      string   `json:"rule_name" yaml:"rule_name"`
	Severity      Severity `json:"severity" yaml:"severity"`
	Category      string   `json:"category" yaml:"category"`
	Message       string   `json:"message" yaml:"message"`
	Line          int      `json:"line" yaml:"line"`
	Column        int      `json:"column" yaml:"column"`
	Resource      string   `json:"resource,omitempty" yaml:"resource,omitempty"`
	FixSuggestion string   `json:"fix_suggestion,omitempty" yaml:"fix_suggestion,omitempty"`
	References    []string `json:"references,omitempty" yaml:"references,omitempty"`
	Error         string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// IsError reports whether the finding describes a parse or rule-evaluation
// failure instead of a security violation.
func (f Finding) IsError() bool {
	return f.Error != "" || f.Category == CategoryParseError || f.Category == CategoryRuleError
}

// Summary aggregates per-severity counts for one analysis run. Errors counts
// synthetic findings, which are deliberately kept out of the severity
// tallies and TotalIssues.
type Summary struct {
	FilesAnalyzed int `json:"files_analyzed" yaml:"files_analyzed"`
	TotalIssues   int `json:"total_issues" yaml:"total_issues"`
	Critical      int `json:"critical" yaml:"critical"`
	High          int `json:"high" yaml:"high"`
	Medium        int `json:"medium" yaml:"medium"`
	Low           int `json:"low" yaml:"low"`
	Errors        int `json:"errors" yaml:"errors"`
}

// AnalysisResult is the aggregate output of one analyzer invocation.
type AnalysisResult struct {
	ID        string    `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Summary   Summary   `json:"summary" yaml:"summary"`
	Findings  []Finding `json:"findings" yaml:"findings"`
}

// Recount rebuilds the summary severity tallies by scanning the accumulated
// findings. FilesAnalyzed is left to the analyzer, which owns that count.
func (r *AnalysisResult) Recount() {
	r.Summary.TotalIssues = 0
	r.Summary.Critical = 0
	r.Summary.High = 0
	r.Summary.Medium = 0
	r.Summary.Low = 0
	r.Summary.Errors = 0

	for _, f := range r.Findings {
		if f.IsError() {
			r.Summary.Errors++
			continue
		}
		r.Summary.TotalIssues++
		switch f.Severity {
		case SeverityCritical:
			r.Summary.Critical++
		case SeverityHigh:
			r.Summary.High++
		case SeverityLow:
			r.Summary.Low++
		default:
			r.Summary.Medium++
		}
	}
}
