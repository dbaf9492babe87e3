package rules

import (
	"sort"

	"github.com/iacshield/iacshield/internal/document"
	"github.com/iacshield/iacshield/internal/findings"
)

// Violation is the raw output of one predicate match: what went wrong, on
// which resource, and where in the file when the format tracks lines.
type Violation struct {
	Message  string
	Resource string
	Line     int
}

// Rule bundles a security check's static metadata with its predicate. Rules
// are built once per provider set and never mutated at runtime.
type Rule struct {
	ID            string
	Name          string
	Category      string
	Severity      findings.Severity
	Description   string
	FixSuggestion string
	References    []string

	// Evaluate walks the normalized document and returns one violation per
	// offending resource. Predicates must be pure and must tolerate
	// malformed documents via default-valued lookups.
	Evaluate func(doc document.Document) []Violation
}

// Set is a fixed, ordered collection of rules for one cloud provider.
type Set struct {
	provider string
	rules    []Rule
}

// Provider returns the cloud provider the set covers.
func (s *Set) Provider() string { return s.provider }

// Rules returns the full rule sequence. The document argument is a reserved
// extension point for content-based filtering; today every rule applies.
func (s *Set) Rules(doc document.Document) []Rule {
	return s.rules
}

// Sets returns all provider rule-sets keyed by provider token.
func Sets() map[string]*Set {
	return map[string]*Set{
		"aws":   NewAWS(),
		"azure": NewAzure(),
		"gcp":   NewGCP(),
	}
}

// eachResource walks the Terraform-style resource section, invoking fn for
// every resource whose type equals one of resourceTypes. Resources are
// visited in name order so repeated evaluations yield identical violation
// sequences.
func eachResource(doc document.Document, resourceTypes []string, fn func(resourceType, name string, cfg map[string]any)) {
	resources := document.GetMap(doc, "resource")
	for _, resourceType := range resourceTypes {
		typed := document.GetMap(resources, resourceType)
		names := make([]string, 0, len(typed))
		for name := range typed {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			cfg, ok := typed[name].(map[string]any)
			if !ok {
				continue
			}
			fn(resourceType, name, cfg)
		}
	}
}

// address renders the canonical "{resource_type}.{resource_name}" form.
func address(resourceType, name string) string {
	return resourceType + "." + name
}
