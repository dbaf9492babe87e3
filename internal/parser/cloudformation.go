package parser

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iacshield/iacshield/internal/document"
)

// CloudFormationParser decodes CloudFormation templates, JSON or YAML by
// extension. The document keeps CloudFormation's native capitalized section
// names (Resources, Parameters, Outputs, Mappings).
type CloudFormationParser struct{}

func NewCloudFormation() *CloudFormationParser { return &CloudFormationParser{} }

func (p *CloudFormationParser) Format() string { return "cloudformation" }

func (p *CloudFormationParser) Extensions() []string { return []string{".yaml", ".yml", ".json"} }

// Parse reads the template and decodes it by extension.
func (p *CloudFormationParser) Parse(filePath string) (document.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &ParseError{File: filePath, Err: err}
	}

	if strings.EqualFold(filepath.Ext(filePath), ".json") {
		return decodeJSON(filePath, data)
	}

	// Decode into a plain map: unmarshalling into the named Document type
	// would make yaml.v3 type every nested mapping as Document too, which
	// the map[string]any assertions in the document package do not match.
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ParseError{File: filePath, Err: err}
	}
	if m == nil {
		m = map[string]any{}
	}
	return document.Document(m), nil
}

// Resources returns the Resources section of the template.
func (p *CloudFormationParser) Resources(doc document.Document) map[string]any {
	return document.GetMap(doc, "Resources")
}

// Parameters returns the Parameters section of the template.
func (p *CloudFormationParser) Parameters(doc document.Document) map[string]any {
	return document.GetMap(doc, "Parameters")
}

// Outputs returns the Outputs section of the template.
func (p *CloudFormationParser) Outputs(doc document.Document) map[string]any {
	return document.GetMap(doc, "Outputs")
}

// Mappings returns the Mappings section of the template.
func (p *CloudFormationParser) Mappings(doc document.Document) map[string]any {
	return document.GetMap(doc, "Mappings")
}
