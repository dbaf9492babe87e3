package parser

import (
	"fmt"
	"os"

	"github.com/iacshield/iacshield/internal/document"
)

// ARMParser decodes Azure Resource Manager templates, which are JSON only.
// The parsed document keeps ARM's native shape; Resources additionally
// normalizes the resources array into a mapping keyed by resource name so
// callers can treat all three formats uniformly.
type ARMParser struct{}

func NewARM() *ARMParser { return &ARMParser{} }

func (p *ARMParser) Format() string { return "arm" }

func (p *ARMParser) Extensions() []string { return []string{".json"} }

// Parse reads and decodes the template.
func (p *ARMParser) Parse(filePath string) (document.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &ParseError{File: filePath, Err: err}
	}
	return decodeJSON(filePath, data)
}

// Resources converts ARM's array-of-objects resources section into a mapping
// keyed by resource name, synthesizing resource_{index} for entries without
// one.
func (p *ARMParser) Resources(doc document.Document) map[string]any {
	out := map[string]any{}
	for i, v := range document.GetSeq(doc, "resources") {
		res, ok := v.(map[string]any)
		if !ok {
			continue
		}
		name := document.GetString(res, "name", "")
		if name == "" {
			name = fmt.Sprintf("resource_%d", i)
		}
		out[name] = res
	}
	return out
}

// Parameters returns the parameters section of the template.
func (p *ARMParser) Parameters(doc document.Document) map[string]any {
	return document.GetMap(doc, "parameters")
}

// Variables returns the variables section of the template.
func (p *ARMParser) Variables(doc document.Document) map[string]any {
	return document.GetMap(doc, "variables")
}

// Outputs returns the outputs section of the template.
func (p *ARMParser) Outputs(doc document.Document) map[string]any {
	return document.GetMap(doc, "outputs")
}
