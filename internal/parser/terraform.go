package parser

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/iacshield/iacshield/internal/document"
)

// TerraformParser decodes Terraform configurations: HCL for .tf/.tfvars and
// plain JSON for .tf.json. No variable interpolation or module resolution is
// performed; expressions that need an evaluation context are kept as their
// raw source text.
type TerraformParser struct{}

func NewTerraform() *TerraformParser { return &TerraformParser{} }

func (p *TerraformParser) Format() string { return "terraform" }

// Extensions lists what file discovery matches. Parse additionally accepts
// .tf.json files when pointed at one directly.
func (p *TerraformParser) Extensions() []string { return []string{".tf", ".tfvars"} }

// Parse reads the file and decodes it by extension.
func (p *TerraformParser) Parse(filePath string) (document.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &ParseError{File: filePath, Err: err}
	}

	if strings.EqualFold(filepath.Ext(filePath), ".json") {
		return decodeJSON(filePath, data)
	}
	return decodeHCL(filePath, data)
}

// Resources returns the resource section of the document.
func (p *TerraformParser) Resources(doc document.Document) map[string]any {
	return document.GetMap(doc, "resource")
}

// DataSources returns the data section of the document.
func (p *TerraformParser) DataSources(doc document.Document) map[string]any {
	return document.GetMap(doc, "data")
}

// Variables returns the variable section of the document.
func (p *TerraformParser) Variables(doc document.Document) map[string]any {
	return document.GetMap(doc, "variable")
}

// Outputs returns the output section of the document.
func (p *TerraformParser) Outputs(doc document.Document) map[string]any {
	return document.GetMap(doc, "output")
}

// decodeHCL parses HCL source and flattens it into the normalized tree:
// labeled blocks nest by label (resource "t" "n" {…} becomes
// resource→t→n→config), repeated unlabeled blocks become sequences, and
// every block config carries its starting line under document.LineKey.
func decodeHCL(filePath string, src []byte) (document.Document, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filePath)
	if diags.HasErrors() {
		return nil, &ParseError{File: filePath, Err: diags}
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		// ParseHCL always yields a native syntax body; guard anyway.
		return document.Document{}, nil
	}
	return document.Document(bodyToMap(body, src)), nil
}

func bodyToMap(body *hclsyntax.Body, src []byte) map[string]any {
	out := map[string]any{}

	for name, attr := range body.Attributes {
		out[name] = exprValue(attr.Expr, src)
	}

	for _, block := range body.Blocks {
		cfg := bodyToMap(block.Body, src)
		cfg[document.LineKey] = block.DefRange().Start.Line
		insertBlock(out, block, cfg)
	}

	return out
}

// insertBlock places a block's config under its type and labels, promoting
// repeated blocks of the same path into a sequence.
func insertBlock(out map[string]any, block *hclsyntax.Block, cfg map[string]any) {
	path := append([]string{block.Type}, block.Labels...)

	node := out
	for _, key := range path[:len(path)-1] {
		next, ok := node[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[key] = next
		}
		node = next
	}

	last := path[len(path)-1]
	switch existing := node[last].(type) {
	case nil:
		node[last] = cfg
	case []any:
		node[last] = append(existing, cfg)
	default:
		node[last] = []any{existing, cfg}
	}
}

// exprValue evaluates an expression without any context. Literals come back
// as Go scalars and collections; anything that needs variables, functions or
// references degrades to its raw source text.
func exprValue(expr hclsyntax.Expression, src []byte) any {
	v, diags := expr.Value(nil)
	if diags.HasErrors() || !v.IsWhollyKnown() {
		return strings.TrimSpace(string(expr.Range().SliceBytes(src)))
	}
	return ctyToGo(v)
}

func ctyToGo(v cty.Value) any {
	if v.IsNull() {
		return nil
	}

	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString()
	case t == cty.Bool:
		return v.True()
	case t == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return int(i)
		}
		f, _ := bf.Float64()
		return f
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ctyToGo(ev))
		}
		return out
	case t.IsObjectType() || t.IsMapType():
		out := map[string]any{}
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			out[kv.AsString()] = ctyToGo(ev)
		}
		return out
	default:
		return nil
	}
}
