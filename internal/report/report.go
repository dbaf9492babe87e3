// Package report renders analysis results for human and machine consumers.
// The writers consume the findings structures verbatim; nothing here reaches
// back into the analysis pipeline.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/iacshield/iacshield/internal/findings"
	"github.com/iacshield/iacshield/internal/sarif"
)

// Formats supported by Write.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatHTML  = "html"
	FormatSARIF = "sarif"
)

// Write renders the result in the requested format to outputPath.
func Write(result *findings.AnalysisResult, outputPath, format, toolVersion string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create report file %q: %w", outputPath, err)
	}
	defer file.Close()

	if err := WriteTo(result, file, format, toolVersion); err != nil {
		return fmt.Errorf("failed to write %s report to %q: %w", format, outputPath, err)
	}
	return nil
}

// WriteTo renders the result in the requested format to w.
func WriteTo(result *findings.AnalysisResult, w io.Writer, format, toolVersion string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatYAML:
		data, err := yaml.Marshal(result)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatHTML:
		return writeHTML(result, w)
	case FormatSARIF:
		return sarif.Write(result, toolVersion, w)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
}
