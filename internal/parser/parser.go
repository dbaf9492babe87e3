package parser

import (
	"encoding/json"
	"fmt"

	"github.com/iacshield/iacshield/internal/document"
)

// Parser converts one on-disk IaC file into a normalized document. Parsers
// are stateless; each Parse call is independent and a pure function of the
// file's content and extension.
type Parser interface {
	// Format returns the format token the parser serves (terraform,
	// cloudformation, arm).
	Format() string
	// Extensions returns the file extensions the format accepts, with the
	// leading dot.
	Extensions() []string
	// Parse reads and decodes the file, failing with a *ParseError on
	// malformed input.
	Parse(filePath string) (document.Document, error)
}

// ParseError wraps the underlying syntax error together with the file that
// produced it.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// decodeJSON unmarshals raw JSON into a normalized document tree.
func decodeJSON(filePath string, data []byte) (document.Document, error) {
	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{File: filePath, Err: err}
	}
	return doc, nil
}

// HasExtension reports whether ext (with leading dot) is one of the listed
// extensions.
func HasExtension(ext string, extensions []string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}
