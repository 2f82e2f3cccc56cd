package citation

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format names a citation source format.
type Format string

const (
	FormatBibTeX Format = "bibtex"
	FormatJSONL  Format = "jsonl"
)

// DetectFormat picks a format from the file extension, falling back to the
// content: JSON lines start with '{', anything else is read as BibTeX.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bib", ".bibtex":
		return FormatBibTeX
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSONL
	}
	return FormatBibTeX
}

// Parse reads records from data in the given format.
func Parse(format Format, data []byte) ([]Raw, []error) {
	switch format {
	case FormatJSONL:
		return ReadJSONL(bytes.NewReader(data))
	default:
		return ParseBibTeX(bytes.NewReader(data))
	}
}

// Open reads a citation source file. The returned []error holds per-record
// problems; the final error is set only when the file cannot be read.
func Open(path string) ([]Raw, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading citation source: %w", err)
	}
	records, errs := Parse(DetectFormat(path, data), data)
	return records, errs, nil
}
