package main

import (
	"encoding/json"
	"fmt"
	"io"
)

// Output formatting limits
const (
	MessageMaxLen = 80 // Per-record messages in the human report
	LabelMaxLen   = 40 // Person labels in people listings
)

// outputJSON writes a value as formatted JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string.
func outputHuman(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// reportError outputs a command error in the appropriate format: a JSON
// document on stdout, or a plain line on stderr in human mode.
func reportError(stdout, stderr io.Writer, human bool, err error) {
	if human {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return
	}
	outputJSON(stdout, ErrorResponse{Error: err.Error()})
}

// truncateString shortens s to maxLen runes, ending in "...".
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
