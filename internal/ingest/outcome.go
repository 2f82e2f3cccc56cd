package ingest

import (
	"errors"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/author"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/citation"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/lookup"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/work"
)

// ErrAborted means the batch stopped at a failed record because the error
// policy is abort.
var ErrAborted = errors.New("batch aborted")

// Status is what happened to one record.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusRejected  Status = "rejected" // well formed, but refused
	StatusSkipped   Status = "skipped"  // malformed
	StatusCancelled Status = "cancelled"
)

// Reason is a stable code for why a record did not succeed.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonParseError       Reason = "parse_error"
	ReasonAuthorUnresolved Reason = "author_unresolved"
	ReasonDuplicate        Reason = "duplicate"
	ReasonAmbiguous        Reason = "ambiguous"
	ReasonInvalidIRI       Reason = "invalid_iri"
	ReasonInternal         Reason = "internal"
)

// Classify maps a record error to its disposition and reason. Internal
// errors are the ones that stop a batch regardless of policy.
func Classify(err error) (Status, Reason) {
	var pe citation.ParseError
	switch {
	case err == nil:
		return StatusSucceeded, ReasonNone
	case errors.As(err, &pe):
		return StatusSkipped, ReasonParseError
	case errors.Is(err, author.ErrNoAuthors), errors.Is(err, author.ErrInvalidIRI):
		return StatusRejected, ReasonAuthorUnresolved
	case errors.Is(err, work.ErrDuplicate):
		return StatusRejected, ReasonDuplicate
	case errors.Is(err, lookup.ErrAmbiguous):
		return StatusRejected, ReasonAmbiguous
	case errors.Is(err, graph.ErrInvalidIRI):
		return StatusRejected, ReasonInvalidIRI
	default:
		return StatusRejected, ReasonInternal
	}
}

// Outcome reports one record.
type Outcome struct {
	Index    int           `json:"index"`
	Key      string        `json:"key,omitempty"`
	Kind     citation.Kind `json:"kind,omitempty"`
	Status   Status        `json:"status"`
	Reason   Reason        `json:"reason,omitempty"`
	Message  string        `json:"message,omitempty"`
	IRI      string        `json:"iri,omitempty"`
	Identity string        `json:"identity,omitempty"` // doi, catalog or minted
	Authors  []string      `json:"authors,omitempty"`
	Minted   int           `json:"minted,omitempty"`
	Reused   int           `json:"reused,omitempty"`
	Triples  int           `json:"triples,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Summary reports a batch.
type Summary struct {
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Rejected  int       `json:"rejected"`
	Skipped   int       `json:"skipped"`
	Cancelled int       `json:"cancelled"`
	Triples   int       `json:"triples_added"`
	Aborted   bool      `json:"aborted,omitempty"`
	Outcomes  []Outcome `json:"outcomes"`
}

// Failed is the number of records that were rejected or skipped.
func (s Summary) Failed() int {
	return s.Rejected + s.Skipped
}

func (s *Summary) add(o Outcome) {
	s.Total++
	switch o.Status {
	case StatusSucceeded:
		s.Succeeded++
		s.Triples += o.Triples
	case StatusRejected:
		s.Rejected++
	case StatusSkipped:
		s.Skipped++
	case StatusCancelled:
		s.Cancelled++
	}
	s.Outcomes = append(s.Outcomes, o)
}
