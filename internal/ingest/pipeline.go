// Package ingest runs a batch of raw citations through author resolution and
// the work builders against one shared work graph.
//
// Records are processed one at a time in input order. Each record's triples
// are committed before the next record is looked at, so entities created for
// one record are found by the lookups of the records after it.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/author"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/citation"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/mint"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/work"
	"github.com/rs/zerolog"
)

// OnError decides whether a failed record stops the batch.
type OnError string

const (
	// Skip reports the record and continues.
	Skip OnError = "skip"
	// Abort stops at the first failed record.
	Abort OnError = "abort"
)

// ParseOnError validates an error policy name. Empty means skip.
func ParseOnError(s string) (OnError, error) {
	switch OnError(s) {
	case "", Skip:
		return Skip, nil
	case Abort:
		return Abort, nil
	default:
		return "", fmt.Errorf("invalid error policy %q (want skip or abort)", s)
	}
}

// WorkGraph is the graph records are written to.
type WorkGraph interface {
	work.Objects
	Add(ctx context.Context, triples ...graph.Triple) (int, error)
}

// AuthorResolver resolves a citation's author field. *author.Resolver
// implements it.
type AuthorResolver interface {
	Resolve(ctx context.Context, key, field string) (author.Resolution, error)
}

// Recorder receives per-record counts, e.g. for metrics.
type Recorder interface {
	RecordOutcome(kind, status, reason string)
	AddTriples(n int)
}

// Context holds everything a batch reads and writes.
type Context struct {
	Works     WorkGraph
	Authors   AuthorResolver
	Lookup    work.Lookup
	Minter    mint.Minter
	Catalog   work.Catalog
	Agent     graph.IRI // provenance agent; none recorded when empty
	Clock     func() time.Time
	OnError   OnError
	Ambiguity work.Ambiguity
	Logger    zerolog.Logger
	Recorder  Recorder
}

// Pipeline processes batches of records.
type Pipeline struct {
	c *Context
}

// New returns a pipeline over c.
func New(c *Context) *Pipeline {
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return &Pipeline{c: c}
}

// Run processes records in order. sourceErrs are the errors the citation
// source reported while reading; they enter the summary as skipped records.
//
// Record-level failures are reported in the summary. Run returns an error
// only when the batch stopped early: a storage failure, cancellation
// (checked between records) or, under the abort policy, the first failed
// record, in which case the error wraps ErrAborted.
func (p *Pipeline) Run(ctx context.Context, records []citation.Raw, sourceErrs []error) (Summary, error) {
	var sum Summary
	sum.Outcomes = make([]Outcome, 0, len(records)+len(sourceErrs))
	log := p.c.Logger

	for _, err := range sourceErrs {
		o := Outcome{Status: StatusSkipped, Reason: ReasonParseError, Message: err.Error()}
		var pe citation.ParseError
		if errors.As(err, &pe) {
			o.Index, o.Key = pe.Index, pe.Key
		}
		log.Warn().Int("index", o.Index).Str("key", o.Key).Str("reason", string(o.Reason)).Msg(o.Message)
		p.record(&sum, o)
		if p.c.OnError == Abort {
			sum.Aborted = true
			p.cancel(&sum, records)
			return sum, fmt.Errorf("%w: %s", ErrAborted, o.Message)
		}
	}

	for i, raw := range records {
		if err := ctx.Err(); err != nil {
			p.cancel(&sum, records[i:])
			return sum, err
		}

		o, err := p.process(ctx, raw)
		if err != nil {
			if ctx.Err() != nil {
				p.cancel(&sum, records[i:])
				return sum, ctx.Err()
			}
			o.Message = err.Error()
			p.record(&sum, o)
			return sum, fmt.Errorf("record %d (%s): %w", raw.Index, raw.Key, err)
		}
		p.record(&sum, o)

		if o.Status != StatusSucceeded {
			log.Warn().Int("index", o.Index).Str("key", o.Key).Str("kind", string(o.Kind)).
				Str("reason", string(o.Reason)).Msg(o.Message)
			if p.c.OnError == Abort {
				sum.Aborted = true
				p.cancel(&sum, records[i+1:])
				return sum, fmt.Errorf("%w at record %d (%s): %s", ErrAborted, raw.Index, raw.Key, o.Message)
			}
		}
	}

	log.Info().Int("total", sum.Total).Int("succeeded", sum.Succeeded).Int("rejected", sum.Rejected).
		Int("skipped", sum.Skipped).Int("triples", sum.Triples).Msg("batch complete")
	return sum, nil
}

// process handles one record. A returned error is batch-fatal; data-quality
// failures are reported in the outcome instead.
func (p *Pipeline) process(ctx context.Context, raw citation.Raw) (Outcome, error) {
	o := Outcome{Index: raw.Index, Key: raw.Key, Kind: raw.Kind}
	fail := func(err error) (Outcome, error) {
		o.Status, o.Reason = Classify(err)
		if o.Reason == ReasonInternal {
			return o, err
		}
		o.Message = err.Error()
		return o, nil
	}

	if err := raw.Validate(); err != nil {
		return fail(err)
	}

	env := &work.Env{
		Lookup:     p.c.Lookup,
		Graph:      p.c.Works,
		Minter:     p.c.Minter,
		Provenance: graph.Provenance{Agent: p.c.Agent, At: p.c.Clock()},
		Catalog:    p.c.Catalog,
		Ambiguity:  p.c.Ambiguity,
		Logger:     p.c.Logger.With().Str("key", raw.Key).Logger(),
	}
	// Duplicates are refused before authors are resolved, so an operator is
	// never asked about a record that cannot be ingested.
	if err := work.Precheck(ctx, env, raw); err != nil {
		return fail(err)
	}

	res, err := p.c.Authors.Resolve(ctx, raw.Key, raw.Get("author"))
	if err != nil {
		return fail(err)
	}
	for _, iri := range res.IRIs {
		o.Authors = append(o.Authors, string(iri))
	}
	if len(res.Unmatched) > 0 && !res.ByPolicy {
		for _, n := range res.Unmatched {
			o.Warnings = append(o.Warnings, fmt.Sprintf("author %q not in registry", n.Lookup()))
		}
	}

	built, err := work.Build(ctx, env, raw, res.IRIs)
	if err != nil {
		return fail(err)
	}

	added, err := p.c.Works.Add(ctx, built.Triples...)
	if err != nil {
		o.Status, o.Reason = StatusRejected, ReasonInternal
		return o, fmt.Errorf("committing record: %w", err)
	}

	o.Status = StatusSucceeded
	o.IRI = string(built.ID.IRI())
	o.Identity = built.ID.Scheme()
	o.Minted = len(built.Minted)
	o.Reused = len(built.Reused)
	o.Triples = added
	o.Warnings = append(o.Warnings, built.Warnings...)

	p.c.Logger.Debug().Int("index", o.Index).Str("key", o.Key).Str("kind", string(o.Kind)).
		Str("iri", o.IRI).Str("outcome", string(o.Status)).Int("triples", added).Msg("record ingested")
	return o, nil
}

func (p *Pipeline) record(sum *Summary, o Outcome) {
	sum.add(o)
	if p.c.Recorder != nil {
		p.c.Recorder.RecordOutcome(string(o.Kind), string(o.Status), string(o.Reason))
		if o.Status == StatusSucceeded {
			p.c.Recorder.AddTriples(o.Triples)
		}
	}
}

// cancel marks records that were never processed.
func (p *Pipeline) cancel(sum *Summary, rest []citation.Raw) {
	for _, raw := range rest {
		p.record(sum, Outcome{Index: raw.Index, Key: raw.Key, Kind: raw.Kind, Status: StatusCancelled})
	}
}
