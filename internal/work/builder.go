// Package work turns raw citations into subgraphs describing articles, books
// and book chapters, reusing journals, volumes, issues and books already in
// the work graph.
//
// Builders never write. They return a changeset that the caller commits as a
// unit, so a rejected record leaves the graph untouched.
package work

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/citation"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/lookup"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/mint"
	"github.com/rs/zerolog"
)

// ErrDuplicate means the work a record describes is already in the graph.
var ErrDuplicate = errors.New("duplicate entity")

// DuplicateEntityError reports the existing entity that blocked a record.
type DuplicateEntityError struct {
	IRI  graph.IRI
	Kind citation.Kind
	Key  string // what matched, e.g. "doi" or "isbn 9780306406157"
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s %s already exists (matched by %s)", e.Kind, e.IRI, e.Key)
}

func (e *DuplicateEntityError) Unwrap() error {
	return ErrDuplicate
}

// Ambiguity decides what a builder does when a dedup key matches more than
// one entity.
type Ambiguity string

const (
	// AmbiguityFirst reuses the first candidate and records a warning.
	AmbiguityFirst Ambiguity = "first"
	// AmbiguityReject fails the record.
	AmbiguityReject Ambiguity = "reject"
)

// ParseAmbiguity validates an ambiguity policy name. Empty means first.
func ParseAmbiguity(s string) (Ambiguity, error) {
	switch Ambiguity(s) {
	case "", AmbiguityFirst:
		return AmbiguityFirst, nil
	case AmbiguityReject:
		return AmbiguityReject, nil
	default:
		return "", fmt.Errorf("invalid ambiguity policy %q (want first or reject)", s)
	}
}

// Lookup finds existing entities. *lookup.Index implements it.
type Lookup interface {
	Periodical(ctx context.Context, name string) (graph.IRI, bool, error)
	Volume(ctx context.Context, journal graph.IRI, number string) (graph.IRI, bool, error)
	Issue(ctx context.Context, journal graph.IRI, number string) (graph.IRI, bool, error)
	IssueOfVolume(ctx context.Context, volume graph.IRI, number string) (graph.IRI, bool, error)
	DOI(ctx context.Context, iri graph.IRI) (graph.IRI, bool, error)
	BookByIRI(ctx context.Context, iri graph.IRI) (graph.IRI, bool, error)
	BookByISBN(ctx context.Context, isbn string) (graph.IRI, bool, error)
}

// Objects reads the current values of an entity's attributes.
type Objects interface {
	Objects(ctx context.Context, subj graph.Term, pred graph.IRI) ([]graph.Term, error)
}

// Env is everything a builder reads besides the record itself.
type Env struct {
	Lookup     Lookup
	Graph      Objects
	Minter     mint.Minter
	Provenance graph.Provenance
	Catalog    Catalog
	Ambiguity  Ambiguity
	Logger     zerolog.Logger
}

// Result is the changeset for one record.
type Result struct {
	ID       WorkIdentifier
	Kind     citation.Kind
	Triples  []graph.Triple
	Minted   []graph.IRI // entities the record creates, the work first
	Reused   []graph.IRI // existing entities the record links to
	Revised  []graph.IRI // existing entities the record adds attributes to
	Warnings []string
}

// Builder builds the subgraph for one kind of citation.
type Builder interface {
	Build(ctx context.Context, env *Env, raw citation.Raw, authors []graph.IRI) (Result, error)
}

// For returns the builder for kind.
func For(kind citation.Kind) (Builder, error) {
	switch kind {
	case citation.Article:
		return articleBuilder{}, nil
	case citation.Book:
		return bookBuilder{}, nil
	case citation.BookChapter:
		return chapterBuilder{}, nil
	default:
		return nil, fmt.Errorf("no builder for entry kind %q", kind)
	}
}

// Build validates raw and runs the builder for its kind. A changeset holding
// a triple that cannot be serialized, such as an IRI with a space in it,
// fails with an error wrapping graph.ErrInvalidIRI.
func Build(ctx context.Context, env *Env, raw citation.Raw, authors []graph.IRI) (Result, error) {
	if err := raw.Validate(); err != nil {
		return Result{}, err
	}
	b, err := For(raw.Kind)
	if err != nil {
		return Result{}, err
	}
	res, err := b.Build(ctx, env, raw, authors)
	if err != nil {
		return Result{}, err
	}
	for _, t := range res.Triples {
		if err := t.Validate(); err != nil {
			return Result{}, fmt.Errorf("%s: %w", t, err)
		}
	}
	return res, nil
}

// Precheck runs the duplicate checks of Build without building anything:
// an article or chapter whose DOI is already a work, or a book already
// found by catalog record or ISBN. It lets a caller reject a record before
// resolving its authors.
func Precheck(ctx context.Context, env *Env, raw citation.Raw) error {
	if err := raw.Validate(); err != nil {
		return err
	}
	quiet := *env
	quiet.Logger = zerolog.Nop()
	c := newChangeset(ctx, &quiet, raw)

	switch raw.Kind {
	case citation.Article, citation.BookChapter:
		return c.duplicateDOI()
	case citation.Book:
		existing, key, err := c.existingBook()
		if err != nil {
			return err
		}
		if existing != "" {
			return &DuplicateEntityError{IRI: existing, Kind: raw.Kind, Key: key}
		}
	}
	return nil
}

// changeset accumulates the triples of one record.
type changeset struct {
	ctx context.Context
	env *Env
	raw citation.Raw
	res Result
}

func newChangeset(ctx context.Context, env *Env, raw citation.Raw) *changeset {
	return &changeset{ctx: ctx, env: env, raw: raw, res: Result{Kind: raw.Kind}}
}

func (c *changeset) add(s graph.IRI, p graph.IRI, o graph.Term) {
	c.res.Triples = append(c.res.Triples, graph.T(s.Term(), p, o))
}

// literal adds a plain literal unless v is empty.
func (c *changeset) literal(s graph.IRI, p graph.IRI, v string) {
	if v != "" {
		c.add(s, p, graph.Literal(v))
	}
}

func (c *changeset) link(s graph.IRI, p graph.IRI, o graph.IRI) {
	c.add(s, p, o.Term())
}

// create records a new entity of class, with its generation record.
func (c *changeset) create(iri graph.IRI, class graph.IRI) {
	c.res.Minted = append(c.res.Minted, iri)
	c.link(iri, graph.RDFType, class)
	if c.env.Provenance.Enabled() {
		c.res.Triples = append(c.res.Triples,
			graph.GenerationTriples(iri.Term(), c.env.Minter.Blank(), c.env.Provenance)...)
	}
	c.env.Logger.Debug().Str("iri", string(iri)).Str("class", string(class)).Msg("new entity")
}

// mint creates a new entity under a freshly minted IRI.
func (c *changeset) mint(class graph.IRI) (graph.IRI, error) {
	iri, err := c.env.Minter.IRI()
	if err != nil {
		return "", err
	}
	c.create(iri, class)
	return iri, nil
}

func (c *changeset) reuse(iri graph.IRI, what string) {
	c.res.Reused = append(c.res.Reused, iri)
	c.env.Logger.Debug().Str("iri", string(iri)).Str("entity", what).Msg("reusing existing entity")
}

// revise adds only the attributes iri has no value for yet. An entity that
// gains anything gets a revision record.
func (c *changeset) revise(iri graph.IRI, attrs []graph.Triple) error {
	var added []graph.Triple
	for _, t := range attrs {
		existing, err := c.env.Graph.Objects(c.ctx, iri.Term(), t.Predicate.IRI())
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			added = append(added, t)
		}
	}
	if len(added) == 0 {
		return nil
	}
	c.res.Triples = append(c.res.Triples, added...)
	c.res.Revised = append(c.res.Revised, iri)
	if c.env.Provenance.Enabled() {
		c.res.Triples = append(c.res.Triples,
			graph.RevisionTriples(iri.Term(), c.env.Minter.Blank(), c.env.Provenance)...)
	}
	return nil
}

// found applies the ambiguity policy to a lookup result.
func (c *changeset) found(iri graph.IRI, ok bool, err error) (graph.IRI, bool, error) {
	var ae *lookup.AmbiguityError
	if errors.As(err, &ae) && c.env.Ambiguity != AmbiguityReject {
		c.res.Warnings = append(c.res.Warnings, ae.Error()+"; using the first")
		c.env.Logger.Warn().Str("key", c.raw.Key).Strs("candidates", iriStrings(ae.Candidates)).
			Msgf("ambiguous lookup for %s", ae.Key)
		return iri, ok, nil
	}
	return iri, ok, err
}

// workIdentity picks a DOI identity when the record has one and fails if
// that work already exists; otherwise the work gets a minted IRI.
func (c *changeset) workIdentity() (WorkIdentifier, error) {
	if doi := DOIIRI(c.raw.Get("doi")); doi != "" {
		if err := c.duplicateDOI(); err != nil {
			return nil, err
		}
		return DOI(doi), nil
	}
	iri, err := c.env.Minter.IRI()
	if err != nil {
		return nil, err
	}
	return Minted(iri), nil
}

// duplicateDOI fails when the record's DOI is already a work.
func (c *changeset) duplicateDOI() error {
	doi := DOIIRI(c.raw.Get("doi"))
	if doi == "" {
		return nil
	}
	_, exists, err := c.found(c.env.Lookup.DOI(c.ctx, doi))
	if err != nil {
		return err
	}
	if exists {
		return &DuplicateEntityError{IRI: doi, Kind: c.raw.Kind, Key: "doi"}
	}
	return nil
}

// common adds the attributes every kind of work carries.
func (c *changeset) common(work graph.IRI, authors []graph.IRI) {
	for _, a := range authors {
		c.link(work, graph.SchemaAuthor, a)
	}
	c.literal(work, graph.CiteAuthorString, c.raw.Get("author"))
	c.literal(work, graph.CiteCitationType, string(c.raw.Kind))
	c.literal(work, graph.SchemaDatePublished, c.raw.Get("year"))
	c.literal(work, graph.CiteMonth, c.raw.Get("month"))
	c.literal(work, graph.SchemaAbout, c.raw.Get("abstract", "summary"))
}

// url prefers the DOI link over an exported link field.
func (c *changeset) url(work graph.IRI, id WorkIdentifier) {
	if d, ok := id.(DOI); ok {
		c.link(work, graph.SchemaURL, d.IRI())
		return
	}
	link := c.raw.Get("link", "url")
	if link == "" {
		return
	}
	if iri := graph.IRI(link); iri.Valid() {
		c.link(work, graph.SchemaURL, iri)
	} else {
		c.literal(work, graph.SchemaURL, link)
	}
}

func (c *changeset) result(id WorkIdentifier) Result {
	c.res.ID = id
	return c.res
}

func iriStrings(iris []graph.IRI) []string {
	out := make([]string, len(iris))
	for i, iri := range iris {
		out[i] = string(iri)
	}
	return out
}
