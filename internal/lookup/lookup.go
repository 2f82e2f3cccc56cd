// Package lookup finds entities already in the work graph so that builders
// reuse them instead of minting duplicates. Lookups never modify the graph;
// "not found" means the caller should mint a new entity.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
)

// ErrAmbiguous means a key matched more than one entity.
var ErrAmbiguous = errors.New("ambiguous lookup")

// AmbiguityError lists the entities matching one dedup key. Lookups that
// return it still return the first candidate.
type AmbiguityError struct {
	Key        string
	Candidates []graph.IRI
}

func (e *AmbiguityError) Error() string {
	iris := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		iris[i] = string(c)
	}
	return fmt.Sprintf("%d entities match %s: %s", len(e.Candidates), e.Key, strings.Join(iris, ", "))
}

func (e *AmbiguityError) Unwrap() error {
	return ErrAmbiguous
}

// Store is the read side of the work graph.
type Store interface {
	Has(ctx context.Context, t graph.Triple) (bool, error)
	HasSubject(ctx context.Context, subj graph.Term) (bool, error)
	IsA(ctx context.Context, subj graph.Term, class graph.IRI) (bool, error)
	SubjectsByValue(ctx context.Context, pred graph.IRI, value string) ([]graph.Term, error)
}

// Index answers dedup lookups against a Store.
type Index struct {
	store Store
}

// New creates an Index over s.
func New(s Store) *Index {
	return &Index{store: s}
}

// Periodical finds a schema:Periodical whose schema:name is exactly name.
// Unlike the other lookups this is a whole-string, case-sensitive match so
// that "Nature" never matches "Nature Reviews".
func (x *Index) Periodical(ctx context.Context, name string) (graph.IRI, bool, error) {
	key := fmt.Sprintf("periodical %q", name)
	return x.find(ctx, key, graph.SchemaName, name, graph.SchemaPeriodical, nil)
}

// Volume finds the volume numbered number that is partOf journal.
func (x *Index) Volume(ctx context.Context, journal graph.IRI, number string) (graph.IRI, bool, error) {
	key := fmt.Sprintf("volume %q of %s", number, journal)
	return x.find(ctx, key, graph.SchemaVolumeNumber, number, graph.SchemaPublicationVolume, &journal)
}

// Issue finds the issue numbered number that is directly partOf journal.
func (x *Index) Issue(ctx context.Context, journal graph.IRI, number string) (graph.IRI, bool, error) {
	key := fmt.Sprintf("issue %q of %s", number, journal)
	return x.find(ctx, key, graph.SchemaIssueNumber, number, graph.SchemaPublicationIssue, &journal)
}

// IssueOfVolume finds the issue numbered number that is partOf volume.
func (x *Index) IssueOfVolume(ctx context.Context, volume graph.IRI, number string) (graph.IRI, bool, error) {
	key := fmt.Sprintf("issue %q of %s", number, volume)
	return x.find(ctx, key, graph.SchemaIssueNumber, number, graph.SchemaPublicationIssue, &volume)
}

// DOI reports whether the graph already describes the work iri.
func (x *Index) DOI(ctx context.Context, iri graph.IRI) (graph.IRI, bool, error) {
	return x.exists(ctx, iri, "")
}

// BookByIRI reports whether iri is a schema:Book in the graph.
func (x *Index) BookByIRI(ctx context.Context, iri graph.IRI) (graph.IRI, bool, error) {
	return x.exists(ctx, iri, graph.SchemaBook)
}

// BookByISBN finds a book by ISBN. Hyphens and spaces are ignored.
func (x *Index) BookByISBN(ctx context.Context, isbn string) (graph.IRI, bool, error) {
	isbn = NormalizeISBN(isbn)
	key := fmt.Sprintf("book with ISBN %s", isbn)
	return x.find(ctx, key, graph.SchemaISBN, isbn, graph.SchemaBook, nil)
}

// BookByTitle finds a book by exact title.
func (x *Index) BookByTitle(ctx context.Context, title string) (graph.IRI, bool, error) {
	key := fmt.Sprintf("book titled %q", title)
	return x.find(ctx, key, graph.SchemaTitle, title, graph.SchemaBook, nil)
}

// NormalizeISBN strips separators and uppercases a trailing check digit X.
func NormalizeISBN(isbn string) string {
	var b strings.Builder
	for _, r := range isbn {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		}
	}
	return b.String()
}

func (x *Index) exists(ctx context.Context, iri graph.IRI, class graph.IRI) (graph.IRI, bool, error) {
	if iri == "" {
		return "", false, nil
	}
	var ok bool
	var err error
	if class == "" {
		ok, err = x.store.HasSubject(ctx, iri.Term())
	} else {
		ok, err = x.store.IsA(ctx, iri.Term(), class)
	}
	if err != nil || !ok {
		return "", false, err
	}
	return iri, true, nil
}

// find returns entities of class whose pred literal is value, optionally
// restricted to those partOf parent.
func (x *Index) find(ctx context.Context, key string, pred graph.IRI, value string, class graph.IRI, parent *graph.IRI) (graph.IRI, bool, error) {
	if value == "" {
		return "", false, nil
	}
	subjects, err := x.store.SubjectsByValue(ctx, pred, value)
	if err != nil {
		return "", false, err
	}

	var matches []graph.IRI
	for _, s := range subjects {
		if !s.IsIRI() {
			continue
		}
		ok, err := x.store.IsA(ctx, s, class)
		if err != nil {
			return "", false, err
		}
		if !ok {
			continue
		}
		if parent != nil {
			ok, err = x.store.Has(ctx, graph.T(s, graph.SchemaPartOf, parent.Term()))
			if err != nil {
				return "", false, err
			}
			if !ok {
				continue
			}
		}
		matches = append(matches, s.IRI())
	}

	switch len(matches) {
	case 0:
		return "", false, nil
	case 1:
		return matches[0], true, nil
	default:
		return matches[0], true, &AmbiguityError{Key: key, Candidates: matches}
	}
}
