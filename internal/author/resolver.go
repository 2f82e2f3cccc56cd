package author

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
	"github.com/rs/zerolog"
)

// ErrNoAuthors means no author of a citation could be resolved.
var ErrNoAuthors = errors.New("no author resolved")

// ErrInvalidIRI means a resolution policy returned something that is not an
// absolute IRI.
var ErrInvalidIRI = errors.New("not an absolute IRI")

// ResolutionError reports an author field none of whose names matched.
type ResolutionError struct {
	AuthorString string
	Names        []string
}

func (e *ResolutionError) Error() string {
	if len(e.Names) == 0 {
		return fmt.Sprintf("no author resolved from %q", e.AuthorString)
	}
	return fmt.Sprintf("no author resolved from %q (tried %s)", e.AuthorString, strings.Join(e.Names, "; "))
}

func (e *ResolutionError) Unwrap() error {
	return ErrNoAuthors
}

// Finder is the part of the person registry the resolver reads.
type Finder interface {
	FindByLabel(ctx context.Context, s string) ([]graph.IRI, error)
	FindByAlternateName(ctx context.Context, s string) ([]graph.IRI, error)
}

// Unresolved describes an author field for which no person matched. It is
// what a Policy gets to decide on.
type Unresolved struct {
	Key          string // citation key, for display
	AuthorString string
	Names        []Name
}

func (u Unresolved) err() error {
	names := make([]string, len(u.Names))
	for i, n := range u.Names {
		names[i] = n.Lookup()
	}
	return &ResolutionError{AuthorString: u.AuthorString, Names: names}
}

// Resolution is the outcome of resolving one author field.
type Resolution struct {
	IRIs         []graph.IRI
	AuthorString string
	Names        []Name
	Unmatched    []Name
	ByPolicy     bool // IRIs came from the fallback policy
}

// Resolver matches author names against the person registry.
type Resolver struct {
	Registry Finder
	Policy   Policy
	Logger   zerolog.Logger

	// FamilyOnlySingleNames reads a one-word name as a family name alone
	// rather than as given and family both.
	FamilyOnlySingleNames bool
}

// Resolve parses field and returns the registry IRIs of its authors in the
// order they appear, without duplicates. Each name is matched by label
// first, then by alternate name; unmatched names are skipped. Only when no
// name matched is the policy consulted.
func (r *Resolver) Resolve(ctx context.Context, key, field string) (Resolution, error) {
	res := Resolution{
		AuthorString: strings.TrimSpace(field),
		Names:        parseNames(field, r.FamilyOnlySingleNames),
	}
	seen := make(map[graph.IRI]bool)

	for _, n := range res.Names {
		iri, ok, err := r.match(ctx, n)
		if err != nil {
			return Resolution{}, err
		}
		if !ok {
			res.Unmatched = append(res.Unmatched, n)
			r.Logger.Debug().Str("key", key).Str("name", n.Lookup()).Msg("author not in registry")
			continue
		}
		r.Logger.Debug().Str("key", key).Str("name", n.Lookup()).Str("iri", string(iri)).Msg("author matched")
		if !seen[iri] {
			seen[iri] = true
			res.IRIs = append(res.IRIs, iri)
		}
	}
	if len(res.IRIs) > 0 {
		return res, nil
	}

	policy := r.Policy
	if policy == nil {
		policy = BatchFail{}
	}
	iris, err := policy.Resolve(ctx, Unresolved{Key: key, AuthorString: res.AuthorString, Names: res.Names})
	if err != nil {
		return Resolution{}, err
	}
	for _, iri := range iris {
		if !iri.Valid() {
			return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidIRI, iri)
		}
		if !seen[iri] {
			seen[iri] = true
			res.IRIs = append(res.IRIs, iri)
		}
	}
	if len(res.IRIs) == 0 {
		return Resolution{}, Unresolved{AuthorString: res.AuthorString, Names: res.Names}.err()
	}
	res.ByPolicy = true
	return res, nil
}

func (r *Resolver) match(ctx context.Context, n Name) (graph.IRI, bool, error) {
	lookup := n.Lookup()
	for _, find := range []func(context.Context, string) ([]graph.IRI, error){
		r.Registry.FindByLabel,
		r.Registry.FindByAlternateName,
	} {
		iris, err := find(ctx, lookup)
		if err != nil {
			return "", false, fmt.Errorf("looking up %q: %w", lookup, err)
		}
		if len(iris) > 1 {
			r.Logger.Debug().Str("name", lookup).Int("candidates", len(iris)).Msg("several people match, taking the first")
		}
		if len(iris) > 0 {
			return iris[0], true, nil
		}
	}
	return "", false, nil
}
