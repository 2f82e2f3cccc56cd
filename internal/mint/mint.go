// Package mint creates identifiers for entities that have no natural key.
package mint

import (
	"fmt"
	"strings"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
	"github.com/google/uuid"
)

// DefaultBase is the namespace minted IRIs live under.
const DefaultBase = "http://catalog.coloradocollege.edu/"

// Minter hands out fresh IRIs and blank node labels.
type Minter interface {
	IRI() (graph.IRI, error)
	Blank() graph.Term
}

// UUID mints time-based (version 1) UUIDs under Base.
type UUID struct {
	Base string
}

// NewUUID returns a minter for base, falling back to DefaultBase.
func NewUUID(base string) *UUID {
	if base == "" {
		base = DefaultBase
	}
	if !strings.HasSuffix(base, "/") && !strings.HasSuffix(base, "#") {
		base += "/"
	}
	return &UUID{Base: base}
}

func (m *UUID) IRI() (graph.IRI, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return "", fmt.Errorf("minting IRI: %w", err)
	}
	iri := graph.IRI(m.Base + id.String())
	if !iri.Valid() {
		return "", fmt.Errorf("minted IRI %q is not absolute", iri)
	}
	return iri, nil
}

// Blank returns a blank node whose label cannot collide with the b1, b2, ...
// labels assigned when a Turtle document is read.
func (m *UUID) Blank() graph.Term {
	return graph.Blank("g" + strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Sequence mints predictable IRIs (<Base>1, <Base>2, ...). It is meant for
// tests and dry runs that need stable output.
type Sequence struct {
	Base string
	n    int
	b    int
}

func (s *Sequence) IRI() (graph.IRI, error) {
	s.n++
	return graph.IRI(fmt.Sprintf("%s%d", s.Base, s.n)), nil
}

func (s *Sequence) Blank() graph.Term {
	s.b++
	return graph.Blank(fmt.Sprintf("g%d", s.b))
}
