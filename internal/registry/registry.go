// Package registry provides the person registry: the institution's known
// people, matched by label, alternate name or email.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/storage"
)

// Registry errors.
var (
	ErrInvalidIRI    = errors.New("person IRI must be absolute")
	ErrMissingName   = errors.New("person needs a given or family name")
	ErrAlreadyExists = errors.New("person already registered")
)

// Person is one registry entry.
type Person struct {
	IRI            graph.IRI `json:"iri"`
	Label          string    `json:"label"`
	AlternateNames []string  `json:"alternate_names,omitempty"`
	GivenName      string    `json:"given_name,omitempty"`
	FamilyName     string    `json:"family_name,omitempty"`
	Email          string    `json:"email,omitempty"`
}

// Registry answers person lookups against a graph of bf:Person entries.
type Registry struct {
	g     *storage.Graph
	dirty bool
}

// New wraps an already loaded graph.
func New(g *storage.Graph) *Registry {
	return &Registry{g: g}
}

// Load reads the person registry from a Turtle file into a fresh in-memory
// graph.
func Load(ctx context.Context, path string) (*Registry, error) {
	g, err := storage.NewMemoryGraph()
	if err != nil {
		return nil, err
	}
	if _, err := g.LoadTurtleFile(ctx, path); err != nil {
		g.Close()
		return nil, fmt.Errorf("loading person registry: %w", err)
	}
	return New(g), nil
}

// Close releases the underlying graph.
func (r *Registry) Close() error {
	return r.g.Close()
}

// Graph returns the graph backing the registry.
func (r *Registry) Graph() *storage.Graph {
	return r.g
}

// FindByLabel returns people whose rdfs:label contains s, in registry order.
func (r *Registry) FindByLabel(ctx context.Context, s string) ([]graph.IRI, error) {
	return r.findContaining(ctx, graph.RDFSLabel, s)
}

// FindByAlternateName returns people with a schema:alternateName containing s.
func (r *Registry) FindByAlternateName(ctx context.Context, s string) ([]graph.IRI, error) {
	return r.findContaining(ctx, graph.SchemaAlternateName, s)
}

func (r *Registry) findContaining(ctx context.Context, pred graph.IRI, s string) ([]graph.IRI, error) {
	if s == "" {
		return nil, nil
	}
	subjects, err := r.g.SubjectsContaining(ctx, pred, s)
	if err != nil {
		return nil, err
	}
	return r.persons(ctx, subjects)
}

// FindByEmail returns the person whose email matches, ignoring case.
func (r *Registry) FindByEmail(ctx context.Context, email string) (graph.IRI, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", false, nil
	}
	subjects, err := r.g.SubjectsEqualFold(ctx, graph.SchemaEmail, email)
	if err != nil {
		return "", false, err
	}
	iris, err := r.persons(ctx, subjects)
	if err != nil || len(iris) == 0 {
		return "", false, err
	}
	return iris[0], true, nil
}

// persons keeps the IRI subjects that are typed bf:Person.
func (r *Registry) persons(ctx context.Context, subjects []graph.Term) ([]graph.IRI, error) {
	var out []graph.IRI
	for _, s := range subjects {
		if !s.IsIRI() {
			continue
		}
		ok, err := r.g.IsA(ctx, s, graph.BFPerson)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s.IRI())
		}
	}
	return out, nil
}

// Person returns the registry entry for iri.
func (r *Registry) Person(ctx context.Context, iri graph.IRI) (Person, bool, error) {
	ok, err := r.g.IsA(ctx, iri.Term(), graph.BFPerson)
	if err != nil || !ok {
		return Person{}, false, err
	}

	p := Person{IRI: iri}
	for pred, dst := range map[graph.IRI]*string{
		graph.RDFSLabel:        &p.Label,
		graph.SchemaGivenName:  &p.GivenName,
		graph.SchemaFamilyName: &p.FamilyName,
		graph.SchemaEmail:      &p.Email,
	} {
		v, err := r.first(ctx, iri, pred)
		if err != nil {
			return Person{}, false, err
		}
		*dst = v
	}
	alts, err := r.g.Objects(ctx, iri.Term(), graph.SchemaAlternateName)
	if err != nil {
		return Person{}, false, err
	}
	for _, a := range alts {
		p.AlternateNames = append(p.AlternateNames, a.Value)
	}
	return p, true, nil
}

func (r *Registry) first(ctx context.Context, iri graph.IRI, pred graph.IRI) (string, error) {
	objs, err := r.g.Objects(ctx, iri.Term(), pred)
	if err != nil || len(objs) == 0 {
		return "", err
	}
	return objs[0].Value, nil
}

// All returns every person in registry order.
func (r *Registry) All(ctx context.Context) ([]Person, error) {
	subjects, err := r.g.Subjects(ctx, graph.RDFType, graph.BFPerson.Term())
	if err != nil {
		return nil, err
	}
	people := make([]Person, 0, len(subjects))
	for _, s := range subjects {
		if !s.IsIRI() {
			continue
		}
		p, ok, err := r.Person(ctx, s.IRI())
		if err != nil {
			return nil, err
		}
		if ok {
			people = append(people, p)
		}
	}
	return people, nil
}

// Search returns people whose label, alternate names or email contain token,
// ignoring case. An empty token matches everyone.
func (r *Registry) Search(ctx context.Context, token string) ([]Person, error) {
	people, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return people, nil
	}

	var matches []Person
	for _, p := range people {
		fields := append([]string{p.Label, p.Email}, p.AlternateNames...)
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), token) {
				matches = append(matches, p)
				break
			}
		}
	}
	return matches, nil
}

// Register appends a new person. The label is built as "<given> <family>".
// When prov is enabled a generation record hangs off node.
func (r *Registry) Register(ctx context.Context, p Person, node graph.Term, prov graph.Provenance) (Person, error) {
	if !p.IRI.Valid() {
		return Person{}, fmt.Errorf("%w: %q", ErrInvalidIRI, p.IRI)
	}
	p.GivenName = strings.TrimSpace(p.GivenName)
	p.FamilyName = strings.TrimSpace(p.FamilyName)
	p.Email = strings.TrimSpace(p.Email)
	if p.GivenName == "" && p.FamilyName == "" {
		return Person{}, ErrMissingName
	}
	exists, err := r.g.HasSubject(ctx, p.IRI.Term())
	if err != nil {
		return Person{}, err
	}
	if exists {
		return Person{}, fmt.Errorf("%w: %s", ErrAlreadyExists, p.IRI)
	}
	p.Label = strings.TrimSpace(p.GivenName + " " + p.FamilyName)

	subj := p.IRI.Term()
	triples := []graph.Triple{
		graph.T(subj, graph.RDFType, graph.BFPerson.Term()),
		graph.T(subj, graph.RDFSLabel, graph.Literal(p.Label)),
	}
	if p.GivenName != "" {
		triples = append(triples, graph.T(subj, graph.SchemaGivenName, graph.Literal(p.GivenName)))
	}
	if p.FamilyName != "" {
		triples = append(triples, graph.T(subj, graph.SchemaFamilyName, graph.Literal(p.FamilyName)))
	}
	if p.Email != "" {
		triples = append(triples, graph.T(subj, graph.SchemaEmail, graph.Literal(p.Email)))
	}
	for _, alt := range p.AlternateNames {
		triples = append(triples, graph.T(subj, graph.SchemaAlternateName, graph.Literal(alt)))
	}
	if prov.Enabled() {
		triples = append(triples, graph.GenerationTriples(subj, node, prov)...)
	}

	if _, err := r.g.Add(ctx, triples...); err != nil {
		return Person{}, fmt.Errorf("registering %s: %w", p.IRI, err)
	}
	r.dirty = true
	return p, nil
}

// Dirty reports whether a person was registered since loading.
func (r *Registry) Dirty() bool {
	return r.dirty
}

// Save writes the registry to path, replacing the previous file.
func (r *Registry) Save(ctx context.Context, path string) error {
	if err := r.g.WriteTurtleFile(ctx, path); err != nil {
		return err
	}
	r.dirty = false
	return nil
}
