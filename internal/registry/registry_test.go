package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
)

const peopleTTL = `@prefix bf: <http://id.loc.gov/ontologies/bibframe/> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix schema: <http://schema.org/> .

<http://people.example.edu/jdoe> a bf:Person ;
    rdfs:label "Jane Doe" ;
    schema:givenName "Jane" ;
    schema:familyName "Doe" ;
    schema:email "JDoe@Example.edu" .

<http://people.example.edu/jsmith> a bf:Person ;
    rdfs:label "John Smith" ;
    schema:alternateName "J Smith", "Johnny Smith" .

<http://catalog.example.edu/not-a-person> rdfs:label "Jane Doe Festschrift" .
`

func loadTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.ttl")
	if err := os.WriteFile(path, []byte(peopleTTL), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, path
}

func TestRegistry_FindByLabel(t *testing.T) {
	r, _ := loadTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		query string
		want  []graph.IRI
	}{
		{"Jane Doe", []graph.IRI{"http://people.example.edu/jdoe"}},
		{"Smith", []graph.IRI{"http://people.example.edu/jsmith"}},
		{"jane doe", nil},
		{"Nobody", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got, err := r.FindByLabel(ctx, tt.query)
		if err != nil {
			t.Fatalf("FindByLabel(%q) error = %v", tt.query, err)
		}
		if strings.Join(iriStrings(got), ",") != strings.Join(iriStrings(tt.want), ",") {
			t.Errorf("FindByLabel(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestRegistry_FindByAlternateName(t *testing.T) {
	r, _ := loadTestRegistry(t)
	got, err := r.FindByAlternateName(context.Background(), "J Smith")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "http://people.example.edu/jsmith" {
		t.Errorf("FindByAlternateName() = %v, want jsmith", got)
	}
}

func TestRegistry_FindByEmail(t *testing.T) {
	r, _ := loadTestRegistry(t)
	iri, ok, err := r.FindByEmail(context.Background(), " jdoe@example.EDU ")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || iri != "http://people.example.edu/jdoe" {
		t.Errorf("FindByEmail() = %q, %v, want jdoe", iri, ok)
	}
	if _, ok, _ := r.FindByEmail(context.Background(), "missing@example.edu"); ok {
		t.Error("FindByEmail(missing) found a person")
	}
}

func TestRegistry_Person(t *testing.T) {
	r, _ := loadTestRegistry(t)
	ctx := context.Background()

	p, ok, err := r.Person(ctx, "http://people.example.edu/jsmith")
	if err != nil || !ok {
		t.Fatalf("Person() = %v, %v", ok, err)
	}
	if p.Label != "John Smith" || len(p.AlternateNames) != 2 {
		t.Errorf("Person() = %+v", p)
	}
	if _, ok, _ := r.Person(ctx, "http://catalog.example.edu/not-a-person"); ok {
		t.Error("Person() returned an untyped subject")
	}
}

func TestRegistry_Search(t *testing.T) {
	r, _ := loadTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		token string
		want  int
	}{
		{"", 2},
		{"smith", 1},
		{"johnny", 1},
		{"example.edu", 1},
		{"zzz", 0},
	}
	for _, tt := range tests {
		got, err := r.Search(ctx, tt.token)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", tt.token, err)
		}
		if len(got) != tt.want {
			t.Errorf("Search(%q) = %d people, want %d", tt.token, len(got), tt.want)
		}
	}
}

func TestRegistry_Register(t *testing.T) {
	r, path := loadTestRegistry(t)
	ctx := context.Background()

	if r.Dirty() {
		t.Fatal("freshly loaded registry is dirty")
	}
	prov := graph.Provenance{
		Agent: "http://people.example.edu/jdoe",
		At:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	p, err := r.Register(ctx, Person{
		IRI:        "http://people.example.edu/new",
		GivenName:  " Ada ",
		FamilyName: "Lovelace",
		Email:      "ada@example.edu",
	}, graph.Blank("g1"), prov)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if p.Label != "Ada Lovelace" {
		t.Errorf("Register() label = %q, want Ada Lovelace", p.Label)
	}
	if !r.Dirty() {
		t.Error("registry not dirty after Register")
	}

	got, _ := r.FindByLabel(ctx, "Ada Lovelace")
	if len(got) != 1 {
		t.Errorf("FindByLabel(new person) = %v", got)
	}
	gens, _ := r.Graph().Objects(ctx, graph.NewIRI("http://people.example.edu/new"), graph.ProvQualifiedGeneration)
	if len(gens) != 1 {
		t.Errorf("generation records = %d, want 1", len(gens))
	}

	if err := r.Save(ctx, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	reloaded, err := Load(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer reloaded.Close()
	if _, ok, _ := reloaded.FindByEmail(ctx, "ADA@example.edu"); !ok {
		t.Error("registered person missing after reload")
	}
}

func TestRegistry_RegisterErrors(t *testing.T) {
	r, _ := loadTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		person  Person
		wantErr error
	}{
		{"bare name", Person{IRI: "Ada Lovelace", GivenName: "Ada"}, ErrInvalidIRI},
		{"no name", Person{IRI: "http://people.example.edu/x"}, ErrMissingName},
		{"existing", Person{IRI: "http://people.example.edu/jdoe", GivenName: "Jane"}, ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Register(ctx, tt.person, graph.Blank("g1"), graph.Provenance{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if r.Dirty() {
		t.Error("failed registrations marked the registry dirty")
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.ttl"))
	if err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func iriStrings(iris []graph.IRI) []string {
	out := make([]string, len(iris))
	for i, iri := range iris {
		out[i] = string(iri)
	}
	return out
}
