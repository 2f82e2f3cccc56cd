package author

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/mint"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/registry"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/storage"
	"github.com/rs/zerolog"
)

const (
	janeIRI  graph.IRI = "http://people.example.edu/jdoe"
	smithIRI graph.IRI = "http://people.example.edu/jsmith"
)

// newTestRegistry holds Person(label="Jane Doe") and
// Person(alternateName="J Smith").
func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	ctx := context.Background()
	g, err := storage.NewMemoryGraph()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { g.Close() })

	person := graph.BFPerson.Term()
	_, err = g.Add(ctx,
		graph.T(janeIRI.Term(), graph.RDFType, person),
		graph.T(janeIRI.Term(), graph.RDFSLabel, graph.Literal("Jane Doe")),
		graph.T(smithIRI.Term(), graph.RDFType, person),
		graph.T(smithIRI.Term(), graph.RDFSLabel, graph.Literal("John Smith")),
		graph.T(smithIRI.Term(), graph.SchemaAlternateName, graph.Literal("J Smith")),
	)
	if err != nil {
		t.Fatal(err)
	}
	return registry.New(g)
}

func TestResolver_Resolve(t *testing.T) {
	r := &Resolver{Registry: newTestRegistry(t), Logger: zerolog.Nop()}
	ctx := context.Background()

	tests := []struct {
		name      string
		field     string
		want      []graph.IRI
		unmatched int
	}{
		{"label and alternate name", "Doe, Jane; Smith, J.", []graph.IRI{janeIRI, smithIRI}, 0},
		{"order preserved", "J Smith and Jane Doe", []graph.IRI{smithIRI, janeIRI}, 0},
		{"duplicates removed", "Jane Doe; Doe, Jane", []graph.IRI{janeIRI}, 0},
		{"unknown names skipped", "Ada Lovelace; Jane Doe", []graph.IRI{janeIRI}, 1},
		{"middle initial", "Jane Q. Doe", []graph.IRI{janeIRI}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, "k", tt.field)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !reflect.DeepEqual(got.IRIs, tt.want) {
				t.Errorf("IRIs = %v, want %v", got.IRIs, tt.want)
			}
			if len(got.Unmatched) != tt.unmatched {
				t.Errorf("Unmatched = %v, want %d", got.Unmatched, tt.unmatched)
			}
			if got.AuthorString != tt.field {
				t.Errorf("AuthorString = %q, want %q", got.AuthorString, tt.field)
			}
			if got.ByPolicy {
				t.Error("ByPolicy set for registry matches")
			}
		})
	}
}

func TestResolver_BatchFail(t *testing.T) {
	r := &Resolver{Registry: newTestRegistry(t), Policy: BatchFail{}, Logger: zerolog.Nop()}
	_, err := r.Resolve(context.Background(), "k", "Ada Lovelace; Grace Hopper")
	if !errors.Is(err, ErrNoAuthors) {
		t.Fatalf("Resolve() error = %v, want ErrNoAuthors", err)
	}
	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("error = %T, want *ResolutionError", err)
	}
	if len(re.Names) != 2 || re.Names[0] != "Ada Lovelace" {
		t.Errorf("Names = %q", re.Names)
	}
}

func TestResolver_SingleWordNames(t *testing.T) {
	ctx := context.Background()
	g, err := storage.NewMemoryGraph()
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	const joanne graph.IRI = "http://people.example.edu/joanne"
	_, err = g.Add(ctx,
		graph.T(joanne.Term(), graph.RDFType, graph.BFPerson.Term()),
		graph.T(joanne.Term(), graph.RDFSLabel, graph.Literal("Joanne Smith")),
	)
	if err != nil {
		t.Fatal(err)
	}
	reg := registry.New(g)

	// "Smith, Ann" splits on the comma into "Smith" and "Ann", which are
	// looked up as "Smith Smith" and "Ann Ann".
	r := &Resolver{Registry: reg, Policy: BatchFail{}, Logger: zerolog.Nop()}
	_, err = r.Resolve(ctx, "k", "Smith, Ann")
	if !errors.Is(err, ErrNoAuthors) {
		t.Fatalf("Resolve() error = %v, want ErrNoAuthors", err)
	}

	// Reading single words as family names credits Joanne Smith.
	r.FamilyOnlySingleNames = true
	got, err := r.Resolve(ctx, "k", "Smith, Ann")
	if err != nil {
		t.Fatalf("family-only Resolve() error = %v", err)
	}
	if !reflect.DeepEqual(got.IRIs, []graph.IRI{joanne}) {
		t.Errorf("family-only IRIs = %v, want [%s]", got.IRIs, joanne)
	}
}

func TestResolver_PolicyNotConsultedWhenSomeMatch(t *testing.T) {
	called := false
	r := &Resolver{
		Registry: newTestRegistry(t),
		Policy: PolicyFunc(func(context.Context, Unresolved) ([]graph.IRI, error) {
			called = true
			return nil, nil
		}),
		Logger: zerolog.Nop(),
	}
	if _, err := r.Resolve(context.Background(), "k", "Ada Lovelace; Jane Doe"); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("policy consulted although an author matched")
	}
}

func TestResolver_PolicyIRIsValidated(t *testing.T) {
	r := &Resolver{
		Registry: newTestRegistry(t),
		Policy: PolicyFunc(func(context.Context, Unresolved) ([]graph.IRI, error) {
			return []graph.IRI{"Ada Lovelace"}, nil
		}),
		Logger: zerolog.Nop(),
	}
	_, err := r.Resolve(context.Background(), "k", "Ada Lovelace")
	if !errors.Is(err, ErrInvalidIRI) {
		t.Errorf("Resolve() error = %v, want ErrInvalidIRI", err)
	}
}

func TestOverrides(t *testing.T) {
	ada := graph.IRI("http://people.example.edu/alovelace")
	policy := Overrides{Map: map[string][]graph.IRI{
		"Lovelace, Ada":  {ada},
		"Grace Hopper":   {"http://people.example.edu/ghopper"},
		"Unused, Person": {janeIRI},
	}}
	r := &Resolver{Registry: newTestRegistry(t), Policy: policy, Logger: zerolog.Nop()}
	ctx := context.Background()

	got, err := r.Resolve(ctx, "k", "Lovelace, Ada")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.IRIs, []graph.IRI{ada}) || !got.ByPolicy {
		t.Errorf("whole-field override = %+v", got)
	}

	got, err = r.Resolve(ctx, "k", "Hopper, Grace; Nobody Else")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.IRIs) != 1 || got.IRIs[0] != "http://people.example.edu/ghopper" {
		t.Errorf("per-name override = %v", got.IRIs)
	}

	_, err = r.Resolve(ctx, "k", "Nobody Else")
	if !errors.Is(err, ErrNoAuthors) {
		t.Errorf("unmatched override error = %v, want ErrNoAuthors", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "overrides.yml")
	content := `"Doe, Jane; Smith, J.": http://people.example.edu/jdoe
Ada Lovelace:
  - http://people.example.edu/alovelace
  - http://people.example.edu/other
`
	if err := os.WriteFile(good, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadOverrides(good)
	if err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}
	if len(m["Doe, Jane; Smith, J."]) != 1 || len(m["Ada Lovelace"]) != 2 {
		t.Errorf("LoadOverrides() = %v", m)
	}

	bad := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(bad, []byte("Ada Lovelace: alovelace\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOverrides(bad); !errors.Is(err, ErrInvalidIRI) {
		t.Errorf("LoadOverrides(bare name) error = %v, want ErrInvalidIRI", err)
	}
}

func TestInteractive_ExistingIRIs(t *testing.T) {
	var out strings.Builder
	in := strings.NewReader("not-an-iri\nhttp://people.example.edu/a, <http://people.example.edu/b>\n")
	p := &Interactive{Prompter: NewIOPrompter(in, &out)}

	got, err := p.Resolve(context.Background(), Unresolved{Key: "k", AuthorString: "Ada Lovelace"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := []graph.IRI{"http://people.example.edu/a", "http://people.example.edu/b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
	if !strings.Contains(out.String(), `Not an absolute IRI: "not-an-iri"`) {
		t.Errorf("invalid answer not reported:\n%s", out.String())
	}
}

func TestInteractive_RegisterNew(t *testing.T) {
	reg := newTestRegistry(t)
	var out strings.Builder
	in := strings.NewReader("new\nAda\nLovelace\nada@example.edu\n")
	p := &Interactive{
		Prompter: NewIOPrompter(in, &out),
		Registry: reg,
		Minter:   &mint.Sequence{Base: "http://people.example.edu/minted/"},
		Provenance: graph.Provenance{
			Agent: janeIRI,
			At:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
	r := &Resolver{Registry: reg, Policy: p, Logger: zerolog.Nop()}

	got, err := r.Resolve(context.Background(), "k", "Ada Lovelace")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(got.IRIs) != 1 || got.IRIs[0] != "http://people.example.edu/minted/1" {
		t.Fatalf("IRIs = %v", got.IRIs)
	}
	if !reg.Dirty() {
		t.Error("registry not marked dirty")
	}

	// The new person is now found without asking again.
	again, err := (&Resolver{Registry: reg, Logger: zerolog.Nop()}).Resolve(context.Background(), "k2", "Lovelace, Ada")
	if err != nil || again.IRIs[0] != got.IRIs[0] {
		t.Errorf("second Resolve() = %v, %v", again.IRIs, err)
	}
}

func TestInteractive_MintWithoutRegistering(t *testing.T) {
	reg := newTestRegistry(t)
	var out strings.Builder
	p := &Interactive{
		Prompter: NewIOPrompter(strings.NewReader("MINT\n"), &out),
		Registry: reg,
		Minter:   &mint.Sequence{Base: "http://people.example.edu/minted/"},
	}
	got, err := p.Resolve(context.Background(), Unresolved{Key: "k", AuthorString: "Ada Lovelace"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := []graph.IRI{"http://people.example.edu/minted/1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
	if reg.Dirty() {
		t.Error("minting registered a person")
	}
	if !strings.Contains(out.String(), "Minted http://people.example.edu/minted/1") {
		t.Errorf("minted IRI not reported:\n%s", out.String())
	}
}

func TestInteractive_MintWithoutMinter(t *testing.T) {
	var out strings.Builder
	p := &Interactive{Prompter: NewIOPrompter(strings.NewReader("mint\nhttp://people.example.edu/a\n"), &out)}
	got, err := p.Resolve(context.Background(), Unresolved{AuthorString: "Ada Lovelace"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(got) != 1 || got[0] != "http://people.example.edu/a" {
		t.Errorf("Resolve() = %v", got)
	}
	if !strings.Contains(out.String(), "No minter configured") {
		t.Errorf("missing minter not reported:\n%s", out.String())
	}
}

func TestInteractive_BlankRejects(t *testing.T) {
	p := &Interactive{Prompter: NewIOPrompter(strings.NewReader("\n"), &strings.Builder{})}
	_, err := p.Resolve(context.Background(), Unresolved{AuthorString: "Ada Lovelace"})
	if !errors.Is(err, ErrNoAuthors) {
		t.Errorf("Resolve() error = %v, want ErrNoAuthors", err)
	}
}

func TestInteractive_EOFRejects(t *testing.T) {
	p := &Interactive{Prompter: NewIOPrompter(strings.NewReader(""), &strings.Builder{})}
	_, err := p.Resolve(context.Background(), Unresolved{AuthorString: "Ada Lovelace"})
	if !errors.Is(err, ErrNoAuthors) {
		t.Errorf("Resolve() error = %v, want ErrNoAuthors", err)
	}
}

func TestInteractive_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Interactive{Prompter: NewIOPrompter(strings.NewReader("http://x.org/a\n"), &strings.Builder{})}
	_, err := p.Resolve(ctx, Unresolved{AuthorString: "Ada Lovelace"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Resolve() error = %v, want context.Canceled", err)
	}
}
