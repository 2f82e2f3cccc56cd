package author

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/mint"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/registry"
	"gopkg.in/yaml.v3"
)

// Policy decides what happens to a citation when none of its authors is in
// the registry. It returns the IRIs to use, or an error to reject the
// citation.
type Policy interface {
	Resolve(ctx context.Context, u Unresolved) ([]graph.IRI, error)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(ctx context.Context, u Unresolved) ([]graph.IRI, error)

func (f PolicyFunc) Resolve(ctx context.Context, u Unresolved) ([]graph.IRI, error) {
	return f(ctx, u)
}

// BatchFail rejects every unresolved citation.
type BatchFail struct{}

func (BatchFail) Resolve(_ context.Context, u Unresolved) ([]graph.IRI, error) {
	return nil, u.err()
}

// Overrides answers from a pre-supplied map. Keys are either a whole author
// field or one normalized "given family" name. When nothing matches, Next
// decides (BatchFail if nil).
type Overrides struct {
	Map  map[string][]graph.IRI
	Next Policy
}

func (o Overrides) Resolve(ctx context.Context, u Unresolved) ([]graph.IRI, error) {
	if iris, ok := o.Map[u.AuthorString]; ok && len(iris) > 0 {
		return iris, nil
	}
	var out []graph.IRI
	for _, n := range u.Names {
		out = append(out, o.Map[n.Lookup()]...)
	}
	if len(out) > 0 {
		return out, nil
	}
	next := o.Next
	if next == nil {
		next = BatchFail{}
	}
	return next.Resolve(ctx, u)
}

// iriList accepts a single IRI or a list of IRIs in YAML.
type iriList []graph.IRI

func (l *iriList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = iriList{graph.IRI(strings.TrimSpace(node.Value))}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		out := make(iriList, 0, len(items))
		for _, s := range items {
			out = append(out, graph.IRI(strings.TrimSpace(s)))
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected an IRI or a list of IRIs", node.Line)
	}
}

// LoadOverrides reads an override map from a YAML file:
//
//	"Doe, Jane; Smith, J.": http://example.edu/people/jdoe
//	"Ada Lovelace":
//	  - http://example.edu/people/alovelace
//
// Every IRI must be absolute.
func LoadOverrides(path string) (map[string][]graph.IRI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides: %w", err)
	}
	var raw map[string]iriList
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing overrides %s: %w", path, err)
	}
	out := make(map[string][]graph.IRI, len(raw))
	for key, iris := range raw {
		for _, iri := range iris {
			if !iri.Valid() {
				return nil, fmt.Errorf("overrides %s: %q: %w: %q", path, key, ErrInvalidIRI, iri)
			}
		}
		out[strings.TrimSpace(key)] = iris
	}
	return out, nil
}

// Registrar adds new people to the registry.
type Registrar interface {
	Register(ctx context.Context, p registry.Person, node graph.Term, prov graph.Provenance) (registry.Person, error)
}

// Interactive asks an operator for the authors of an unresolved citation.
// The operator can give existing IRIs, register a new person, or mint a
// fresh IRI that is not registered. The whole batch waits while the question is open.
type Interactive struct {
	Prompter   Prompter
	Registry   Registrar
	Minter     mint.Minter
	Provenance graph.Provenance
}

// Operator answers.
const (
	answerNew  = "new"
	answerMint = "mint"
	answerSkip = ""
)

func (p *Interactive) Resolve(ctx context.Context, u Unresolved) ([]graph.IRI, error) {
	p.Prompter.Printf("\nNo registered person matched the authors of %s: %q\n", displayKey(u.Key), u.AuthorString)
	for _, n := range u.Names {
		p.Prompter.Printf("  tried %q\n", n.Lookup())
	}

	for {
		answer, err := p.Prompter.Ask(ctx, "Enter person IRIs (comma-separated), 'new' to register a person, 'mint' for an unregistered IRI, or blank to reject: ")
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %v", u.err(), err)
		}
		switch strings.ToLower(answer) {
		case answerSkip:
			return nil, u.err()
		case answerNew:
			iri, err := p.register(ctx)
			if err != nil {
				p.Prompter.Printf("Could not register person: %v\n", err)
				continue
			}
			return []graph.IRI{iri}, nil
		case answerMint:
			if p.Minter == nil {
				p.Prompter.Printf("No minter configured\n")
				continue
			}
			iri, err := p.Minter.IRI()
			if err != nil {
				p.Prompter.Printf("Could not mint IRI: %v\n", err)
				continue
			}
			p.Prompter.Printf("Minted %s\n", iri)
			return []graph.IRI{iri}, nil
		}

		iris, bad := splitIRIs(answer)
		if bad != "" {
			p.Prompter.Printf("Not an absolute IRI: %q\n", bad)
			continue
		}
		return iris, nil
	}
}

func (p *Interactive) register(ctx context.Context) (graph.IRI, error) {
	given, err := p.Prompter.Ask(ctx, "Given name: ")
	if err != nil {
		return "", err
	}
	family, err := p.Prompter.Ask(ctx, "Family name: ")
	if err != nil {
		return "", err
	}
	email, err := p.Prompter.Ask(ctx, "Email (optional): ")
	if err != nil {
		return "", err
	}
	iri, err := p.Minter.IRI()
	if err != nil {
		return "", err
	}
	person, err := p.Registry.Register(ctx, registry.Person{
		IRI:        iri,
		GivenName:  given,
		FamilyName: family,
		Email:      email,
	}, p.Minter.Blank(), p.Provenance)
	if err != nil {
		return "", err
	}
	p.Prompter.Printf("Registered %s as %s\n", person.Label, person.IRI)
	return person.IRI, nil
}

// splitIRIs splits a comma or space separated answer. It returns the first
// entry that is not an absolute IRI, if any.
func splitIRIs(answer string) ([]graph.IRI, string) {
	fields := strings.FieldsFunc(answer, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	iris := make([]graph.IRI, 0, len(fields))
	for _, f := range fields {
		iri := graph.IRI(strings.Trim(f, "<>"))
		if !iri.Valid() {
			return nil, f
		}
		iris = append(iris, iri)
	}
	return iris, ""
}

func displayKey(key string) string {
	if key == "" {
		return "citation"
	}
	return key
}
