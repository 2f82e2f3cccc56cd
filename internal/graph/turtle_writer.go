package graph

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/knakk/rdf"
)

// safeLocal matches local names that can be written as prefix:local without escaping.
var safeLocal = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// TurtleWriter serializes triples as a Turtle document.
type TurtleWriter struct {
	prefixes map[string]string
	// namespaces sorted longest first so the most specific prefix wins
	namespaces []string
	byNS       map[string]string
}

// NewTurtleWriter creates a writer with the given prefix table. A nil table
// uses DefaultPrefixes.
func NewTurtleWriter(prefixes map[string]string) *TurtleWriter {
	if prefixes == nil {
		prefixes = DefaultPrefixes
	}
	w := &TurtleWriter{
		prefixes: prefixes,
		byNS:     make(map[string]string, len(prefixes)),
	}
	for name, ns := range prefixes {
		w.namespaces = append(w.namespaces, ns)
		w.byNS[ns] = name
	}
	sort.Slice(w.namespaces, func(i, j int) bool {
		return len(w.namespaces[i]) > len(w.namespaces[j])
	})
	return w
}

// WriteTurtle writes triples using DefaultPrefixes.
func WriteTurtle(w io.Writer, triples []Triple) error {
	return NewTurtleWriter(nil).Write(w, triples)
}

// Write serializes the triples. Subjects appear in order of first appearance;
// within a subject, rdf:type comes first and the remaining predicates keep
// their first-appearance order. Nothing is written if a term cannot be
// serialized; an invalid IRI fails with an error wrapping ErrInvalidIRI.
func (tw *TurtleWriter) Write(w io.Writer, triples []Triple) error {
	groups := groupBySubject(triples)
	var body strings.Builder
	for _, group := range groups {
		body.WriteString("\n")
		if err := tw.writeSubject(&body, group); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)

	names := make([]string, 0, len(tw.prefixes))
	for name := range tw.prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(bw, "@prefix %s: <%s> .\n", name, tw.prefixes[name])
	}

	bw.WriteString(body.String())
	return bw.Flush()
}

type subjectGroup struct {
	subject    Term
	predicates []Term
	objects    map[Term][]Term
}

func groupBySubject(triples []Triple) []*subjectGroup {
	var groups []*subjectGroup
	index := make(map[Term]*subjectGroup)
	for _, t := range triples {
		g, ok := index[t.Subject]
		if !ok {
			g = &subjectGroup{subject: t.Subject, objects: make(map[Term][]Term)}
			index[t.Subject] = g
			groups = append(groups, g)
		}
		if _, seen := g.objects[t.Predicate]; !seen {
			if t.Predicate.IRI() == RDFType {
				g.predicates = append([]Term{t.Predicate}, g.predicates...)
			} else {
				g.predicates = append(g.predicates, t.Predicate)
			}
		}
		g.objects[t.Predicate] = append(g.objects[t.Predicate], t.Object)
	}
	return groups
}

func (tw *TurtleWriter) writeSubject(b *strings.Builder, g *subjectGroup) error {
	subj, err := tw.format(g.subject)
	if err != nil {
		return err
	}
	b.WriteString(subj)
	for i, pred := range g.predicates {
		if i == 0 {
			b.WriteString(" ")
		} else {
			b.WriteString(" ;\n    ")
		}
		if pred.IRI() == RDFType {
			b.WriteString("a")
		} else {
			p, err := tw.format(pred)
			if err != nil {
				return err
			}
			b.WriteString(p)
		}
		objs := make([]string, len(g.objects[pred]))
		for j, o := range g.objects[pred] {
			if objs[j], err = tw.format(o); err != nil {
				return err
			}
		}
		b.WriteString(" ")
		b.WriteString(strings.Join(objs, ", "))
	}
	b.WriteString(" .\n")
	return nil
}

func (tw *TurtleWriter) format(t Term) (string, error) {
	if t.Kind == KindIRI {
		return tw.formatIRI(t.IRI())
	}
	rt, err := t.rdfTerm()
	if err != nil {
		return "", err
	}
	return rt.Serialize(rdf.Turtle), nil
}

// formatIRI writes iri as a prefixed name when a prefix covers it.
func (tw *TurtleWriter) formatIRI(iri IRI) (string, error) {
	if !iri.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidIRI, iri)
	}
	rt, err := iri.Term().rdfTerm()
	if err != nil {
		return "", err
	}
	s := string(iri)
	for _, ns := range tw.namespaces {
		if !strings.HasPrefix(s, ns) {
			continue
		}
		local := s[len(ns):]
		if safeLocal.MatchString(local) {
			return tw.byNS[ns] + ":" + local, nil
		}
		break
	}
	return rt.Serialize(rdf.Turtle), nil
}
