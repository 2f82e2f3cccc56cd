package graph

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/knakk/rdf"
)

// SyntaxError reports malformed Turtle input.
type SyntaxError struct {
	Message string
	Err     error
}

func (e SyntaxError) Error() string {
	return "turtle: " + e.Message
}

func (e SyntaxError) Unwrap() error {
	return e.Err
}

// Document is the result of reading a Turtle file.
type Document struct {
	Triples  []Triple
	Prefixes map[string]string
}

// prefixDecl matches @prefix and SPARQL-style PREFIX declarations. The
// decoder resolves prefixed names but does not report the table, which the
// writer reuses so a rewritten file keeps its prefixes.
var prefixDecl = regexp.MustCompile(`(?m)^[ \t]*(?:@prefix|(?i:prefix))[ \t]+([A-Za-z][A-Za-z0-9_.-]*)?:[ \t]*<([^<>\s]*)>`)

// ReadTurtle parses a complete Turtle document.
//
// Blank node labels are scoped to the document, so every blank node is
// relabelled b1, b2, ... in order of first appearance.
func ReadTurtle(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading turtle: %w", err)
	}

	doc := &Document{Prefixes: make(map[string]string)}
	labels := make(map[string]Term)
	blank := func(id string) Term {
		t, ok := labels[id]
		if !ok {
			t = Blank(fmt.Sprintf("b%d", len(labels)+1))
			labels[id] = t
		}
		return t
	}

	dec := rdf.NewTripleDecoder(bytes.NewReader(data), rdf.Turtle)
	for {
		tr, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, SyntaxError{Message: err.Error(), Err: err}
		}
		doc.Triples = append(doc.Triples, Triple{
			Subject:   fromRDF(tr.Subj, blank),
			Predicate: fromRDF(tr.Pred, blank),
			Object:    fromRDF(tr.Obj, blank),
		})
	}

	for _, m := range prefixDecl.FindAllSubmatch(data, -1) {
		doc.Prefixes[string(m[1])] = string(m[2])
	}
	return doc, nil
}

func fromRDF(t rdf.Term, blank func(string) Term) Term {
	switch v := t.(type) {
	case rdf.IRI:
		return NewIRI(v.String())
	case rdf.Blank:
		return blank(v.String())
	case rdf.Literal:
		if lang := v.Lang(); lang != "" {
			return LangLiteral(v.String(), lang)
		}
		return TypedLiteral(v.String(), IRI(v.DataType.String()))
	}
	return Term{Value: t.String()}
}

// rdfTerm converts t to its rdf form. The conversion rejects IRIs and blank
// labels that cannot be serialized.
func (t Term) rdfTerm() (rdf.Term, error) {
	switch t.Kind {
	case KindIRI:
		iri, err := rdf.NewIRI(t.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidIRI, t.Value, err)
		}
		return iri, nil
	case KindBlank:
		b, err := rdf.NewBlank(t.Value)
		if err != nil {
			return nil, fmt.Errorf("blank node %q: %w", t.Value, err)
		}
		return b, nil
	case KindLiteral:
		if t.Lang != "" {
			lit, err := rdf.NewLangLiteral(t.Value, t.Lang)
			if err != nil {
				return nil, fmt.Errorf("literal %q@%s: %w", t.Value, t.Lang, err)
			}
			return lit, nil
		}
		dt := t.Datatype
		if dt == "" {
			dt = XSDString
		}
		iri, err := rdf.NewIRI(string(dt))
		if err != nil {
			return nil, fmt.Errorf("%w: datatype %q: %v", ErrInvalidIRI, dt, err)
		}
		return rdf.NewTypedLiteral(t.Value, iri), nil
	}
	return nil, fmt.Errorf("unknown term kind %d", t.Kind)
}
