// Package graph defines the RDF terms and triples that make up the person
// registry and the work graph, plus a Turtle reader and writer.
package graph

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/knakk/rdf"
)

// TermKind distinguishes the three RDF term shapes.
type TermKind int

const (
	KindIRI TermKind = iota + 1
	KindBlank
	KindLiteral
)

// String returns a short name for the kind.
func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// IRI is an absolute identifier naming a graph entity.
type IRI string

// Term returns the IRI as a Term.
func (i IRI) Term() Term {
	return Term{Kind: KindIRI, Value: string(i)}
}

func (i IRI) String() string {
	return string(i)
}

// Valid reports whether the IRI is absolute (has a scheme) and contains no
// characters that cannot appear inside <...> in Turtle.
func (i IRI) Valid() bool {
	s := string(i)
	if s == "" || strings.ContainsAny(s, " <>\"{}|\\^`\n\r\t") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Host != "" || u.Opaque != "" || u.Path != "")
}

// EscapeIRI percent-encodes the characters of s that Valid rejects: space,
// controls, DEL and <>"{}|^`\. A '%' that does not start an escape is
// encoded too, so escaping twice changes nothing.
func EscapeIRI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(c)
		case c <= ' ' || c == 0x7f || c == '%' || strings.IndexByte("<>\"{}|^`\\", c) >= 0:
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// Term is an IRI, a blank node or a literal.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype IRI    // literals only; empty means xsd:string
	Lang     string // literals only
}

// NewIRI returns an IRI term.
func NewIRI(s string) Term {
	return Term{Kind: KindIRI, Value: s}
}

// Blank returns a blank node term with the given label (without "_:").
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: label}
}

// Literal returns a plain string literal.
func Literal(v string) Term {
	return Term{Kind: KindLiteral, Value: v}
}

// LangLiteral returns a language-tagged literal.
func LangLiteral(v, lang string) Term {
	return Term{Kind: KindLiteral, Value: v, Lang: strings.ToLower(lang)}
}

// TypedLiteral returns a literal with an explicit datatype.
func TypedLiteral(v string, datatype IRI) Term {
	if datatype == XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: v, Datatype: datatype}
}

func (t Term) IsIRI() bool { return t.Kind == KindIRI }
func (t Term) IsBlank() bool { return t.Kind == KindBlank }
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// IRI returns the term value as an IRI. It is only meaningful for IRI terms.
func (t Term) IRI() IRI {
	return IRI(t.Value)
}

// String renders the term in N-Triples syntax. A term that cannot be
// serialized is shown with its raw value.
func (t Term) String() string {
	rt, err := t.rdfTerm()
	if err != nil {
		return fmt.Sprintf("?%q", t.Value)
	}
	return rt.Serialize(rdf.NTriples)
}
