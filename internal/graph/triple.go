package graph

import (
	"errors"
	"fmt"
)

// Triple is a single (subject, predicate, object) fact.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// T builds a triple from terms.
func T(s Term, p IRI, o Term) Triple {
	return Triple{Subject: s, Predicate: p.Term(), Object: o}
}

// Validation errors.
var (
	ErrEmptySubject     = errors.New("subject is required")
	ErrLiteralSubject   = errors.New("subject cannot be a literal")
	ErrEmptyPredicate   = errors.New("predicate is required")
	ErrInvalidPredicate = errors.New("predicate must be an IRI")
	ErrEmptyObject      = errors.New("object is required")
	ErrInvalidIRI       = errors.New("invalid IRI")
)

// Validate checks that the triple is well formed. Literal objects may have an
// empty value; IRIs and blank nodes may not. Every IRI, literal datatypes
// included, must be Valid.
func (t Triple) Validate() error {
	if t.Subject.Kind == 0 || t.Subject.Value == "" {
		return ErrEmptySubject
	}
	if t.Subject.Kind == KindLiteral {
		return ErrLiteralSubject
	}
	if t.Predicate.Value == "" {
		return ErrEmptyPredicate
	}
	if t.Predicate.Kind != KindIRI {
		return ErrInvalidPredicate
	}
	if t.Object.Kind == 0 || (t.Object.Kind != KindLiteral && t.Object.Value == "") {
		return ErrEmptyObject
	}
	for _, term := range []Term{t.Subject, t.Predicate, t.Object} {
		if term.Kind == KindIRI && !IRI(term.Value).Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidIRI, term.Value)
		}
		if term.Kind == KindLiteral && term.Datatype != "" && !term.Datatype.Valid() {
			return fmt.Errorf("%w: datatype %q", ErrInvalidIRI, term.Datatype)
		}
	}
	return nil
}

// String renders the triple as one N-Triples line without the newline.
func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}
