package work

import (
	"context"
	"fmt"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/citation"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/lookup"
)

type bookBuilder struct{}

func (bookBuilder) Build(ctx context.Context, env *Env, raw citation.Raw, authors []graph.IRI) (Result, error) {
	c := newChangeset(ctx, env, raw)

	existing, key, err := c.existingBook()
	if err != nil {
		return Result{}, err
	}
	if existing != "" {
		return Result{}, &DuplicateEntityError{IRI: existing, Kind: raw.Kind, Key: key}
	}

	id, err := c.bookIdentity()
	if err != nil {
		return Result{}, err
	}
	book := id.IRI()
	c.create(book, graph.SchemaBook)
	c.res.Triples = append(c.res.Triples, c.bookAttributes(book, raw.Get("title"))...)
	c.common(book, authors)
	c.url(book, id)

	return c.result(id), nil
}

type chapterBuilder struct{}

func (chapterBuilder) Build(ctx context.Context, env *Env, raw citation.Raw, authors []graph.IRI) (Result, error) {
	c := newChangeset(ctx, env, raw)

	id, err := c.workIdentity()
	if err != nil {
		return Result{}, err
	}

	book, key, err := c.existingBook()
	if err != nil {
		return Result{}, err
	}
	attrs := func(iri graph.IRI) []graph.Triple {
		return c.bookAttributes(iri, raw.Get("booktitle", "title"))
	}
	if book != "" {
		c.reuse(book, "book ("+key+")")
		if err := c.revise(book, attrs(book)); err != nil {
			return Result{}, err
		}
	} else {
		bookID, err := c.bookIdentity()
		if err != nil {
			return Result{}, err
		}
		book = bookID.IRI()
		c.create(book, graph.SchemaBook)
		c.res.Triples = append(c.res.Triples, attrs(book)...)
	}

	chapter := id.IRI()
	c.create(chapter, graph.SchemaChapter)
	c.literal(chapter, graph.SchemaName, raw.Get("chapter", "title"))
	start, end := ParsePages(raw.Get("pages"))
	c.literal(chapter, graph.SchemaPageStart, start)
	c.literal(chapter, graph.SchemaPageEnd, end)
	c.link(chapter, graph.SchemaPartOf, book)
	c.common(chapter, authors)
	c.url(chapter, id)

	// The chapter was created after the book; keep the work first.
	c.res.Minted = moveToFront(c.res.Minted, chapter)

	return c.result(id), nil
}

// existingBook looks the record's book up by catalog IRI, then by ISBN. It
// returns "" when neither matches, and the key that matched otherwise.
func (c *changeset) existingBook() (graph.IRI, string, error) {
	if iri := c.env.Catalog.IRI(c.raw.Get("bib")); iri != "" {
		book, found, err := c.found(c.env.Lookup.BookByIRI(c.ctx, iri))
		if err != nil {
			return "", "", err
		}
		if found {
			return book, "catalog record", nil
		}
	}
	if isbn := lookup.NormalizeISBN(c.raw.Get("isbn")); isbn != "" {
		book, found, err := c.found(c.env.Lookup.BookByISBN(c.ctx, isbn))
		if err != nil {
			return "", "", err
		}
		if found {
			return book, fmt.Sprintf("isbn %s", isbn), nil
		}
	}
	return "", "", nil
}

func (c *changeset) bookIdentity() (WorkIdentifier, error) {
	if iri := c.env.Catalog.IRI(c.raw.Get("bib")); iri != "" {
		return CatalogRecord(iri), nil
	}
	iri, err := c.env.Minter.IRI()
	if err != nil {
		return nil, err
	}
	return Minted(iri), nil
}

// bookAttributes describes a book, without its type or authors.
func (c *changeset) bookAttributes(book graph.IRI, title string) []graph.Triple {
	var out []graph.Triple
	lit := func(p graph.IRI, v string) {
		if v != "" {
			out = append(out, graph.T(book.Term(), p, graph.Literal(v)))
		}
	}
	r := c.raw
	lit(graph.SchemaTitle, title)
	lit(graph.SchemaISBN, lookup.NormalizeISBN(r.Get("isbn")))
	lit(graph.SchemaProvisionActivityStatement,
		ProvisionStatement(r.Get("address", "location"), r.Get("publisher"), r.Get("year")))
	lit(graph.SchemaEditionStatement, r.Get("edition"))
	lit(graph.SchemaEditor, r.Get("editor"))
	lit(graph.SchemaDescription, r.Get("note", "notes"))
	lit(graph.BFShelfMark, r.Get("call_number", "callnumber", "call-number"))
	return out
}

func moveToFront(iris []graph.IRI, iri graph.IRI) []graph.IRI {
	out := []graph.IRI{iri}
	for _, x := range iris {
		if x != iri {
			out = append(out, x)
		}
	}
	return out
}
