package work

import (
	"context"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/citation"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
)

type articleBuilder struct{}

func (articleBuilder) Build(ctx context.Context, env *Env, raw citation.Raw, authors []graph.IRI) (Result, error) {
	c := newChangeset(ctx, env, raw)

	id, err := c.workIdentity()
	if err != nil {
		return Result{}, err
	}
	article := id.IRI()
	c.create(article, graph.SchemaScholarlyArticle)
	c.literal(article, graph.SchemaName, raw.Get("title"))
	start, end := ParsePages(raw.Get("pages"))
	c.literal(article, graph.SchemaPageStart, start)
	c.literal(article, graph.SchemaPageEnd, end)
	c.common(article, authors)
	c.url(article, id)

	parent, err := c.hierarchy()
	if err != nil {
		return Result{}, err
	}
	c.link(article, graph.SchemaPartOf, parent)

	return c.result(id), nil
}

// hierarchy finds or creates the periodical, volume and issue the article
// belongs to and returns the innermost one. Children of a newly created
// parent are never looked up.
func (c *changeset) hierarchy() (graph.IRI, error) {
	journal, isNew, err := c.periodical(c.raw.Get("journal"))
	if err != nil {
		return "", err
	}
	parent, parentNew := journal, isNew
	hasVolume := false

	if number := c.raw.Get("volume"); number != "" {
		hasVolume = true
		var volume graph.IRI
		found := false
		if !parentNew {
			volume, found, err = c.found(c.env.Lookup.Volume(c.ctx, journal, number))
			if err != nil {
				return "", err
			}
		}
		if found {
			c.reuse(volume, "volume")
		} else {
			if volume, err = c.mint(graph.SchemaPublicationVolume); err != nil {
				return "", err
			}
			c.literal(volume, graph.SchemaVolumeNumber, number)
			c.link(volume, graph.SchemaPartOf, journal)
		}
		parent, parentNew = volume, !found
	}

	if number := c.raw.Get("number", "issue"); number != "" {
		var issue graph.IRI
		found := false
		if !parentNew {
			if hasVolume {
				issue, found, err = c.found(c.env.Lookup.IssueOfVolume(c.ctx, parent, number))
			} else {
				issue, found, err = c.found(c.env.Lookup.Issue(c.ctx, parent, number))
			}
			if err != nil {
				return "", err
			}
		}
		if found {
			c.reuse(issue, "issue")
		} else {
			if issue, err = c.mint(graph.SchemaPublicationIssue); err != nil {
				return "", err
			}
			c.literal(issue, graph.SchemaIssueNumber, number)
			c.link(issue, graph.SchemaPartOf, parent)
		}
		parent = issue
	}

	return parent, nil
}

// periodical finds the journal by exact name or creates it.
func (c *changeset) periodical(name string) (graph.IRI, bool, error) {
	journal, found, err := c.found(c.env.Lookup.Periodical(c.ctx, name))
	if err != nil {
		return "", false, err
	}
	if found {
		c.reuse(journal, "periodical")
		return journal, false, nil
	}
	if journal, err = c.mint(graph.SchemaPeriodical); err != nil {
		return "", false, err
	}
	c.literal(journal, graph.SchemaName, name)
	c.literal(journal, graph.SchemaISSN, c.raw.Get("issn"))
	return journal, true, nil
}
