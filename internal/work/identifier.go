package work

import (
	"strings"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
)

// WorkIdentifier is the identity a builder chose for a work. It is one of
// DOI, CatalogRecord or Minted.
type WorkIdentifier interface {
	IRI() graph.IRI
	// Scheme names the source of the identity: "doi", "catalog" or "minted".
	Scheme() string
	isWorkIdentifier()
}

// DOI identifies a work by its https://doi.org/ IRI.
type DOI graph.IRI

func (d DOI) IRI() graph.IRI { return graph.IRI(d) }
func (DOI) Scheme() string { return "doi" }
func (DOI) isWorkIdentifier() {}
func (d DOI) String() string { return string(d) }

// CatalogRecord identifies a book by its library catalog record.
type CatalogRecord graph.IRI

func (c CatalogRecord) IRI() graph.IRI { return graph.IRI(c) }
func (CatalogRecord) Scheme() string { return "catalog" }
func (CatalogRecord) isWorkIdentifier() {}
func (c CatalogRecord) String() string { return string(c) }

// Minted identifies a work with no natural key.
type Minted graph.IRI

func (m Minted) IRI() graph.IRI { return graph.IRI(m) }
func (Minted) Scheme() string { return "minted" }
func (Minted) isWorkIdentifier() {}
func (m Minted) String() string { return string(m) }

const doiResolver = "https://doi.org/"

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// DOIIRI returns the resolver IRI for a DOI. Values that are already
// resolver links or carry a "doi:" prefix are accepted. Characters that
// cannot appear in an IRI, such as the angle brackets of SICI DOIs, are
// percent-encoded. It returns "" for an empty DOI.
func DOIIRI(doi string) graph.IRI {
	doi = strings.TrimSpace(doi)
	for _, p := range doiPrefixes {
		if len(doi) >= len(p) && strings.EqualFold(doi[:len(p)], p) {
			doi = strings.TrimSpace(doi[len(p):])
			break
		}
	}
	if doi == "" {
		return ""
	}
	return graph.IRI(doiResolver + graph.EscapeIRI(doi))
}

// Defaults for catalog record IRIs.
const (
	DefaultCatalogBase   = "https://tiger.coloradocollege.edu/record="
	DefaultCatalogSuffix = "~s5"
)

// bibLength is the number of characters of a bib record number kept in the
// catalog IRI. Longer values carry a check digit and location codes.
const bibLength = 8

// Catalog builds canonical catalog record IRIs.
type Catalog struct {
	Base   string
	Suffix string
}

// IRI returns the catalog IRI for a bib record number, or "" if bib is empty.
// The record number is percent-encoded where it could not appear in an IRI.
func (c Catalog) IRI(bib string) graph.IRI {
	bib = strings.TrimSpace(bib)
	if bib == "" {
		return ""
	}
	if r := []rune(bib); len(r) > bibLength {
		bib = string(r[:bibLength])
	}
	base, suffix := c.Base, c.Suffix
	if base == "" {
		base = DefaultCatalogBase
	}
	if suffix == "" {
		suffix = DefaultCatalogSuffix
	}
	return graph.IRI(base + graph.EscapeIRI(bib) + suffix)
}

// CatalogIRI returns the catalog IRI for bib using the default catalog.
func CatalogIRI(bib string) graph.IRI {
	return Catalog{}.IRI(bib)
}
