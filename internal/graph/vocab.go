package graph

// Namespace IRIs used by the scholarship graph.
const (
	NSBF     = "http://id.loc.gov/ontologies/bibframe/"
	NSCite   = "https://www.coloradocollege.edu/library/ns/citation/"
	NSPROV   = "http://www.w3.org/ns/prov#"
	NSRDF    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSRDFS   = "http://www.w3.org/2000/01/rdf-schema#"
	NSSchema = "http://schema.org/"
	NSXSD    = "http://www.w3.org/2001/XMLSchema#"
)

// DefaultPrefixes maps the prefixes written at the top of every Turtle
// document to their namespaces.
var DefaultPrefixes = map[string]string{
	"bf":     NSBF,
	"cite":   NSCite,
	"prov":   NSPROV,
	"rdf":    NSRDF,
	"rdfs":   NSRDFS,
	"schema": NSSchema,
	"xsd":    NSXSD,
}

const (
	RDFType   IRI = NSRDF + "type"
	RDFSLabel IRI = NSRDFS + "label"

	XSDString   IRI = NSXSD + "string"
	XSDInteger  IRI = NSXSD + "integer"
	XSDDecimal  IRI = NSXSD + "decimal"
	XSDDouble   IRI = NSXSD + "double"
	XSDBoolean  IRI = NSXSD + "boolean"
	XSDDateTime IRI = NSXSD + "dateTime"

	BFPerson    IRI = NSBF + "Person"
	BFShelfMark IRI = NSBF + "shelfMark"

	CiteAuthorString IRI = NSCite + "authorString"
	CiteCitationType IRI = NSCite + "citationType"
	CiteMonth        IRI = NSCite + "month"

	ProvQualifiedGeneration IRI = NSPROV + "qualifiedGeneration"
	ProvQualifiedRevision   IRI = NSPROV + "qualifiedRevision"
	ProvGeneration          IRI = NSPROV + "Generation"
	ProvRevision            IRI = NSPROV + "Revision"
	ProvAtTime              IRI = NSPROV + "atTime"
	ProvAgent               IRI = NSPROV + "agent"
)

// schema.org classes.
const (
	SchemaPeriodical        IRI = NSSchema + "Periodical"
	SchemaPublicationVolume IRI = NSSchema + "PublicationVolume"
	SchemaPublicationIssue  IRI = NSSchema + "PublicationIssue"
	SchemaScholarlyArticle  IRI = NSSchema + "ScholarlyArticle"
	SchemaBook              IRI = NSSchema + "Book"
	SchemaChapter           IRI = NSSchema + "Chapter"
)

// schema.org properties.
const (
	SchemaAbout                      IRI = NSSchema + "about"
	SchemaAlternateName              IRI = NSSchema + "alternateName"
	SchemaAuthor                     IRI = NSSchema + "author"
	SchemaDatePublished              IRI = NSSchema + "datePublished"
	SchemaDescription                IRI = NSSchema + "description"
	SchemaEditionStatement           IRI = NSSchema + "editionStatement"
	SchemaEditor                     IRI = NSSchema + "editor"
	SchemaEmail                      IRI = NSSchema + "email"
	SchemaFamilyName                 IRI = NSSchema + "familyName"
	SchemaGivenName                  IRI = NSSchema + "givenName"
	SchemaISBN                       IRI = NSSchema + "isbn"
	SchemaISSN                       IRI = NSSchema + "issn"
	SchemaIssueNumber                IRI = NSSchema + "issueNumber"
	SchemaName                       IRI = NSSchema + "name"
	SchemaPageEnd                    IRI = NSSchema + "pageEnd"
	SchemaPageStart                  IRI = NSSchema + "pageStart"
	SchemaPartOf                     IRI = NSSchema + "partOf"
	SchemaProvisionActivityStatement IRI = NSSchema + "provisionActivityStatement"
	SchemaTitle                      IRI = NSSchema + "title"
	SchemaURL                        IRI = NSSchema + "url"
	SchemaVolumeNumber               IRI = NSSchema + "volumeNumber"
)
