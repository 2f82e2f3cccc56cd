// Package citation models raw bibliographic records and reads them from
// BibTeX and JSONL sources.
package citation

import (
	"sort"
	"strings"
)

// Kind is the entry kind of a record.
type Kind string

const (
	KindUnknown Kind = ""
	Article     Kind = "article"
	Book        Kind = "book"
	BookChapter Kind = "book-chapter"
)

// ParseKind maps a BibTeX entry type to a Kind.
func ParseKind(entryType string) Kind {
	switch strings.ToLower(strings.TrimSpace(entryType)) {
	case "article":
		return Article
	case "book":
		return Book
	case "book-chapter", "book chapter", "bookchapter", "inbook", "incollection":
		return BookChapter
	default:
		return KindUnknown
	}
}

// Raw is one bibliographic record as read from a source. Field names are
// lowercase.
type Raw struct {
	Index  int // 1-based position in the source
	Type   string
	Kind   Kind
	Key    string
	Fields map[string]string
}

// NewRaw builds a record, lowercasing field names and trimming values.
func NewRaw(index int, entryType, key string, fields map[string]string) Raw {
	r := Raw{
		Index:  index,
		Type:   strings.ToLower(strings.TrimSpace(entryType)),
		Kind:   ParseKind(entryType),
		Key:    strings.TrimSpace(key),
		Fields: make(map[string]string, len(fields)),
	}
	for name, value := range fields {
		r.Fields[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
	return r
}

// Get returns the first non-empty value among the named fields.
func (r Raw) Get(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(r.Fields[strings.ToLower(name)]); v != "" {
			return v
		}
	}
	return ""
}

// Has reports whether any of the named fields is non-empty.
func (r Raw) Has(names ...string) bool {
	return r.Get(names...) != ""
}

// FieldNames returns the record's field names in sorted order.
func (r Raw) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the entry kind and the fields that kind requires.
func (r Raw) Validate() error {
	if r.Kind == KindUnknown {
		return r.errorf("", "unsupported entry type %q", r.Type)
	}
	if !r.Has("author") {
		return r.missing("author")
	}
	switch r.Kind {
	case Article:
		if !r.Has("title") {
			return r.missing("title")
		}
		if !r.Has("journal") {
			return r.missing("journal")
		}
	case Book:
		if !r.Has("title") {
			return r.missing("title")
		}
	case BookChapter:
		if !r.Has("chapter", "title") {
			return r.missing("chapter")
		}
		if !r.Has("booktitle", "title") {
			return r.missing("booktitle")
		}
	}
	return nil
}

func (r Raw) missing(field string) error {
	return r.errorf(field, "missing required field '%s'", field)
}
