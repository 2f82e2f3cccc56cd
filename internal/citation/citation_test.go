package citation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleBib = `This line is a comment.

@string{nat = "Nature"}

@comment{ @article{ignored, title={no}} }

@Article{doe2020,
  author  = {Doe, Jane and Smith, J.},
  title   = {The {DNA} of "Quoted"
             Titles},
  journal = nat,
  year    = 2020,
  month   = mar,
  volume  = "10",
  pages   = {123--145},
  note    = "Part " # {one}
}

@book{lib1,
  author = {Jane Doe},
  title  = {A Book},
  bib    = {12345678xx},
}

@inbook(ch1,
  author    = {Jane Doe},
  chapter   = {Chapter One},
  booktitle = {Collected Essays}
)
`

func TestParseBibTeX(t *testing.T) {
	records, errs := ParseBibTeX(strings.NewReader(sampleBib))
	if len(errs) != 0 {
		t.Fatalf("ParseBibTeX() errors = %v", errs)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	art := records[0]
	if art.Kind != Article || art.Key != "doe2020" || art.Index != 1 {
		t.Errorf("record 0 = %s %q #%d", art.Kind, art.Key, art.Index)
	}
	tests := []struct {
		field string
		want  string
	}{
		{"author", "Doe, Jane and Smith, J."},
		{"title", `The DNA of "Quoted" Titles`},
		{"journal", "Nature"},
		{"year", "2020"},
		{"month", "March"},
		{"volume", "10"},
		{"pages", "123--145"},
		{"note", "Part one"},
	}
	for _, tt := range tests {
		if got := art.Get(tt.field); got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}

	if records[1].Kind != Book || records[1].Get("bib") != "12345678xx" {
		t.Errorf("record 1 = %+v", records[1])
	}
	if records[2].Kind != BookChapter || records[2].Type != "inbook" {
		t.Errorf("record 2 kind = %s type %q", records[2].Kind, records[2].Type)
	}
}

func TestParseBibTeX_ErrorsDoNotStopParsing(t *testing.T) {
	input := `@article{broken,
  title {Missing equals},
  journal = {X}
}

@article{ok1, author = {A B}, title = {T}, journal = {J}}
@article{badmacro, author = undefinedmacro}
@article{ok2, author = {A B}, title = {T}, journal = {J}}
@article{no comma here}
`
	records, errs := ParseBibTeX(strings.NewReader(input))
	if len(records) != 2 || records[0].Key != "ok1" || records[1].Key != "ok2" {
		t.Errorf("records = %+v, want ok1 and ok2", records)
	}
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(errs), errs)
	}
	var pe ParseError
	if !errors.As(errs[0], &pe) {
		t.Fatalf("error = %T, want ParseError", errs[0])
	}
	if pe.Index != 1 || pe.Key != "broken" {
		t.Errorf("first error = %+v", pe)
	}
}

func TestParseBibTeX_Resync(t *testing.T) {
	input := `@article{a, title = {x} journal = {y}}
@article{b, author = {A B}, title = {T}, journal = {J}}
`
	records, errs := ParseBibTeX(strings.NewReader(input))
	if len(errs) != 1 {
		t.Errorf("got %d errors, want 1: %v", len(errs), errs)
	}
	if len(records) != 1 || records[0].Key != "b" || records[0].Index != 2 {
		t.Errorf("records = %+v, want only b at index 2", records)
	}
}

func TestReadJSONL(t *testing.T) {
	input := `{"ENTRYTYPE": "article", "ID": "doe2020", "author": "Jane Doe", "title": "T", "journal": "J", "year": 2020}

{"ENTRYTYPE": "book", "ID": "b1", "AUTHOR": "Jane Doe", "title": "Book"}
not json
{"ID": "untyped", "author": "X"}
`
	records, errs := ReadJSONL(strings.NewReader(input))
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Get("year") != "2020" {
		t.Errorf("numeric year = %q, want 2020", records[0].Get("year"))
	}
	if records[1].Get("author") != "Jane Doe" || records[1].Index != 2 {
		t.Errorf("record 1 = %+v", records[1])
	}
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	var pe ParseError
	if !errors.As(errs[1], &pe) || pe.Field != "ENTRYTYPE" || pe.Index != 4 {
		t.Errorf("second error = %v", errs[1])
	}
}

func TestRaw_Validate(t *testing.T) {
	tests := []struct {
		name      string
		entryType string
		fields    map[string]string
		wantField string
		wantOK    bool
	}{
		{"article ok", "article", map[string]string{"author": "A B", "title": "T", "journal": "J"}, "", true},
		{"article no journal", "article", map[string]string{"author": "A B", "title": "T"}, "journal", false},
		{"article blank author", "article", map[string]string{"author": "  ", "title": "T", "journal": "J"}, "author", false},
		{"book ok", "book", map[string]string{"author": "A B", "title": "T"}, "", true},
		{"book no title", "book", map[string]string{"author": "A B"}, "title", false},
		{"chapter with title only", "incollection", map[string]string{"author": "A B", "title": "T"}, "", true},
		{"chapter no book title", "book chapter", map[string]string{"author": "A B", "chapter": "C"}, "booktitle", false},
		{"unsupported", "misc", map[string]string{"author": "A B"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRaw(1, tt.entryType, "k", tt.fields).Validate()
			if tt.wantOK {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var pe ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Validate() = %v, want ParseError", err)
			}
			if pe.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", pe.Field, tt.wantField)
			}
		})
	}
}

func TestRaw_Get(t *testing.T) {
	r := NewRaw(1, "article", "k", map[string]string{"URL": " http://x ", "link": "http://y"})
	if got := r.Get("link", "url"); got != "http://y" {
		t.Errorf("Get(link, url) = %q", got)
	}
	if got := r.Get("missing", "url"); got != "http://x" {
		t.Errorf("Get(missing, url) = %q", got)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	bib := filepath.Join(dir, "in.bib")
	jsonl := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(bib, []byte(sampleBib), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jsonl, []byte(`{"ENTRYTYPE":"book","ID":"b","author":"A B","title":"T"}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	records, errs, err := Open(bib)
	if err != nil || len(errs) != 0 || len(records) != 3 {
		t.Errorf("Open(bib) = %d records, %v, %v", len(records), errs, err)
	}
	records, errs, err = Open(jsonl)
	if err != nil || len(errs) != 0 || len(records) != 1 {
		t.Errorf("Open(sniffed jsonl) = %d records, %v, %v", len(records), errs, err)
	}
	if _, _, err := Open(filepath.Join(dir, "missing.bib")); err == nil {
		t.Error("Open(missing) should fail")
	}
}
