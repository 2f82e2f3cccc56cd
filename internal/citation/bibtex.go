package citation

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Standard month abbreviations every BibTeX style defines.
var monthMacros = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "oct": "October", "nov": "November", "dec": "December",
}

// ParseBibTeX reads every entry from r. Malformed entries are returned as
// ParseErrors and skipped; parsing resumes at the next entry. @string
// definitions are expanded and @comment and @preamble blocks are ignored.
func ParseBibTeX(r io.Reader) ([]Raw, []error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, []error{fmt.Errorf("reading bibtex: %w", err)}
	}
	p := &bibParser{
		src:    []rune(string(data)),
		line:   1,
		macros: make(map[string]string, len(monthMacros)),
	}
	for k, v := range monthMacros {
		p.macros[k] = v
	}
	return p.parse()
}

type bibParser struct {
	src    []rune
	pos    int
	line   int
	macros map[string]string
}

func (p *bibParser) eof() bool { return p.pos >= len(p.src) }

func (p *bibParser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *bibParser) next() rune {
	r := p.src[p.pos]
	p.pos++
	if r == '\n' {
		p.line++
	}
	return r
}

func (p *bibParser) skipWS() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.next()
	}
}

// skipToEntry moves to the next '@'. Text between entries is a comment.
func (p *bibParser) skipToEntry() bool {
	for !p.eof() && p.peek() != '@' {
		p.next()
	}
	return !p.eof()
}

// resync skips to the next '@' that starts a line, so that an '@' inside
// a broken entry's values does not start a bogus entry.
func (p *bibParser) resync() {
	lineStart := true
	for i := p.pos - 1; i >= 0 && p.src[i] != '\n'; i-- {
		if !unicode.IsSpace(p.src[i]) {
			lineStart = false
			break
		}
	}
	for !p.eof() {
		r := p.peek()
		if r == '@' && lineStart {
			return
		}
		if r == '\n' {
			lineStart = true
		} else if !unicode.IsSpace(r) {
			lineStart = false
		}
		p.next()
	}
}

func (p *bibParser) parse() ([]Raw, []error) {
	var records []Raw
	var errs []error
	index := 0

	for p.skipToEntry() {
		p.next() // '@'
		entryType := p.ident()
		switch strings.ToLower(entryType) {
		case "comment", "preamble":
			if err := p.skipBlock(); err != nil {
				errs = append(errs, err)
			}
			continue
		case "string":
			if err := p.parseMacro(); err != nil {
				errs = append(errs, err)
				p.resync()
			}
			continue
		}

		index++
		raw, err := p.parseEntry(index, entryType)
		if err != nil {
			errs = append(errs, err)
			p.resync()
			continue
		}
		records = append(records, raw)
	}
	return records, errs
}

func (p *bibParser) fail(index int, key, format string, args ...any) error {
	return ParseError{
		Index:   index,
		Key:     key,
		Message: fmt.Sprintf("line %d: ", p.line) + fmt.Sprintf(format, args...),
	}
}

func (p *bibParser) ident() string {
	start := p.pos
	for !p.eof() {
		r := p.peek()
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_-:.+/'", r) {
			p.next()
			continue
		}
		break
	}
	return string(p.src[start:p.pos])
}

// openDelim consumes '{' or '(' and returns the matching closer.
func (p *bibParser) openDelim() (rune, bool) {
	p.skipWS()
	switch p.peek() {
	case '{':
		p.next()
		return '}', true
	case '(':
		p.next()
		return ')', true
	}
	return 0, false
}

func (p *bibParser) parseEntry(index int, entryType string) (Raw, error) {
	if entryType == "" {
		return Raw{}, p.fail(index, "", "missing entry type after '@'")
	}
	closer, ok := p.openDelim()
	if !ok {
		return Raw{}, p.fail(index, "", "expected '{' after @%s", entryType)
	}

	p.skipWS()
	start := p.pos
	for !p.eof() && p.peek() != ',' && p.peek() != closer {
		p.next()
	}
	key := strings.TrimSpace(string(p.src[start:p.pos]))
	if key == "" {
		return Raw{}, p.fail(index, "", "missing citation key")
	}
	if strings.ContainsFunc(key, unicode.IsSpace) {
		return Raw{}, p.fail(index, key, "citation key contains whitespace")
	}

	fields := make(map[string]string)
	for {
		p.skipWS()
		if p.eof() {
			return Raw{}, p.fail(index, key, "unterminated entry")
		}
		switch p.peek() {
		case closer:
			p.next()
			return NewRaw(index, entryType, key, fields), nil
		case ',':
			p.next()
			continue
		}

		name := p.ident()
		if name == "" {
			return Raw{}, p.fail(index, key, "expected field name, got %q", p.peek())
		}
		p.skipWS()
		if p.peek() != '=' {
			return Raw{}, p.fail(index, key, "expected '=' after field %q", name)
		}
		p.next()
		value, err := p.value()
		if err != nil {
			return Raw{}, p.fail(index, key, "field %q: %v", name, err)
		}
		fields[strings.ToLower(name)] = value

		p.skipWS()
		if p.peek() != ',' && p.peek() != closer {
			if p.eof() {
				return Raw{}, p.fail(index, key, "unterminated entry")
			}
			return Raw{}, p.fail(index, key, "expected ',' or '%c' after field %q", closer, name)
		}
	}
}

// value parses one field value: braced or quoted strings, bare numbers and
// macro names, joined with '#'.
func (p *bibParser) value() (string, error) {
	var parts []string
	for {
		p.skipWS()
		r := p.peek()
		switch {
		case p.eof():
			return "", fmt.Errorf("missing value")
		case r == '{':
			s, err := p.delimited('{', '}')
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		case r == '"':
			s, err := p.delimited('"', '"')
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		case unicode.IsDigit(r):
			start := p.pos
			for !p.eof() && unicode.IsDigit(p.peek()) {
				p.next()
			}
			parts = append(parts, string(p.src[start:p.pos]))
		default:
			name := p.ident()
			if name == "" {
				return "", fmt.Errorf("unexpected %q", r)
			}
			expanded, ok := p.macros[strings.ToLower(name)]
			if !ok {
				return "", fmt.Errorf("undefined string %q", name)
			}
			parts = append(parts, expanded)
		}

		p.skipWS()
		if p.peek() != '#' {
			return normalizeValue(strings.Join(parts, "")), nil
		}
		p.next()
	}
}

// delimited reads a value enclosed in open/close, allowing nested braces.
// The returned text excludes the outer delimiters.
func (p *bibParser) delimited(open, close rune) (string, error) {
	p.next() // open
	depth := 0
	start := p.pos
	for !p.eof() {
		r := p.peek()
		switch {
		case r == '\\':
			p.next()
			if !p.eof() {
				p.next()
			}
			continue
		case r == '{':
			depth++
		case r == '}' && depth > 0:
			depth--
		case r == close && depth == 0:
			s := string(p.src[start:p.pos])
			p.next()
			return s, nil
		}
		p.next()
	}
	return "", fmt.Errorf("unterminated %c...%c value", open, close)
}

func (p *bibParser) parseMacro() error {
	closer, ok := p.openDelim()
	if !ok {
		return p.fail(0, "", "expected '{' after @string")
	}
	p.skipWS()
	name := p.ident()
	if name == "" {
		return p.fail(0, "", "@string without a name")
	}
	p.skipWS()
	if p.peek() != '=' {
		return p.fail(0, "", "expected '=' in @string %q", name)
	}
	p.next()
	value, err := p.value()
	if err != nil {
		return p.fail(0, "", "@string %q: %v", name, err)
	}
	p.skipWS()
	if p.peek() != closer {
		return p.fail(0, "", "expected '%c' to close @string %q", closer, name)
	}
	p.next()
	p.macros[strings.ToLower(name)] = value
	return nil
}

// skipBlock skips a balanced @comment{...} or @preamble{...} body. A bare
// @comment without a block comments out nothing.
func (p *bibParser) skipBlock() error {
	p.skipWS()
	open := p.peek()
	var closer rune
	switch open {
	case '{':
		closer = '}'
	case '(':
		closer = ')'
	default:
		return nil
	}
	p.next()
	depth := 1
	for !p.eof() {
		switch p.next() {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return p.fail(0, "", "unterminated block")
}

// normalizeValue collapses runs of whitespace and drops grouping braces.
// Escaped braces (\{ and \}) are kept.
func normalizeValue(s string) string {
	var b strings.Builder
	space := false
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '{' || r == '}':
			continue
		}
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
