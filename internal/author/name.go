// Package author resolves the author field of a citation to people in the
// person registry.
package author

import (
	"regexp"
	"strings"
)

// Name is one parsed author name.
type Name struct {
	Raw    string // token as it appeared in the author field
	Given  string
	Family string
}

// Lookup returns the "given family" string matched against the registry.
func (n Name) Lookup() string {
	return strings.TrimSpace(n.Given + " " + n.Family)
}

func (n Name) String() string {
	return n.Lookup()
}

// Delimiters tried in priority order; the first one present splits the field.
var delimiters = []string{";", ",", " and "}

// SplitNames splits an author field into name tokens using the first
// delimiter found among ';', ',' and " and ". Empty tokens are dropped.
func SplitNames(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	parts := []string{field}
	for _, d := range delimiters {
		if strings.Contains(field, d) {
			parts = strings.Split(field, d)
			break
		}
	}

	var names []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

const (
	word    = `[\p{L}\p{M}'’-]+`
	initial = `\p{L}`
)

// Shapes tried, in order, for tokens that contain initials. Each captures
// (given, family).
var initialShapes = []*regexp.Regexp{
	// Given I. Family
	regexp.MustCompile(`^(` + word + `)\s+` + initial + `\.\s*(` + word + `)$`),
	// I. Given Family
	regexp.MustCompile(`^` + initial + `\.\s*(` + word + `)\s+(` + word + `)$`),
	// I. I. Family
	regexp.MustCompile(`^(` + initial + `)\.\s*` + initial + `\.\s*(` + word + `)$`),
	// Given I. I. Family
	regexp.MustCompile(`^(` + word + `)\s+` + initial + `\.\s*` + initial + `\.\s*(` + word + `)$`),
	// I. Family
	regexp.MustCompile(`^(` + initial + `)\.\s*(` + word + `)$`),
}

// ParseName parses one name token.
//
// Supported formats:
//   - "Jane Doe"        → given="Jane", family="Doe"
//   - "Doe, Jane"       → given="Jane", family="Doe" (comma = Family, Given)
//   - "Jane Q. Doe"     → given="Jane", family="Doe"
//   - "J. Doe"          → given="J", family="Doe"
//   - "Jane Mary Doe"   → given="Jane", family="Doe"
//   - "Doe"             → given="Doe", family="Doe"
//
// A single word is both the first and the last word of the name, so it is
// looked up as "Doe Doe". ParseNameFamilyOnly reads it as a bare family name
// instead.
//
// A trailing period is dropped and hyphenated names stay one word.
func ParseName(token string) Name {
	return parseName(token, false)
}

// ParseNameFamilyOnly is ParseName, except that a single word is taken as
// the family name alone and looked up as "Doe". Substring matching then
// credits any registered person whose label contains that word.
func ParseNameFamilyOnly(token string) Name {
	return parseName(token, true)
}

func parseName(token string, familyOnly bool) Name {
	raw := strings.TrimSpace(token)
	s := strings.TrimSuffix(raw, ".")

	if idx := strings.Index(s, ","); idx > 0 {
		family := strings.TrimSpace(s[:idx])
		given := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s[idx+1:]), "."))
		s = strings.TrimSpace(given + " " + family)
	}

	if strings.Contains(s, ".") {
		for _, re := range initialShapes {
			if m := re.FindStringSubmatch(s); m != nil {
				return Name{Raw: raw, Given: m[1], Family: m[2]}
			}
		}
	}

	parts := strings.Fields(s)
	switch len(parts) {
	case 0:
		return Name{Raw: raw}
	case 1:
		if familyOnly {
			return Name{Raw: raw, Family: parts[0]}
		}
		return Name{Raw: raw, Given: parts[0], Family: parts[0]}
	default:
		return Name{
			Raw:    raw,
			Given:  strings.TrimSuffix(parts[0], "."),
			Family: parts[len(parts)-1],
		}
	}
}

// ParseNames splits and parses an author field.
func ParseNames(field string) []Name {
	return parseNames(field, false)
}

func parseNames(field string, familyOnly bool) []Name {
	tokens := SplitNames(field)
	names := make([]Name, 0, len(tokens))
	for _, t := range tokens {
		if n := parseName(t, familyOnly); n.Lookup() != "" {
			names = append(names, n)
		}
	}
	return names
}
