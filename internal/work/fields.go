package work

import "strings"

// ParsePages splits a page range such as "123-145" or "123--145" into its
// start and end. A value without a dash is all start.
func ParsePages(pages string) (start, end string) {
	pages = strings.ReplaceAll(pages, "--", "-")
	pages = strings.ReplaceAll(pages, "–", "-")
	pages = strings.ReplaceAll(pages, " ", "")
	start, end, _ = strings.Cut(pages, "-")
	return start, end
}

// ProvisionStatement formats where, by whom and when a book was published:
// "<address> : <publisher>, <year>". Missing parts are left out. Without an
// address or a publisher there is no statement.
func ProvisionStatement(address, publisher, year string) string {
	address = strings.TrimSpace(address)
	publisher = strings.TrimSpace(publisher)
	year = strings.TrimSpace(year)
	if address == "" && publisher == "" {
		return ""
	}

	s := address
	if publisher != "" {
		if s != "" {
			s += " : "
		}
		s += publisher
	}
	if year != "" {
		s += ", " + year
	}
	return s
}
