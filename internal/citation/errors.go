package citation

import "fmt"

// ParseError reports a malformed record or a record missing a required
// field. The record is skipped; it is never retried.
type ParseError struct {
	Index   int // 1-based position in the source, 0 if unknown
	Key     string
	Field   string
	Message string
}

func (e ParseError) Error() string {
	switch {
	case e.Index > 0 && e.Key != "":
		return fmt.Sprintf("entry %d (%s): %s", e.Index, e.Key, e.Message)
	case e.Index > 0:
		return fmt.Sprintf("entry %d: %s", e.Index, e.Message)
	default:
		return e.Message
	}
}

func (r Raw) errorf(field, format string, args ...any) error {
	return ParseError{
		Index:   r.Index,
		Key:     r.Key,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
