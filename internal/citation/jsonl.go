package citation

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxJSONLLineCapacity is the largest record line ReadJSONL accepts (1MB).
const MaxJSONLLineCapacity = 1024 * 1024

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexibleString(strconv.FormatBool(b))
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// ReadJSONL reads one record per line. Each line is a JSON object whose
// ENTRYTYPE and ID keys give the entry kind and citation key; every other key
// is a field. Bad lines are reported and skipped.
func ReadJSONL(r io.Reader) ([]Raw, []error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	var records []Raw
	var errs []error
	index := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		index++

		var obj map[string]FlexibleString
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			errs = append(errs, ParseError{
				Index:   index,
				Message: fmt.Sprintf("line %d: %v", lineNum, err),
			})
			continue
		}

		var entryType, key string
		fields := make(map[string]string, len(obj))
		for name, value := range obj {
			switch strings.ToUpper(name) {
			case "ENTRYTYPE":
				entryType = value.String()
			case "ID":
				key = value.String()
			default:
				fields[name] = value.String()
			}
		}
		if entryType == "" {
			errs = append(errs, ParseError{
				Index:   index,
				Key:     key,
				Field:   "ENTRYTYPE",
				Message: fmt.Sprintf("line %d: missing ENTRYTYPE", lineNum),
			})
			continue
		}
		records = append(records, NewRaw(index, entryType, key, fields))
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("reading records: %w", err))
	}
	return records, errs
}
