package engine

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadCSV reads a listings export and returns rows in schema column order.
// Headers are matched to columns by name, case-insensitively. Values that
// do not parse as the column type become NULL, and columns missing from the
// file are NULL throughout.
func ReadCSV(r io.Reader, s *Schema) ([][]any, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "engine: read csv header")
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	var rows [][]any
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "engine: read csv line %d", line)
		}
		row := make([]any, len(s.Columns))
		for i, c := range s.Columns {
			j, ok := pos[strings.ToLower(c.Name)]
			if !ok || j >= len(rec) {
				continue
			}
			row[i] = Coerce(rec[j], c.Type)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Coerce converts a raw text cell to the Go value for a column type.
func Coerce(raw, typ string) any {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "nan") || strings.EqualFold(v, "null") {
		return nil
	}
	switch typ {
	case TypeInteger:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int64(f)) {
			return int64(f)
		}
		return nil
	case TypeFloat:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		return nil
	case TypeBoolean:
		switch strings.ToLower(v) {
		case "true", "t", "1", "yes", "y":
			return true
		case "false", "f", "0", "no", "n":
			return false
		}
		return nil
	default:
		return v
	}
}
