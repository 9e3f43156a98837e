package model

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/rotisserie/eris"
)

// Record is one result row: column name to value, with the column order of
// the source preserved through JSON encoding.
type Record struct {
	cols []string
	vals map[string]any
}

// RecordOf builds a Record from parallel column and value slices.
// Extra values without a column are dropped.
func RecordOf(cols []string, vals []any) Record {
	var r Record
	for i, c := range cols {
		var v any
		if i < len(vals) {
			v = vals[i]
		}
		r.Set(c, v)
	}
	return r
}

// RecordFromMap builds a Record from a plain map. Map iteration order is not
// stable, so columns are sorted by name.
func RecordFromMap(m map[string]any) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var r Record
	for _, k := range keys {
		r.Set(k, m[k])
	}
	return r
}

// Set assigns a value, appending the column if it is new.
func (r *Record) Set(col string, v any) {
	if r.vals == nil {
		r.vals = make(map[string]any)
	}
	if _, ok := r.vals[col]; !ok {
		r.cols = append(r.cols, col)
	}
	r.vals[col] = v
}

// Get returns the value stored under col.
func (r Record) Get(col string) (any, bool) {
	v, ok := r.vals[col]
	return v, ok
}

// Columns returns the column names in insertion order.
func (r Record) Columns() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

// MarshalJSON encodes the record as an object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, eris.Wrapf(err, "record: marshal column %q", c)
		}
		v, err := json.Marshal(r.vals[c])
		if err != nil {
			return nil, eris.Wrapf(err, "record: marshal value for %q", c)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping keys in document order.
func (r *Record) UnmarshalJSON(data []byte) error {
	*r = Record{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "record: read object start")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return eris.Errorf("record: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "record: read key")
		}
		key, ok := tok.(string)
		if !ok {
			return eris.Errorf("record: non-string key %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return eris.Wrapf(err, "record: decode value for %q", key)
		}
		r.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "record: read object end")
	}
	return nil
}

// ColumnsOf returns the union of columns across records, first-seen order.
func ColumnsOf(records []Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range records {
		for _, c := range r.cols {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}
