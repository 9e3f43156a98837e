package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	s, err := ParseSchema([]byte(`
name: listings
columns:
  - {name: title, type: string}
  - {name: price, type: integer}
  - {name: latitude, type: float}
  - {name: verified, type: boolean}
  - {name: Area, type: string}
`))
	require.NoError(t, err)

	in := "\ufeffTitle,PRICE,latitude,verified,extra\n" +
		"\"Flat, Camden\",2400,51.54,True,x\n" +
		"Studio,nan,not-a-number,no\n"

	rows, err := ReadCSV(strings.NewReader(in), s)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []any{"Flat, Camden", int64(2400), 51.54, true, nil}, rows[0])
	assert.Equal(t, []any{"Studio", nil, nil, false, nil}, rows[1])
}

func TestReadCSV_Empty(t *testing.T) {
	t.Parallel()

	s, err := LoadSchema("")
	require.NoError(t, err)

	_, err = ReadCSV(strings.NewReader(""), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv header")
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		typ  string
		want any
	}{
		{"", TypeString, nil},
		{"NULL", TypeInteger, nil},
		{" 3 ", TypeInteger, int64(3)},
		{"3.0", TypeInteger, int64(3)},
		{"3.5", TypeInteger, nil},
		{"1,500", TypeInteger, nil},
		{"0.25", TypeFloat, 0.25},
		{"Y", TypeBoolean, true},
		{"0", TypeBoolean, false},
		{"maybe", TypeBoolean, nil},
		{"2024-03", TypeDatetime, "2024-03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Coerce(tt.raw, tt.typ), "%s as %s", tt.raw, tt.typ)
	}
}
