package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/listing-assistant/internal/engine"
)

func TestLoadDataset(t *testing.T) {
	c := testConfig(t)
	withConfig(t, c)

	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"title,price,bedrooms,Area\n"+
			"Flat in Camden,2400,2,Camden\n"+
			"Studio in Hackney,1500,0,Hackney\n"), 0o600))

	n, err := loadDataset(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	b, err := engine.NewSQLite(c.Dataset.DSN)
	require.NoError(t, err)
	defer b.Close() //nolint:errcheck

	cols, rows, err := b.Query(context.Background(), `SELECT SUM(price) AS total FROM listings`)
	require.NoError(t, err)
	assert.Equal(t, []string{"total"}, cols)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 3900, rows[0][0])
}

func TestLoadDataset_MissingFile(t *testing.T) {
	withConfig(t, testConfig(t))

	_, err := loadDataset(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
