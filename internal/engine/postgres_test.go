package engine

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_Query(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	q := `SELECT "Area", AVG("price") AS avg_price FROM "listings" GROUP BY "Area"`
	mock.ExpectQuery(regexp.QuoteMeta(q)).WillReturnRows(
		pgxmock.NewRows([]string{"Area", "avg_price"}).
			AddRow("Camden", 3300.0).
			AddRow("Hackney", 1500.0),
	)

	b := NewPostgres(mock)
	assert.Equal(t, "PostgreSQL", b.Dialect())

	cols, rows, err := b.Query(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Area", "avg_price"}, cols)
	assert.Equal(t, [][]any{{"Camden", 3300.0}, {"Hackney", 1500.0}}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT").WillReturnError(fmt.Errorf("column does not exist"))

	_, _, err = NewPostgres(mock).Query(context.Background(), `SELECT "nope" FROM "listings"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres query")
}

func TestPostgres_Replace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := ParseSchema([]byte("name: listings\ncolumns:\n  - {name: title, type: string}\n  - {name: price, type: integer}\n"))
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "listings"`)).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "listings"`)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"listings"}, []string{"title", "price"}).WillReturnResult(2)
	mock.ExpectCommit()

	n, err := NewPostgres(mock).Replace(context.Background(), "listings", s,
		[][]any{{"Loft", int64(2000)}, {"Flat", int64(1800)}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPlainValue(t *testing.T) {
	t.Parallel()

	id := [16]byte{0x12, 0x34}
	assert.Equal(t, "12340000-0000-0000-0000-000000000000", plainValue(id))
	assert.Equal(t, "x", plainValue("x"))
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	s, err := ParseSchema([]byte("name: t\ncolumns:\n  - {name: Area, type: string}\n  - {name: ok, type: boolean}\n"))
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS \"t\" (\n\t\"Area\" TEXT,\n\t\"ok\" BOOLEAN\n)", createTableSQL("t", s, postgresType))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
}
