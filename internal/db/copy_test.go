package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceTable_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "listings"`).WillReturnResult(pgxmock.NewResult("DELETE", 7))
	mock.ExpectCopyFrom(pgx.Identifier{"listings"}, []string{"title"}).WillReturnResult(1)
	mock.ExpectCommit()
	mock.ExpectRollback()

	n, err := ReplaceTable(context.Background(), mock, "listings", []string{"title"}, [][]any{{"Maisonette"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestReplaceTable_ClearFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "listings"`).WillReturnError(fmt.Errorf("relation does not exist"))
	mock.ExpectRollback()

	_, err = ReplaceTable(context.Background(), mock, "listings", []string{"title"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear listings")
	assert.NoError(t, mock.ExpectationsWereMet())
}
