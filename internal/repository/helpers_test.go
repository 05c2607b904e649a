package repository

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	return newMockDriver(t, "sqlmock")
}

// newMockDriver lets a test pretend to be a specific driver for
// dialect-dependent SQL.
func newMockDriver(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, driver)
	return sqlxdb, mock, func() {
		db.Close()
	}
}
