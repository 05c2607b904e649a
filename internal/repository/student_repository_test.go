package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-events-admin/internal/models"
)

func TestStudentCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	student := &models.Student{FirstName: "Ada", LastName: "Lovelace", StudentID: "S1", PasswordHash: "hash", Email: "ada@school.io", CreatedAt: now}
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO students (first_name, middle_name, last_name, date_of_birth, student_id, password_hash")).
		WithArgs("Ada", "", "Lovelace", nil, "S1", "hash", "", "", "", "", "", "ada@school.io", "", nil, "", "", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	require.NoError(t, repo.Create(context.Background(), nil, student))
	assert.Equal(t, int64(1), student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentCreateUsesTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO students").WillReturnError(errors.New("UNIQUE constraint failed: students.email"))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	err = repo.Create(context.Background(), tx, &models.Student{StudentID: "S1"})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentConflictingField(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE student_id = $1 OR email = $2 LIMIT 1")).
		WithArgs("S1", "ada@school.io").
		WillReturnRows(sqlmock.NewRows([]string{"field"}).AddRow("email"))
	field, err := repo.ConflictingField(context.Background(), nil, "S1", "ada@school.io")
	require.NoError(t, err)
	assert.Equal(t, "email", field)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE student_id = $1 OR email = $2 LIMIT 1")).
		WithArgs("S2", "bob@school.io").
		WillReturnRows(sqlmock.NewRows([]string{"field"}))
	field, err = repo.ConflictingField(context.Background(), nil, "S2", "bob@school.io")
	require.NoError(t, err)
	assert.Empty(t, field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), nil, 4)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
