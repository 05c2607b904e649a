package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-events-admin/internal/models"
)

// StudentRepository provides persistence for students. Methods take an
// optional executor so callers can run them inside a transaction.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository returns a new repository instance.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a student and fills in its generated id.
func (r *StudentRepository) Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	const query = `INSERT INTO students (first_name, middle_name, last_name, date_of_birth, student_id, password_hash, street, city, province, district, zip, email, phone, class_level, faculty, comments, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17) RETURNING id`
	err := sqlx.GetContext(ctx, r.exec(exec), &student.ID, query,
		student.FirstName, student.MiddleName, student.LastName, student.DateOfBirth, student.StudentID, student.PasswordHash,
		student.Street, student.City, student.Province, student.District, student.Zip, student.Email, student.Phone,
		student.ClassLevel, student.Faculty, student.Comments, student.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create student %s: %w", student.StudentID, ErrDuplicate)
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// FindByID returns a student by surrogate id.
func (r *StudentRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Student, error) {
	const query = `SELECT id, first_name, middle_name, last_name, date_of_birth, student_id, password_hash, street, city, province, district, zip, email, phone, class_level, faculty, comments, created_at FROM students WHERE id = $1`
	var student models.Student
	if err := sqlx.GetContext(ctx, r.exec(exec), &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// ConflictingField reports which unique field ("student_id" or "email")
// is already taken, or "" when both are free.
func (r *StudentRepository) ConflictingField(ctx context.Context, exec sqlx.ExtContext, studentID, email string) (string, error) {
	const query = `SELECT CASE WHEN student_id = $1 THEN 'student_id' ELSE 'email' END FROM students WHERE student_id = $1 OR email = $2 LIMIT 1`
	var field string
	if err := sqlx.GetContext(ctx, r.exec(exec), &field, query, studentID, email); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("check student uniqueness: %w", err)
	}
	return field, nil
}
