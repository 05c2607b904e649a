package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-events-admin/internal/models"
)

// OrganizerRepository provides database access for organizer accounts.
type OrganizerRepository struct {
	db *sqlx.DB
}

// NewOrganizerRepository creates a new instance of OrganizerRepository.
func NewOrganizerRepository(db *sqlx.DB) *OrganizerRepository {
	return &OrganizerRepository{db: db}
}

// FindByUsername returns an organizer by username or sql.ErrNoRows.
func (r *OrganizerRepository) FindByUsername(ctx context.Context, username string) (*models.Organizer, error) {
	const query = `SELECT id, username, organization, email, password_hash, created_at FROM organizers WHERE username = $1 LIMIT 1`
	var organizer models.Organizer
	if err := r.db.GetContext(ctx, &organizer, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find organizer by username: %w", err)
	}
	return &organizer, nil
}

// Create inserts the organizer and fills in its generated id.
func (r *OrganizerRepository) Create(ctx context.Context, organizer *models.Organizer) error {
	const query = `INSERT INTO organizers (username, organization, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.GetContext(ctx, &organizer.ID, query, organizer.Username, organizer.Organization, organizer.Email, organizer.PasswordHash, organizer.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create organizer: %w", ErrDuplicate)
		}
		return fmt.Errorf("create organizer: %w", err)
	}
	return nil
}
