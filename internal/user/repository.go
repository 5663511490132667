package user

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, phone, display_name, password_digest, role, is_verified, employed, google_uid, last_logged_on, created_at, updated_at`

// Repository handles user directory lookups and the few updates the auth
// flows need. General account administration lives elsewhere.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new user repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// FindByID finds a user by ID
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	var usr User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &usr, query, id)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return &usr, nil
}

// FindByEmail finds a user by email address
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var usr User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, &usr, query, email)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return &usr, nil
}

// FindByPhone finds a user by phone number
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*User, error) {
	var usr User
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`

	err := r.db.GetContext(ctx, &usr, query, phone)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by phone: %w", err)
	}

	return &usr, nil
}

// FindByGoogleUID finds a user by a previously linked Google account
func (r *Repository) FindByGoogleUID(ctx context.Context, googleUID string) (*User, error) {
	var usr User
	query := `SELECT ` + userColumns + ` FROM users WHERE google_uid = $1`

	err := r.db.GetContext(ctx, &usr, query, googleUID)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by Google UID: %w", err)
	}

	return &usr, nil
}

// LinkGoogleUID records the Google account id on an existing user
func (r *Repository) LinkGoogleUID(ctx context.Context, id, googleUID string) error {
	query := `UPDATE users SET google_uid = $1, updated_at = NOW() WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, googleUID, id); err != nil {
		return fmt.Errorf("failed to link Google account: %w", err)
	}

	return nil
}

// UpdatePassword replaces a user's password digest
func (r *Repository) UpdatePassword(ctx context.Context, id, passwordDigest string) error {
	query := `UPDATE users SET password_digest = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, passwordDigest, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no user with id %s", id)
	}

	return nil
}

// MarkVerifiedByEmail flags an account as verified. Teacher accounts also
// get their employment status set, matching the onboarding flow where a
// verified teacher is an employed one.
func (r *Repository) MarkVerifiedByEmail(ctx context.Context, email string, asTeacher bool) error {
	var query string
	if asTeacher {
		query = `UPDATE users SET is_verified = TRUE, employed = TRUE, updated_at = NOW() WHERE email = $1`
	} else {
		query = `UPDATE users SET is_verified = TRUE, updated_at = NOW() WHERE email = $1`
	}

	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	return nil
}

// UpdateLastLoggedOn updates the last_logged_on timestamp
func (r *Repository) UpdateLastLoggedOn(ctx context.Context, id string) error {
	query := `UPDATE users SET last_logged_on = NOW(), updated_at = NOW() WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to update last_logged_on: %w", err)
	}

	return nil
}
