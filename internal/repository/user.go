package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
)

const userColumns = `id, email, name, google_id, password_hash, is_doner, auth_providers, attributes, created_at, updated_at`

// CreateUser inserts a new user and assigns its ID.
// Returns ErrEmailExists or ErrGoogleIDExists on a uniqueness conflict.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	providers := user.AuthProviders
	if providers == nil {
		providers = []string{}
	}
	attributes := user.Attributes
	if attributes == nil {
		attributes = map[string]any{}
	}

	id := ulid.Make().String()
	_, err := r.pool.Exec(ctx, query,
		id,
		user.Email,
		user.Name,
		user.GoogleID,
		user.PasswordHash,
		user.IsDoner,
		pq.Array(providers),
		attributes,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if uerr := uniqueViolationError(err); uerr != nil {
			return uerr
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetUserByEmail retrieves a user by email address, ignoring case.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetUserByGoogleID retrieves the user linked to a Google subject id.
func (r *Repository) GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, googleID))
}

// UpdateUser applies a partial update in one statement.
// Attributes are merged with the JSONB || operator; removed keys are dropped first.
func (r *Repository) UpdateUser(ctx context.Context, id string, patch *model.UserPatch) (*model.User, error) {
	query := `
		UPDATE users SET
			email = COALESCE($2, email),
			name = CASE WHEN $3 THEN NULL ELSE COALESCE($4, name) END,
			google_id = COALESCE($5, google_id),
			password_hash = COALESCE($6, password_hash),
			is_doner = COALESCE($7, is_doner),
			auth_providers = auth_providers || ARRAY(
				SELECT DISTINCT p FROM unnest($8::text[]) AS p WHERE NOT (p = ANY(auth_providers))
			),
			attributes = (attributes - $9::text[]) || $10::jsonb,
			updated_at = $11
		WHERE id = $1
		RETURNING ` + userColumns

	addProviders := patch.AddProviders
	if addProviders == nil {
		addProviders = []string{}
	}
	unset := patch.UnsetAttributes
	if unset == nil {
		unset = []string{}
	}
	set := patch.SetAttributes
	if set == nil {
		set = map[string]any{}
	}

	user, err := r.scanUser(r.pool.QueryRow(ctx, query,
		id,
		patch.Email,
		patch.ClearName,
		patch.Name,
		patch.GoogleID,
		patch.PasswordHash,
		patch.IsDoner,
		pq.Array(addProviders),
		pq.Array(unset),
		set,
		time.Now().UTC(),
	))
	if err != nil {
		if uerr := uniqueViolationError(err); uerr != nil {
			return nil, uerr
		}
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func (r *Repository) scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.GoogleID,
		&user.PasswordHash,
		&user.IsDoner,
		pq.Array(&user.AuthProviders),
		&user.Attributes,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if len(user.Attributes) == 0 {
		user.Attributes = nil
	}
	return &user, nil
}
