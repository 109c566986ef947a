package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
)

const donationColumns = `id, title, description, food_preparation_time, expire_time, image,
	latitude, longitude, address, pick_time, donor_id, created_at`

// CreateDonation inserts a donation and assigns its ID.
func (r *Repository) CreateDonation(ctx context.Context, d *model.Donation) error {
	query := `
		INSERT INTO donations (` + donationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	id := ulid.Make().String()
	_, err := r.pool.Exec(ctx, query,
		id,
		d.Title,
		d.Description,
		d.FoodPreparationTime,
		d.ExpireTime,
		d.Image,
		d.PickupLocation.Latitude,
		d.PickupLocation.Longitude,
		d.PickupLocation.Address,
		d.PickTime,
		d.DonorID,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create donation: %w", err)
	}

	d.ID = id
	return nil
}

// ListDonations returns donations oldest first, optionally for one donor.
func (r *Repository) ListDonations(ctx context.Context, filter model.DonationFilter) ([]*model.Donation, error) {
	query := `
		SELECT ` + donationColumns + `
		FROM donations
		WHERE ($1::text = '' OR donor_id = $1::text)
		ORDER BY created_at, id
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, filter.DonorID, filter.EffectiveLimit())
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer rows.Close()

	donations := make([]*model.Donation, 0)
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donations: %w", err)
	}

	return donations, nil
}

// GetDonation retrieves a donation by ID.
func (r *Repository) GetDonation(ctx context.Context, id string) (*model.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = $1`

	d, err := scanDonation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDonationNotFound
		}
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}

	return d, nil
}

func scanDonation(row pgx.Row) (*model.Donation, error) {
	var d model.Donation
	err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.FoodPreparationTime,
		&d.ExpireTime,
		&d.Image,
		&d.PickupLocation.Latitude,
		&d.PickupLocation.Longitude,
		&d.PickupLocation.Address,
		&d.PickTime,
		&d.DonorID,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
