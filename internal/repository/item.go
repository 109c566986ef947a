package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
)

// CreateItem inserts a new item and assigns its ID.
func (r *Repository) CreateItem(ctx context.Context, item *model.Item) error {
	query := `
		INSERT INTO items (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`

	item.ID = ulid.Make().String()
	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.Name,
		item.Description,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// ListItems returns all items in insertion order.
func (r *Repository) ListItems(ctx context.Context) ([]*model.Item, error) {
	query := `
		SELECT id, name, description, created_at
		FROM items
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]*model.Item, 0)
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// GetItem retrieves an item by ID.
func (r *Repository) GetItem(ctx context.Context, id string) (*model.Item, error) {
	query := `
		SELECT id, name, description, created_at
		FROM items
		WHERE id = $1
	`

	var item model.Item
	err := r.pool.QueryRow(ctx, query, id).Scan(&item.ID, &item.Name, &item.Description, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return &item, nil
}
