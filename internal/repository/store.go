package repository

import (
	"context"
	"errors"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
)

// Store errors shared by every backend.
// A malformed id is reported as the matching not-found error.
var (
	ErrItemNotFound     = errors.New("item not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailExists      = errors.New("email already exists")
	ErrGoogleIDExists   = errors.New("google id already linked")
	ErrDonationNotFound = errors.New("donation not found")
)

// Store is the document store used by the service layer.
// Create methods assign the record id; callers set CreatedAt.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	CreateItem(ctx context.Context, item *model.Item) error
	ListItems(ctx context.Context) ([]*model.Item, error)
	GetItem(ctx context.Context, id string) (*model.Item, error)

	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	// UpdateUser applies patch and returns the stored result.
	UpdateUser(ctx context.Context, id string, patch *model.UserPatch) (*model.User, error)

	CreateDonation(ctx context.Context, donation *model.Donation) error
	// ListDonations returns donations oldest first.
	ListDonations(ctx context.Context, filter model.DonationFilter) ([]*model.Donation, error)
	GetDonation(ctx context.Context, id string) (*model.Donation, error)
}
