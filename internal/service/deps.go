package service

import (
	"context"
	"io"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/auth"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
)

// GoogleClient resolves Google identities. *auth.GoogleProvider implements it.
type GoogleClient interface {
	LoginURL() (string, error)
	ExchangeCode(ctx context.Context, in auth.ExchangeInput) (*auth.GoogleIdentity, error)
	VerifyIDToken(ctx context.Context, idToken string) (*auth.GoogleIdentity, error)
}

// UserCache caches users by id. *cache.Cache implements it.
// A nil *model.User with a nil error is a miss.
type UserCache interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	SetUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

// DonationCache caches donations by id. *cache.Cache implements it.
type DonationCache interface {
	GetDonation(ctx context.Context, id string) (*model.Donation, error)
	SetDonation(ctx context.Context, d *model.Donation) error
}

// ImageStore persists donation images. *storage.Local implements it.
type ImageStore interface {
	SaveDonationImage(filename string, r io.Reader) (string, error)
	Remove(publicPath string) error
}
