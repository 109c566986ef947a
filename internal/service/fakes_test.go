package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/auth"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
)

// fakeGoogle maps codes and id tokens to identities.
type fakeGoogle struct {
	loginURL  string
	loginErr  error
	codes     map[string]*auth.GoogleIdentity
	idTokens  map[string]*auth.GoogleIdentity
	exchanges []auth.ExchangeInput
}

func (f *fakeGoogle) LoginURL() (string, error) {
	return f.loginURL, f.loginErr
}

func (f *fakeGoogle) ExchangeCode(_ context.Context, in auth.ExchangeInput) (*auth.GoogleIdentity, error) {
	f.exchanges = append(f.exchanges, in)
	if ident, ok := f.codes[in.Code]; ok {
		return ident, nil
	}
	return nil, &auth.GoogleError{Code: auth.GoogleErrTokenExchange, Info: map[string]any{"error": "invalid_grant"}}
}

func (f *fakeGoogle) VerifyIDToken(_ context.Context, idToken string) (*auth.GoogleIdentity, error) {
	if ident, ok := f.idTokens[idToken]; ok {
		return ident, nil
	}
	return nil, auth.ErrInvalidIDToken
}

// mapUserCache is an in-process UserCache.
type mapUserCache struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMapUserCache() *mapUserCache {
	return &mapUserCache{users: make(map[string]*model.User)}
}

func (c *mapUserCache) GetUser(_ context.Context, id string) (*model.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u, ok := c.users[id]; ok {
		return u.Clone(), nil
	}
	return nil, nil
}

func (c *mapUserCache) SetUser(_ context.Context, user *model.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[user.ID] = user.Clone()
	return nil
}

func (c *mapUserCache) DeleteUser(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, id)
	return nil
}

func (c *mapUserCache) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.users[id]
	return ok
}

// mapDonationCache is an in-process DonationCache.
type mapDonationCache struct {
	mu        sync.Mutex
	donations map[string]model.Donation
}

func (c *mapDonationCache) GetDonation(_ context.Context, id string) (*model.Donation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.donations[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (c *mapDonationCache) SetDonation(_ context.Context, d *model.Donation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.donations == nil {
		c.donations = make(map[string]model.Donation)
	}
	c.donations[d.ID] = *d
	return nil
}

// fakeImages records saved and removed images.
type fakeImages struct {
	mu      sync.Mutex
	saved   map[string]string
	removed []string
	saveErr error
}

func (f *fakeImages) SaveDonationImage(filename string, r io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = make(map[string]string)
	}
	path := "/uploads/donations/" + filename
	f.saved[path] = string(data)
	return path, nil
}

func (f *fakeImages) Remove(publicPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, publicPath)
	delete(f.saved, publicPath)
	return nil
}

func newTestIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()
	issuer, err := auth.NewTokenIssuer("test-secret", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	return issuer
}

var errStoreDown = errors.New("store down")
