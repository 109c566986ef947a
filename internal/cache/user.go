package cache

import (
	"context"
	"time"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
)

const (
	userCachePrefix = "user:"
	userCacheTTL    = 5 * time.Minute
)

// GetUser returns a cached user, or nil on a miss.
// Cached users never carry a password hash.
func (c *Cache) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if !c.getJSON(ctx, c.key(userCachePrefix, id), &user) {
		return nil, nil
	}
	return &user, nil
}

// SetUser caches a user for a short time.
func (c *Cache) SetUser(ctx context.Context, user *model.User) error {
	return c.setJSON(ctx, c.key(userCachePrefix, user.ID), user, userCacheTTL)
}

// DeleteUser invalidates a cached user after an update.
func (c *Cache) DeleteUser(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(userCachePrefix, id)).Err()
}
