package cache

import (
	"context"
	"time"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
)

const (
	donationCachePrefix = "donation:"
	// Donations are never updated, so entries only expire.
	donationCacheTTL = time.Hour
)

// GetDonation returns a cached donation, or nil on a miss.
func (c *Cache) GetDonation(ctx context.Context, id string) (*model.Donation, error) {
	var d model.Donation
	if !c.getJSON(ctx, c.key(donationCachePrefix, id), &d) {
		return nil, nil
	}
	return &d, nil
}

// SetDonation caches a donation.
func (c *Cache) SetDonation(ctx context.Context, d *model.Donation) error {
	return c.setJSON(ctx, c.key(donationCachePrefix, d.ID), d, donationCacheTTL)
}
