package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
)

// UniqueID returns prefix followed by a fresh ULID.
func UniqueID(prefix string) string {
	return prefix + "-" + strings.ToLower(ulid.Make().String())
}

// UniqueEmail returns an address no other test will generate.
func UniqueEmail(prefix string) string {
	return UniqueID(strings.ToLower(prefix)) + "@example.com"
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// NewTestUser returns an unsaved password user. Timestamps are truncated to
// what Postgres stores.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.User{
		Email:         email,
		AuthProviders: []string{model.ProviderPassword},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NewTestDonation returns an unsaved donation by donorID with a full
// pickup location.
func NewTestDonation(t testing.TB, donorID, title string) *model.Donation {
	t.Helper()
	lat, lng := 12.9716, 77.5946
	return &model.Donation{
		Title:   title,
		DonorID: donorID,
		PickupLocation: model.PickupLocation{
			Latitude:  &lat,
			Longitude: &lng,
			Address:   StringPtr("MG Road"),
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}
