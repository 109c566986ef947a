// Package storetest is a conformance suite run against every repository.Store backend.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/testutil"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) repository.Store

// Run exercises the full Store contract.
func Run(t *testing.T, newStore Factory) {
	t.Run("Items", func(t *testing.T) { testItems(t, newStore(t)) })
	t.Run("ItemNotFound", func(t *testing.T) { testItemNotFound(t, newStore(t)) })
	t.Run("UserCreateAndLookup", func(t *testing.T) { testUserCreateAndLookup(t, newStore(t)) })
	t.Run("UserUniqueness", func(t *testing.T) { testUserUniqueness(t, newStore(t)) })
	t.Run("UserUpdate", func(t *testing.T) { testUserUpdate(t, newStore(t)) })
	t.Run("UserUpdateConflicts", func(t *testing.T) { testUserUpdateConflicts(t, newStore(t)) })
	t.Run("Donations", func(t *testing.T) { testDonations(t, newStore(t)) })
	t.Run("DonationNotFound", func(t *testing.T) { testDonationNotFound(t, newStore(t)) })
}

func testItems(t *testing.T, s repository.Store) {
	ctx := context.Background()

	desc := "bar"
	first := &model.Item{Name: "foo", Description: &desc, CreatedAt: time.Now().UTC()}
	if err := s.CreateItem(ctx, first); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("CreateItem should assign an ID")
	}

	second := &model.Item{Name: "baz", CreatedAt: time.Now().UTC().Add(time.Millisecond)}
	if err := s.CreateItem(ctx, second); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	got, err := s.GetItem(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.Name != "foo" || got.Description == nil || *got.Description != "bar" {
		t.Errorf("GetItem = %+v, want foo/bar", got)
	}

	items, err := s.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListItems returned %d items, want 2", len(items))
	}
	if items[0].ID != first.ID || items[1].ID != second.ID {
		t.Errorf("ListItems order = [%s %s], want insertion order", items[0].ID, items[1].ID)
	}
	if items[1].Description != nil {
		t.Errorf("second item description = %v, want nil", *items[1].Description)
	}
}

func testItemNotFound(t *testing.T, s repository.Store) {
	ctx := context.Background()

	for _, id := range []string{"01J00000000000000000000000", "not-an-id!", "507f1f77bcf86cd799439011", ""} {
		if _, err := s.GetItem(ctx, id); !errors.Is(err, repository.ErrItemNotFound) {
			t.Errorf("GetItem(%q) error = %v, want ErrItemNotFound", id, err)
		}
	}

	items, err := s.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("ListItems on empty store = %v, want empty non-nil slice", items)
	}
}

func testUserCreateAndLookup(t *testing.T, s repository.Store) {
	ctx := context.Background()

	u := testutil.NewTestUser(t, "Mixed.Case@Example.com")
	u.Name = testutil.StringPtr("Mixed")
	u.GoogleID = testutil.StringPtr("google-sub-1")
	u.AuthProviders = []string{model.ProviderGoogle}
	u.Attributes = map[string]any{"phone": "555"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.ID == "" {
		t.Fatal("CreateUser should assign an ID")
	}

	byID, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != "Mixed.Case@Example.com" {
		t.Errorf("Email = %q, want original casing preserved", byID.Email)
	}
	if byID.Attributes["phone"] != "555" {
		t.Errorf("Attributes = %v, want phone", byID.Attributes)
	}
	if !byID.HasProvider(model.ProviderGoogle) {
		t.Errorf("AuthProviders = %v, want google", byID.AuthProviders)
	}

	byEmail, err := s.GetUserByEmail(ctx, "mixed.case@example.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("GetUserByEmail ID = %s, want %s", byEmail.ID, u.ID)
	}

	byGoogle, err := s.GetUserByGoogleID(ctx, "google-sub-1")
	if err != nil {
		t.Fatalf("GetUserByGoogleID failed: %v", err)
	}
	if byGoogle.ID != u.ID {
		t.Errorf("GetUserByGoogleID ID = %s, want %s", byGoogle.ID, u.ID)
	}

	if _, err := s.GetUserByEmail(ctx, "mixed.case@example"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("partial email match error = %v, want ErrUserNotFound", err)
	}
	if _, err := s.GetUserByEmail(ctx, "Mixed.Case@Example.co."); !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("pattern-like email error = %v, want ErrUserNotFound", err)
	}
	if _, err := s.GetUserByGoogleID(ctx, "nope"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("GetUserByGoogleID error = %v, want ErrUserNotFound", err)
	}
	if _, err := s.GetUserByID(ctx, "not-an-id!"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("GetUserByID error = %v, want ErrUserNotFound", err)
	}
}

func testUserUniqueness(t *testing.T, s repository.Store) {
	ctx := context.Background()

	first := testutil.NewTestUser(t, "dup@example.com")
	first.GoogleID = testutil.StringPtr("g-dup")
	if err := s.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	sameEmail := testutil.NewTestUser(t, "DUP@example.com")
	if err := s.CreateUser(ctx, sameEmail); !errors.Is(err, repository.ErrEmailExists) {
		t.Errorf("duplicate email error = %v, want ErrEmailExists", err)
	}

	sameGoogle := testutil.NewTestUser(t, "other@example.com")
	sameGoogle.GoogleID = testutil.StringPtr("g-dup")
	if err := s.CreateUser(ctx, sameGoogle); !errors.Is(err, repository.ErrGoogleIDExists) {
		t.Errorf("duplicate google id error = %v, want ErrGoogleIDExists", err)
	}

	// Users without a Google id never collide on it.
	a := testutil.NewTestUser(t, "a@example.com")
	b := testutil.NewTestUser(t, "b@example.com")
	if err := s.CreateUser(ctx, a); err != nil {
		t.Fatalf("CreateUser(a) failed: %v", err)
	}
	if err := s.CreateUser(ctx, b); err != nil {
		t.Fatalf("CreateUser(b) failed: %v", err)
	}
}

func testUserUpdate(t *testing.T, s repository.Store) {
	ctx := context.Background()

	u := testutil.NewTestUser(t, "patch@example.com")
	u.Name = testutil.StringPtr("Before")
	u.Attributes = map[string]any{"keep": "k", "drop": "d"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	doner := true
	hash := "$argon2id$new"
	updated, err := s.UpdateUser(ctx, u.ID, &model.UserPatch{
		Name:            testutil.StringPtr("After"),
		IsDoner:         &doner,
		PasswordHash:    &hash,
		GoogleID:        testutil.StringPtr("g-linked"),
		AddProviders:    []string{model.ProviderPassword, model.ProviderGoogle},
		SetAttributes:   map[string]any{"city": "Pune", "nested": map[string]any{"a": "b"}},
		UnsetAttributes: []string{"drop"},
	})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	if updated.Name == nil || *updated.Name != "After" {
		t.Errorf("Name = %v, want After", updated.Name)
	}
	if !updated.IsDoner {
		t.Error("IsDoner should be true")
	}
	if updated.PasswordHash != hash {
		t.Errorf("PasswordHash = %q", updated.PasswordHash)
	}
	if updated.GoogleID == nil || *updated.GoogleID != "g-linked" {
		t.Errorf("GoogleID = %v", updated.GoogleID)
	}
	if len(updated.AuthProviders) != 2 {
		t.Errorf("AuthProviders = %v, want password and google once each", updated.AuthProviders)
	}
	if _, ok := updated.Attributes["drop"]; ok {
		t.Error("drop attribute should be removed")
	}
	if updated.Attributes["keep"] != "k" || updated.Attributes["city"] != "Pune" {
		t.Errorf("Attributes = %v", updated.Attributes)
	}
	if updated.UpdatedAt.Before(u.UpdatedAt) {
		t.Error("UpdatedAt should advance")
	}

	cleared, err := s.UpdateUser(ctx, u.ID, &model.UserPatch{ClearName: true})
	if err != nil {
		t.Fatalf("UpdateUser(clear name) failed: %v", err)
	}
	if cleared.Name != nil {
		t.Errorf("Name = %v, want nil", *cleared.Name)
	}

	reloaded, err := s.GetUserByGoogleID(ctx, "g-linked")
	if err != nil {
		t.Fatalf("GetUserByGoogleID after update failed: %v", err)
	}
	if reloaded.ID != u.ID {
		t.Errorf("reloaded ID = %s, want %s", reloaded.ID, u.ID)
	}

	if _, err := s.UpdateUser(ctx, "01J00000000000000000000000", &model.UserPatch{IsDoner: &doner}); !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("UpdateUser(missing) error = %v, want ErrUserNotFound", err)
	}
}

func testUserUpdateConflicts(t *testing.T, s repository.Store) {
	ctx := context.Background()

	a := testutil.NewTestUser(t, "first@example.com")
	a.GoogleID = testutil.StringPtr("g-first")
	b := testutil.NewTestUser(t, "second@example.com")
	for _, u := range []*model.User{a, b} {
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	if _, err := s.UpdateUser(ctx, b.ID, &model.UserPatch{Email: testutil.StringPtr("FIRST@example.com")}); !errors.Is(err, repository.ErrEmailExists) {
		t.Errorf("email conflict error = %v, want ErrEmailExists", err)
	}
	if _, err := s.UpdateUser(ctx, b.ID, &model.UserPatch{GoogleID: testutil.StringPtr("g-first")}); !errors.Is(err, repository.ErrGoogleIDExists) {
		t.Errorf("google id conflict error = %v, want ErrGoogleIDExists", err)
	}

	// Changing only the case of one's own email is allowed.
	got, err := s.UpdateUser(ctx, b.ID, &model.UserPatch{Email: testutil.StringPtr("Second@example.com")})
	if err != nil {
		t.Fatalf("UpdateUser(own email) failed: %v", err)
	}
	if got.Email != "Second@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
}

func testDonations(t *testing.T, s repository.Store) {
	ctx := context.Background()

	donor := testutil.NewTestUser(t, "donor@example.com")
	donor.IsDoner = true
	other := testutil.NewTestUser(t, "other-donor@example.com")
	other.IsDoner = true
	for _, u := range []*model.User{donor, other} {
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	base := time.Now().UTC().Truncate(time.Millisecond)
	var created []*model.Donation
	for i, title := range []string{"rice", "bread", "curry"} {
		d := testutil.NewTestDonation(t, donor.ID, title)
		d.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := s.CreateDonation(ctx, d); err != nil {
			t.Fatalf("CreateDonation failed: %v", err)
		}
		if d.ID == "" {
			t.Fatal("CreateDonation should assign an ID")
		}
		created = append(created, d)
	}

	foreign := testutil.NewTestDonation(t, other.ID, "soup")
	foreign.CreatedAt = base.Add(10 * time.Second)
	foreign.PickupLocation = model.PickupLocation{}
	if err := s.CreateDonation(ctx, foreign); err != nil {
		t.Fatalf("CreateDonation(foreign) failed: %v", err)
	}

	got, err := s.GetDonation(ctx, created[0].ID)
	if err != nil {
		t.Fatalf("GetDonation failed: %v", err)
	}
	if got.Title != "rice" || got.DonorID != donor.ID {
		t.Errorf("GetDonation = %+v", got)
	}
	if got.PickupLocation.Latitude == nil || *got.PickupLocation.Latitude != 12.9716 {
		t.Errorf("Latitude = %v", got.PickupLocation.Latitude)
	}

	noLoc, err := s.GetDonation(ctx, foreign.ID)
	if err != nil {
		t.Fatalf("GetDonation(foreign) failed: %v", err)
	}
	if noLoc.PickupLocation.Latitude != nil || noLoc.PickupLocation.Address != nil {
		t.Errorf("PickupLocation = %+v, want all nil", noLoc.PickupLocation)
	}

	all, err := s.ListDonations(ctx, model.DonationFilter{})
	if err != nil {
		t.Fatalf("ListDonations failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("ListDonations returned %d, want 4", len(all))
	}
	if all[0].ID != created[0].ID || all[3].ID != foreign.ID {
		t.Error("ListDonations should return oldest first")
	}

	limited, err := s.ListDonations(ctx, model.DonationFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListDonations(limit) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("ListDonations(limit=2) returned %d", len(limited))
	}

	mine, err := s.ListDonations(ctx, model.DonationFilter{DonorID: other.ID})
	if err != nil {
		t.Fatalf("ListDonations(donor) failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != foreign.ID {
		t.Errorf("ListDonations(donor) = %v, want only the foreign donation", mine)
	}
}

func testDonationNotFound(t *testing.T, s repository.Store) {
	ctx := context.Background()

	for _, id := range []string{"01J00000000000000000000000", "not-an-id!", "507f1f77bcf86cd799439011"} {
		if _, err := s.GetDonation(ctx, id); !errors.Is(err, repository.ErrDonationNotFound) {
			t.Errorf("GetDonation(%q) error = %v, want ErrDonationNotFound", id, err)
		}
	}
}
