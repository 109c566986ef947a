package service

import (
	"context"
	"errors"
	"testing"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/auth"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/metrics"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository/memstore"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/testutil"
)

func seedUser(t *testing.T, store *memstore.Store, email string) *model.User {
	t.Helper()
	u := testutil.NewTestUser(t, email)
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestUserService_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memstore.New()
	userCache := newMapUserCache()
	recorder := metrics.NewInMemory()
	svc := NewUserService(store, userCache, recorder)

	user := seedUser(t, store, "hank@example.com")
	_ = userCache.SetUser(ctx, user)

	updated, err := svc.Update(ctx, user.ID, map[string]any{
		"name":       "Hank",
		"isDoner":    true,
		"phone":      "555-0100",
		"address":    map[string]any{"city": "Pune"},
		"id":         "spoofed",
		"google_id":  "spoofed",
		"created_at": "2000-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.ID != user.ID {
		t.Errorf("ID changed to %q", updated.ID)
	}
	if updated.Name == nil || *updated.Name != "Hank" || !updated.IsDoner {
		t.Errorf("typed fields not applied: %+v", updated)
	}
	if updated.GoogleID != nil {
		t.Errorf("google_id must be ignored, got %q", *updated.GoogleID)
	}
	if updated.Attributes["phone"] != "555-0100" {
		t.Errorf("Attributes = %v", updated.Attributes)
	}
	if _, ok := updated.Attributes["id"]; ok {
		t.Error("reserved key stored as attribute")
	}
	if !updated.UpdatedAt.After(user.UpdatedAt) && !updated.UpdatedAt.Equal(user.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards: %s < %s", updated.UpdatedAt, user.UpdatedAt)
	}
	if userCache.has(user.ID) {
		t.Error("expected cached user to be invalidated")
	}
	if recorder.Snapshot().UsersUpdated != 1 {
		t.Errorf("UsersUpdated = %d", recorder.Snapshot().UsersUpdated)
	}

	// Null removes an attribute and clears the name.
	updated, err = svc.Update(ctx, user.ID, map[string]any{"phone": nil, "name": nil})
	if err != nil {
		t.Fatalf("Update with nulls: %v", err)
	}
	if _, ok := updated.Attributes["phone"]; ok {
		t.Error("phone should have been removed")
	}
	if _, ok := updated.Attributes["address"]; !ok {
		t.Error("address should survive")
	}
	if updated.Name != nil {
		t.Errorf("Name = %q, want nil", *updated.Name)
	}
}

func TestUserService_UpdatePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memstore.New()
	svc := NewUserService(store, nil, nil)

	user := seedUser(t, store, "ivy@example.com")
	user, err := store.UpdateUser(ctx, user.ID, &model.UserPatch{AddProviders: []string{model.ProviderGoogle}})
	if err != nil {
		t.Fatalf("seed provider: %v", err)
	}

	updated, err := svc.Update(ctx, user.ID, map[string]any{"password": "a-new-password", "password_hash": "x"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.HasProvider(model.ProviderPassword) || !updated.HasProvider(model.ProviderGoogle) {
		t.Errorf("AuthProviders = %v", updated.AuthProviders)
	}

	stored, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	ok, err := auth.VerifyPassword("a-new-password", stored.PasswordHash)
	if err != nil || !ok {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestUserService_UpdateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memstore.New()
	svc := NewUserService(store, nil, nil)

	jack := seedUser(t, store, "jack@example.com")
	seedUser(t, store, "kate@example.com")

	if _, err := svc.Update(ctx, jack.ID, map[string]any{"email": "KATE@example.com"}); !errors.Is(err, ErrUserExists) {
		t.Errorf("taken email: got %v, want ErrUserExists", err)
	}

	// Re-saving the own address in a different case is fine.
	updated, err := svc.Update(ctx, jack.ID, map[string]any{"email": "  Jack@Example.com "})
	if err != nil {
		t.Fatalf("Update own email: %v", err)
	}
	if updated.Email != "Jack@Example.com" {
		t.Errorf("Email = %q", updated.Email)
	}
}

func TestUserService_UpdateErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memstore.New()
	svc := NewUserService(store, nil, nil)
	user := seedUser(t, store, "leo@example.com")

	tests := []struct {
		name      string
		fields    map[string]any
		wantField string
		wantErr   error
	}{
		{name: "empty body", fields: map[string]any{}, wantErr: ErrNoFieldsToUpdate},
		{name: "only ignored keys", fields: map[string]any{"id": "x", "auth_providers": []any{"google"}}, wantErr: ErrNoFieldsToUpdate},
		{name: "email not a string", fields: map[string]any{"email": 42.0}, wantField: "email"},
		{name: "email malformed", fields: map[string]any{"email": "not-an-email"}, wantField: "email"},
		{name: "name not a string", fields: map[string]any{"name": true}, wantField: "name"},
		{name: "isDoner not a bool", fields: map[string]any{"isDoner": "yes"}, wantField: "isDoner"},
		{name: "password too short", fields: map[string]any{"password": "short"}, wantField: "password"},
		{name: "dotted attribute", fields: map[string]any{"a.b": 1.0}, wantField: "a.b"},
		{name: "operator attribute", fields: map[string]any{"$set": 1.0}, wantField: "$set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Update(ctx, user.ID, tt.fields)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if fe.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", fe.Field, tt.wantField)
			}
		})
	}

	if _, err := svc.Update(ctx, "missing", map[string]any{"name": "x"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user: got %v, want ErrUserNotFound", err)
	}
}
