package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUser_MarshalJSON_FlattensAttributes(t *testing.T) {
	t.Parallel()

	name := "Asha"
	u := User{
		ID:            "01HZX",
		Email:         "asha@example.com",
		Name:          &name,
		PasswordHash:  "$argon2id$secret",
		IsDoner:       true,
		AuthProviders: []string{ProviderPassword},
		Attributes: map[string]any{
			"phone": "12345",
			"email": "shadow@example.com",
		},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got["phone"] != "12345" {
		t.Errorf("phone = %v, want 12345", got["phone"])
	}
	if got["email"] != "asha@example.com" {
		t.Errorf("email = %v, attributes must not shadow fixed fields", got["email"])
	}
	if got["isDoner"] != true {
		t.Errorf("isDoner = %v, want true", got["isDoner"])
	}
	if _, ok := got["password_hash"]; ok {
		t.Error("password_hash must never be serialized")
	}
	if _, ok := got["google_id"]; !ok {
		t.Error("google_id should be present (null) when unset")
	}
}

func TestUser_UnmarshalJSON_CollectsAttributes(t *testing.T) {
	t.Parallel()

	input := `{"id":"u1","email":"a@b.c","name":null,"isDoner":true,"auth_providers":["google"],"city":"Pune","tags":["x"]}`

	var u User
	if err := json.Unmarshal([]byte(input), &u); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if u.ID != "u1" || u.Email != "a@b.c" || !u.IsDoner {
		t.Errorf("fixed fields not decoded: %+v", u)
	}
	if u.Name != nil {
		t.Errorf("Name = %v, want nil", *u.Name)
	}
	if !u.HasProvider(ProviderGoogle) {
		t.Error("expected google provider")
	}
	if u.Attributes["city"] != "Pune" {
		t.Errorf("city attribute = %v", u.Attributes["city"])
	}
	if _, ok := u.Attributes["email"]; ok {
		t.Error("fixed fields must not leak into attributes")
	}
}

func TestUserPatch_Apply(t *testing.T) {
	t.Parallel()

	name := "Old"
	u := &User{
		Email:         "old@example.com",
		Name:          &name,
		AuthProviders: []string{ProviderGoogle},
		Attributes:    map[string]any{"keep": 1, "drop": 2},
	}

	newEmail := "new@example.com"
	hash := "hash"
	doner := true
	now := time.Now()
	patch := &UserPatch{
		Email:           &newEmail,
		ClearName:       true,
		PasswordHash:    &hash,
		IsDoner:         &doner,
		AddProviders:    []string{ProviderPassword, ProviderGoogle},
		SetAttributes:   map[string]any{"added": "yes"},
		UnsetAttributes: []string{"drop"},
	}

	if patch.IsEmpty() {
		t.Fatal("patch should not be empty")
	}
	patch.Apply(u, now)

	if u.Email != newEmail {
		t.Errorf("Email = %s", u.Email)
	}
	if u.Name != nil {
		t.Error("Name should be cleared")
	}
	if u.PasswordHash != hash || !u.IsDoner {
		t.Error("hash or isDoner not applied")
	}
	if len(u.AuthProviders) != 2 {
		t.Errorf("AuthProviders = %v, want google+password", u.AuthProviders)
	}
	if _, ok := u.Attributes["drop"]; ok {
		t.Error("drop attribute should be removed")
	}
	if u.Attributes["added"] != "yes" || u.Attributes["keep"] != 1 {
		t.Errorf("Attributes = %v", u.Attributes)
	}
	if !u.UpdatedAt.Equal(now) {
		t.Error("UpdatedAt not stamped")
	}
}

func TestUserPatch_IsEmpty(t *testing.T) {
	t.Parallel()

	if !(&UserPatch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}
	if (&UserPatch{UnsetAttributes: []string{"x"}}).IsEmpty() {
		t.Error("patch with unset should not be empty")
	}
}

func TestUser_Clone_IsIndependent(t *testing.T) {
	t.Parallel()

	gid := "g-1"
	u := &User{GoogleID: &gid, AuthProviders: []string{ProviderGoogle}, Attributes: map[string]any{"a": 1}}
	c := u.Clone()
	*c.GoogleID = "g-2"
	c.AuthProviders[0] = ProviderPassword
	c.Attributes["a"] = 2

	if *u.GoogleID != "g-1" || u.AuthProviders[0] != ProviderGoogle || u.Attributes["a"] != 1 {
		t.Error("Clone shares state with the original")
	}
}

func TestDonationFilter_EffectiveLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit int
		want  int
	}{
		{0, MaxDonationListLimit},
		{-5, MaxDonationListLimit},
		{1, 1},
		{50, 50},
		{MaxDonationListLimit, MaxDonationListLimit},
		{1000, MaxDonationListLimit},
	}

	for _, tt := range tests {
		if got := (DonationFilter{Limit: tt.limit}).EffectiveLimit(); got != tt.want {
			t.Errorf("EffectiveLimit(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}
