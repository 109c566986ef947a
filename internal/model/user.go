package model

import (
	"encoding/json"
	"slices"
	"time"
)

// Authentication providers linked to a user.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// Top-level JSON keys owned by User. Attributes never shadow them.
var userFieldKeys = []string{
	"id", "_id", "email", "name", "google_id", "isDoner",
	"auth_providers", "created_at", "updated_at", "password", "password_hash",
}

// IsUserFieldKey reports whether key names a first-class user field
// rather than a free-form attribute.
func IsUserFieldKey(key string) bool {
	return slices.Contains(userFieldKeys, key)
}

// User is an account that can sign in with a password, Google, or both.
// Attributes carries arbitrary client-supplied fields; they are flattened
// into the top level of the JSON representation.
type User struct {
	ID            string
	Email         string
	Name          *string
	GoogleID      *string
	PasswordHash  string
	IsDoner       bool
	AuthProviders []string
	Attributes    map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasProvider reports whether the user can authenticate with provider.
func (u *User) HasProvider(provider string) bool {
	return slices.Contains(u.AuthProviders, provider)
}

// AddProvider links provider to the user if it is not linked yet.
func (u *User) AddProvider(provider string) {
	if !u.HasProvider(provider) {
		u.AuthProviders = append(u.AuthProviders, provider)
	}
}

// MarshalJSON flattens attributes next to the fixed fields.
// The password hash is never serialized.
func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Attributes)+8)
	for k, v := range u.Attributes {
		if IsUserFieldKey(k) {
			continue
		}
		out[k] = v
	}

	providers := u.AuthProviders
	if providers == nil {
		providers = []string{}
	}

	out["id"] = u.ID
	out["email"] = u.Email
	out["name"] = u.Name
	out["google_id"] = u.GoogleID
	out["isDoner"] = u.IsDoner
	out["auth_providers"] = providers
	out["created_at"] = u.CreatedAt
	out["updated_at"] = u.UpdatedAt

	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON: unknown keys become attributes.
func (u *User) UnmarshalJSON(data []byte) error {
	var fields struct {
		ID            string    `json:"id"`
		Email         string    `json:"email"`
		Name          *string   `json:"name"`
		GoogleID      *string   `json:"google_id"`
		IsDoner       bool      `json:"isDoner"`
		AuthProviders []string  `json:"auth_providers"`
		CreatedAt     time.Time `json:"created_at"`
		UpdatedAt     time.Time `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = User{
		ID:            fields.ID,
		Email:         fields.Email,
		Name:          fields.Name,
		GoogleID:      fields.GoogleID,
		IsDoner:       fields.IsDoner,
		AuthProviders: fields.AuthProviders,
		CreatedAt:     fields.CreatedAt,
		UpdatedAt:     fields.UpdatedAt,
	}
	for k, v := range raw {
		if IsUserFieldKey(k) {
			continue
		}
		if u.Attributes == nil {
			u.Attributes = make(map[string]any)
		}
		u.Attributes[k] = v
	}
	return nil
}

// UserPatch is a store-level partial update of a user.
// Nil pointers leave the corresponding field untouched.
type UserPatch struct {
	Email           *string
	Name            *string
	ClearName       bool
	GoogleID        *string
	PasswordHash    *string
	IsDoner         *bool
	AddProviders    []string
	SetAttributes   map[string]any
	UnsetAttributes []string
}

// IsEmpty reports whether the patch changes nothing.
func (p *UserPatch) IsEmpty() bool {
	return p.Email == nil &&
		p.Name == nil &&
		!p.ClearName &&
		p.GoogleID == nil &&
		p.PasswordHash == nil &&
		p.IsDoner == nil &&
		len(p.AddProviders) == 0 &&
		len(p.SetAttributes) == 0 &&
		len(p.UnsetAttributes) == 0
}

// Apply mutates u in place and stamps UpdatedAt.
func (p *UserPatch) Apply(u *User, now time.Time) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.ClearName {
		u.Name = nil
	}
	if p.Name != nil {
		name := *p.Name
		u.Name = &name
	}
	if p.GoogleID != nil {
		gid := *p.GoogleID
		u.GoogleID = &gid
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.IsDoner != nil {
		u.IsDoner = *p.IsDoner
	}
	for _, provider := range p.AddProviders {
		u.AddProvider(provider)
	}
	for _, k := range p.UnsetAttributes {
		delete(u.Attributes, k)
	}
	if len(p.SetAttributes) > 0 && u.Attributes == nil {
		u.Attributes = make(map[string]any, len(p.SetAttributes))
	}
	for k, v := range p.SetAttributes {
		u.Attributes[k] = v
	}
	u.UpdatedAt = now
}

// Clone returns a deep copy of the user so callers can mutate it freely.
func (u *User) Clone() *User {
	c := *u
	if u.Name != nil {
		name := *u.Name
		c.Name = &name
	}
	if u.GoogleID != nil {
		gid := *u.GoogleID
		c.GoogleID = &gid
	}
	c.AuthProviders = slices.Clone(u.AuthProviders)
	if u.Attributes != nil {
		c.Attributes = make(map[string]any, len(u.Attributes))
		for k, v := range u.Attributes {
			c.Attributes[k] = v
		}
	}
	return &c
}
