package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/auth"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/metrics"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository"
)

// Keys a client may send but never changes through a profile update.
var ignoredUserKeys = []string{
	"id", "_id", "created_at", "updated_at", "password_hash", "auth_providers", "google_id",
}

// Attribute names become document field paths in some stores.
var attributeKeyRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_-]{0,63}$`)

// UserService applies profile updates.
type UserService struct {
	store    repository.Store
	cache    UserCache
	metrics  metrics.Recorder
	validate *validator.Validate
}

// NewUserService creates a new UserService. userCache may be nil.
func NewUserService(store repository.Store, userCache UserCache, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:    store,
		cache:    userCache,
		metrics:  recorder,
		validate: validator.New(),
	}
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Update merges client-supplied fields into the user.
//
// email, name, isDoner and password are typed fields; password is hashed and
// enables password login. Server-owned keys are ignored. Every other key is
// stored as a free-form attribute, and a null value removes it.
func (s *UserService) Update(ctx context.Context, userID string, fields map[string]any) (*model.User, error) {
	patch, err := s.buildPatch(fields)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	if patch.Email != nil {
		existing, err := s.store.GetUserByEmail(ctx, *patch.Email)
		switch {
		case err == nil && existing.ID != userID:
			return nil, ErrUserExists
		case err != nil && !errors.Is(err, repository.ErrUserNotFound):
			return nil, fmt.Errorf("failed to look up email: %w", err)
		}
	}

	user, err := s.store.UpdateUser(ctx, userID, patch)
	if err != nil {
		return nil, mapUserConflict(err, "failed to update user")
	}

	if s.cache != nil {
		_ = s.cache.DeleteUser(ctx, userID)
	}
	s.metrics.IncUserUpdated()
	return user, nil
}

func (s *UserService) buildPatch(fields map[string]any) (*model.UserPatch, error) {
	patch := &model.UserPatch{}

	// Sorted so that the reported field error is deterministic.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		value := fields[key]
		if slices.Contains(ignoredUserKeys, key) {
			continue
		}

		switch key {
		case "email":
			email, ok := value.(string)
			if !ok {
				return nil, fieldError(key, "must be a string")
			}
			email = strings.TrimSpace(email)
			if err := s.validate.Var(email, "required,email"); err != nil {
				return nil, fieldError(key, "must be a valid email address")
			}
			patch.Email = &email

		case "name":
			switch v := value.(type) {
			case nil:
				patch.ClearName = true
			case string:
				patch.Name = &v
			default:
				return nil, fieldError(key, "must be a string or null")
			}

		case "isDoner":
			v, ok := value.(bool)
			if !ok {
				return nil, fieldError(key, "must be a boolean")
			}
			patch.IsDoner = &v

		case "password":
			password, ok := value.(string)
			if !ok {
				return nil, fieldError(key, "must be a string")
			}
			if err := CheckPassword(password); err != nil {
				return nil, err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password: %w", err)
			}
			patch.PasswordHash = &hash
			patch.AddProviders = append(patch.AddProviders, model.ProviderPassword)

		default:
			if !attributeKeyRegex.MatchString(key) {
				return nil, fieldError(key, "invalid field name")
			}
			if value == nil {
				patch.UnsetAttributes = append(patch.UnsetAttributes, key)
				continue
			}
			if patch.SetAttributes == nil {
				patch.SetAttributes = make(map[string]any)
			}
			patch.SetAttributes[key] = value
		}
	}

	return patch, nil
}
