package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/auth"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/metrics"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository"
)

// TokenTypeBearer is the token_type of every issued access token.
const TokenTypeBearer = "bearer"

// AuthService registers users, signs them in and resolves bearer tokens.
type AuthService struct {
	store   repository.Store
	google  GoogleClient
	tokens  *auth.TokenIssuer
	cache   UserCache
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService. userCache may be nil.
func NewAuthService(store repository.Store, google GoogleClient, tokens *auth.TokenIssuer, userCache UserCache, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:   store,
		google:  google,
		tokens:  tokens,
		cache:   userCache,
		metrics: recorder,
	}
}

// GoogleInput identifies a Google account either by an authorization
// code or by an id token. Code wins when both are set.
type GoogleInput struct {
	Code         string
	CodeVerifier string
	RedirectURI  string
	IDToken      string
}

func (in GoogleInput) present() bool {
	return in.Code != "" || in.IDToken != ""
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	GoogleInput
	Email    string
	Name     *string
	Password string
}

// AuthResult is a signed-in user with a fresh access token.
type AuthResult struct {
	User        *model.User
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	Created     bool
}

// LoginURL returns the Google consent-screen URL.
func (s *AuthService) LoginURL() (string, error) {
	return s.google.LoginURL()
}

// Register creates a user from an explicit email, a Google authorization
// code or a Google id token, and signs the new user in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	ident, err := s.resolveGoogle(ctx, input.GoogleInput)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(input.Email)
	name := input.Name
	var googleID *string
	if ident != nil {
		googleID = &ident.Subject
		if email == "" {
			if !ident.EmailVerified {
				return nil, ErrGoogleEmailUnverified
			}
			email = ident.Email
		}
		if name == nil && ident.Name != "" {
			name = &ident.Name
		}
	}

	if email == "" {
		return nil, ErrEmailRequired
	}
	if input.Password != "" {
		if err := CheckPassword(input.Password); err != nil {
			return nil, err
		}
	}

	if googleID != nil {
		if _, err := s.store.GetUserByGoogleID(ctx, *googleID); err == nil {
			return nil, ErrGoogleAccountLinked
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up google account: %w", err)
		}
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		Email:     email,
		Name:      name,
		GoogleID:  googleID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	method := metrics.MethodPassword
	if googleID != nil {
		user.AddProvider(model.ProviderGoogle)
		method = metrics.MethodGoogle
	}
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
		user.AddProvider(model.ProviderPassword)
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, mapUserConflict(err, "failed to create user")
	}
	s.metrics.IncUserRegistered(method)

	return s.issue(user, true)
}

// Login signs a user in with email and password.
// Every failure is reported as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		// Burn the same time as a real verification.
		auth.VerifyDummy(password)
		s.metrics.IncLogin(metrics.MethodPassword, metrics.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}

	if user.PasswordHash == "" {
		auth.VerifyDummy(password)
		s.metrics.IncLogin(metrics.MethodPassword, metrics.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		s.metrics.IncLogin(metrics.MethodPassword, metrics.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLogin(metrics.MethodPassword, metrics.OutcomeSuccess)
	return s.issue(user, false)
}

// GoogleLogin signs in with a Google account. An unknown account is linked
// to the user with the same email, or a new user is created for it.
func (s *AuthService) GoogleLogin(ctx context.Context, input GoogleInput) (*AuthResult, error) {
	if !input.present() {
		return nil, ErrIdentityRequired
	}

	result, err := s.googleLogin(ctx, input)
	if err != nil {
		s.metrics.IncLogin(metrics.MethodGoogle, metrics.OutcomeFailure)
		return nil, err
	}
	s.metrics.IncLogin(metrics.MethodGoogle, metrics.OutcomeSuccess)
	return result, nil
}

func (s *AuthService) googleLogin(ctx context.Context, input GoogleInput) (*AuthResult, error) {
	ident, err := s.resolveGoogle(ctx, input)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByGoogleID(ctx, ident.Subject)
	if err == nil {
		return s.issue(user, false)
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up google account: %w", err)
	}

	// An unknown Google account is matched or registered by email only when
	// Google vouches for that email.
	if !ident.EmailVerified {
		return nil, ErrGoogleEmailUnverified
	}

	user, err = s.store.GetUserByEmail(ctx, ident.Email)
	switch {
	case err == nil:
		if user.GoogleID != nil && *user.GoogleID != ident.Subject {
			return nil, ErrGoogleAccountMismatch
		}
		patch := &model.UserPatch{
			GoogleID:     &ident.Subject,
			AddProviders: []string{model.ProviderGoogle},
		}
		if user.Name == nil && ident.Name != "" {
			patch.Name = &ident.Name
		}
		linked, err := s.store.UpdateUser(ctx, user.ID, patch)
		if err != nil {
			return nil, mapUserConflict(err, "failed to link google account")
		}
		s.invalidateUser(ctx, linked.ID)
		return s.issue(linked, false)

	case errors.Is(err, repository.ErrUserNotFound):
		now := time.Now().UTC()
		user = &model.User{
			Email:         ident.Email,
			GoogleID:      &ident.Subject,
			AuthProviders: []string{model.ProviderGoogle},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if ident.Name != "" {
			user.Name = &ident.Name
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return nil, mapUserConflict(err, "failed to create user")
		}
		s.metrics.IncUserRegistered(metrics.MethodGoogle)
		return s.issue(user, true)

	default:
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
}

// Authenticate resolves a bearer token to its auth context and current user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.AuthContext, *model.User, error) {
	ac, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.loadUser(ctx, ac.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	ac.IsDoner = user.IsDoner
	return ac, user, nil
}

// loadUser reads a user cache-first and backfills the cache on a miss.
func (s *AuthService) loadUser(ctx context.Context, id string) (*model.User, error) {
	if s.cache != nil {
		cached, err := s.cache.GetUser(ctx, id)
		if err == nil && cached != nil {
			s.metrics.IncCacheHit(metrics.CacheUser)
			return cached, nil
		}
		s.metrics.IncCacheMiss(metrics.CacheUser)
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// Cache failures only cost a store read next time.
		_ = s.cache.SetUser(ctx, user)
	}
	return user, nil
}

func (s *AuthService) invalidateUser(ctx context.Context, id string) {
	if s.cache != nil {
		_ = s.cache.DeleteUser(ctx, id)
	}
}

// resolveGoogle returns the verified Google identity, or nil when the
// input names no Google credential.
func (s *AuthService) resolveGoogle(ctx context.Context, in GoogleInput) (*auth.GoogleIdentity, error) {
	switch {
	case in.Code != "":
		return s.google.ExchangeCode(ctx, auth.ExchangeInput{
			Code:         in.Code,
			CodeVerifier: in.CodeVerifier,
			RedirectURI:  in.RedirectURI,
		})
	case in.IDToken != "":
		return s.google.VerifyIDToken(ctx, in.IDToken)
	default:
		return nil, nil
	}
}

func (s *AuthService) issue(user *model.User, created bool) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{
		User:        user,
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   s.tokens.TTL(),
		Created:     created,
	}, nil
}

// mapUserConflict turns store uniqueness violations into service errors.
func mapUserConflict(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return ErrUserExists
	case errors.Is(err, repository.ErrGoogleIDExists):
		return ErrGoogleAccountLinked
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}
