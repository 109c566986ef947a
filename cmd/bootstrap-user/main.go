// Command bootstrap-user creates a password user, or updates an existing one,
// and prints a bearer token for it.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/app"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/auth"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/cache"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/config"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/service"
)

type output struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Created     bool   `json:"created"`
	IsDoner     bool   `json:"isDoner"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func main() {
	var (
		email    = flag.String("email", "", "User email (required)")
		password = flag.String("password", os.Getenv("BOOTSTRAP_PASSWORD"), "Password to set (min 8 characters)")
		name     = flag.String("name", "", "Display name for a new user")
		donor    = flag.Bool("donor", false, "Allow the user to create donations")
		format   = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "-email is required")
		os.Exit(1)
	}
	if *format != "plain" && *format != "json" {
		fmt.Fprintln(os.Stderr, "invalid format: use plain or json")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if cfg.StoreDriver == config.DriverMemory {
		fmt.Fprintln(os.Stderr, "STORE_DRIVER=memory does not persist users; use postgres or mongo")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", app.SanitizeError(err, cfg.DatabaseURL, cfg.MongoURI))
		os.Exit(1)
	}
	defer store.Close()

	tokens, err := auth.NewTokenIssuer(cfg.SecretKey, cfg.JWTAlgorithm, cfg.AccessTokenTTL())
	if err != nil {
		fmt.Fprintln(os.Stderr, "token issuer:", err)
		os.Exit(1)
	}

	// A running API caches users in Redis; drop the cached copy so a
	// promotion is visible at once.
	var userCache service.UserCache
	if cfg.HasRedis() {
		c, err := cache.New(ctx, cfg.RedisURL, cache.WithKeyPrefix(cfg.RedisKeyPrefix))
		if err != nil {
			fmt.Fprintln(os.Stderr, "connect redis:", app.SanitizeError(err, cfg.RedisURL))
			os.Exit(1)
		}
		defer c.Close()
		userCache = c
	}

	out, err := bootstrap(ctx, store, userCache, tokens, *email, *password, *name, *donor)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, "encode output:", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("user_id=%s\nemail=%s\ncreated=%t\nisDoner=%t\naccess_token=%s\n",
		out.UserID, out.Email, out.Created, out.IsDoner, out.AccessToken)
}

// bootstrap ensures a user with email exists, applies the password and donor
// flag, and issues a token for it. A new user is validated in full and
// written once. userCache may be nil.
func bootstrap(ctx context.Context, store repository.Store, userCache service.UserCache, tokens *auth.TokenIssuer, email, password, name string, donor bool) (*output, error) {
	email = strings.TrimSpace(email)
	if err := validator.New().Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if password != "" {
		if err := service.CheckPassword(password); err != nil {
			return nil, err
		}
	}

	created := false
	user, err := store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		fields := map[string]any{}
		if password != "" {
			fields["password"] = password
		}
		if donor {
			fields["isDoner"] = true
		}
		if len(fields) > 0 {
			user, err = service.NewUserService(store, userCache, nil).Update(ctx, user.ID, fields)
			if err != nil {
				return nil, fmt.Errorf("update user: %w", err)
			}
		}

	case errors.Is(err, repository.ErrUserNotFound):
		if password == "" {
			return nil, errors.New("-password is required for a new user")
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		now := time.Now().UTC()
		user = &model.User{
			Email:         email,
			PasswordHash:  hash,
			IsDoner:       donor,
			AuthProviders: []string{model.ProviderPassword},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if name != "" {
			user.Name = &name
		}
		if err := store.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		created = true

	default:
		return nil, fmt.Errorf("look up user: %w", err)
	}

	token, err := tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &output{
		UserID:      user.ID,
		Email:       user.Email,
		Created:     created,
		IsDoner:     user.IsDoner,
		AccessToken: token,
		TokenType:   service.TokenTypeBearer,
		ExpiresIn:   int64(tokens.TTL().Seconds()),
	}, nil
}
