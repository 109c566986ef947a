package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/auth"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/handler/dto"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/metrics"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/middleware"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository/memstore"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/service"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/storage"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/testutil"
)

// stubGoogle resolves fixed codes and id tokens. It is read-only after construction.
type stubGoogle struct {
	loginURL string
	loginErr error
	codes    map[string]*auth.GoogleIdentity
	idTokens map[string]*auth.GoogleIdentity
}

func (g *stubGoogle) LoginURL() (string, error) {
	return g.loginURL, g.loginErr
}

func (g *stubGoogle) ExchangeCode(_ context.Context, in auth.ExchangeInput) (*auth.GoogleIdentity, error) {
	if ident, ok := g.codes[in.Code]; ok {
		return ident, nil
	}
	return nil, &auth.GoogleError{
		Code: auth.GoogleErrTokenExchange,
		Info: map[string]any{"error": "invalid_grant"},
	}
}

func (g *stubGoogle) VerifyIDToken(_ context.Context, idToken string) (*auth.GoogleIdentity, error) {
	if ident, ok := g.idTokens[idToken]; ok {
		return ident, nil
	}
	return nil, auth.ErrInvalidIDToken
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStubGoogle() *stubGoogle {
	return &stubGoogle{
		loginURL: "https://accounts.example.com/o/oauth2/auth?client_id=test",
		codes: map[string]*auth.GoogleIdentity{
			"good-code": {Subject: "google-alice", Email: "alice@example.com", EmailVerified: true, Name: "Alice"},
		},
		idTokens: map[string]*auth.GoogleIdentity{
			"good-token":       {Subject: "google-bob", Email: "bob@example.com", EmailVerified: true, Name: "Bob"},
			"unverified-token": {Subject: "google-mallory", Email: "alice@example.com", Name: "Mallory"},
		},
	}
}

type testEnv struct {
	router   http.Handler
	store    *memstore.Store
	tokens   *auth.TokenIssuer
	recorder *metrics.InMemoryRecorder
	google   *stubGoogle
}

// newTestEnv wires the full router over an in-memory store.
// configure, when set, adjusts the router config before it is built.
func newTestEnv(t *testing.T, configure func(*RouterConfig)) *testEnv {
	t.Helper()

	store := memstore.New()
	recorder := metrics.NewInMemory()
	google := newStubGoogle()

	tokens, err := auth.NewTokenIssuer("test-secret", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	images, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	cfg := RouterConfig{
		Logger:        discardLogger(),
		Items:         service.NewItemService(store, recorder),
		Auth:          service.NewAuthService(store, google, tokens, nil, recorder),
		Users:         service.NewUserService(store, nil, recorder),
		Donations:     service.NewDonationService(store, images, nil, recorder),
		Store:         store,
		Uploads:       images.Handler(),
		Recorder:      recorder,
		CORS:          middleware.DefaultCORSConfig(),
		IsDevelopment: true,
		MaxBodySize:   1 << 20,
		MaxUploadSize: 2 << 20,
	}
	if configure != nil {
		configure(&cfg)
	}

	return &testEnv{
		router:   NewRouter(cfg),
		store:    store,
		tokens:   tokens,
		recorder: recorder,
		google:   google,
	}
}

// createUser stores a password-less user and returns it with a bearer token.
func (e *testEnv) createUser(t *testing.T, email string, donor bool) (*model.User, string) {
	t.Helper()

	user := testutil.NewTestUser(t, email)
	user.IsDoner = donor
	if err := e.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := e.tokens.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return user, token
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.serve(req)
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) dto.ErrorResponse {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	resp := decodeBody[dto.ErrorResponse](t, rec)
	if code != "" && resp.Code != code {
		t.Errorf("expected code %s, got %s (%s)", code, resp.Code, resp.Error)
	}
	return resp
}
