package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

func newTestIssuer(t *testing.T, alg string) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer("test-secret", alg, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer failed: %v", err)
	}
	return issuer
}

func TestNewTokenIssuer_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		alg     string
		ttl     time.Duration
		wantErr bool
	}{
		{"hs256", "s", "HS256", time.Minute, false},
		{"hs512", "s", "HS512", time.Minute, false},
		{"rs256 rejected", "s", "RS256", time.Minute, true},
		{"none rejected", "s", "none", time.Minute, true},
		{"empty secret", "", "HS256", time.Minute, true},
		{"zero ttl", "s", "HS256", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewTokenIssuer(tt.secret, tt.alg, tt.ttl)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTokenIssuer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t, "HS256")
	user := &model.User{ID: "user-1", Email: "a@example.com"}

	token, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token should be a compact JWT, got %q", token)
	}

	ac, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if ac.UserID != "user-1" || ac.Email != "a@example.com" {
		t.Errorf("AuthContext = %+v", ac)
	}
	if ac.TokenID == "" {
		t.Error("TokenID (jti) should be set")
	}
	if ac.ExpiresAt.Before(time.Now().Add(59 * time.Minute)) {
		t.Errorf("ExpiresAt = %v, want about one hour ahead", ac.ExpiresAt)
	}
}

func TestTokenIssuer_UniqueIDs(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t, "HS256")
	user := &model.User{ID: "user-1"}

	a, _ := issuer.Issue(user)
	b, _ := issuer.Issue(user)
	if a == b {
		t.Error("two tokens for the same user should differ by jti")
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t, "HS256")
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.Issue(&model.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Parse(expired) error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenIssuer_RejectsForeignTokens(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t, "HS256")
	valid, _ := issuer.Issue(&model.User{ID: "user-1"})

	otherSecret, _ := NewTokenIssuer("other-secret", "HS256", time.Hour)
	forged, _ := otherSecret.Issue(&model.User{ID: "user-1"})

	otherAlg := newTestIssuer(t, "HS512")
	wrongAlg, _ := otherAlg.Issue(&model.User{ID: "user-1"})

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}).SignedString([]byte("test-secret"))
	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))

	tampered := valid[:len(valid)-2] + "xx"

	tests := map[string]string{
		"wrong secret":    forged,
		"wrong algorithm": wrongAlg,
		"alg none":        unsigned,
		"no expiry":       noExp,
		"no subject":      noSub,
		"tampered":        tampered,
		"garbage":         "not.a.jwt",
		"empty":           "",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
