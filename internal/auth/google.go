package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGoogleAuthURL      = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultGoogleTokenURL     = "https://oauth2.googleapis.com/token"
	defaultGoogleUserInfoURL  = "https://openidconnect.googleapis.com/v1/userinfo"
	defaultGoogleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

	googleScope        = "openid email profile"
	maxGoogleBodyBytes = 1 << 20
)

// Google errors.
var (
	ErrOAuthNotConfigured    = errors.New("google oauth client id not configured")
	ErrIncompleteUserInfo    = errors.New("incomplete userinfo from google")
	ErrInvalidIDToken        = errors.New("invalid id_token")
	ErrInvalidIDTokenPayload = errors.New("invalid id_token payload")
	ErrGoogleUnavailable     = errors.New("google unavailable")
)

// Google error codes surfaced to API clients.
const (
	GoogleErrTokenExchange = "token_exchange_failed"
	GoogleErrUserInfo      = "userinfo_fetch_failed"
)

// GoogleError is a non-success answer from a Google endpoint.
// Info holds the decoded response body, or its status and raw text.
type GoogleError struct {
	Code string
	Info any
}

func (e *GoogleError) Error() string {
	return "google: " + e.Code
}

// GoogleConfig configures the Google identity client.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Endpoint overrides for tests.
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	TokenInfoURL string

	HTTPClient *http.Client
}

// GoogleIdentity is the verified identity returned by Google.
// EmailVerified is false unless Google vouched for the address.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// ExchangeInput is an authorization code plus optional PKCE verifier and redirect override.
type ExchangeInput struct {
	Code         string
	CodeVerifier string
	RedirectURI  string
}

// GoogleProvider talks to Google's OAuth 2.0 and OpenID endpoints over plain HTTP.
type GoogleProvider struct {
	config GoogleConfig
	client *http.Client
}

// NewGoogleProvider creates a GoogleProvider, filling default endpoints.
func NewGoogleProvider(config GoogleConfig) *GoogleProvider {
	if config.AuthURL == "" {
		config.AuthURL = defaultGoogleAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultGoogleTokenURL
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = defaultGoogleUserInfoURL
	}
	if config.TokenInfoURL == "" {
		config.TokenInfoURL = defaultGoogleTokenInfoURL
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &GoogleProvider{config: config, client: client}
}

// LoginURL builds the consent-screen URL the frontend redirects to.
func (p *GoogleProvider) LoginURL() (string, error) {
	if p.config.ClientID == "" {
		return "", ErrOAuthNotConfigured
	}

	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.RedirectURI},
		"response_type": {"code"},
		"scope":         {googleScope},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	return p.config.AuthURL + "?" + params.Encode(), nil
}

type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
}

type googleClaims struct {
	Sub           string     `json:"sub"`
	Email         string     `json:"email"`
	EmailVerified googleBool `json:"email_verified"`
	Name          string     `json:"name"`
	Aud           string     `json:"aud"`
}

func (c googleClaims) identity() *GoogleIdentity {
	return &GoogleIdentity{Subject: c.Sub, Email: c.Email, EmailVerified: bool(c.EmailVerified), Name: c.Name}
}

// googleBool accepts userinfo's JSON boolean and tokeninfo's "true"/"false".
type googleBool bool

func (b *googleBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "true":
		*b = true
	case "false", "null", "":
		*b = false
	default:
		return fmt.Errorf("email_verified: unexpected value %s", data)
	}
	return nil
}

// ExchangeCode trades an authorization code for tokens and fetches the user's profile.
func (p *GoogleProvider) ExchangeCode(ctx context.Context, in ExchangeInput) (*GoogleIdentity, error) {
	if p.config.ClientID == "" {
		return nil, ErrOAuthNotConfigured
	}

	redirect := in.RedirectURI
	if redirect == "" {
		redirect = p.config.RedirectURI
	}

	form := url.Values{
		"code":         {in.Code},
		"client_id":    {p.config.ClientID},
		"redirect_uri": {redirect},
		"grant_type":   {"authorization_code"},
	}
	if p.config.ClientSecret != "" {
		form.Set("client_secret", p.config.ClientSecret)
	}
	if in.CodeVerifier != "" {
		form.Set("code_verifier", in.CodeVerifier)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := p.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &GoogleError{Code: GoogleErrTokenExchange, Info: errorInfo(status, body)}
	}

	var tokens googleTokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil || tokens.AccessToken == "" {
		return nil, &GoogleError{Code: GoogleErrTokenExchange, Info: errorInfo(status, body)}
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	req.Header.Set("Accept", "application/json")

	status, body, err = p.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &GoogleError{Code: GoogleErrUserInfo, Info: errorInfo(status, body)}
	}

	var info googleClaims
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, &GoogleError{Code: GoogleErrUserInfo, Info: errorInfo(status, body)}
	}
	if info.Sub == "" || info.Email == "" {
		return nil, ErrIncompleteUserInfo
	}

	return info.identity(), nil
}

// VerifyIDToken validates an id token with Google's tokeninfo endpoint.
// A token issued to a different client id is rejected.
func (p *GoogleProvider) VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	endpoint := p.config.TokenInfoURL + "?" + url.Values{"id_token": {idToken}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	status, body, err := p.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, ErrInvalidIDToken
	}

	var claims googleClaims
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, ErrInvalidIDTokenPayload
	}
	if claims.Sub == "" || claims.Email == "" {
		return nil, ErrInvalidIDTokenPayload
	}
	if claims.Aud != "" && p.config.ClientID != "" && claims.Aud != p.config.ClientID {
		return nil, ErrInvalidIDToken
	}

	return claims.identity(), nil
}

func (p *GoogleProvider) do(req *http.Request) (int, []byte, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrGoogleUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGoogleBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %v", ErrGoogleUnavailable, err)
	}
	return resp.StatusCode, body, nil
}

// errorInfo decodes a JSON error body, falling back to status and text.
func errorInfo(status int, body []byte) any {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil && decoded != nil {
		return decoded
	}
	return map[string]any{"status": status, "text": string(body)}
}
