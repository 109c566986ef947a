package dto

import (
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/service"
)

// GoogleRequest is the body of POST /auth/google.
type GoogleRequest struct {
	Code         string `json:"code"`
	CodeVerifier string `json:"code_verifier"`
	RedirectURI  string `json:"redirect_uri" validate:"omitempty,url"`
	IDToken      string `json:"id_token"`
}

// ToInput converts the request to service input.
func (r GoogleRequest) ToInput() service.GoogleInput {
	return service.GoogleInput{
		Code:         r.Code,
		CodeVerifier: r.CodeVerifier,
		RedirectURI:  r.RedirectURI,
		IDToken:      r.IDToken,
	}
}

// RegisterRequest is the body of POST /auth/register.
// A client-supplied google_id is not accepted; the Google id only
// comes from a verified code or id token.
type RegisterRequest struct {
	GoogleRequest
	Email    string  `json:"email" validate:"omitempty,email"`
	Name     *string `json:"name"`
	Password string  `json:"password" validate:"omitempty,min=8"`
}

// ToInput converts the request to service input.
func (r RegisterRequest) ToInput() service.RegisterInput {
	return service.RegisterInput{
		GoogleInput: r.GoogleRequest.ToInput(),
		Email:       r.Email,
		Name:        r.Name,
		Password:    r.Password,
	}
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginURLResponse is the body of GET /auth/login.
type LoginURLResponse struct {
	AuthURL string `json:"auth_url"`
}

// AuthResponse carries a signed-in user and its access token.
type AuthResponse struct {
	Status      string      `json:"status,omitempty"`
	User        *model.User `json:"user"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
}

// ToAuthResponse converts a service result to the response body.
func ToAuthResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		User:        res.User,
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   int64(res.ExpiresIn.Seconds()),
	}
}
