// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
)

// Service errors.
var (
	ErrItemNotFound          = errors.New("item not found")
	ErrNameRequired          = errors.New("name is required")
	ErrEmailRequired         = errors.New("email is required for registration")
	ErrGoogleAccountLinked   = errors.New("google account already linked to another user")
	ErrGoogleAccountMismatch = errors.New("user is linked to a different google account")
	ErrGoogleEmailUnverified = errors.New("google has not verified this email address")
	ErrUserExists            = errors.New("user already exists")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrUserNotFound          = errors.New("user not found")
	ErrNoFieldsToUpdate      = errors.New("no fields to update")
	ErrNotDonor              = errors.New("user is not authorized to donate")
	ErrTitleRequired         = errors.New("title is required")
	ErrInvalidCoordinates    = errors.New("invalid latitude/longitude")
	ErrDonationNotFound      = errors.New("donation not found")
	ErrIdentityRequired      = errors.New("code or id_token is required")
)

const minPasswordLength = 8

// CheckPassword enforces the password policy shared by every sign-up path.
func CheckPassword(password string) error {
	if len(password) < minPasswordLength {
		return fieldError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	return nil
}

// FieldError reports an invalid value for one input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func fieldError(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}
