// Package api holds the typed bindings over the request engine: each binding
// fixes a verb and path, shapes the request/response payloads, and carries
// any operation-specific side effect (login, logout).
package api

import (
	"errors"
	"time"

	"github.com/bidhub/console-go/internal/domain/user"
)

// MinimumPasswordLength is the shortest password accepted client-side.
const MinimumPasswordLength = 8

// LoginRequest is the payload for POST users/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the login payload before it reaches the engine.
func (r LoginRequest) Validate() error {
	if r.Username == "" {
		return errors.New("username is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// TokenPair is the credential pair issued by a successful login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// CreateUserRequest is the payload for POST users/register.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the registration payload before it reaches the engine.
func (r CreateUserRequest) Validate() error {
	if r.Username == "" {
		return errors.New("username is required")
	}
	if r.Email == "" {
		return errors.New("email is required")
	}
	if len(r.Password) < MinimumPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// UpdateUserRequest is the payload for PATCH users/{id}. Password fields are
// optional; changing the password requires the current one.
type UpdateUserRequest struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
}

// Validate checks the update payload before it reaches the engine.
func (r UpdateUserRequest) Validate() error {
	if r.Username == "" {
		return errors.New("username is required")
	}
	if r.NewPassword != "" {
		if r.CurrentPassword == "" {
			return errors.New("current password is required to set a new password")
		}
		if len(r.NewPassword) < MinimumPasswordLength {
			return errors.New("password must be at least 8 characters")
		}
	}
	return nil
}

// RoleDTO is one entry of the GET roles response.
type RoleDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ListUser is one row of the paginated GET users/ response. It is a
// flattened listing shape, not the full user record.
type ListUser struct {
	ID                 int                     `json:"id"`
	Name               string                  `json:"name"`
	Email              string                  `json:"email"`
	BidCount           string                  `json:"bidCount"`
	SubscriptionType   user.SubscriptionType   `json:"subscriptionType"`
	SubscriptionTrial  bool                    `json:"subscriptionTrial"`
	SubscriptionStatus user.SubscriptionStatus `json:"subscriptionStatus"`
	RenewalDate        time.Time               `json:"renewalDate"`
}
