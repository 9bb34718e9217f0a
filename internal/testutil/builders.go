package testutil

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/bidhub/console-go/internal/domain/user"
)

// TestSigningKey signs the access tokens minted by test helpers.
var TestSigningKey = []byte("console-test-signing-key")

// MintAccessToken builds a signed access token carrying the identity claims
// the remote API embeds at login (subject, display name, roles).
func MintAccessToken(t TestingTB, subject, name string, roles []user.Role) string {
	t.Helper()

	claims := jwtlib.MapClaims{
		"sub":   subject,
		"name":  name,
		"roles": roles,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(TestSigningKey)
	if err != nil {
		t.Fatalf("sign test access token: %v", err)
	}
	return signed
}

// UserBuilder provides a fluent interface for building test users.
type UserBuilder struct {
	u user.User
}

// NewUser creates a UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	return &UserBuilder{
		u: user.User{
			ID:       "user-1",
			Username: "alice",
			Email:    "alice@example.com",
			Created:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Modified: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Roles:    []user.Role{{ID: 2, Name: "User"}},
		},
	}
}

// WithID sets the user id.
func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.u.ID = id
	return b
}

// WithUsername sets the username.
func (b *UserBuilder) WithUsername(name string) *UserBuilder {
	b.u.Username = name
	return b
}

// WithEmail sets the email address.
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.u.Email = email
	return b
}

// WithRoles replaces the role set.
func (b *UserBuilder) WithRoles(roles ...user.Role) *UserBuilder {
	b.u.Roles = roles
	return b
}

// AsAdmin grants the admin role.
func (b *UserBuilder) AsAdmin() *UserBuilder {
	b.u.Roles = append(b.u.Roles, user.Role{ID: 1, Name: user.AdminRoleName})
	return b
}

// Build returns the constructed user.
func (b *UserBuilder) Build() user.User {
	return b.u
}
