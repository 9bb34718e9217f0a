// Package user contains domain-level types for the console user model.
// It is pure and free of transport/adapter concerns.
package user

import "time"

// AdminRoleName is the role name that grants administrative access.
const AdminRoleName = "Admin"

// Role represents an authorization role granted to a user.
// The Name is the value authorization checks match against (e.g. "Admin").
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// User is the authenticated principal resolved from the remote API.
// It is owned by the session controller once resolved and read-only everywhere else.
type User struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Roles    []Role    `json:"roles"`
}

// HasRole reports whether the user carries a role with the given name.
// Matching is case-sensitive, mirroring the remote API's role names.
func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.HasRole(AdminRoleName) }
