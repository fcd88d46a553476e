// Package domain contains core domain types for the taskboard application.
package domain

// RoleAdmin is the role allowed to delete tasks.
const RoleAdmin = "admin"

// User is the identity record returned by the backend for a session.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// CanDeleteTasks reports whether the user may delete tasks.
func (u *User) CanDeleteTasks() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName returns the best human-readable label for the user.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Credentials are the sign-in fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration are the sign-up fields.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the payload of a successful sign-in or sign-up.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
