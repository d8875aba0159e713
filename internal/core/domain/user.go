package domain

import (
	"errors"
	"time"
)

// Roles a user can hold. Routes declare which roles may reach them.
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrMissingToken = errors.New("missing authentication token")
var ErrInvalidToken = errors.New("invalid or expired token")
var ErrTokenUserGone = errors.New("the user belonging to this token no longer exists")
var ErrPasswordChanged = errors.New("password changed after token was issued")
var ErrForbidden = errors.New("access forbidden")
var ErrResetTokenInvalid = errors.New("reset token is invalid or has expired")
var ErrPasswordRouteMisuse = errors.New("this route does not accept password updates")
var ErrInvalidRole = errors.New("unknown role")

// ValidRole reports whether role is one of the known role constants.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// User models an account in the system. PasswordHash is never serialized to clients.
type User struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	PasswordHash      string    `json:"-"`
	PasswordChangedAt time.Time `json:"-"`
	ResetTokenHash    string    `json:"-"`
	ResetTokenExpires time.Time `json:"-"`
	Active            bool      `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PasswordChangedAfter reports whether the user's password was changed after
// the given token issue time. A zero PasswordChangedAt means the password has
// not changed since signup.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	return u.PasswordChangedAt.After(issuedAt)
}

// ResetTokenValid reports whether the stored reset token hash is present and
// not yet expired at the given instant.
func (u *User) ResetTokenValid(now time.Time) bool {
	return u.ResetTokenHash != "" && u.ResetTokenExpires.After(now)
}
