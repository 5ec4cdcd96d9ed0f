package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxFailedLoginAttempts is the threshold at which an account locks.
	MaxFailedLoginAttempts = 5
	// LockoutDuration is how long a locked account stays locked.
	LockoutDuration = 30 * time.Minute
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// User represents a system user with its security state.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // bcrypt hash, never serialized
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         UserRole  `json:"role"`
	Enabled      bool      `json:"enabled"`

	// Lockout state. AccountNonLocked is the persisted flag; IsAccountUsable
	// is the authority because an active LockedUntil overrides it.
	AccountNonLocked    bool       `json:"account_non_locked"`
	FailedLoginAttempts int        `json:"failed_login_attempts"`
	LockedUntil         *time.Time `json:"locked_until,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// refresh-token storage
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`
}

// NewUser builds a user with the default role and a clean security state.
func NewUser(email, passwordHash, firstName, lastName string, now time.Time) *User {
	return &User{
		ID:               uuid.New(),
		Email:            email,
		PasswordHash:     passwordHash,
		FirstName:        firstName,
		LastName:         lastName,
		Role:             RoleUser,
		Enabled:          true,
		AccountNonLocked: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IncrementFailedLoginAttempts records one more failed login. Reaching the
// threshold locks the account for LockoutDuration; calls past the threshold
// only bump the counter.
func (u *User) IncrementFailedLoginAttempts(now time.Time) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts == MaxFailedLoginAttempts {
		u.AccountNonLocked = false
		until := now.Add(LockoutDuration)
		u.LockedUntil = &until
	}
}

// ResetFailedLoginAttempts clears the counter and unlocks the account.
func (u *User) ResetFailedLoginAttempts() {
	u.FailedLoginAttempts = 0
	u.AccountNonLocked = true
	u.LockedUntil = nil
}

// IsAccountUsable reports whether the account may authenticate. A lock
// self-expires once now passes LockedUntil; the persisted flag is not
// flipped back until ResetFailedLoginAttempts runs.
func (u *User) IsAccountUsable(now time.Time) bool {
	if u.LockedUntil != nil && now.Before(*u.LockedUntil) {
		return false
	}
	return u.AccountNonLocked
}

// Validate checks the invariants required before the user is persisted.
// The storage contract requires it before every create and update.
func (u *User) Validate() error {
	if u.Email == "" {
		return &ValidationError{Field: "email", Reason: "cannot be empty"}
	}
	if !emailPattern.MatchString(u.Email) {
		return &ValidationError{Field: "email", Reason: "invalid format: " + u.Email}
	}
	if !u.Role.Valid() {
		return &ValidationError{Field: "role", Reason: "unknown role: " + string(u.Role)}
	}
	if u.FailedLoginAttempts < 0 {
		return &ValidationError{Field: "failed_login_attempts", Reason: "cannot be negative"}
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
