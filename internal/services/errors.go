package services

import "errors"

var (
	// ErrInvalidCredentials is returned for a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountLocked is returned while the lockout window is active.
	ErrAccountLocked = errors.New("account is temporarily locked")
	// ErrAccountDisabled is returned for a disabled account.
	ErrAccountDisabled = errors.New("account is disabled")
	// ErrEmailTaken is returned when registering an already used email.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrForbidden is returned when the actor may not edit the task.
	ErrForbidden = errors.New("user may not edit this task")
)
