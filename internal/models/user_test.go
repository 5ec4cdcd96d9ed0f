package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestNewUser_Defaults(t *testing.T) {
	u := NewUser("john.doe@example.com", "$2a$10$hash", "John", "Doe", testNow)

	assert.Equal(t, RoleUser, u.Role)
	assert.True(t, u.Enabled)
	assert.True(t, u.AccountNonLocked)
	assert.Equal(t, 0, u.FailedLoginAttempts)
	assert.Nil(t, u.LockedUntil)
	assert.Equal(t, testNow, u.CreatedAt)
	assert.Equal(t, "John Doe", u.FullName())
	require.NoError(t, u.Validate())
}

func TestUser_ValidateEmail(t *testing.T) {
	valid := []string{
		"test@example.com",
		"user.name@domain.co.uk",
		"user+tag@example.org",
		"user_name@sub.domain.com",
	}
	invalid := []string{
		"",
		"invalid-email",
		"@example.com",
		"test@",
		"test@.com",
		"test@com.",
	}

	for _, email := range valid {
		t.Run("valid "+email, func(t *testing.T) {
			u := NewUser(email, "hash", "Test", "User", testNow)
			assert.NoError(t, u.Validate())
		})
	}
	for _, email := range invalid {
		t.Run("invalid "+email, func(t *testing.T) {
			u := NewUser(email, "hash", "Test", "User", testNow)
			err := u.Validate()
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "email", verr.Field)
		})
	}
}

func TestUser_ValidateRole(t *testing.T) {
	u := NewUser("test@example.com", "hash", "Test", "User", testNow)
	u.Role = UserRole("superuser")

	err := u.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "role", verr.Field)
}

func TestUser_LockoutAtFifthAttempt(t *testing.T) {
	u := NewUser("login@test.com", "hash", "Login", "Test", testNow)

	// attempts 1-4 leave the account usable
	for i := 1; i <= 4; i++ {
		u.IncrementFailedLoginAttempts(testNow)
		assert.Equal(t, i, u.FailedLoginAttempts)
		assert.True(t, u.IsAccountUsable(testNow), "attempt %d must not lock", i)
		assert.Nil(t, u.LockedUntil)
	}

	// the 5th attempt locks for 30 minutes
	u.IncrementFailedLoginAttempts(testNow)
	assert.Equal(t, 5, u.FailedLoginAttempts)
	assert.False(t, u.IsAccountUsable(testNow))
	require.NotNil(t, u.LockedUntil)
	assert.Equal(t, testNow.Add(30*time.Minute), *u.LockedUntil)
}

func TestUser_LockedUntilNotRestampedPastThreshold(t *testing.T) {
	u := NewUser("login@test.com", "hash", "Login", "Test", testNow)
	for i := 0; i < 5; i++ {
		u.IncrementFailedLoginAttempts(testNow)
	}
	firstLock := *u.LockedUntil

	// a 6th failure only bumps the counter
	u.IncrementFailedLoginAttempts(testNow.Add(10 * time.Minute))
	assert.Equal(t, 6, u.FailedLoginAttempts)
	assert.Equal(t, firstLock, *u.LockedUntil)
}

func TestUser_ResetFailedLoginAttempts(t *testing.T) {
	u := NewUser("reset@test.com", "hash", "Reset", "Test", testNow)
	for i := 0; i < 5; i++ {
		u.IncrementFailedLoginAttempts(testNow)
	}
	require.False(t, u.IsAccountUsable(testNow))

	u.ResetFailedLoginAttempts()

	assert.Equal(t, 0, u.FailedLoginAttempts)
	assert.True(t, u.IsAccountUsable(testNow))
	assert.Nil(t, u.LockedUntil)
}

func TestUser_IsAccountUsable_TemporalOverride(t *testing.T) {
	until := testNow.Add(30 * time.Minute)
	u := NewUser("lock@test.com", "hash", "Lock", "Test", testNow)
	u.LockedUntil = &until

	// an active LockedUntil overrides the persisted flag
	assert.True(t, u.AccountNonLocked)
	assert.False(t, u.IsAccountUsable(testNow))
	assert.False(t, u.IsAccountUsable(until.Add(-time.Second)))

	// once the window passes, the persisted flag is the answer again
	assert.True(t, u.IsAccountUsable(until))
	u.AccountNonLocked = false
	assert.False(t, u.IsAccountUsable(until.Add(time.Hour)))
}
