// internal/models/user_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndCheckPassword(t *testing.T) {
	user := &User{}
	require.NoError(t, user.SetPassword("Sup3rSecret!"))

	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "Sup3rSecret!", user.PasswordHash)
	assert.NoError(t, user.CheckPassword("Sup3rSecret!"))
	assert.Error(t, user.CheckPassword("wrong-password"))
}

func TestResetTokenValid(t *testing.T) {
	now := fixedNow()
	expires := now.Add(10 * time.Minute)
	user := &User{ResetTokenHash: "abc123", ResetTokenExpires: &expires}

	assert.True(t, user.ResetTokenValid("abc123", now))
	assert.True(t, user.ResetTokenValid("abc123", now.Add(9*time.Minute)))
	assert.False(t, user.ResetTokenValid("abc123", now.Add(10*time.Minute)))
	assert.False(t, user.ResetTokenValid("abc123", now.Add(11*time.Minute)))
	assert.False(t, user.ResetTokenValid("other", now))
}

func TestResetTokenValidWithoutPendingToken(t *testing.T) {
	user := &User{}
	assert.False(t, user.ResetTokenValid("", fixedNow()))
	assert.False(t, user.ResetTokenValid("abc123", fixedNow()))
}

func TestClearResetTokenIsSingleUse(t *testing.T) {
	now := fixedNow()
	expires := now.Add(10 * time.Minute)
	user := &User{ResetTokenHash: "abc123", ResetTokenExpires: &expires}

	user.ClearResetToken()

	assert.False(t, user.ResetTokenValid("abc123", now))
	assert.Empty(t, user.ResetTokenHash)
	assert.Nil(t, user.ResetTokenExpires)
}

func TestOTPValid(t *testing.T) {
	now := fixedNow()
	expires := now.Add(5 * time.Minute)
	user := &User{OTPHash: "hash-of-123456", OTPExpires: &expires}

	assert.True(t, user.OTPValid("hash-of-123456", now))
	assert.False(t, user.OTPValid("hash-of-123456", now.Add(5*time.Minute)))
	assert.False(t, user.OTPValid("hash-of-654321", now))

	user.ClearOTP()
	assert.False(t, user.OTPValid("hash-of-123456", now))
}

func TestCanChangeRole(t *testing.T) {
	// only admins can change roles
	assert.False(t, CanChangeRole(RoleCustomer, RoleCustomer, RoleSeller))
	assert.False(t, CanChangeRole(RoleSeller, RoleCustomer, RoleSeller))

	assert.True(t, CanChangeRole(RoleAdmin, RoleCustomer, RoleSeller))
	assert.True(t, CanChangeRole(RoleAdmin, RoleSeller, RoleCustomer))
	assert.True(t, CanChangeRole(RoleAdmin, RoleCustomer, RoleAdmin))
	assert.True(t, CanChangeRole(RoleAdmin, RoleAdmin, RoleCustomer))

	// no-op change is allowed
	assert.True(t, CanChangeRole(RoleAdmin, RoleSeller, RoleSeller))
}
