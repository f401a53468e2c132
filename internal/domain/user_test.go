// File: internal/domain/user_test.go
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndValidatePassword(t *testing.T) {
	u := &User{}
	require.NoError(t, u.HashPassword("longenough"))
	require.NotEmpty(t, u.Password)
	assert.NotEqual(t, "longenough", u.Password)

	assert.NoError(t, u.ValidatePassword("longenough"))
	assert.Error(t, u.ValidatePassword("wrongpassword"))
}

func TestHashPasswordRejectsShortInput(t *testing.T) {
	u := &User{}
	assert.Error(t, u.HashPassword("short"))
	assert.Empty(t, u.Password)
}

func TestUserIsValid(t *testing.T) {
	u := &User{Name: "Jordan", Email: "jordan@example.com"}
	assert.NoError(t, u.IsValid())

	assert.Error(t, (&User{Email: "jordan@example.com"}).IsValid())
	assert.Error(t, (&User{Name: "Jordan", Email: "not-an-email"}).IsValid())
}
