package user_services

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/skinai/go-skinai/internal/domain"
	"github.com/skinai/go-skinai/internal/repository/user"
	"github.com/skinai/go-skinai/internal/services"
)

const testSecret = "unit-test-secret"

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	return NewAuthService(user.NewGormUserRepository(db), testSecret, &services.NoOpLogger{})
}

func TestSignUpThenSignIn(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	created, token, err := svc.SignUp(ctx, "Jordan@Example.com", "s3cret-pass", "Jordan")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "jordan@example.com", created.Email)
	assert.Equal(t, "J", created.Avatar)

	account, token, err := svc.SignIn(ctx, "jordan@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, created.ID, account.ID)

	userID, err := svc.ValidateJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, userID)
}

func TestSignUpDefaultsNameToEmailLocalPart(t *testing.T) {
	svc := newTestAuthService(t)

	created, _, err := svc.SignUp(context.Background(), "casey@example.com", "longenough", "")
	require.NoError(t, err)
	assert.Equal(t, "casey", created.Name)
	assert.Equal(t, "C", created.Avatar)
}

func TestSignUpRejectsBadInput(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, "not-an-email", "longenough", "A")
	assert.Error(t, err)

	_, _, err = svc.SignUp(ctx, "ok@example.com", "short", "A")
	assert.Error(t, err)
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, "dup@example.com", "password-one", "First")
	require.NoError(t, err)

	_, _, err = svc.SignUp(ctx, "dup@example.com", "password-two", "Second")
	assert.Error(t, err)
}

func TestSignInWrongPassword(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, "p@example.com", "rightpassword", "P")
	require.NoError(t, err)

	_, _, err = svc.SignIn(ctx, "p@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInUnknownEmail(t *testing.T) {
	svc := newTestAuthService(t)

	_, _, err := svc.SignIn(context.Background(), "ghost@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
