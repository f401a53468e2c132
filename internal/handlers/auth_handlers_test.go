// File: internal/handlers/auth_handlers_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skinai/go-skinai/internal/domain"
	"github.com/skinai/go-skinai/internal/middleware"
	"github.com/skinai/go-skinai/internal/repository/state"
	"github.com/skinai/go-skinai/internal/repository/user"
	"github.com/skinai/go-skinai/internal/services"
	"github.com/skinai/go-skinai/internal/services/conversation"
	"github.com/skinai/go-skinai/internal/services/responder"
	"github.com/skinai/go-skinai/internal/services/session"
	"github.com/skinai/go-skinai/internal/services/transcription"
	"github.com/skinai/go-skinai/internal/services/user_services"
)

func newTestAuthHandler(t *testing.T) (*AuthHandler, *user_services.AuthService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &state.Record{}))

	stateRepo := state.NewStateRepository(db)
	store, err := conversation.NewStore(stateRepo, nil)
	require.NoError(t, err)

	controller, err := session.NewController(
		store,
		stateRepo,
		responder.NewCannedProvider(),
		transcription.NewCannedProvider(),
		session.RemoteCaptureDevice{},
		nil,
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, controller.Bootstrap(context.Background()))

	authService := user_services.NewAuthService(
		user.NewGormUserRepository(db), "handler-test-secret", &services.NoOpLogger{})
	return NewAuthHandler(authService, controller), authService
}

func TestRegisterSetsCookieAndProfile(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	body, err := json.Marshal(map[string]string{
		"name":     "Jordan",
		"email":    "jordan@example.com",
		"password": "longenough",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == authCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)

	profile, ok := h.Controller.CurrentUser(context.Background())
	require.True(t, ok)
	assert.Equal(t, "jordan@example.com", profile.Email)
}

func TestMePrefersTokenAccount(t *testing.T) {
	h, authService := newTestAuthHandler(t)
	ctx := context.Background()

	created, _, err := authService.SignUp(ctx, "casey@example.com", "longenough", "Casey")
	require.NoError(t, err)

	// A stale remembered profile must not shadow the token's account.
	require.NoError(t, h.Controller.RememberUser(ctx, &domain.User{
		Name: "Other", Email: "other@example.com",
	}))

	req := httptest.NewRequest("GET", "/api/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, created.ID))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "casey@example.com", got.Email)
}

func TestMeFallsBackToRememberedProfile(t *testing.T) {
	h, _ := newTestAuthHandler(t)
	ctx := context.Background()

	require.NoError(t, h.Controller.RememberUser(ctx, &domain.User{
		Name: "Casey", Email: "casey@example.com",
	}))

	req := httptest.NewRequest("GET", "/api/me", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "casey@example.com", got.Email)
}

func TestMeWithoutProfileIs404(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	req := httptest.NewRequest("GET", "/api/me", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
