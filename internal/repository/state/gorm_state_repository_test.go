package state

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) StateRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Record{}))
	return NewStateRepository(db)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, KeyUser, []byte(`{"name":"A"}`)))

	got, err := repo.Load(ctx, KeyUser)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"A"}`, string(got))
}

func TestSaveOverwritesExistingKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, KeySidebarCollapsed, []byte("false")))
	require.NoError(t, repo.Save(ctx, KeySidebarCollapsed, []byte("true")))

	got, err := repo.Load(ctx, KeySidebarCollapsed)
	require.NoError(t, err)
	assert.Equal(t, "true", string(got))
}

func TestLoadMissingKeyReturnsNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Load(context.Background(), KeyConversations)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDeleteRemovesKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, KeyConversations, []byte("[]")))
	require.NoError(t, repo.Delete(ctx, KeyConversations))

	_, err := repo.Load(ctx, KeyConversations)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDeleteAbsentKeyIsNotAnError(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Delete(context.Background(), KeyUser))
}

func TestEmptyKeyRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Load(ctx, "")
	assert.Error(t, err)
	assert.Error(t, repo.Save(ctx, "", []byte("x")))
	assert.Error(t, repo.Delete(ctx, ""))
}
