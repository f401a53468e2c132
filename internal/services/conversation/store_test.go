package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skinai/go-skinai/internal/domain"
	"github.com/skinai/go-skinai/internal/repository/state"
)

// memoryState is an in-memory StateRepository with a switchable save failure.
type memoryState struct {
	values   map[string][]byte
	failSave bool
}

func newMemoryState() *memoryState {
	return &memoryState{values: make(map[string][]byte)}
}

func (m *memoryState) Load(ctx context.Context, key string) ([]byte, error) {
	v, ok := m.values[key]
	if !ok {
		return nil, state.ErrKeyNotFound
	}
	return v, nil
}

func (m *memoryState) Save(ctx context.Context, key string, value []byte) error {
	if m.failSave {
		return errors.New("disk full")
	}
	m.values[key] = value
	return nil
}

func (m *memoryState) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func newTestStore(t *testing.T) (*Store, *memoryState) {
	t.Helper()
	repo := newMemoryState()
	store, err := NewStore(repo, nil)
	require.NoError(t, err)
	return store, repo
}

// setClock pins the store clock to a fixed instant.
func setClock(s *Store, at time.Time) {
	s.now = func() time.Time { return at }
}

func TestCreateAssignsUniqueIDsOnStalledClock(t *testing.T) {
	store, _ := newTestStore(t)
	setClock(store, time.UnixMilli(1700000000000))
	ctx := context.Background()

	a, err := store.Create(ctx)
	require.NoError(t, err)
	b, err := store.Create(ctx)
	require.NoError(t, err)
	c, err := store.Create(ctx)
	require.NoError(t, err)

	assert.Equal(t, "1700000000000", a.ID)
	assert.Equal(t, "1700000000001", b.ID)
	assert.Equal(t, "1700000000002", c.ID)
}

func TestCreateInsertsAtHead(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	setClock(store, time.UnixMilli(1000))
	first, err := store.Create(ctx)
	require.NoError(t, err)

	setClock(store, time.UnixMilli(2000))
	second, err := store.Create(ctx)
	require.NoError(t, err)

	entries := store.List()
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].Conversation.ID)
	assert.Equal(t, first.ID, entries[1].Conversation.ID)
}

func TestAppendMessageToUnknownIDIsNoOp(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx)
	require.NoError(t, err)
	savedBefore := string(repo.values[state.KeyConversations])

	err = store.AppendMessage(ctx, "no-such-id", domain.NewTextMessage(domain.SenderUser, "hello", time.Now()))
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, savedBefore, string(repo.values[state.KeyConversations]))
}

func TestTitleDerivedFromFirstUserTextMessage(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	conv, err := store.Create(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.DefaultTitle, conv.Title)

	long := "Hello there, how are you today my friend"
	require.NoError(t, store.AppendMessage(ctx, conv.ID,
		domain.NewTextMessage(domain.SenderUser, long, time.Now())))

	got, ok := store.Get(conv.ID)
	require.True(t, ok)
	assert.Equal(t, "Hello there, how are you today…", got.Title)
}

func TestShortTitleKeptWhole(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	conv, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(ctx, conv.ID,
		domain.NewTextMessage(domain.SenderUser, "Is this mole normal?", time.Now())))

	got, _ := store.Get(conv.ID)
	assert.Equal(t, "Is this mole normal?", got.Title)
}

func TestTitleNotRederivedOnLaterMessages(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	conv, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(ctx, conv.ID,
		domain.NewTextMessage(domain.SenderUser, "First question", time.Now())))
	require.NoError(t, store.AppendMessage(ctx, conv.ID,
		domain.NewTextMessage(domain.SenderUser, "Second question entirely", time.Now())))

	got, _ := store.Get(conv.ID)
	assert.Equal(t, "First question", got.Title)
}

func TestTitleNotDerivedFromAssistantOrImage(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	conv, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(ctx, conv.ID,
		domain.NewTextMessage(domain.SenderAssistant, "Welcome back", time.Now())))

	got, _ := store.Get(conv.ID)
	assert.Equal(t, domain.DefaultTitle, got.Title)

	conv2, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(ctx, conv2.ID,
		domain.NewImageMessage("Uploaded an image for analysis", []byte{0x89}, "image/png", time.Now())))

	got2, _ := store.Get(conv2.ID)
	assert.Equal(t, domain.DefaultTitle, got2.Title)
}

func TestTitleDerivedFromFirstUserTextAfterEarlierMessages(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	conv, err := store.Create(ctx)
	require.NoError(t, err)

	// An image upload and its analysis land first; the title stays default.
	require.NoError(t, store.AppendMessage(ctx, conv.ID,
		domain.NewImageMessage("Uploaded an image for analysis", []byte{0x89}, "image/png", time.Now())))
	require.NoError(t, store.AppendMessage(ctx, conv.ID,
		domain.NewTextMessage(domain.SenderAssistant, "Here is my assessment", time.Now())))

	got, _ := store.Get(conv.ID)
	require.Equal(t, domain.DefaultTitle, got.Title)

	// The first user text still derives the title.
	require.NoError(t, store.AppendMessage(ctx, conv.ID,
		domain.NewTextMessage(domain.SenderUser, "Is this mole dangerous?", time.Now())))

	got, _ = store.Get(conv.ID)
	assert.Equal(t, "Is this mole dangerous?", got.Title)
}

func TestListOrdersPinnedThenSeparatorThenRecent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	setClock(store, time.UnixMilli(1000))
	a, err := store.Create(ctx)
	require.NoError(t, err)

	setClock(store, time.UnixMilli(2000))
	b, err := store.Create(ctx)
	require.NoError(t, err)

	setClock(store, time.UnixMilli(3000))
	c, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, store.TogglePin(ctx, b.ID))
	require.NoError(t, store.TogglePin(ctx, c.ID))

	entries := store.List()
	require.Len(t, entries, 4)
	assert.Equal(t, c.ID, entries[0].Conversation.ID)
	assert.Equal(t, b.ID, entries[1].Conversation.ID)
	assert.True(t, entries[2].Separator)
	assert.Equal(t, a.ID, entries[3].Conversation.ID)
}

func TestListOmitsSeparatorForSingleGroup(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx)
	require.NoError(t, err)
	_, err = store.Create(ctx)
	require.NoError(t, err)

	for _, e := range store.List() {
		assert.False(t, e.Separator)
	}

	require.NoError(t, store.TogglePin(ctx, a.ID))
	require.NoError(t, store.TogglePin(ctx, a.ID)) // back to unpinned

	for _, e := range store.List() {
		assert.False(t, e.Separator)
	}
}

func TestDeleteReturnsNextSortHead(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	setClock(store, time.UnixMilli(1000))
	a, err := store.Create(ctx)
	require.NoError(t, err)
	setClock(store, time.UnixMilli(2000))
	b, err := store.Create(ctx)
	require.NoError(t, err)
	setClock(store, time.UnixMilli(3000))
	c, err := store.Create(ctx)
	require.NoError(t, err)

	res, err := store.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Equal(t, b.ID, res.NextActiveID)

	res, err = store.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, res.NextActiveID)

	res, err = store.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Empty(t, res.NextActiveID)
	assert.Zero(t, store.Len())
}

func TestDeleteUnknownIDIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx)
	require.NoError(t, err)

	res, err := store.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, res.Deleted)
	assert.Equal(t, 1, store.Len())
}

func TestLoadRoundTripAndLegacyPinField(t *testing.T) {
	repo := newMemoryState()
	ctx := context.Background()

	// A record written before pinning existed carries no isPinned field.
	legacy := []map[string]interface{}{
		{
			"id":        "1690000000000",
			"title":     "Older chat",
			"createdAt": time.UnixMilli(1690000000000).Format(time.RFC3339Nano),
		},
	}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, state.KeyConversations, raw))

	store, err := NewStore(repo, nil)
	require.NoError(t, err)
	require.NoError(t, store.Load(ctx))

	got, ok := store.Get("1690000000000")
	require.True(t, ok)
	assert.False(t, got.IsPinned)
	assert.NotNil(t, got.Messages)
	assert.Empty(t, got.Messages)
}

func TestLoadSeedsIDGeneratorPastStoredIDs(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	setClock(store, time.UnixMilli(5000))
	old, err := store.Create(ctx)
	require.NoError(t, err)

	reloaded, err := NewStore(repo, nil)
	require.NoError(t, err)
	require.NoError(t, reloaded.Load(ctx))
	setClock(reloaded, time.UnixMilli(4000)) // clock behind the stored id

	fresh, err := reloaded.Create(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, fresh.ID)
	assert.Equal(t, "5001", fresh.ID)
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	conv, err := store.Create(ctx)
	require.NoError(t, err)

	repo.failSave = true
	err = store.AppendMessage(ctx, conv.ID,
		domain.NewTextMessage(domain.SenderUser, "still here", time.Now()))

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "save", perr.Operation)

	got, ok := store.Get(conv.ID)
	require.True(t, ok)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "still here", got.Messages[0].Content)
}

func TestSnapshotsAreIsolatedFromStore(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	conv, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(ctx, conv.ID,
		domain.NewTextMessage(domain.SenderUser, "original", time.Now())))

	got, _ := store.Get(conv.ID)
	got.Title = "mutated"
	got.Messages[0].Content = "mutated"

	again, _ := store.Get(conv.ID)
	assert.NotEqual(t, "mutated", again.Title)
	assert.Equal(t, "original", again.Messages[0].Content)
}

func TestResetDropsCollectionAndRecord(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Reset(ctx))

	assert.Zero(t, store.Len())
	_, ok := repo.values[state.KeyConversations]
	assert.False(t, ok)
}
