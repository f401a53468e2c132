// Package conversation owns the ordered collection of conversations and its
// invariants: unique time-derived ids, once-only title derivation, pinned
// before unpinned ordering, and synchronous persistence after every mutation.
package conversation

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/skinai/go-skinai/internal/domain"
	"github.com/skinai/go-skinai/internal/repository/state"
	"github.com/skinai/go-skinai/internal/services"
)

// ListEntry is one row of the sidebar listing. A separator entry divides the
// pinned group from the unpinned group and carries no conversation.
type ListEntry struct {
	Separator    bool
	Conversation *domain.Conversation
}

// DeleteResult reports the outcome of removing a conversation. NextActiveID
// is the id of the new head of the pinned-then-recency order, or empty when
// the store became empty; callers use it when the deleted conversation was
// the active one.
type DeleteResult struct {
	Deleted      bool
	NextActiveID string
}

// Store holds the full conversation collection in memory and mirrors every
// mutation to the state repository. All methods are safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	state  state.StateRepository
	logger services.Logger
	now    func() time.Time

	conversations []*domain.Conversation
	lastID        int64
}

func NewStore(stateRepo state.StateRepository, logger services.Logger) (*Store, error) {
	if stateRepo == nil {
		return nil, NewValidationError("constructor", "state repository is required")
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}

	return &Store{
		state:  stateRepo,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Load reads the persisted collection. A missing record means a fresh
// install and leaves the store empty. Legacy records written before pinning
// existed deserialize with IsPinned=false; the normalization happens here,
// once, not on every read.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.state.Load(ctx, state.KeyConversations)
	if err != nil {
		if err == state.ErrKeyNotFound {
			s.conversations = nil
			return nil
		}
		return NewPersistenceError("load", err)
	}

	var loaded []*domain.Conversation
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return NewPersistenceError("load", err)
	}

	for _, c := range loaded {
		if c.Messages == nil {
			c.Messages = []domain.Message{}
		}
		if id, parseErr := strconv.ParseInt(c.ID, 10, 64); parseErr == nil && id > s.lastID {
			s.lastID = id
		}
	}

	s.conversations = loaded
	s.logger.Info("conversation history loaded", "count", len(loaded))
	return nil
}

// Create inserts a fresh unpinned conversation at the head of the collection
// and persists. The returned value is a snapshot safe to hand to callers.
func (s *Store) Create(ctx context.Context) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &domain.Conversation{
		ID:        s.nextIDLocked(),
		Title:     domain.DefaultTitle,
		CreatedAt: s.now(),
		Messages:  []domain.Message{},
	}
	s.conversations = append([]*domain.Conversation{c}, s.conversations...)

	saveErr := s.saveLocked(ctx)
	return snapshot(c), saveErr
}

// AppendMessage appends to the identified conversation. An unknown id is a
// silent no-op. While the title is still the default, the first user-authored
// text message derives it, even when image or assistant messages came before;
// replacing the default means derivation fires at most once.
func (s *Store) AppendMessage(ctx context.Context, conversationID string, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findLocked(conversationID)
	if c == nil {
		s.logger.Debug("append to unknown conversation ignored", "conversation_id", conversationID)
		return nil
	}

	c.Messages = append(c.Messages, msg)

	if msg.Sender == domain.SenderUser && msg.Kind == domain.KindText && c.HasDefaultTitle() {
		c.Title = domain.DeriveTitle(msg.Content)
	}

	return s.saveLocked(ctx)
}

// TogglePin flips the pinned flag. Unknown ids are a silent no-op.
func (s *Store) TogglePin(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findLocked(conversationID)
	if c == nil {
		s.logger.Debug("pin toggle on unknown conversation ignored", "conversation_id", conversationID)
		return nil
	}

	c.IsPinned = !c.IsPinned
	return s.saveLocked(ctx)
}

// Delete removes the conversation and persists. The result always carries
// the id of the new sort head so the caller can reassign the active
// conversation when needed.
func (s *Store) Delete(ctx context.Context, conversationID string) (DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.conversations {
		if c.ID == conversationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return DeleteResult{}, nil
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)

	result := DeleteResult{Deleted: true}
	if sorted := s.sortedLocked(); len(sorted) > 0 {
		result.NextActiveID = sorted[0].ID
	}

	return result, s.saveLocked(ctx)
}

// List returns pinned conversations newest-first, a separator, then unpinned
// conversations newest-first. When either group is empty the separator is
// omitted. Order among exact createdAt ties is unspecified beyond the
// stability of the sort.
func (s *Store) List() []ListEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := s.sortedLocked()

	var pinned, unpinned []*domain.Conversation
	for _, c := range sorted {
		if c.IsPinned {
			pinned = append(pinned, c)
		} else {
			unpinned = append(unpinned, c)
		}
	}

	entries := make([]ListEntry, 0, len(sorted)+1)
	for _, c := range pinned {
		entries = append(entries, ListEntry{Conversation: snapshot(c)})
	}
	if len(pinned) > 0 && len(unpinned) > 0 {
		entries = append(entries, ListEntry{Separator: true})
	}
	for _, c := range unpinned {
		entries = append(entries, ListEntry{Conversation: snapshot(c)})
	}

	return entries
}

// Get returns a snapshot of the identified conversation.
func (s *Store) Get(conversationID string) (*domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findLocked(conversationID)
	if c == nil {
		return nil, false
	}
	return snapshot(c), true
}

// Len reports how many conversations the store holds.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// Save persists the full collection.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

// Reset drops the whole collection and its durable record. Used on sign-out.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = nil
	if err := s.state.Delete(ctx, state.KeyConversations); err != nil {
		return NewPersistenceError("reset", err)
	}
	return nil
}

// nextIDLocked derives a unique id from the current time in milliseconds,
// bumping past the last issued id when the clock has not advanced.
func (s *Store) nextIDLocked() string {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *Store) findLocked(conversationID string) *domain.Conversation {
	for _, c := range s.conversations {
		if c.ID == conversationID {
			return c
		}
	}
	return nil
}

// sortedLocked returns the collection in pinned-first order, newest first
// within each group.
func (s *Store) sortedLocked() []*domain.Conversation {
	sorted := make([]*domain.Conversation, len(s.conversations))
	copy(sorted, s.conversations)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsPinned != sorted[j].IsPinned {
			return sorted[i].IsPinned
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

// saveLocked serializes the full collection and writes it through the state
// repository. On failure the in-memory state stays authoritative until the
// next successful save.
func (s *Store) saveLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.conversations)
	if err != nil {
		return NewPersistenceError("save", err)
	}

	if err := s.state.Save(ctx, state.KeyConversations, raw); err != nil {
		s.logger.Error("conversation history save failed", "error", err)
		return NewPersistenceError("save", err)
	}

	return nil
}

// snapshot deep-copies a conversation so callers cannot mutate store state.
func snapshot(c *domain.Conversation) *domain.Conversation {
	out := *c
	out.Messages = make([]domain.Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return &out
}
