package state

import (
	"context"
	"errors"
	"time"
)

// Well-known keys for the single logical record set the app persists.
const (
	KeyUser             = "skinai_user"
	KeyConversations    = "skinai_chats"
	KeySidebarCollapsed = "skinai_sidebar_collapsed"
)

var ErrKeyNotFound = errors.New("state key not found")

// Record is one durable key/value entry. Values are typed JSON blobs owned
// by the caller; this layer never inspects them.
type Record struct {
	Key       string `gorm:"primarykey;size:64"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// StateRepository is the durable key/value storage abstraction behind the
// conversation store and session controller. Writes are synchronous: when
// Save returns, the value is durable (or the error says it is not).
type StateRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
