// File: internal/domain/conversation.go
package domain

import "time"

// DefaultTitle is the title every conversation starts with. Title derivation
// only ever fires while the title still equals this value.
const DefaultTitle = "New Conversation"

// TitleMaxRunes is the cut-off for titles derived from the first user message.
const TitleMaxRunes = 30

// Conversation represents a single thread of messages. IDs are opaque strings
// derived from creation time, unique and monotonically increasing within a store.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Messages  []Message `json:"messages"`
	IsPinned  bool      `json:"isPinned"`
}

// HasDefaultTitle reports whether the conversation title has not been derived yet.
func (c *Conversation) HasDefaultTitle() bool {
	return c.Title == DefaultTitle
}

// DeriveTitle builds a conversation title from the first user message:
// the first TitleMaxRunes characters, with an ellipsis when truncated.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= TitleMaxRunes {
		return content
	}
	return string(runes[:TitleMaxRunes]) + "…"
}
