package session

import (
	"github.com/skinai/go-skinai/internal/domain"
	"github.com/skinai/go-skinai/internal/services/conversation"
)

// WelcomeMessage is the static content a view renders for a conversation
// with no messages. It is never part of the stored message history.
const WelcomeMessage = `Welcome to SkinAI. I'm your AI assistant for skin health analysis. You can upload images of skin conditions for analysis, ask questions about skin health, get personalized recommendations, and record voice messages for easier interaction.

This AI assistant is for informational purposes only and should not replace professional medical advice.`

// View is the presentation collaborator. The core calls these notifications
// after state changes; it never reads anything back from the view.
type View interface {
	SessionListChanged(entries []conversation.ListEntry)
	ActiveSessionChanged(c *domain.Conversation)
	MessageAppended(conversationID string, msg domain.Message)
	ValidationError(reason string)
	Loading(active bool)
}

// NoOpView discards all notifications. Used as the default when no view is
// attached and by tests that only care about return values.
type NoOpView struct{}

func (NoOpView) SessionListChanged(entries []conversation.ListEntry)       {}
func (NoOpView) ActiveSessionChanged(c *domain.Conversation)               {}
func (NoOpView) MessageAppended(conversationID string, msg domain.Message) {}
func (NoOpView) ValidationError(reason string)                             {}
func (NoOpView) Loading(active bool)                                       {}
