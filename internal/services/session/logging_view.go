package session

import (
	"github.com/skinai/go-skinai/internal/domain"
	"github.com/skinai/go-skinai/internal/services"
	"github.com/skinai/go-skinai/internal/services/conversation"
)

// LoggingView records each view notification through the service logger.
// The HTTP surface is pull-based, so this is the server-side observer of
// push notifications from the controller.
type LoggingView struct {
	logger services.Logger
}

func NewLoggingView(logger services.Logger) *LoggingView {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &LoggingView{logger: logger}
}

func (v *LoggingView) SessionListChanged(entries []conversation.ListEntry) {
	v.logger.Info("session list changed", "entries", len(entries))
}

func (v *LoggingView) ActiveSessionChanged(c *domain.Conversation) {
	if c == nil {
		return
	}
	v.logger.Info("active session changed", "conversation_id", c.ID)
}

func (v *LoggingView) MessageAppended(conversationID string, msg domain.Message) {
	v.logger.Info("message appended",
		"conversation_id", conversationID,
		"sender", string(msg.Sender),
		"kind", string(msg.Kind))
}

func (v *LoggingView) ValidationError(reason string) {
	v.logger.Warn("validation error", "reason", reason)
}

func (v *LoggingView) Loading(active bool) {
	v.logger.Info("loading state", "active", active)
}
