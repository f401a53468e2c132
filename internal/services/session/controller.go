// Package session tracks the single active conversation and orchestrates
// user intents that span the conversation store and external collaborators:
// reply generation, transcription, and voice capture.
package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/skinai/go-skinai/internal/domain"
	"github.com/skinai/go-skinai/internal/repository/state"
	"github.com/skinai/go-skinai/internal/services"
	"github.com/skinai/go-skinai/internal/services/conversation"
	"github.com/skinai/go-skinai/internal/services/responder"
	"github.com/skinai/go-skinai/internal/services/transcription"
)

// MaxImageBytes is the upload ceiling for image messages (5 MiB).
const MaxImageBytes = 5 * 1024 * 1024

const imageUploadCaption = "Uploaded an image for analysis"

// serviceFailureReply is appended as an assistant message when a collaborator
// call fails; failures are surfaced in the conversation, never dropped.
const serviceFailureReply = "Sorry, I couldn't generate a response just now. Please try again in a moment."

// VoiceState is the voice capture state machine: Idle or Capturing.
type VoiceState int

const (
	VoiceIdle VoiceState = iota
	VoiceCapturing
)

// Controller is the single source of truth for which conversation is active.
// Async collaborator calls never block the caller; replies are attributed to
// the conversation id captured at dispatch time.
type Controller struct {
	store       *conversation.Store
	state       state.StateRepository
	responder   responder.Service
	transcriber transcription.Service
	device      CaptureDevice
	view        View
	logger      services.Logger
	now         func() time.Time

	mu              sync.Mutex
	activeID        string
	pendingDeleteID string
	pendingInput    string
	voiceState      VoiceState
	capture         Capture
}

func NewController(
	store *conversation.Store,
	stateRepo state.StateRepository,
	responderSvc responder.Service,
	transcriber transcription.Service,
	device CaptureDevice,
	view View,
	logger services.Logger,
) (*Controller, error) {
	if store == nil {
		return nil, NewValidationError("conversation store is required")
	}
	if stateRepo == nil {
		return nil, NewValidationError("state repository is required")
	}
	if responderSvc == nil {
		return nil, NewValidationError("responder service is required")
	}
	if transcriber == nil {
		return nil, NewValidationError("transcription service is required")
	}
	if device == nil {
		device = RemoteCaptureDevice{}
	}
	if view == nil {
		view = NoOpView{}
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}

	return &Controller{
		store:       store,
		state:       stateRepo,
		responder:   responderSvc,
		transcriber: transcriber,
		device:      device,
		view:        view,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Bootstrap loads persisted history and establishes an active conversation:
// the head of the stored ordering when history exists, a fresh conversation
// otherwise.
func (c *Controller) Bootstrap(ctx context.Context) error {
	if err := c.store.Load(ctx); err != nil {
		return err
	}

	entries := c.store.List()
	for _, entry := range entries {
		if entry.Conversation != nil {
			c.view.SessionListChanged(entries)
			return c.SelectSession(entry.Conversation.ID)
		}
	}

	_, err := c.StartNewSession(ctx)
	return err
}

// StartNewSession creates a fresh conversation and makes it active. The view
// renders welcome content for it since the message list is empty.
func (c *Controller) StartNewSession(ctx context.Context) (*domain.Conversation, error) {
	conv, err := c.store.Create(ctx)

	c.mu.Lock()
	c.activeID = conv.ID
	c.mu.Unlock()

	c.view.ActiveSessionChanged(conv)
	c.view.SessionListChanged(c.store.List())
	return conv, err
}

// SelectSession makes an existing conversation active and re-renders it.
// Unknown ids are a silent no-op; selecting never mutates stored data.
func (c *Controller) SelectSession(conversationID string) error {
	conv, ok := c.store.Get(conversationID)
	if !ok {
		c.logger.Debug("select of unknown conversation ignored", "conversation_id", conversationID)
		return nil
	}

	c.mu.Lock()
	c.activeID = conv.ID
	c.mu.Unlock()

	c.view.ActiveSessionChanged(conv)
	return nil
}

// ActiveID returns the id of the active conversation, or empty transiently
// before the first conversation exists.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// SubmitUserText appends a user text message to the active conversation and
// requests a reply. Whitespace-only input is a no-op. The reply is appended
// to the conversation that was active at submit time even if the user
// switches conversations before it completes.
func (c *Controller) SubmitUserText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	convID, err := c.ensureActive(ctx)
	if err != nil {
		return err
	}

	msg := domain.NewTextMessage(domain.SenderUser, text, c.now())
	persistErr := c.store.AppendMessage(ctx, convID, msg)

	c.view.MessageAppended(convID, msg)
	c.view.SessionListChanged(c.store.List())

	c.dispatchReply(convID, responder.TextInput(text))
	return persistErr
}

// SubmitImage validates and appends a user image message, then requests an
// analysis reply. Violations surface a validation error and mutate nothing.
func (c *Controller) SubmitImage(ctx context.Context, data []byte, mimeType string) error {
	if !strings.HasPrefix(mimeType, "image/") {
		c.view.ValidationError("Please upload an image file")
		return NewValidationError("file is not an image")
	}
	if len(data) > MaxImageBytes {
		c.view.ValidationError("Image size should be less than 5MB")
		return NewValidationError("image exceeds the 5MB limit")
	}

	convID, err := c.ensureActive(ctx)
	if err != nil {
		return err
	}

	msg := domain.NewImageMessage(imageUploadCaption, data, mimeType, c.now())
	persistErr := c.store.AppendMessage(ctx, convID, msg)

	c.view.MessageAppended(convID, msg)
	c.view.SessionListChanged(c.store.List())

	c.dispatchReply(convID, responder.ImageInput(data, mimeType))
	return persistErr
}

// TogglePin delegates to the store and refreshes the list.
func (c *Controller) TogglePin(ctx context.Context, conversationID string) error {
	err := c.store.TogglePin(ctx, conversationID)
	c.view.SessionListChanged(c.store.List())
	return err
}

// RequestDelete is the first phase of deletion: it records the pending id
// and reports whether the conversation exists. The view runs its own
// confirmation UI and calls ConfirmDelete; the core never blocks on the
// user's answer.
func (c *Controller) RequestDelete(conversationID string) bool {
	if _, ok := c.store.Get(conversationID); !ok {
		return false
	}

	c.mu.Lock()
	c.pendingDeleteID = conversationID
	c.mu.Unlock()
	return true
}

// CancelDelete clears a pending delete request.
func (c *Controller) CancelDelete(conversationID string) {
	c.mu.Lock()
	if c.pendingDeleteID == conversationID {
		c.pendingDeleteID = ""
	}
	c.mu.Unlock()
}

// ConfirmDelete completes a previously requested deletion. When the deleted
// conversation was active, the next conversation in pinned-then-recency
// order becomes active, or a fresh one is created if none remain.
func (c *Controller) ConfirmDelete(ctx context.Context, conversationID string) error {
	c.mu.Lock()
	confirmed := c.pendingDeleteID == conversationID
	if confirmed {
		c.pendingDeleteID = ""
	}
	wasActive := c.activeID == conversationID
	c.mu.Unlock()

	if !confirmed {
		c.logger.Debug("unconfirmed delete ignored", "conversation_id", conversationID)
		return nil
	}

	result, err := c.store.Delete(ctx, conversationID)
	if !result.Deleted {
		return err
	}

	c.view.SessionListChanged(c.store.List())

	if wasActive {
		if result.NextActiveID != "" {
			if selErr := c.SelectSession(result.NextActiveID); selErr != nil && err == nil {
				err = selErr
			}
		} else {
			if _, newErr := c.StartNewSession(ctx); newErr != nil && err == nil {
				err = newErr
			}
		}
	}

	return err
}

// BeginVoiceCapture transitions Idle → Capturing. A denied device keeps the
// state in Idle and surfaces a notification.
func (c *Controller) BeginVoiceCapture(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.voiceState == VoiceCapturing {
		return nil
	}

	capture, err := c.device.Begin(ctx)
	if err != nil {
		c.logger.Warn("voice capture denied", "error", err)
		c.view.ValidationError("Microphone access denied")
		return ErrDeviceUnavailable
	}

	c.capture = capture
	c.voiceState = VoiceCapturing
	return nil
}

// EndVoiceCapture transitions Capturing → Idle unconditionally, then sends
// the captured audio for transcription. The transcript lands in the pending
// input buffer; the user must still confirm the send.
func (c *Controller) EndVoiceCapture(ctx context.Context, audio []byte) error {
	c.mu.Lock()
	if c.voiceState != VoiceCapturing {
		c.mu.Unlock()
		return nil
	}
	capture := c.capture
	c.capture = nil
	c.voiceState = VoiceIdle
	c.mu.Unlock()

	if capture != nil {
		capture.Stop()
	}

	c.view.Loading(true)
	go func() {
		text, err := c.transcriber.Transcribe(context.Background(), audio)
		if err != nil {
			c.logger.Error("transcription failed", "error", err)
			c.view.Loading(false)
			c.view.ValidationError("Could not transcribe the recording")
			return
		}

		c.mu.Lock()
		c.pendingInput = text
		c.mu.Unlock()
		c.view.Loading(false)
	}()

	return nil
}

// VoiceState reports the capture state machine's current state.
func (c *Controller) VoiceState() VoiceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voiceState
}

// PendingInput returns the transcribed text waiting in the input buffer.
func (c *Controller) PendingInput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingInput
}

// TakePendingInput returns and clears the pending input buffer.
func (c *Controller) TakePendingInput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	text := c.pendingInput
	c.pendingInput = ""
	return text
}

// SetSidebarCollapsed persists the sidebar preference.
func (c *Controller) SetSidebarCollapsed(ctx context.Context, collapsed bool) error {
	raw, _ := json.Marshal(collapsed)
	if err := c.state.Save(ctx, state.KeySidebarCollapsed, raw); err != nil {
		return conversation.NewPersistenceError("sidebar", err)
	}
	return nil
}

// SidebarCollapsed loads the persisted sidebar preference, defaulting to
// expanded.
func (c *Controller) SidebarCollapsed(ctx context.Context) bool {
	raw, err := c.state.Load(ctx, state.KeySidebarCollapsed)
	if err != nil {
		return false
	}
	var collapsed bool
	if json.Unmarshal(raw, &collapsed) != nil {
		return false
	}
	return collapsed
}

// RememberUser persists the signed-in user record.
func (c *Controller) RememberUser(ctx context.Context, u *domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return conversation.NewPersistenceError("remember_user", err)
	}
	if err := c.state.Save(ctx, state.KeyUser, raw); err != nil {
		return conversation.NewPersistenceError("remember_user", err)
	}
	return nil
}

// CurrentUser loads the persisted user record, if any.
func (c *Controller) CurrentUser(ctx context.Context) (*domain.User, bool) {
	raw, err := c.state.Load(ctx, state.KeyUser)
	if err != nil {
		return nil, false
	}
	var u domain.User
	if json.Unmarshal(raw, &u) != nil {
		return nil, false
	}
	return &u, true
}

// SignOut clears the stored user and the whole conversation history, then
// starts a fresh session, mirroring the logout flow of the app.
func (c *Controller) SignOut(ctx context.Context) error {
	if err := c.state.Delete(ctx, state.KeyUser); err != nil {
		return conversation.NewPersistenceError("sign_out", err)
	}
	if err := c.store.Reset(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.activeID = ""
	c.mu.Unlock()

	c.view.SessionListChanged(c.store.List())
	_, err := c.StartNewSession(ctx)
	return err
}

// ensureActive returns the active conversation id, creating a fresh session
// when none exists yet.
func (c *Controller) ensureActive(ctx context.Context) (string, error) {
	c.mu.Lock()
	convID := c.activeID
	c.mu.Unlock()

	if convID != "" {
		return convID, nil
	}

	conv, err := c.StartNewSession(ctx)
	if err != nil {
		return conv.ID, err
	}
	return conv.ID, nil
}

// dispatchReply requests a reply off the caller's goroutine. The user
// message is already appended, so per-conversation ordering holds; the
// completion appends to the conversation captured here regardless of which
// conversation is active by then. Collaborator failures become an
// assistant-visible error message.
func (c *Controller) dispatchReply(conversationID string, input responder.Input) {
	c.view.Loading(true)

	go func() {
		ctx := context.Background()

		text, err := c.responder.Reply(ctx, input)
		if err != nil {
			c.logger.Error("responder call failed", "conversation_id", conversationID, "error", err)
			text = serviceFailureReply
		}

		msg := domain.NewTextMessage(domain.SenderAssistant, text, c.now())
		if appendErr := c.store.AppendMessage(ctx, conversationID, msg); appendErr != nil {
			c.logger.Error("reply persistence failed", "conversation_id", conversationID, "error", appendErr)
		}

		c.view.Loading(false)
		c.view.MessageAppended(conversationID, msg)
	}()
}
