// File: internal/handlers/session_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/skinai/go-skinai/internal/services/conversation"
	"github.com/skinai/go-skinai/internal/services/session"
)

// maxUploadBytes bounds multipart parsing; the controller enforces the
// per-image limit on the decoded payload.
const maxUploadBytes = 8 << 20

// SessionHandler exposes the chat session intents over HTTP.
type SessionHandler struct {
	Controller *session.Controller
	Store      *conversation.Store
}

func NewSessionHandler(c *session.Controller, s *conversation.Store) *SessionHandler {
	return &SessionHandler{Controller: c, Store: s}
}

type listEntryDTO struct {
	Separator    bool   `json:"separator,omitempty"`
	ID           string `json:"id,omitempty"`
	Title        string `json:"title,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	IsPinned     bool   `json:"isPinned,omitempty"`
	MessageCount int    `json:"messageCount,omitempty"`
}

type conversationDTO struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	CreatedAt string       `json:"createdAt"`
	IsPinned  bool         `json:"isPinned"`
	Messages  []messageDTO `json:"messages"`
}

// ListSessions returns the sidebar: pinned conversations first, then a
// separator entry, then the rest by recency.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	entries := h.Store.List()
	dtos := make([]listEntryDTO, 0, len(entries))
	for _, e := range entries {
		if e.Separator {
			dtos = append(dtos, listEntryDTO{Separator: true})
			continue
		}
		c := e.Conversation
		dtos = append(dtos, listEntryDTO{
			ID:           c.ID,
			Title:        c.Title,
			CreatedAt:    c.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
			IsPinned:     c.IsPinned,
			MessageCount: len(c.Messages),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":         dtos,
		"activeId":         h.Controller.ActiveID(),
		"sidebarCollapsed": h.Controller.SidebarCollapsed(r.Context()),
	})
}

// CreateSession starts a fresh conversation and makes it active.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	conv, err := h.Controller.StartNewSession(r.Context())
	if err != nil {
		writeError(w, "Could not create session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, h.toConversationDTO(conv.ID))
}

// SelectSession switches the active conversation and returns its transcript.
func (h *SessionHandler) SelectSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := h.Store.Get(id); !ok {
		writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	if err := h.Controller.SelectSession(id); err != nil {
		writeError(w, "Could not select session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.toConversationDTO(id))
}

// GetSession returns a single conversation transcript without activating it.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	dto := h.toConversationDTO(mux.Vars(r)["id"])
	if dto == nil {
		writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// SubmitMessage sends user text to the active conversation. The assistant
// reply arrives asynchronously; clients poll the transcript or listen on the
// view callbacks.
func (h *SessionHandler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := h.Controller.SubmitUserText(r.Context(), req.Message); err != nil {
		writeError(w, "Could not submit message", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"conversationId": h.Controller.ActiveID(),
	})
}

// SubmitImage accepts a multipart image upload for the active conversation.
func (h *SessionHandler) SubmitImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeError(w, "Could not read upload", http.StatusBadRequest)
		return
	}

	if err := h.Controller.SubmitImage(r.Context(), data, header.Header.Get("Content-Type")); err != nil {
		var verr *session.ValidationError
		if errors.As(err, &verr) {
			writeError(w, verr.Reason, http.StatusBadRequest)
			return
		}
		writeError(w, "Could not submit image", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"conversationId": h.Controller.ActiveID(),
	})
}

// TogglePin flips the pinned flag on a conversation.
func (h *SessionHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.TogglePin(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, "Could not toggle pin", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSession implements the two-phase delete. Without confirm=1 it only
// arms the pending delete; with confirm=1 it removes the conversation.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.Controller.RequestDelete(id) {
		writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	if r.URL.Query().Get("confirm") != "1" {
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"confirmRequired": true,
			"id":              id,
		})
		return
	}

	if err := h.Controller.ConfirmDelete(r.Context(), id); err != nil {
		writeError(w, "Could not delete session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"activeId": h.Controller.ActiveID(),
	})
}

// CancelDelete disarms a pending delete.
func (h *SessionHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	h.Controller.CancelDelete(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// BeginVoice starts a capture session on the configured device.
func (h *SessionHandler) BeginVoice(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.BeginVoiceCapture(r.Context()); err != nil {
		if errors.Is(err, session.ErrDeviceUnavailable) {
			writeError(w, "Microphone access denied", http.StatusConflict)
			return
		}
		writeError(w, "Could not start capture", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EndVoice stops capture and hands the audio body to the transcriber. The
// transcript lands in the pending input buffer when ready.
func (h *SessionHandler) EndVoice(w http.ResponseWriter, r *http.Request) {
	audio, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, "Could not read audio", http.StatusBadRequest)
		return
	}
	if err := h.Controller.EndVoiceCapture(r.Context(), audio); err != nil {
		writeError(w, "Could not stop capture", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// PendingInput reports the buffered transcript. With take=1 the buffer is
// drained, mirroring the client pulling the text into its composer.
func (h *SessionHandler) PendingInput(w http.ResponseWriter, r *http.Request) {
	var text string
	if r.URL.Query().Get("take") == "1" {
		text = h.Controller.TakePendingInput()
	} else {
		text = h.Controller.PendingInput()
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// SetSidebar persists the sidebar collapsed preference.
func (h *SessionHandler) SetSidebar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Collapsed bool `json:"collapsed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := h.Controller.SetSidebarCollapsed(r.Context(), req.Collapsed); err != nil {
		writeError(w, "Could not save preference", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) toConversationDTO(id string) *conversationDTO {
	conv, ok := h.Store.Get(id)
	if !ok {
		return nil
	}
	msgs := make([]messageDTO, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		msgs = append(msgs, toMessageDTO(m))
	}
	return &conversationDTO{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		IsPinned:  conv.IsPinned,
		Messages:  msgs,
	}
}

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
