// File: internal/handlers/render.go
package handlers

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/skinai/go-skinai/internal/domain"
)

// markdown renders assistant replies, which arrive as markdown text.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// renderMarkdown converts assistant markdown to HTML. On render failure the
// raw text is returned so the client still sees the reply.
func renderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return source
	}
	return buf.String()
}

// messageDTO is the wire shape of a single chat message.
type messageDTO struct {
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	HTML      string `json:"html,omitempty"`
	Kind      string `json:"kind"`
	HasImage  bool   `json:"hasImage"`
	MimeType  string `json:"mimeType,omitempty"`
	Timestamp string `json:"timestamp"`
}

func toMessageDTO(m domain.Message) messageDTO {
	dto := messageDTO{
		Sender:    string(m.Sender),
		Content:   m.Content,
		Kind:      string(m.Kind),
		HasImage:  len(m.ImageData) > 0,
		MimeType:  m.MimeType,
		Timestamp: m.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if m.Sender == domain.SenderAssistant {
		dto.HTML = renderMarkdown(m.Content)
	}
	return dto
}
