// File: internal/domain/message.go
package domain

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// MessageKind distinguishes plain text messages from image uploads.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
)

// Message is a single entry within a conversation. ImageData is present
// iff Kind is KindImage. Content may contain simple markdown.
type Message struct {
	Sender    Sender      `json:"sender"`
	Content   string      `json:"content"`
	Kind      MessageKind `json:"kind"`
	ImageData []byte      `json:"imageData,omitempty"`
	MimeType  string      `json:"mimeType,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewTextMessage builds a text message stamped with the given time.
func NewTextMessage(sender Sender, content string, at time.Time) Message {
	return Message{
		Sender:    sender,
		Content:   content,
		Kind:      KindText,
		Timestamp: at,
	}
}

// NewImageMessage builds an image upload message. The content carries the
// caption shown alongside the embedded payload.
func NewImageMessage(content string, data []byte, mimeType string, at time.Time) Message {
	return Message{
		Sender:    SenderUser,
		Content:   content,
		Kind:      KindImage,
		ImageData: data,
		MimeType:  mimeType,
		Timestamp: at,
	}
}
