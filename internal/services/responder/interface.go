// Package responder defines the reply-generation collaborator: given a user
// message or an uploaded image, asynchronously produce assistant text.
package responder

import "context"

// InputKind distinguishes the two inputs a responder accepts.
type InputKind string

const (
	InputText  InputKind = "text"
	InputImage InputKind = "image"
)

// Input is the text-or-image payload a reply is keyed on.
type Input struct {
	Kind     InputKind
	Text     string
	Image    []byte
	MimeType string
}

func TextInput(text string) Input {
	return Input{Kind: InputText, Text: text}
}

func ImageInput(data []byte, mimeType string) Input {
	return Input{Kind: InputImage, Image: data, MimeType: mimeType}
}

// Service produces a reply for the given input. Implementations must either
// return text or a non-nil error; failures are surfaced to the user by the
// caller, never dropped.
type Service interface {
	Reply(ctx context.Context, input Input) (string, error)
}

// Retriever supplies knowledge snippets relevant to a question. Providers
// that support retrieval-augmented replies accept one optionally.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]string, error)
}
