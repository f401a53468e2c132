// Package transcription defines the voice-to-text collaborator: given
// recorded audio bytes, asynchronously produce transcribed text.
package transcription

import "context"

type Service interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
