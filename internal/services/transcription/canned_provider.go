package transcription

import (
	"context"
	"errors"
)

// CannedTranscript is the fixed text the stub provider returns for any
// captured audio.
const CannedTranscript = "Hello, I have a question about a mole on my arm that has been changing color recently."

// CannedProvider stands in for a real speech-to-text service. Empty audio is
// rejected so callers exercise the failure path too.
type CannedProvider struct{}

func NewCannedProvider() *CannedProvider {
	return &CannedProvider{}
}

func (p *CannedProvider) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(audio) == 0 {
		return "", errors.New("no audio captured")
	}
	return CannedTranscript, nil
}
