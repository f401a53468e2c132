package transcription

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCannedTranscribe(t *testing.T) {
	provider := NewCannedProvider()

	got, err := provider.Transcribe(context.Background(), []byte("audio"))
	require.NoError(t, err)
	assert.Equal(t, CannedTranscript, got)
}

func TestCannedTranscribeRejectsEmptyAudio(t *testing.T) {
	provider := NewCannedProvider()

	_, err := provider.Transcribe(context.Background(), nil)
	assert.Error(t, err)
}

func TestCannedTranscribeHonorsCancelledContext(t *testing.T) {
	provider := NewCannedProvider()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.Transcribe(ctx, []byte("audio"))
	assert.ErrorIs(t, err, context.Canceled)
}
