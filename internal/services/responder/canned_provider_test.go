package responder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCannedKeywordRouting(t *testing.T) {
	provider := NewCannedProvider()
	ctx := context.Background()

	cases := []struct {
		name string
		text string
		want string
	}{
		{"skin keyword", "I have a skin problem", skinConcernReply},
		{"rash keyword", "This RASH appeared yesterday", skinConcernReply},
		{"mole keyword", "should I worry about this mole?", skinConcernReply},
		{"upload keyword", "how do I upload a file?", uploadHelpReply},
		{"photo keyword", "can I send a photo", uploadHelpReply},
		{"greeting", "Hello there", greetingReply},
		{"fallback", "what's the weather like", fallbackReply},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := provider.Reply(ctx, TextInput(tc.text))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCannedSkinKeywordWinsOverUpload(t *testing.T) {
	provider := NewCannedProvider()

	got, err := provider.Reply(context.Background(), TextInput("can I upload a photo of my skin?"))
	require.NoError(t, err)
	assert.Equal(t, skinConcernReply, got)
}

func TestCannedImageInputGetsAnalysisReply(t *testing.T) {
	provider := NewCannedProvider()

	got, err := provider.Reply(context.Background(), ImageInput([]byte{0x89, 0x50}, "image/png"))
	require.NoError(t, err)
	assert.Equal(t, imageAnalysisReply, got)
}

func TestCannedDelayHonorsContextCancellation(t *testing.T) {
	provider := &CannedProvider{Delay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.Reply(ctx, TextInput("hello"))
	assert.ErrorIs(t, err, context.Canceled)
}
