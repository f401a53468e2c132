package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"short kept whole", "Is this mole normal?", "Is this mole normal?"},
		{"exactly thirty runes", "123456789012345678901234567890", "123456789012345678901234567890"},
		{"truncated with ellipsis", "Hello there, how are you today my friend", "Hello there, how are you today…"},
		{"multibyte runes counted not bytes", "ábçdéfghíjklmnópqrstúvwxyzábçdéf", "ábçdéfghíjklmnópqrstúvwxyzábçd…"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveTitle(tc.content))
		})
	}
}

func TestHasDefaultTitle(t *testing.T) {
	c := &Conversation{Title: DefaultTitle}
	assert.True(t, c.HasDefaultTitle())

	c.Title = "Something else"
	assert.False(t, c.HasDefaultTitle())
}

func TestAvatarFor(t *testing.T) {
	assert.Equal(t, "J", AvatarFor("jordan"))
	assert.Equal(t, "É", AvatarFor("élise"))
	assert.Equal(t, "", AvatarFor(""))
}
