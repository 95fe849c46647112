package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_Descriptions(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"plain", "taglines for a coffee shop", "taglines for a coffee shop"},
		{"multi-line brief", "product names\n\tshort, playful", "product names\n\tshort, playful"},
		{"pasted terminal colors", "\x1b[1mbold\x1b[0m headlines", "[1mbold[0m headlines"},
		{"stray nul from clipboard", "menu\x00 items", "menu items"},
		{"unicode kept", "títulos em português ☕", "títulos em português ☕"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.description)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput_RejectsOversizedDescription(t *testing.T) {
	brief := strings.Repeat("lorem ", DefaultMaxInputSize/6)
	_, err := SanitizeInput(brief)
	require.NoError(t, err)

	_, err = SanitizeInput(brief + strings.Repeat("x", DefaultMaxInputSize))
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestSanitizeInput_LimitFromEnvironment(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "16")

	_, err := SanitizeInput("hero headline")
	assert.NoError(t, err)
	_, err = SanitizeInput("hero headline and a subtitle")
	assert.ErrorIs(t, err, ErrInputTooLarge)

	t.Setenv(EnvMaxInputSize, "not-a-number")
	_, err = SanitizeInput("hero headline and a subtitle")
	assert.NoError(t, err, "an unparsable limit falls back to the default")
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := SanitizeInput("caf\xe9 names")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestSanitizeInputLimit(t *testing.T) {
	_, err := SanitizeInputLimit("button labels", 6)
	assert.ErrorIs(t, err, ErrInputTooLarge)
	assert.ErrorContains(t, err, "size=13 limit=6")

	got, err := SanitizeInputLimit("button\x1b labels", 0)
	require.NoError(t, err)
	assert.Equal(t, "button labels", got)
}
