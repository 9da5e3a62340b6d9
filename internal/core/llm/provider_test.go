package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		maxChars int
		want     string
	}{
		{"truncates long input", strings.Repeat("a", 50), 10, strings.Repeat("a", 10)},
		{"trims whitespace", "  hello world  ", 100, "hello world"},
		{"trims after truncation", "abcde   tail", 8, "abcde"},
		{"zero max keeps everything", " keep me ", 0, "keep me"},
		{"empty input", "", 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, processText(tt.in, tt.maxChars))
		})
	}
}

func TestConstructPrompt(t *testing.T) {
	p, err := NewOpenAIProvider("test-key", "", Defaults{InputMaxChars: 5})
	require.NoError(t, err)

	msg := p.ConstructPrompt("  hello there  ", RoleUser)
	assert.Equal(t, RoleUser, msg.Role)
	// Truncation runs before the trim, exactly like every transmitted turn.
	assert.Equal(t, "hel", msg.Content)
}

func TestOpenAI_GenerateBeforeModelSet(t *testing.T) {
	p, err := NewOpenAIProvider("test-key", "", Defaults{})
	require.NoError(t, err)

	out, err := p.GenerateText(context.Background(), "hi", nil, 0, 0)
	assert.ErrorIs(t, err, ErrNoGenerationModel)
	assert.Empty(t, out)
}

func TestOpenAI_EmbedBeforeModelSet(t *testing.T) {
	p, err := NewOpenAIProvider("test-key", "", Defaults{})
	require.NoError(t, err)

	vec, err := p.EmbedText(context.Background(), "hi", DocumentTypeDocument)
	assert.ErrorIs(t, err, ErrNoEmbeddingModel)
	assert.Nil(t, vec)
}

func TestOpenAI_SetEmbeddingModelEmptyID(t *testing.T) {
	p, err := NewOpenAIProvider("test-key", "", Defaults{})
	require.NoError(t, err)

	err = p.SetEmbeddingModel(context.Background(), "", 768)
	assert.ErrorIs(t, err, ErrNoEmbeddingModel)

	// A failed selection leaves the provider otherwise usable.
	_, err = p.GenerateText(context.Background(), "hi", nil, 0, 0)
	assert.ErrorIs(t, err, ErrNoGenerationModel)
}

func TestGemini_FailsWithoutClientOrModels(t *testing.T) {
	g := &GeminiProvider{defaults: Defaults{InputMaxChars: 100}}

	out, err := g.GenerateText(context.Background(), "hi", nil, 0, 0)
	assert.Error(t, err)
	assert.Empty(t, out)

	vec, err := g.EmbedText(context.Background(), "hi", DocumentTypeQuery)
	assert.ErrorIs(t, err, ErrNoEmbeddingModel)
	assert.Nil(t, vec)
}

func TestChatMessageTypeMapping(t *testing.T) {
	assert.Equal(t, "system", string(chatMessageType(RoleSystem)))
	assert.Equal(t, "ai", string(chatMessageType(RoleAssistant)))
	assert.Equal(t, "human", string(chatMessageType(RoleUser)))
	assert.Equal(t, "human", string(chatMessageType("anything-else")))
}
