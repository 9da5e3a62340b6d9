package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/markdave123-py/ragstore/internal/config"
)

// Backend identifiers accepted in LLM_BACKEND.
const (
	BackendGemini = "gemini"
	BackendOpenAI = "openai"
)

// NewProvider builds the configured provider variant and applies the
// configured model selection. A failed embedding-model load is logged inside
// the variant and returned, but the provider is still handed back usable for
// generation; callers decide whether that is fatal.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	defaults := Defaults{
		InputMaxChars:   cfg.InputMaxChars,
		MaxOutputTokens: cfg.GenerationMaxOut,
		Temperature:     cfg.GenerationTemp,
	}

	var (
		provider Provider
		err      error
	)
	switch strings.ToLower(cfg.LLMBackend) {
	case BackendGemini, "":
		provider, err = NewGeminiProvider(ctx, cfg.GeminiAPIKey, defaults)
	case BackendOpenAI:
		provider, err = NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, defaults)
	default:
		return nil, fmt.Errorf("unknown LLM backend %q", cfg.LLMBackend)
	}
	if err != nil {
		return nil, err
	}

	provider.SetGenerationModel(cfg.GenerationModel)
	if embedErr := provider.SetEmbeddingModel(ctx, cfg.EmbeddingModel, cfg.EmbeddingDim); embedErr != nil {
		// Generation stays available; embedding calls will keep failing until
		// a later SetEmbeddingModel succeeds.
		return provider, embedErr
	}
	return provider, nil
}
