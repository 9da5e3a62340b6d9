// Package llm abstracts text-generation and embedding vendors behind one
// capability interface, so swapping vendors is a configuration change rather
// than a code change in callers.
package llm

import (
	"context"
	"errors"
	"strings"
)

// Chat roles as callers see them. Each variant maps these onto whatever the
// vendor SDK expects (Gemini calls the assistant role "model", for example).
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DocumentType distinguishes query-side from document-side embeddings for
// vendors whose models differentiate them. Variants without the distinction
// ignore it.
type DocumentType string

const (
	DocumentTypeDocument DocumentType = "document"
	DocumentTypeQuery    DocumentType = "query"
)

// Message is one chat turn. Content has already been through ProcessText when
// the message was built via ConstructPrompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Failure values shared by all variants. Provider calls return these instead
// of panicking; callers treat any non-nil error as "no result".
var (
	ErrNoGenerationModel = errors.New("generation model was not set")
	ErrNoEmbeddingModel  = errors.New("embedding model was not set")
	ErrEmptyResponse     = errors.New("provider returned an empty response")
)

// Provider is the vendor-agnostic generation/embedding capability.
//
// GenerateText appends prompt to chatHistory as a user turn before the call.
// maxOutputTokens and temperature fall back to the provider defaults when
// zero. EmbedText requires a prior successful SetEmbeddingModel.
type Provider interface {
	SetGenerationModel(modelID string)
	SetEmbeddingModel(ctx context.Context, modelID string, embeddingSize int) error

	GenerateText(ctx context.Context, prompt string, chatHistory []Message, maxOutputTokens int, temperature float64) (string, error)
	EmbedText(ctx context.Context, text string, docType DocumentType) ([]float32, error)

	ConstructPrompt(prompt string, role string) Message
	ProcessText(text string) string

	Close() error
}

// Defaults carries per-provider tuning applied when callers omit parameters.
type Defaults struct {
	InputMaxChars   int
	MaxOutputTokens int
	Temperature     float64
}

// processText truncates to maxChars characters and trims surrounding
// whitespace. Applied to every prompt and chat turn before transmission.
func processText(text string, maxChars int) string {
	if maxChars > 0 {
		if r := []rune(text); len(r) > maxChars {
			text = string(r[:maxChars])
		}
	}
	return strings.TrimSpace(text)
}
