package llm

import (
	"context"
	"fmt"
	"log"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// OpenAIProvider implements Provider against any OpenAI-compatible endpoint
// (api.openai.com or a local server speaking the same protocol).
type OpenAIProvider struct {
	apiKey   string
	baseURL  string
	defaults Defaults

	client      *openai.LLM // generation client; model chosen per call
	embedClient *openai.LLM // separate client bound to the active embedding model

	generationModelID string
	embeddingModelID  string
	embeddingSize     int
}

func NewOpenAIProvider(apiKey, baseURL string, defaults Defaults) (*OpenAIProvider, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	cl, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}
	return &OpenAIProvider{
		apiKey:   apiKey,
		baseURL:  baseURL,
		defaults: defaults,
		client:   cl,
	}, nil
}

func (p *OpenAIProvider) Close() error { return nil }

func (p *OpenAIProvider) SetGenerationModel(modelID string) {
	p.generationModelID = modelID
}

// SetEmbeddingModel rebuilds the embedding client around the requested model.
// On failure the previous embedding client stays active and generation is
// unaffected.
func (p *OpenAIProvider) SetEmbeddingModel(ctx context.Context, modelID string, embeddingSize int) error {
	if modelID == "" {
		log.Printf("openai: embedding model id is empty")
		return ErrNoEmbeddingModel
	}

	opts := []openai.Option{
		openai.WithToken(p.apiKey),
		openai.WithEmbeddingModel(modelID),
	}
	if p.baseURL != "" {
		opts = append(opts, openai.WithBaseURL(p.baseURL))
	}
	cl, err := openai.New(opts...)
	if err != nil {
		log.Printf("openai: failed to load embedding model %q: %v", modelID, err)
		return fmt.Errorf("load embedding model %q: %w", modelID, err)
	}

	p.embedClient = cl
	p.embeddingModelID = modelID
	p.embeddingSize = embeddingSize
	log.Printf("openai: loaded embedding model %q (dim %d)", modelID, embeddingSize)
	return nil
}

func (p *OpenAIProvider) ProcessText(text string) string {
	return processText(text, p.defaults.InputMaxChars)
}

func (p *OpenAIProvider) ConstructPrompt(prompt string, role string) Message {
	return Message{Role: role, Content: p.ProcessText(prompt)}
}

func (p *OpenAIProvider) GenerateText(ctx context.Context, prompt string, chatHistory []Message, maxOutputTokens int, temperature float64) (string, error) {
	if p.client == nil {
		log.Printf("openai: client was not set")
		return "", fmt.Errorf("openai client was not set")
	}
	if p.generationModelID == "" {
		log.Printf("openai: generation model was not set")
		return "", ErrNoGenerationModel
	}

	if maxOutputTokens <= 0 {
		maxOutputTokens = p.defaults.MaxOutputTokens
	}
	if temperature <= 0 {
		temperature = p.defaults.Temperature
	}

	turns := append(append([]Message{}, chatHistory...), p.ConstructPrompt(prompt, RoleUser))
	messages := make([]llms.MessageContent, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, llms.TextParts(chatMessageType(turn.Role), turn.Content))
	}

	resp, err := p.client.GenerateContent(ctx, messages,
		llms.WithModel(p.generationModelID),
		llms.WithMaxTokens(maxOutputTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		log.Printf("openai: error while generating text: %v", err)
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		log.Printf("openai: generation returned no choices")
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

// EmbedText embeds a single text. docType is accepted for interface parity
// but ignored: OpenAI embedding models do not distinguish query from
// document inputs.
func (p *OpenAIProvider) EmbedText(ctx context.Context, text string, _ DocumentType) ([]float32, error) {
	if p.embedClient == nil || p.embeddingModelID == "" {
		log.Printf("openai: embedding model was not set")
		return nil, ErrNoEmbeddingModel
	}

	vecs, err := p.embedClient.CreateEmbedding(ctx, []string{p.ProcessText(text)})
	if err != nil {
		log.Printf("openai: embedding failed: %v", err)
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		log.Printf("openai: embedding returned no values")
		return nil, ErrEmptyResponse
	}
	return vecs[0], nil
}

func chatMessageType(role string) schema.ChatMessageType {
	switch role {
	case RoleSystem:
		return schema.ChatMessageTypeSystem
	case RoleAssistant:
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}

var _ Provider = (*OpenAIProvider)(nil)
