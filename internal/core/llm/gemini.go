package llm

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements Provider on top of the hosted Gemini API for both
// generation and embeddings.
type GeminiProvider struct {
	client   *genai.Client
	defaults Defaults

	generationModelID string
	embeddingModelID  string
	embeddingSize     int
}

func NewGeminiProvider(ctx context.Context, apiKey string, defaults Defaults) (*GeminiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiProvider{client: cl, defaults: defaults}, nil
}

func (g *GeminiProvider) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiProvider) SetGenerationModel(modelID string) {
	g.generationModelID = modelID
}

// SetEmbeddingModel records the model and probes it with a one-token embed so
// a missing model surfaces now instead of on the first real call. A failed
// probe leaves the previous selection (and generation) untouched.
func (g *GeminiProvider) SetEmbeddingModel(ctx context.Context, modelID string, embeddingSize int) error {
	if modelID == "" {
		log.Printf("gemini: embedding model id is empty")
		return ErrNoEmbeddingModel
	}

	em := g.client.EmbeddingModel(modelID)
	if _, err := em.EmbedContent(ctx, genai.Text("ping")); err != nil {
		log.Printf("gemini: failed to load embedding model %q: %v", modelID, err)
		return fmt.Errorf("load embedding model %q: %w", modelID, err)
	}

	g.embeddingModelID = modelID
	g.embeddingSize = embeddingSize
	log.Printf("gemini: loaded embedding model %q (dim %d)", modelID, embeddingSize)
	return nil
}

func (g *GeminiProvider) ProcessText(text string) string {
	return processText(text, g.defaults.InputMaxChars)
}

func (g *GeminiProvider) ConstructPrompt(prompt string, role string) Message {
	return Message{Role: role, Content: g.ProcessText(prompt)}
}

// GenerateText sends chatHistory plus the prompt (as the final user turn) to
// the generation model. System turns in the history become the model's system
// instruction.
func (g *GeminiProvider) GenerateText(ctx context.Context, prompt string, chatHistory []Message, maxOutputTokens int, temperature float64) (string, error) {
	if g.client == nil {
		log.Printf("gemini: client was not set")
		return "", fmt.Errorf("gemini client was not set")
	}
	if g.generationModelID == "" {
		log.Printf("gemini: generation model was not set")
		return "", ErrNoGenerationModel
	}

	if maxOutputTokens <= 0 {
		maxOutputTokens = g.defaults.MaxOutputTokens
	}
	if temperature <= 0 {
		temperature = g.defaults.Temperature
	}

	m := g.client.GenerativeModel(g.generationModelID)
	m.SetMaxOutputTokens(int32(maxOutputTokens))
	m.SetTemperature(float32(temperature))

	cs := m.StartChat()
	for _, turn := range chatHistory {
		switch turn.Role {
		case RoleSystem:
			m.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(turn.Content)},
			}
		case RoleAssistant:
			cs.History = append(cs.History, &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text(turn.Content)},
			})
		default:
			cs.History = append(cs.History, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(turn.Content)},
			})
		}
	}

	userTurn := g.ConstructPrompt(prompt, RoleUser)
	resp, err := cs.SendMessage(ctx, genai.Text(userTurn.Content))
	if err != nil {
		log.Printf("gemini: error while generating text: %v", err)
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		log.Printf("gemini: generation returned no candidates")
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		log.Printf("gemini: generation returned empty text")
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// EmbedText embeds a single text. docType maps onto Gemini task types, which
// separate retrieval-document from retrieval-query embeddings.
func (g *GeminiProvider) EmbedText(ctx context.Context, text string, docType DocumentType) ([]float32, error) {
	if g.embeddingModelID == "" {
		log.Printf("gemini: embedding model was not set")
		return nil, ErrNoEmbeddingModel
	}

	em := g.client.EmbeddingModel(g.embeddingModelID)
	switch docType {
	case DocumentTypeQuery:
		em.TaskType = genai.TaskTypeRetrievalQuery
	default:
		em.TaskType = genai.TaskTypeRetrievalDocument
	}

	resp, err := em.EmbedContent(ctx, genai.Text(g.ProcessText(text)))
	if err != nil {
		log.Printf("gemini: embedding failed: %v", err)
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		log.Printf("gemini: embedding returned no values")
		return nil, ErrEmptyResponse
	}
	return resp.Embedding.Values, nil
}

var _ Provider = (*GeminiProvider)(nil)
