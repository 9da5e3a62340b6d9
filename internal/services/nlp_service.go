package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/ragstore/internal/core"
	"github.com/markdave123-py/ragstore/internal/core/llm"
)

// ErrNothingToIndex is returned when a push finds no stored chunks.
var ErrNothingToIndex = errors.New("project has no chunks to index")

// NLPService is where the provider meets the stored chunks: it embeds chunk
// text into the pgvector column and exposes plain generation. It never runs
// as part of ingestion; callers invoke it after a processing pass.
type NLPService struct {
	db       core.DbClient
	provider llm.Provider
	projects *ProjectService
}

func NewNLPService(db core.DbClient, provider llm.Provider, projects *ProjectService) *NLPService {
	return &NLPService{db: db, provider: provider, projects: projects}
}

// PushProjectEmbeddings embeds every stored chunk of the project and writes
// the vectors back. Chunks are independent, so a bounded number are embedded
// concurrently; the first provider failure cancels the rest.
func (s *NLPService) PushProjectEmbeddings(ctx context.Context, projectID string) (int, error) {
	project, err := s.projects.Resolve(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("resolve project: %w", err)
	}

	chunks, err := s.db.ListProjectChunks(ctx, project.ID)
	if err != nil {
		return 0, fmt.Errorf("list chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, ErrNothingToIndex
	}

	var pushed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range chunks {
		ch := chunks[i]
		g.Go(func() error {
			vec, err := s.provider.EmbedText(gctx, ch.Text, llm.DocumentTypeDocument)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", ch.ID, err)
			}
			if err := s.db.UpdateChunkEmbedding(gctx, ch.ID, vec); err != nil {
				return fmt.Errorf("store embedding for chunk %d: %w", ch.ID, err)
			}
			pushed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("nlp: embedding push for project %q stopped after %d chunks: %v", projectID, pushed.Load(), err)
		return int(pushed.Load()), err
	}

	log.Printf("nlp: pushed %d embeddings for project %q", pushed.Load(), projectID)
	return int(pushed.Load()), nil
}

// Generate forwards to the provider. A zero maxOutputTokens or temperature
// picks the provider defaults.
func (s *NLPService) Generate(ctx context.Context, prompt string, history []llm.Message, maxOutputTokens int, temperature float64) (string, error) {
	return s.provider.GenerateText(ctx, prompt, history, maxOutputTokens, temperature)
}
