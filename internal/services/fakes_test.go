package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/markdave123-py/ragstore/internal/core"
	"github.com/markdave123-py/ragstore/internal/core/llm"
	"github.com/markdave123-py/ragstore/internal/models"
)

// fakeDB is an in-memory core.DbClient used by the service tests.
type fakeDB struct {
	mu sync.Mutex

	nextID     int64
	projects   map[string]*models.Project
	users      map[string]*models.User
	assets     []models.Asset
	chunks     []models.DataChunk
	embeddings map[int64][]float32

	projectInserts int
	failInsert     bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		projects:   make(map[string]*models.Project),
		users:      make(map[string]*models.User),
		embeddings: make(map[int64][]float32),
	}
}

func (f *fakeDB) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeDB) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Email]; ok {
		return errors.New("user exists")
	}
	f.users[user.Email] = user
	return nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[email], nil
}

func (f *fakeDB) GetOrCreateProject(_ context.Context, projectID string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.projects[projectID]; ok {
		return p, nil
	}
	p := &models.Project{ID: f.id(), ProjectID: projectID}
	f.projects[projectID] = p
	f.projectInserts++
	return p, nil
}

func (f *fakeDB) CreateAsset(_ context.Context, asset *models.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assets {
		if a.ProjectID == asset.ProjectID && a.Name == asset.Name {
			return errors.New("duplicate asset name")
		}
	}
	asset.ID = f.id()
	f.assets = append(f.assets, *asset)
	return nil
}

func (f *fakeDB) GetAssetByName(_ context.Context, projectRef int64, name string) (*models.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assets {
		if a.ProjectID == projectRef && a.Name == name {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) ListProjectAssets(_ context.Context, projectRef int64, assetType string) ([]models.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Asset
	for _, a := range f.assets {
		if a.ProjectID == projectRef && a.Type == assetType {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeDB) InsertChunks(_ context.Context, chunks []models.DataChunk) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return 0, errors.New("insert failed")
	}
	for i := range chunks {
		chunks[i].ID = f.id()
		f.chunks = append(f.chunks, chunks[i])
	}
	return len(chunks), nil
}

func (f *fakeDB) DeleteProjectChunks(_ context.Context, projectRef int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.chunks[:0]
	var removed int64
	for _, ch := range f.chunks {
		if ch.ProjectID == projectRef {
			removed++
			continue
		}
		kept = append(kept, ch)
	}
	f.chunks = kept
	return removed, nil
}

func (f *fakeDB) ListProjectChunks(_ context.Context, projectRef int64) ([]models.DataChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DataChunk
	for _, ch := range f.chunks {
		if ch.ProjectID == projectRef {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *fakeDB) UpdateChunkEmbedding(_ context.Context, chunkID int64, embedding []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.chunks {
		if ch.ID == chunkID {
			f.embeddings[chunkID] = embedding
			return nil
		}
	}
	return fmt.Errorf("chunk not found: %d", chunkID)
}

func (f *fakeDB) Close() error { return nil }

var _ core.DbClient = (*fakeDB)(nil)

// fakeStorage is an in-memory core.ObjectClient.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) UploadStream(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	if f.failPut {
		return "", errors.New("upload failed")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = buf.Bytes()
	return "fake://" + key, nil
}

func (f *fakeStorage) GetFile(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return data, nil
}

func (f *fakeStorage) DeleteFile(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

var _ core.ObjectClient = (*fakeStorage)(nil)

// rawTextExtractor returns the stored bytes as-is, standing in for docconv.
type rawTextExtractor struct{}

func (rawTextExtractor) ExtractText(_ context.Context, raw []byte, _ string) (string, error) {
	return string(raw), nil
}

var _ core.TextExtractor = rawTextExtractor{}

// fakeProvider satisfies llm.Provider with canned embeddings.
type fakeProvider struct {
	embedErr error
	embedded []string
	mu       sync.Mutex
}

func (p *fakeProvider) SetGenerationModel(string) {}
func (p *fakeProvider) SetEmbeddingModel(context.Context, string, int) error {
	return nil
}

func (p *fakeProvider) GenerateText(_ context.Context, prompt string, _ []llm.Message, _ int, _ float64) (string, error) {
	return "echo: " + prompt, nil
}

func (p *fakeProvider) EmbedText(_ context.Context, text string, _ llm.DocumentType) ([]float32, error) {
	if p.embedErr != nil {
		return nil, p.embedErr
	}
	p.mu.Lock()
	p.embedded = append(p.embedded, text)
	p.mu.Unlock()
	return []float32{float32(len(text)), 1}, nil
}

func (p *fakeProvider) ConstructPrompt(prompt, role string) llm.Message {
	return llm.Message{Role: role, Content: prompt}
}

func (p *fakeProvider) ProcessText(text string) string { return text }
func (p *fakeProvider) Close() error                   { return nil }

var _ llm.Provider = (*fakeProvider)(nil)
