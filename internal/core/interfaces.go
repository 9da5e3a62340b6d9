package core

import (
	"context"
	"io"

	"github.com/markdave123-py/ragstore/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetOrCreateProject resolves the external project key to a row, inserting
	// it on first reference. Safe under concurrent first-time creation: the
	// insert runs against the unique project_id key with conflict fallback to
	// read, so exactly one row exists per key.
	GetOrCreateProject(ctx context.Context, projectID string) (*models.Project, error)

	CreateAsset(ctx context.Context, asset *models.Asset) error
	GetAssetByName(ctx context.Context, projectRef int64, name string) (*models.Asset, error)
	ListProjectAssets(ctx context.Context, projectRef int64, assetType string) ([]models.Asset, error)

	InsertChunks(ctx context.Context, chunks []models.DataChunk) (int, error)
	DeleteProjectChunks(ctx context.Context, projectRef int64) (int64, error)
	ListProjectChunks(ctx context.Context, projectRef int64) ([]models.DataChunk, error)
	UpdateChunkEmbedding(ctx context.Context, chunkID int64, embedding []float32) error

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// Abstract so AWS can be swapped for MinIO, GCP, etc.
type ObjectClient interface {
	// UploadStream writes the reader's content under key without buffering the
	// whole payload in memory. Cancelling ctx aborts the transfer; a partially
	// written object is left for external cleanup.
	UploadStream(ctx context.Context, key string, body io.Reader, contentType string) (url string, err error)
	GetFile(ctx context.Context, key string) ([]byte, error)
	DeleteFile(ctx context.Context, key string) error
}

// TextExtractor turns raw uploaded bytes into plain text ahead of chunking.
// The contentType hint selects the parsing strategy.
type TextExtractor interface {
	ExtractText(ctx context.Context, raw []byte, contentType string) (string, error)
}
