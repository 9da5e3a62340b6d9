package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/markdave123-py/ragstore/internal/config"
	"github.com/markdave123-py/ragstore/internal/core"
	"github.com/markdave123-py/ragstore/internal/core/ingestion"
	"github.com/markdave123-py/ragstore/internal/models"
)

// Failure conditions callers branch on; handlers map them to response signals.
var (
	ErrNoFiles  = errors.New("no files found to process")
	ErrNoChunks = errors.New("chunk production failed")
)

// ProcessParams is one processing request for a project. FileID optionally
// names a single asset (by its storage name); zero ChunkSize/OverlapSize fall
// back to the configured defaults.
type ProcessParams struct {
	FileID      string
	ChunkSize   int
	OverlapSize int
	DoReset     bool
}

// FileStatus reports the outcome for one resolved asset.
type FileStatus struct {
	AssetName string `json:"asset_name"`
	Chunks    int    `json:"chunks"`
	Error     string `json:"error,omitempty"`
}

// ProcessResult aggregates a whole processing pass.
type ProcessResult struct {
	InsertedChunks int          `json:"inserted_chunks"`
	ProcessedFiles int          `json:"processed_files"`
	Files          []FileStatus `json:"files"`
}

// ProcessService coordinates a processing pass: resolve the assets, clear old
// chunks when a reset was asked for, chunk each file's content, and persist
// the ordered batches. Assets are handled one at a time in resolution order.
//
// Per-file policy: a file that cannot be read, cannot be extracted, or yields
// zero chunks is logged, reported in its FileStatus, and skipped; the request
// fails with ErrNoChunks only when no file contributed anything.
type ProcessService struct {
	db        core.DbClient
	storage   core.ObjectClient
	extractor core.TextExtractor
	projects  *ProjectService
	cfg       *config.Config
}

func NewProcessService(db core.DbClient, storage core.ObjectClient, extractor core.TextExtractor, projects *ProjectService, cfg *config.Config) *ProcessService {
	return &ProcessService{db: db, storage: storage, extractor: extractor, projects: projects, cfg: cfg}
}

func (s *ProcessService) Process(ctx context.Context, projectID string, params ProcessParams) (*ProcessResult, error) {
	chunkSize := params.ChunkSize
	if chunkSize == 0 {
		chunkSize = s.cfg.DefaultChunkSize
	}
	overlapSize := params.OverlapSize
	if overlapSize == 0 && params.ChunkSize == 0 {
		overlapSize = s.cfg.DefaultOverlapSize
	}
	// Surface bad parameters before touching any state, reset included.
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlapSize < 0 || overlapSize >= chunkSize {
		return nil, fmt.Errorf("overlap size %d must be in [0, %d)", overlapSize, chunkSize)
	}

	project, err := s.projects.Resolve(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("resolve project: %w", err)
	}

	assets, err := s.resolveAssets(ctx, project.ID, params.FileID)
	if err != nil {
		return nil, err
	}

	// The reset must finish before any new chunk for this project is written,
	// so a delete never races an insert from the same pass.
	if params.DoReset {
		removed, err := s.db.DeleteProjectChunks(ctx, project.ID)
		if err != nil {
			return nil, fmt.Errorf("reset chunks: %w", err)
		}
		log.Printf("process: reset removed %d chunks for project %q", removed, projectID)
	}

	result := &ProcessResult{Files: make([]FileStatus, 0, len(assets))}
	for _, asset := range assets {
		status := s.processAsset(ctx, projectID, &asset, chunkSize, overlapSize)
		result.Files = append(result.Files, status)
		if status.Error == "" {
			result.InsertedChunks += status.Chunks
			result.ProcessedFiles++
		}
	}

	if result.ProcessedFiles == 0 {
		return result, ErrNoChunks
	}
	return result, nil
}

// resolveAssets returns the single named asset, or every FILE-type asset the
// project owns. Either way an empty resolution is the "no files" condition.
func (s *ProcessService) resolveAssets(ctx context.Context, projectRef int64, fileID string) ([]models.Asset, error) {
	if fileID != "" {
		asset, err := s.db.GetAssetByName(ctx, projectRef, fileID)
		if err != nil {
			return nil, fmt.Errorf("lookup asset %q: %w", fileID, err)
		}
		if asset == nil {
			return nil, ErrNoFiles
		}
		return []models.Asset{*asset}, nil
	}

	assets, err := s.db.ListProjectAssets(ctx, projectRef, models.AssetTypeFile)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	if len(assets) == 0 {
		return nil, ErrNoFiles
	}
	return assets, nil
}

// processAsset loads, extracts, chunks, and persists one asset's content.
// All failures land in the returned status; chunk insertion for the asset
// completes before its counts are reported.
func (s *ProcessService) processAsset(ctx context.Context, projectID string, asset *models.Asset, chunkSize, overlapSize int) FileStatus {
	status := FileStatus{AssetName: asset.Name}

	raw, err := s.storage.GetFile(ctx, objectKey(projectID, asset.Name))
	if err != nil {
		log.Printf("process: skipping %s, read failed: %v", asset.Name, err)
		status.Error = fmt.Sprintf("read failed: %v", err)
		return status
	}

	text, err := s.extractor.ExtractText(ctx, raw, asset.ContentType)
	if err != nil {
		log.Printf("process: skipping %s, extraction failed: %v", asset.Name, err)
		status.Error = fmt.Sprintf("extraction failed: %v", err)
		return status
	}

	chunks, err := ingestion.SplitText(text, chunkSize, overlapSize)
	if err != nil {
		// Parameters were validated up front; this only trips on a splitter bug.
		status.Error = err.Error()
		return status
	}
	if len(chunks) == 0 {
		log.Printf("process: skipping %s, produced no chunks", asset.Name)
		status.Error = "produced no chunks"
		return status
	}

	rows := make([]models.DataChunk, len(chunks))
	for i, ch := range chunks {
		rows[i] = models.DataChunk{
			ProjectID: asset.ProjectID,
			AssetID:   asset.ID,
			Order:     i + 1,
			Text:      ch.Text,
			Metadata:  ch.Metadata,
		}
	}

	inserted, err := s.db.InsertChunks(ctx, rows)
	if err != nil {
		log.Printf("process: skipping %s, chunk insert failed: %v", asset.Name, err)
		status.Error = fmt.Sprintf("insert failed: %v", err)
		return status
	}

	status.Chunks = inserted
	return status
}
