package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/markdave123-py/ragstore/internal/core"
	"github.com/markdave123-py/ragstore/internal/core/ingestion"
	"github.com/markdave123-py/ragstore/internal/models"
)

// DataService handles the upload path: gate the file, resolve the project,
// stream the bytes to object storage under a generated name, and record the
// Asset row. Nothing is written before validation passes.
type DataService struct {
	db        core.DbClient
	storage   core.ObjectClient
	projects  *ProjectService
	validator *ingestion.Validator
}

func NewDataService(db core.DbClient, storage core.ObjectClient, projects *ProjectService, validator *ingestion.Validator) *DataService {
	return &DataService{db: db, storage: storage, projects: projects, validator: validator}
}

// Upload validates and persists one uploaded file. A negative size means the
// caller is streaming without a declared length; the size cap is then
// enforced on the stream itself while it is written. The returned signal is
// what the API reports; err carries the underlying cause for I/O failures.
func (s *DataService) Upload(ctx context.Context, projectID, origFilename, contentType string, size int64, body io.Reader) (*models.Asset, models.ResponseSignal, error) {
	if ok, signal := s.validator.Validate(ingestion.FileDescriptor{ContentType: contentType, Size: max(size, 0)}); !ok {
		return nil, signal, nil
	}

	project, err := s.projects.Resolve(ctx, projectID)
	if err != nil {
		return nil, models.SignalFileUploadFailed, fmt.Errorf("resolve project: %w", err)
	}

	assetName := generateAssetName(origFilename)

	capped := s.validator.CapReader(body)
	url, err := s.storage.UploadStream(ctx, objectKey(projectID, assetName), capped, contentType)
	if err != nil {
		// A partially written object may remain; it is not cleaned up here.
		log.Printf("upload: stream to storage failed for project %q: %v", projectID, err)
		if errors.Is(err, ingestion.ErrFileTooLarge) {
			return nil, models.SignalFileSizeExceeded, err
		}
		return nil, models.SignalFileUploadFailed, err
	}
	if size < 0 {
		size = capped.BytesRead()
	}
	log.Printf("upload: stored %s for project %q at %s", assetName, projectID, url)

	asset := &models.Asset{
		ProjectID:   project.ID,
		Name:        assetName,
		Type:        models.AssetTypeFile,
		Size:        size,
		ContentType: contentType,
	}
	if err := s.db.CreateAsset(ctx, asset); err != nil {
		log.Printf("upload: asset insert failed for project %q: %v", projectID, err)
		return nil, models.SignalFileUploadFailed, fmt.Errorf("create asset: %w", err)
	}

	return asset, models.SignalFileUploadSuccess, nil
}

// generateAssetName builds the unique storage name. Only the extension of the
// caller's filename survives; the rest is replaced with a fresh UUID so the
// original name is never trusted as a path.
func generateAssetName(origFilename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(origFilename)))
	return uuid.NewString() + ext
}
