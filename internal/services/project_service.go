package services

import (
	"context"
	"path"

	"github.com/markdave123-py/ragstore/internal/core"
	"github.com/markdave123-py/ragstore/internal/models"
)

// ProjectService resolves external project keys to persisted rows, creating
// them on first reference. Concurrent first-time resolution of the same key
// is safe: the storage layer upserts against the unique project_id.
type ProjectService struct {
	db core.DbClient
}

func NewProjectService(db core.DbClient) *ProjectService {
	return &ProjectService{db: db}
}

func (s *ProjectService) Resolve(ctx context.Context, projectID string) (*models.Project, error) {
	return s.db.GetOrCreateProject(ctx, projectID)
}

// objectKey places every uploaded file under its project's storage prefix.
// assetName is always a generated name, never caller input, so the key cannot
// traverse outside the prefix.
func objectKey(projectID, assetName string) string {
	return path.Join("projects", projectID, assetName)
}
