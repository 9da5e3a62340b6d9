package models

import (
	"time"
)

// AssetTypeFile is the only asset type produced by the upload path today.
const AssetTypeFile = "file"

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Project represents a tenant workspace. Rows are created lazily the first
// time a ProjectID is referenced and are never deleted here.
type Project struct {
	ID        int64     `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"project_id"` // caller-supplied external key, unique
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Asset represents one uploaded source file belonging to a project.
// Name is the generated storage name, never the caller's original filename.
type Asset struct {
	ID          int64     `db:"id" json:"id"`
	ProjectID   int64     `db:"asset_project_id" json:"asset_project_id"`
	Name        string    `db:"asset_name" json:"asset_name"`
	Type        string    `db:"asset_type" json:"asset_type"`
	Size        int64     `db:"asset_size" json:"asset_size"`
	ContentType string    `db:"asset_content_type" json:"asset_content_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DataChunk represents one overlapping text segment of an asset's content.
// Order is 1-based and contiguous within (ProjectID, AssetID).
type DataChunk struct {
	ID        int64             `db:"id" json:"id"`
	ProjectID int64             `db:"chunk_project_id" json:"chunk_project_id"`
	AssetID   int64             `db:"chunk_asset_id" json:"chunk_asset_id"`
	Order     int               `db:"chunk_order" json:"chunk_order"`
	Text      string            `db:"chunk_text" json:"chunk_text"`
	Metadata  map[string]string `db:"chunk_metadata" json:"chunk_metadata"`
	Embedding []float32         `db:"embedding" json:"-"` // pgvector column, filled by the NLP push step
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}

// ResponseSignal values returned to API clients. Handlers branch on service
// errors and pick one of these, so failure modes stay distinguishable.
type ResponseSignal string

const (
	SignalFileValidated      ResponseSignal = "file_validated_successfully"
	SignalFileTypeNotAllowed ResponseSignal = "file_type_not_supported"
	SignalFileSizeExceeded   ResponseSignal = "file_size_exceeded"
	SignalFileUploadSuccess  ResponseSignal = "file_upload_success"
	SignalFileUploadFailed   ResponseSignal = "file_upload_failed"
	SignalProcessingSuccess  ResponseSignal = "processing_success"
	SignalProcessingFailed   ResponseSignal = "processing_failed"
	SignalNoFilesFound       ResponseSignal = "no_files_found"
)
