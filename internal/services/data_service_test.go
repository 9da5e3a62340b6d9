package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/ragstore/internal/config"
	"github.com/markdave123-py/ragstore/internal/core/ingestion"
	"github.com/markdave123-py/ragstore/internal/models"
)

func newUploadEnv() (*fakeDB, *fakeStorage, *DataService) {
	db := newFakeDB()
	storage := newFakeStorage()
	validator := ingestion.NewValidator(&config.Config{
		FileAllowedTypes: []string{"text/plain", "application/pdf"},
		FileMaxSize:      1 << 20,
	})
	svc := NewDataService(db, storage, NewProjectService(db), validator)
	return db, storage, svc
}

func TestUpload_Success(t *testing.T) {
	db, storage, svc := newUploadEnv()

	body := strings.NewReader("hello world")
	asset, signal, err := svc.Upload(context.Background(), "proj-1", "notes.TXT", "text/plain", 11, body)
	require.NoError(t, err)
	assert.Equal(t, models.SignalFileUploadSuccess, signal)
	require.NotNil(t, asset)

	// Generated storage name keeps only the extension of the original.
	assert.NotEqual(t, "notes.TXT", asset.Name)
	assert.True(t, strings.HasSuffix(asset.Name, ".txt"))
	assert.Equal(t, models.AssetTypeFile, asset.Type)
	assert.Equal(t, int64(11), asset.Size)

	// Bytes land under the project's prefix, keyed by the generated name.
	stored, ok := storage.objects[objectKey("proj-1", asset.Name)]
	require.True(t, ok)
	assert.Equal(t, "hello world", string(stored))

	// Lazy project creation happened exactly once.
	assert.Equal(t, 1, db.projectInserts)
}

func TestUpload_RejectedType_NoWrites(t *testing.T) {
	db, storage, svc := newUploadEnv()

	asset, signal, err := svc.Upload(context.Background(), "proj-1", "pic.png", "image/png", 100, strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, models.SignalFileTypeNotAllowed, signal)
	assert.Nil(t, asset)

	// Rejected before any persistence: no object, no asset, no project row.
	assert.Empty(t, storage.objects)
	assert.Empty(t, db.assets)
	assert.Equal(t, 0, db.projectInserts)
}

func TestUpload_RejectedSize_NoWrites(t *testing.T) {
	db, storage, svc := newUploadEnv()

	asset, signal, err := svc.Upload(context.Background(), "proj-1", "big.txt", "text/plain", 2<<20, strings.NewReader("big"))
	require.NoError(t, err)
	assert.Equal(t, models.SignalFileSizeExceeded, signal)
	assert.Nil(t, asset)
	assert.Empty(t, storage.objects)
	assert.Empty(t, db.assets)
}

func TestUpload_UndeclaredSize_RecordsBytesStored(t *testing.T) {
	_, storage, svc := newUploadEnv()

	asset, signal, err := svc.Upload(context.Background(), "proj-1", "a.txt", "text/plain", -1, strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Equal(t, models.SignalFileUploadSuccess, signal)
	require.NotNil(t, asset)

	// With no declared length, the asset size is what actually went through.
	assert.Equal(t, int64(11), asset.Size)
	assert.Equal(t, "hello world", string(storage.objects[objectKey("proj-1", asset.Name)]))
}

func TestUpload_UndeclaredSize_StreamCutAtCap(t *testing.T) {
	db := newFakeDB()
	storage := newFakeStorage()
	validator := ingestion.NewValidator(&config.Config{
		FileAllowedTypes: []string{"text/plain"},
		FileMaxSize:      64,
	})
	svc := NewDataService(db, storage, NewProjectService(db), validator)

	body := strings.NewReader(strings.Repeat("x", 200))
	asset, signal, err := svc.Upload(context.Background(), "proj-1", "big.txt", "text/plain", -1, body)

	// The cap trips mid-stream: reported as the size signal, nothing recorded.
	require.Error(t, err)
	assert.ErrorIs(t, err, ingestion.ErrFileTooLarge)
	assert.Equal(t, models.SignalFileSizeExceeded, signal)
	assert.Nil(t, asset)
	assert.Empty(t, storage.objects)
	assert.Empty(t, db.assets)
}

func TestUpload_StorageFailure(t *testing.T) {
	db, storage, svc := newUploadEnv()
	storage.failPut = true

	asset, signal, err := svc.Upload(context.Background(), "proj-1", "a.txt", "text/plain", 3, strings.NewReader("abc"))
	assert.Error(t, err)
	assert.Equal(t, models.SignalFileUploadFailed, signal)
	assert.Nil(t, asset)
	assert.Empty(t, db.assets)
}

func TestGenerateAssetName_Unique(t *testing.T) {
	a := generateAssetName("report.pdf")
	b := generateAssetName("report.pdf")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".pdf"))
}

func TestGenerateAssetName_StripsPath(t *testing.T) {
	name := generateAssetName("../../etc/passwd")
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "..")
}
