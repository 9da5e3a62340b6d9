package ingestion

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/ragstore/internal/config"
	"github.com/markdave123-py/ragstore/internal/models"
)

func newTestValidator() *Validator {
	return NewValidator(&config.Config{
		FileAllowedTypes: []string{"text/plain", "application/pdf"},
		FileMaxSize:      10 << 20,
	})
}

func TestValidate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name       string
		fd         FileDescriptor
		wantOK     bool
		wantSignal models.ResponseSignal
	}{
		{"allowed text file", FileDescriptor{"text/plain", 1024}, true, models.SignalFileValidated},
		{"allowed pdf at limit", FileDescriptor{"application/pdf", 10 << 20}, true, models.SignalFileValidated},
		{"disallowed type", FileDescriptor{"image/png", 1024}, false, models.SignalFileTypeNotAllowed},
		{"empty type", FileDescriptor{"", 1024}, false, models.SignalFileTypeNotAllowed},
		{"over size limit", FileDescriptor{"text/plain", (10 << 20) + 1}, false, models.SignalFileSizeExceeded},
		{"bad type reported before bad size", FileDescriptor{"image/png", 99 << 20}, false, models.SignalFileTypeNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, signal := v.Validate(tt.fd)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantSignal, signal)
		})
	}
}

func TestCapReader_PassesStreamUnderCap(t *testing.T) {
	v := NewValidator(&config.Config{
		FileAllowedTypes: []string{"text/plain"},
		FileMaxSize:      64,
	})

	capped := v.CapReader(strings.NewReader("small payload"))
	data, err := io.ReadAll(capped)
	require.NoError(t, err)
	assert.Equal(t, "small payload", string(data))
	assert.Equal(t, int64(13), capped.BytesRead())
}

func TestCapReader_FailsPastCap(t *testing.T) {
	v := NewValidator(&config.Config{
		FileAllowedTypes: []string{"text/plain"},
		FileMaxSize:      64,
	})

	capped := v.CapReader(strings.NewReader(strings.Repeat("z", 200)))
	_, err := io.ReadAll(capped)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
