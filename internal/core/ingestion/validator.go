package ingestion

import (
	"errors"
	"io"

	"github.com/markdave123-py/ragstore/internal/config"
	"github.com/markdave123-py/ragstore/internal/models"
)

// ErrFileTooLarge is returned by a capped reader once the stream runs past
// the configured maximum size.
var ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

// FileDescriptor carries the declared properties of an incoming upload.
// Declared, not verified: validation gates on what the client claims before
// any byte is persisted.
type FileDescriptor struct {
	ContentType string
	Size        int64
}

// Validator checks uploads against the configured allow-list and size cap.
// No side effects; callers branch on the returned ok flag and signal.
type Validator struct {
	allowedTypes map[string]struct{}
	maxSize      int64
}

func NewValidator(cfg *config.Config) *Validator {
	allowed := make(map[string]struct{}, len(cfg.FileAllowedTypes))
	for _, t := range cfg.FileAllowedTypes {
		allowed[t] = struct{}{}
	}
	return &Validator{allowedTypes: allowed, maxSize: cfg.FileMaxSize}
}

// Validate returns whether the descriptor passes, and a signal naming the
// failed constraint (type vs size) when it does not.
func (v *Validator) Validate(fd FileDescriptor) (bool, models.ResponseSignal) {
	if _, ok := v.allowedTypes[fd.ContentType]; !ok {
		return false, models.SignalFileTypeNotAllowed
	}
	if fd.Size > v.maxSize {
		return false, models.SignalFileSizeExceeded
	}
	return true, models.SignalFileValidated
}

// CapReader wraps a stream whose length was not declared up front so the
// size cap still holds while it is consumed piecewise.
func (v *Validator) CapReader(r io.Reader) *CappedReader {
	return &CappedReader{r: r, max: v.maxSize}
}

// CappedReader fails with ErrFileTooLarge as soon as more than max bytes
// come off the underlying stream. Bytes up to the cap are passed through, so
// a consumer may have written them somewhere before the error surfaces.
type CappedReader struct {
	r    io.Reader
	max  int64
	read int64
}

func (c *CappedReader) Read(p []byte) (int, error) {
	if c.read > c.max {
		return 0, ErrFileTooLarge
	}
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.read > c.max {
		return n, ErrFileTooLarge
	}
	return n, err
}

// BytesRead reports how much of the stream has been consumed so far.
func (c *CappedReader) BytesRead() int64 { return c.read }
