package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StagingArea owns the directory uploads are written to while they are
// processed. Every batch gets its own uuid-named subdirectory so uploads with
// the same name in concurrent batches never collide.
type StagingArea struct {
	baseDir string
}

// NewStagingArea creates baseDir if it does not exist.
func NewStagingArea(baseDir string) (*StagingArea, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	return &StagingArea{baseDir: baseDir}, nil
}

// Dir returns the staging root.
func (s *StagingArea) Dir() string {
	return s.baseDir
}

// Begin creates the directory for one batch.
func (s *StagingArea) Begin(batchID uuid.UUID) (*StagedBatch, error) {
	dir := filepath.Join(s.baseDir, batchID.String())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create batch directory: %w", err)
	}
	return &StagedBatch{dir: dir}, nil
}

// StagedBatch is the staging directory of one batch.
type StagedBatch struct {
	dir string
}

// Stage copies r to a file named after the upload and returns its path.
// A partially written file is removed on failure.
func (b *StagedBatch) Stage(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(b.dir, sanitizeFilename(filename))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close staged file: %w", err)
	}

	return path, nil
}

// Remove deletes a staged file. A file that is already gone is not an error.
func (b *StagedBatch) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}

// Close removes the batch directory and anything left in it.
func (b *StagedBatch) Close() error {
	if err := os.RemoveAll(b.dir); err != nil {
		return fmt.Errorf("remove batch directory: %w", err)
	}
	return nil
}

// sanitizeFilename strips any directory part a client put in the name.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		return "upload.pdf"
	}
	return name
}
