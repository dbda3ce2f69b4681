package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/illegalcall/codeshell/internal/models"
)

// Storage archives the file set of each deployment so that a deploy can be
// inspected or replayed later.
type Storage interface {
	// StoreSnapshot writes files for appName and returns the stored object's path
	StoreSnapshot(ctx context.Context, appName string, files models.FileMap) (string, error)

	// Delete removes a snapshot
	Delete(ctx context.Context, path string) error
}

// LocalStorage implements Storage using the local filesystem
type LocalStorage struct {
	tempDir string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(tempDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &LocalStorage{tempDir: tempDir}, nil
}

func (s *LocalStorage) StoreSnapshot(ctx context.Context, appName string, files models.FileMap) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := json.Marshal(files)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tempFile, err := os.CreateTemp(s.tempDir, safeName(appName)+"-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer tempFile.Close()

	if _, err := tempFile.Write(data); err != nil {
		os.Remove(tempFile.Name()) // Clean up on error
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	return tempFile.Name(), nil
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	// Verify the path is within our temp directory
	rel, err := filepath.Rel(s.tempDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("invalid file path: must be within temp directory")
	}
	return os.Remove(path)
}

// safeName keeps snapshot names to a conservative character set.
func safeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "app"
	}
	return b.String()
}
