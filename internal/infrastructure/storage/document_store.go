// Package storage keeps uploaded invoice documents on the local filesystem.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
)

// LocalDocumentStore implements port.DocumentStore on a local directory.
// Documents are filed under year/month subdirectories and renamed to a UUID
// so colliding upload filenames cannot overwrite each other. The returned
// path is relative to the base directory and is what gets persisted on the
// invoice record.
type LocalDocumentStore struct {
	baseDir string
	logger  *zap.Logger
}

var _ port.DocumentStore = (*LocalDocumentStore)(nil)

// NewLocalDocumentStore creates a new LocalDocumentStore rooted at baseDir.
func NewLocalDocumentStore(baseDir string, logger *zap.Logger) *LocalDocumentStore {
	return &LocalDocumentStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Save writes the document and returns its relative storage path.
func (s *LocalDocumentStore) Save(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	now := time.Now()
	relPath := filepath.Join(
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		uuid.NewString()+ext,
	)

	fullPath := filepath.Join(s.baseDir, relPath)
	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create document directory",
			zap.String("path", filepath.Dir(fullPath)),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		s.logger.Error("Failed to write document",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Document saved",
		zap.String("path", relPath),
		zap.Int("size", len(data)))
	return relPath, nil
}

// Open reads a previously saved document by its relative storage path.
func (s *LocalDocumentStore) Open(path string) ([]byte, error) {
	fullPath := filepath.Join(s.baseDir, path)
	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		s.logger.Error("Failed to read document",
			zap.String("path", fullPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// validatePath rejects paths that resolve outside the base directory.
func (s *LocalDocumentStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}
