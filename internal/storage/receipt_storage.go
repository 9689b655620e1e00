package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ReceiptStorage persists uploaded receipt images for the local store.
type ReceiptStorage interface {
	// Save writes the receipt under the owner's folder and returns the
	// path relative to the base directory.
	Save(email, fileName string, content []byte) (string, error)

	// ValidatePath checks path security (no traversal, within base)
	ValidatePath(fullPath string) error
}

// LocalReceiptStorage implements ReceiptStorage on the local filesystem.
type LocalReceiptStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalReceiptStorage creates a new LocalReceiptStorage.
func NewLocalReceiptStorage(baseDir string, logger *zap.Logger) *LocalReceiptStorage {
	return &LocalReceiptStorage{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Save writes the receipt to <base>/<email>/<fileName> and returns the
// relative path used as the hosted file URL by the local store.
func (s *LocalReceiptStorage) Save(email, fileName string, content []byte) (string, error) {
	relPath := filepath.Join(sanitizeSegment(email), sanitizeSegment(fileName))
	fullPath := filepath.Join(s.baseDir, relPath)

	if err := s.ValidatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create receipt directory",
			zap.String("path", filepath.Dir(fullPath)),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write receipt",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Receipt saved",
		zap.String("path", relPath),
		zap.Int("size", len(content)))

	return relPath, nil
}

// ValidatePath checks that the path is safe and within baseDir.
func (s *LocalReceiptStorage) ValidatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if absPath != absBase && !strings.HasPrefix(absPath, absBase+string(os.PathSeparator)) {
		return fmt.Errorf("path %s escapes storage directory", fullPath)
	}
	return nil
}

// sanitizeSegment strips separators so user-supplied names cannot form
// nested or parent paths.
func sanitizeSegment(segment string) string {
	segment = strings.ReplaceAll(segment, "..", "_")
	segment = strings.ReplaceAll(segment, "/", "_")
	segment = strings.ReplaceAll(segment, "\\", "_")
	if segment == "" {
		return "_"
	}
	return segment
}
