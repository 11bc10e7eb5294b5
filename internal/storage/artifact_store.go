package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrInvalidFileName = errors.New("file name is empty after sanitising")
	ErrPathEscapesBase = errors.New("path escapes output directory")
)

var unsafeFileChars = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f\x7f]`)

// ArtifactStore writes generated invoices into a single output directory
type ArtifactStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewArtifactStore creates a store rooted at baseDir
func NewArtifactStore(baseDir string, logger *zap.Logger) *ArtifactStore {
	return &ArtifactStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// BaseDir returns the output directory
func (s *ArtifactStore) BaseDir() string {
	return s.baseDir
}

// SanitizeFileName strips characters that are invalid in file names on
// common filesystems. Spaces and accented letters are kept.
func SanitizeFileName(name string) string {
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(name)
	name = strings.Trim(name, ".")
	return name
}

// Path returns the full path for name inside the output directory
func (s *ArtifactStore) Path(name string) (string, error) {
	safe := SanitizeFileName(name)
	if safe == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	full := filepath.Join(s.baseDir, safe)
	if err := s.ValidatePath(full); err != nil {
		return "", err
	}
	return full, nil
}

// Save writes content under name and returns the full path
func (s *ArtifactStore) Save(name string, content []byte) (string, error) {
	full, err := s.Path(name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		s.logger.Error("Failed to create output directory",
			zap.String("path", s.baseDir),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(full, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", full),
			zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File saved successfully",
		zap.String("path", full),
		zap.Int("size", len(content)))
	return full, nil
}

// Remove deletes files inside the output directory. Missing files are ignored.
func (s *ArtifactStore) Remove(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := s.ValidatePath(p); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
			continue
		}
		s.logger.Debug("File removed", zap.String("path", p))
	}
	return errors.Join(errs...)
}

// ValidatePath checks that the path is within the output directory
func (s *ArtifactStore) ValidatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrPathEscapesBase, fullPath)
	}
	return nil
}
