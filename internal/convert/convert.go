// Package convert turns rendered .docx invoices into PDF with LibreOffice.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrConversion     = errors.New("document conversion failed")
	ErrBinaryNotFound = errors.New("converter binary not found")
)

// ConversionError wraps a failed conversion of Source
type ConversionError struct {
	Source string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion of %s failed: %v", filepath.Base(e.Source), e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

// Converter produces a distributable copy of a document and returns its path
type Converter interface {
	Convert(ctx context.Context, source string) (string, error)
}

// Soffice converts with a headless LibreOffice
type Soffice struct {
	binary string
	outDir string // empty means next to the source
	logger *zap.Logger
	run    func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewSoffice creates a LibreOffice converter
func NewSoffice(binary, outDir string, logger *zap.Logger) *Soffice {
	return &Soffice{binary: binary, outDir: outDir, logger: logger, run: runCommand}
}

// Convert runs soffice --headless --convert-to pdf:writer_pdf_Export
func (s *Soffice) Convert(ctx context.Context, source string) (string, error) {
	binary, err := exec.LookPath(s.binary)
	if err != nil {
		return "", &ConversionError{Source: source, Err: fmt.Errorf("%w: %s", ErrBinaryNotFound, s.binary)}
	}

	outDir := s.outDir
	if outDir == "" {
		outDir = filepath.Dir(source)
	}
	target := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))+".pdf")

	s.logger.Info("Converting document to PDF",
		zap.String("source", source),
		zap.String("target", target))

	out, err := s.run(ctx, binary, "--headless", "--convert-to", "pdf:writer_pdf_Export", "--outdir", outDir, source)
	if err != nil {
		return "", &ConversionError{Source: source, Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))}
	}

	if _, err := os.Stat(target); err != nil {
		return "", &ConversionError{Source: source, Err: fmt.Errorf("no output produced at %s", target)}
	}
	return target, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Noop skips conversion and returns no target
type Noop struct{}

// Convert returns an empty path
func (Noop) Convert(ctx context.Context, source string) (string, error) {
	return "", nil
}
