package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBinary creates an executable file so exec.LookPath succeeds
func fakeBinary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soffice")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0755))
	return path
}

func TestSofficeConvert(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "Facture N° 20250001.docx")
	require.NoError(t, os.WriteFile(source, []byte("docx"), 0644))

	t.Run("runs headless export and returns the pdf path", func(t *testing.T) {
		s := NewSoffice(fakeBinary(t), "", zap.NewNop())

		var gotArgs []string
		s.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			gotArgs = args
			return nil, os.WriteFile(filepath.Join(dir, "Facture N° 20250001.pdf"), []byte("%PDF"), 0644)
		}

		target, err := s.Convert(context.Background(), source)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "Facture N° 20250001.pdf"), target)
		assert.Equal(t, []string{"--headless", "--convert-to", "pdf:writer_pdf_Export", "--outdir", dir, source}, gotArgs)
	})

	t.Run("missing binary", func(t *testing.T) {
		s := NewSoffice(filepath.Join(t.TempDir(), "absent"), "", zap.NewNop())

		_, err := s.Convert(context.Background(), source)
		assert.ErrorIs(t, err, ErrConversion)
		assert.ErrorIs(t, err, ErrBinaryNotFound)
	})

	t.Run("command failure", func(t *testing.T) {
		s := NewSoffice(fakeBinary(t), t.TempDir(), zap.NewNop())
		s.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte("source file could not be loaded"), errors.New("exit status 1")
		}

		_, err := s.Convert(context.Background(), source)
		var ce *ConversionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, source, ce.Source)
		assert.Contains(t, err.Error(), "could not be loaded")
	})

	t.Run("no output file", func(t *testing.T) {
		s := NewSoffice(fakeBinary(t), t.TempDir(), zap.NewNop())
		s.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return nil, nil
		}

		_, err := s.Convert(context.Background(), source)
		assert.ErrorIs(t, err, ErrConversion)
	})
}

func TestNoop(t *testing.T) {
	target, err := Noop{}.Convert(context.Background(), "x.docx")
	assert.NoError(t, err)
	assert.Empty(t, target)
}
