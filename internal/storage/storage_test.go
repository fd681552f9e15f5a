package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "voluntr/pkg/domain-errors"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newLocal(t *testing.T, maxBytes int64) *Local {
	t.Helper()
	s, err := NewLocal(filepath.Join(t.TempDir(), "uploads"), "https://voluntr.example/", maxBytes)
	require.NoError(t, err)
	return s
}

func TestSaveStoresSniffedFile(t *testing.T) {
	s := newLocal(t, 1024)

	f, err := s.Save(context.Background(), "Our Logo (final).PNG", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	assert.Equal(t, "image/png", f.ContentType)
	assert.Equal(t, int64(len(pngHeader)), f.Size)
	assert.True(t, strings.HasSuffix(f.Name, "-our-logo-final.png"), f.Name)
	assert.Equal(t, "https://voluntr.example/files/"+f.Name, f.URL)

	stored, err := os.ReadFile(filepath.Join(s.Dir(), f.Name))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestSaveRejects(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		max     int64
	}{
		{"empty", nil, 1024},
		{"unsupported type", []byte("#!/bin/sh\nrm -rf /\n"), 1024},
		{"too large", append(append([]byte{}, pngHeader...), make([]byte, 64)...), 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newLocal(t, tt.max)
			_, err := s.Save(context.Background(), "file.png", bytes.NewReader(tt.content))
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)

			entries, err := os.ReadDir(s.Dir())
			require.NoError(t, err)
			assert.Empty(t, entries, "rejected uploads leave nothing behind")
		})
	}
}

func TestFileNameWithoutUsableBase(t *testing.T) {
	name := fileName("???.pdf", ".pdf")
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.NotContains(t, name, "?")
}
