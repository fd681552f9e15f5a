// Package storage keeps uploaded NGO documents, logos and event images on
// local disk and hands back public URLs for them.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	dErrors "voluntr/pkg/domain-errors"
)

// allowedTypes maps sniffed content types to the extension stored on disk.
var allowedTypes = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// File is a stored upload.
type File struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Local writes files under dir and serves them below baseURL.
type Local struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewLocal(dir, baseURL string, maxBytes int64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

func (s *Local) Dir() string { return s.dir }

func (s *Local) MaxBytes() int64 { return s.maxBytes }

// Save stores r under a fresh name derived from originalName. Content type is
// sniffed from the first bytes rather than trusted from the client.
func (s *Local) Save(ctx context.Context, originalName string, r io.Reader) (*File, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read upload")
	}
	if n == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "file is empty")
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "unsupported file type "+contentType)
	}

	name := fileName(originalName, ext)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create file")
	}

	// One byte past the limit distinguishes "exactly max" from "too large".
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), r), s.maxBytes+1)
	written, err := io.Copy(f, body)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxBytes {
		err = dErrors.New(dErrors.CodeValidation, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		if _, coded := dErrors.CodeOf(err); coded {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store file")
	}

	return &File{
		Name:        name,
		URL:         s.baseURL + path.Join("/files", name),
		ContentType: contentType,
		Size:        written,
	}, nil
}

func fileName(original, ext string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	s := slug.Make(base)
	if len(s) > 60 {
		s = s[:60]
	}
	uid := uuid.NewString()
	if s == "" {
		return uid + ext
	}
	return uid + "-" + s + ext
}
