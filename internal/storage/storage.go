// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage stores listing media blobs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload limits
const (
	MaxUploadSize    = 10 * 1024 * 1024 // 10MB
	DefaultUploadDir = "./uploads"
)

// Allowed listing media types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeWebP = "image/webp"
	MimeTypePDF  = "application/pdf"
)

// AllowedMimeTypes defines the MIME types that can be attached to a listing.
var AllowedMimeTypes = map[string]bool{
	MimeTypeJPEG: true,
	MimeTypePNG:  true,
	MimeTypeWebP: true,
	MimeTypePDF:  true,
}

var (
	// ErrTooLarge is returned when a blob exceeds MaxUploadSize.
	ErrTooLarge = errors.New("storage: blob too large")
	// ErrInvalidKey is returned for keys that would escape the store root.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// BlobStore stores opaque blobs under string keys.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// NewKey returns a unique key for a file attached to a listing.
func NewKey(propertyID int64, filename string) string {
	return fmt.Sprintf("properties/%d/%s/%s", propertyID, uuid.NewString(), SanitizeFilename(filename))
}

// Local stores blobs on the local filesystem below a root directory.
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates a filesystem store. baseURL is the public prefix the
// root directory is served under, e.g. "/uploads".
func NewLocal(root, baseURL string) *Local {
	if root == "" {
		root = DefaultUploadDir
	}
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Local) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || clean != "/"+key {
		return "", ErrInvalidKey
	}
	return filepath.Join(l.root, filepath.FromSlash(clean[1:])), nil
}

// Put implements BlobStore. At most MaxUploadSize bytes are accepted.
func (l *Local) Put(_ context.Context, key string, r io.Reader) (int64, error) {
	p, err := l.path(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	out, err := os.Create(p)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = out.Close() }()

	size, err := io.Copy(out, io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		_ = os.Remove(p)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	if size > MaxUploadSize {
		_ = os.Remove(p)
		return 0, ErrTooLarge
	}
	return size, nil
}

// Delete implements BlobStore. Deleting a missing key is not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	// Remove the per-upload directory when it is empty.
	_ = os.Remove(filepath.Dir(p))
	return nil
}

// URL implements BlobStore.
func (l *Local) URL(key string) string {
	return l.baseURL + "/" + key
}

// SanitizeFilename strips path components and characters that are unsafe in
// URLs and file names.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))

	replacer := strings.NewReplacer(
		" ", "-",
		"'", "",
		"\"", "",
		"<", "",
		">", "",
		"&", "",
		"#", "",
		"?", "",
		"%", "",
	)
	filename = replacer.Replace(filename)

	if filename == "." || filename == "/" || filename == "" {
		filename = "file"
	}
	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}
	return filename
}

// MimeTypeFromExtension guesses the MIME type of a listing attachment.
func MimeTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return MimeTypeJPEG
	case ".png":
		return MimeTypePNG
	case ".webp":
		return MimeTypeWebP
	case ".pdf":
		return MimeTypePDF
	default:
		return "application/octet-stream"
	}
}
