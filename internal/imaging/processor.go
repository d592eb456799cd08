// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes listing photos before they are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/saramoussaya/barryland/internal/storage"
)

// Defaults for NewProcessor.
const (
	DefaultMaxDimension = 2048
	DefaultQuality      = 85
)

// ErrUnsupportedFormat is returned for data that is not a JPEG, PNG or WebP
// image.
var ErrUnsupportedFormat = errors.New("imaging: unsupported image format")

// Photo is a normalized image ready for storage.
type Photo struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// Processor re-encodes uploaded photos. EXIF orientation is applied and all
// other metadata dropped, and the longest side is capped at maxDim.
type Processor struct {
	maxDim  int
	quality int
}

// NewProcessor creates a Processor. Non-positive values use the defaults.
func NewProcessor(maxDim, quality int) *Processor {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Processor{maxDim: maxDim, quality: quality}
}

// Normalize reads at most storage.MaxUploadSize bytes from r and returns the
// re-encoded photo. WebP input is written back as JPEG.
func (p *Processor) Normalize(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, storage.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if int64(len(data)) > storage.MaxUploadSize {
		return nil, storage.ErrTooLarge
	}

	format := detectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	bounds := img.Bounds()
	if bounds.Dx() > p.maxDim || bounds.Dy() > p.maxDim {
		img = imaging.Fit(img, p.maxDim, p.maxDim, imaging.Lanczos)
	}

	out, mimeType, err := p.encode(img, format)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	bounds = img.Bounds()
	return &Photo{
		Data:     out,
		MimeType: mimeType,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

func (p *Processor) encode(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	if format == "png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), storage.MimeTypePNG, nil
	}
	// No pure Go WebP encoder; WebP becomes JPEG.
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), storage.MimeTypeJPEG, nil
}

// FilenameFor replaces the extension of filename to match mimeType.
func FilenameFor(filename, mimeType string) string {
	var ext string
	switch mimeType {
	case storage.MimeTypeJPEG:
		ext = ".jpg"
	case storage.MimeTypePNG:
		ext = ".png"
	default:
		return filename
	}
	current := filepath.Ext(filename)
	if strings.EqualFold(current, ext) || (ext == ".jpg" && strings.EqualFold(current, ".jpeg")) {
		return filename
	}
	return strings.TrimSuffix(filename, current) + ext
}

// IsPhoto reports whether mimeType is one of the image types Normalize
// accepts.
func IsPhoto(mimeType string) bool {
	switch mimeType {
	case storage.MimeTypeJPEG, storage.MimeTypePNG, storage.MimeTypeWebP:
		return true
	}
	return false
}

// readExifOrientation returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation undoes the camera rotation recorded in EXIF:
// 2 flip H, 3 rotate 180, 4 flip V, 5 transpose, 6 rotate 90 CW,
// 7 transverse, 8 rotate 90 CCW.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// TIFF is rejected outright (CVE-2023-36308 in disintegration/imaging).
	switch {
	case strings.Contains(contentType, "tiff"):
		return ""
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}
