// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging implements the measure/resize collaborator for banner
// uploads using pure Go libraries.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// JPEG quality for derived images.
const derivedQuality = 90

// Processor handles image measurement and derivation.
type Processor struct {
	uploadDir string
}

// NewProcessor creates a new image processor rooted at uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{uploadDir: uploadDir}
}

// Measure reads the pixel dimensions of image data without decoding the
// full image.
func (p *Processor) Measure(data []byte) (width, height int, err error) {
	if detectFormat(data) == "" {
		return 0, 0, fmt.Errorf("unsupported image format")
	}
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("reading image config: %w", err)
	}
	return config.Width, config.Height, nil
}

// MeasureFile reads the pixel dimensions of an image file.
func (p *Processor) MeasureFile(path string) (width, height int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening image: %w", err)
	}
	defer func() { _ = file.Close() }()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("reading image config: %w", err)
	}
	return config.Width, config.Height, nil
}

// Resize produces a resized copy of a source image and returns the path
// of the new file. The derived file sits next to the source with a
// WxH suffix so repeated derivations for the same target collide on the
// same path.
func (p *Processor) Resize(sourcePath string, targetWidth, targetHeight int) (string, error) {
	img, err := imaging.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("opening source image: %w", err)
	}

	resized := imaging.Fit(img, targetWidth, targetHeight, imaging.Lanczos)

	format := detectFormatFromFilename(sourcePath)
	data, err := encodeImage(resized, format, derivedQuality)
	if err != nil {
		return "", fmt.Errorf("encoding resized image: %w", err)
	}

	ext := filepath.Ext(sourcePath)
	base := strings.TrimSuffix(sourcePath, ext)
	target := fmt.Sprintf("%s_%dx%d%s", base, targetWidth, targetHeight, ext)

	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("saving resized image: %w", err)
	}
	return target, nil
}

// Normalize decodes uploaded image data, applies EXIF orientation, and
// re-encodes it. Pure Go encoders drop EXIF metadata, which is desirable
// for published banner files.
func (p *Processor) Normalize(data []byte) ([]byte, error) {
	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	orientation := readExifOrientation(bytes.NewReader(data))
	img = applyOrientation(img, orientation)

	return encodeImage(img, format, 95)
}

// DetectMimeType detects the MIME type of image data.
func (p *Processor) DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	// http.DetectContentType returns types like "image/jpeg; charset=utf-8"
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// readExifOrientation returns the EXIF orientation tag value, or 1 (normal)
// when the tag is absent or unreadable.
func readExifOrientation(r io.Reader) int {
	meta, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	if v, err := tag.Int(0); err == nil {
		return v
	}
	return 1
}

// exifTransforms maps orientation tag values 2..8 to the transform undoing
// them. Value 1 needs no transform.
var exifTransforms = map[int]func(image.Image) image.Image{
	2: func(img image.Image) image.Image { return imaging.FlipH(img) },
	3: func(img image.Image) image.Image { return imaging.Rotate180(img) },
	4: func(img image.Image) image.Image { return imaging.FlipV(img) },
	5: func(img image.Image) image.Image { return imaging.FlipH(imaging.Rotate270(img)) },
	6: func(img image.Image) image.Image { return imaging.Rotate270(img) },
	7: func(img image.Image) image.Image { return imaging.FlipH(imaging.Rotate90(img)) },
	8: func(img image.Image) image.Image { return imaging.Rotate90(img) },
}

func applyOrientation(img image.Image, orientation int) image.Image {
	if fix, ok := exifTransforms[orientation]; ok {
		return fix(img)
	}
	return img
}

// encodeImage encodes an image to bytes with the specified format and quality.
// There is no pure-Go webp encoder, so webp sources re-encode as jpeg.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectFormat sniffs the image format from raw bytes. TIFF is rejected
// outright (CVE-2023-36308 in disintegration/imaging).
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	for _, f := range []string{"jpeg", "png", "gif", "webp"} {
		if strings.Contains(contentType, f) {
			return f
		}
	}
	return ""
}

// detectFormatFromFilename maps a file extension to a format name,
// defaulting to jpeg.
func detectFormatFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		return "jpeg"
	}
}
