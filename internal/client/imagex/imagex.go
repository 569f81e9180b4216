// Package imagex prepares captured photos for storage and upload.
package imagex

import (
	"bytes"
	"fmt"
	"image"

	"github.com/Tredoux555/whale-class-sub004/internal/common"
	"github.com/disintegration/imaging"
)

const (
	MaxEdge        = 1920
	Quality        = 85
	PreviewSize    = 200
	PreviewQuality = 70
)

// Photo is a processed capture.
type Photo struct {
	JPEG    []byte
	Preview []byte
	Width   int
	Height  int
}

// Process decodes raw, applies EXIF orientation, scales it so that the longer
// edge is at most MaxEdge and re-encodes it as JPEG. Images already within
// bounds keep their dimensions. Undecodable content fails with common.ErrDecode.
func Process(raw []byte) (*Photo, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecode, err)
	}

	img = fit(img)

	out, err := encode(img, Quality)
	if err != nil {
		return nil, err
	}
	preview, err := encode(imaging.Fill(img, PreviewSize, PreviewSize, imaging.Center, imaging.Lanczos), PreviewQuality)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &Photo{JPEG: out, Preview: preview, Width: b.Dx(), Height: b.Dy()}, nil
}

func fit(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= MaxEdge && h <= MaxEdge {
		return img
	}
	if w >= h {
		return imaging.Resize(img, MaxEdge, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, MaxEdge, imaging.Lanczos)
}

func encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
