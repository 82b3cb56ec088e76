package storage

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	thumbnailWidth       = 200
	thumbnailHeight      = 200
	thumbnailJPEGQuality = 80
)

// Thumbnail renders a 200x200 center-cropped JPEG from image bytes.
func Thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fill(img, thumbnailWidth, thumbnailHeight, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(thumbnailJPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
