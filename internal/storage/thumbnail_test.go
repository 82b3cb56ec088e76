package storage_test

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditsync-backend/internal/storage"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func TestThumbnailIsSquareJPEG(t *testing.T) {
	for _, dims := range [][2]int{{640, 480}, {480, 640}, {50, 50}} {
		data, err := storage.Thumbnail(encodePNG(t, dims[0], dims[1]))
		require.NoError(t, err)

		img, err := jpeg.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 200, img.Bounds().Dx())
		assert.Equal(t, 200, img.Bounds().Dy())
	}
}

func TestThumbnailRejectsNonImageData(t *testing.T) {
	_, err := storage.Thumbnail([]byte("not an image"))
	assert.Error(t, err)
}
