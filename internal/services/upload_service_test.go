package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditsync-backend/internal/apperrors"
	"creditsync-backend/internal/models"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestContentKind(t *testing.T) {
	tests := []struct {
		filename string
		kind     string
		wantErr  bool
	}{
		{"photo.jpg", models.ContentKindImage, false},
		{"photo.JPEG", models.ContentKindImage, false},
		{"scan.heic", models.ContentKindImage, false},
		{"clip.mp4", models.ContentKindVideo, false},
		{"clip.webm", models.ContentKindVideo, false},
		{"contract.pdf", "", true},
		{"noextension", "", true},
	}
	for _, tt := range tests {
		kind, err := contentKind(tt.filename)
		if tt.wantErr {
			assert.True(t, apperrors.Is(err, apperrors.CodeUnsupportedType), tt.filename)
			continue
		}
		require.NoError(t, err, tt.filename)
		assert.Equal(t, tt.kind, kind, tt.filename)
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "_scan_1_", sanitizeFilename("身份证 scan/1!"))
	assert.Len(t, sanitizeFilename(strings.Repeat("a", 300)), 200)
}

func TestSubmitBinary(t *testing.T) {
	m := newMemStores()
	blobs := newMemBlobs()
	svc := NewUploadService(m, m, m, blobs)
	p := staffPrincipal()
	order := seedOrder(m, p.ID, models.OrderStatusInProgress)
	item := seedItem(m, true, models.ContentKindImage)

	data := pngBytes(t)
	file, err := svc.Submit(context.Background(), order.ID, item.ID, p, ContentUnit{
		Filename: "id-card.png",
		MimeType: "image/png",
		Data:     data,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ContentKindImage, file.FileType)
	assert.True(t, strings.HasPrefix(file.StoragePath.String, "orders/"+order.ID.String()+"/"))
	assert.Equal(t, int64(len(data)), file.FileSize.Int64)

	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), file.Checksum.String)

	// Blob and thumbnail both written under the order's prefix.
	assert.Contains(t, blobs.objects, file.StoragePath.String)
	require.True(t, file.ThumbnailPath.Valid)
	assert.Contains(t, file.ThumbnailPath.String, "/thumbnails/thumb_")
	assert.Contains(t, blobs.objects, file.ThumbnailPath.String)
}

func TestSubmitRejectsUnsupportedExtension(t *testing.T) {
	m := newMemStores()
	svc := NewUploadService(m, m, m, newMemBlobs())
	p := staffPrincipal()
	order := seedOrder(m, p.ID, models.OrderStatusInProgress)
	item := seedItem(m, true, models.ContentKindImage)

	_, err := svc.Submit(context.Background(), order.ID, item.ID, p, ContentUnit{
		Filename: "contract.pdf",
		Data:     []byte("%PDF"),
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeUnsupportedType))
}

func TestSubmitRejectsKindTheItemDoesNotAccept(t *testing.T) {
	m := newMemStores()
	svc := NewUploadService(m, m, m, newMemBlobs())
	p := staffPrincipal()
	order := seedOrder(m, p.ID, models.OrderStatusInProgress)
	imageOnly := seedItem(m, true, models.ContentKindImage)

	_, err := svc.Submit(context.Background(), order.ID, imageOnly.ID, p, ContentUnit{
		Filename: "clip.mp4",
		Data:     []byte("data"),
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeUnsupportedType))

	_, err = svc.Submit(context.Background(), order.ID, imageOnly.ID, p, ContentUnit{
		TextContent: "some notes",
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeUnsupportedType))
}

func TestSubmitText(t *testing.T) {
	m := newMemStores()
	svc := NewUploadService(m, m, m, newMemBlobs())
	p := staffPrincipal()
	order := seedOrder(m, p.ID, models.OrderStatusInProgress)
	item := seedItem(m, false, models.ContentKindText)

	file, err := svc.Submit(context.Background(), order.ID, item.ID, p, ContentUnit{
		TextContent: "monthly salary 12000",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContentKindText, file.FileType)
	assert.Equal(t, "monthly salary 12000", file.TextContent.String)
	assert.False(t, file.StoragePath.Valid)
}

func TestSubmitRejectedOnCompletedOrder(t *testing.T) {
	m := newMemStores()
	svc := NewUploadService(m, m, m, newMemBlobs())
	p := staffPrincipal()
	order := seedOrder(m, p.ID, models.OrderStatusCompleted)
	item := seedItem(m, true, models.ContentKindImage)

	_, err := svc.Submit(context.Background(), order.ID, item.ID, p, ContentUnit{
		Filename: "photo.jpg",
		Data:     []byte("data"),
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidState))
}

func TestSubmitDeniedForOtherStaff(t *testing.T) {
	m := newMemStores()
	svc := NewUploadService(m, m, m, newMemBlobs())
	owner := staffPrincipal()
	order := seedOrder(m, owner.ID, models.OrderStatusInProgress)
	item := seedItem(m, true, models.ContentKindImage)

	_, err := svc.Submit(context.Background(), order.ID, item.ID, staffPrincipal(), ContentUnit{
		Filename: "photo.jpg",
		Data:     pngBytes(t),
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	_, err = svc.Submit(context.Background(), order.ID, item.ID, adminPrincipal(), ContentUnit{
		Filename: "photo.jpg",
		Data:     pngBytes(t),
	})
	assert.NoError(t, err)
}

func TestSubmitCleansUpBlobWhenRecordFails(t *testing.T) {
	m := newMemStores()
	m.createFileErr = errors.New("insert failed")
	blobs := newMemBlobs()
	svc := NewUploadService(m, m, m, blobs)
	p := staffPrincipal()
	order := seedOrder(m, p.ID, models.OrderStatusInProgress)
	item := seedItem(m, true, models.ContentKindImage)

	_, err := svc.Submit(context.Background(), order.ID, item.ID, p, ContentUnit{
		Filename: "photo.png",
		Data:     pngBytes(t),
	})
	require.Error(t, err)
	assert.Empty(t, blobs.objects)
	assert.Empty(t, m.files)
}

func TestSubmitBatchPartialFailure(t *testing.T) {
	m := newMemStores()
	svc := NewUploadService(m, m, m, newMemBlobs())
	p := staffPrincipal()
	order := seedOrder(m, p.ID, models.OrderStatusInProgress)
	item := seedItem(m, true, models.ContentKindImage)

	result, err := svc.SubmitBatch(context.Background(), order.ID, item.ID, p, []ContentUnit{
		{Filename: "front.png", Data: pngBytes(t)},
		{Filename: "contract.pdf", Data: []byte("%PDF")},
		{Filename: "back.png", Data: pngBytes(t)},
	})
	require.NoError(t, err)

	assert.Len(t, result.Files, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "contract.pdf", result.Failed[0].Filename)
	assert.Len(t, m.files, 2)
}

func TestDeleteFile(t *testing.T) {
	m := newMemStores()
	blobs := newMemBlobs()
	svc := NewUploadService(m, m, m, blobs)
	p := staffPrincipal()
	order := seedOrder(m, p.ID, models.OrderStatusInProgress)
	item := seedItem(m, true, models.ContentKindImage)
	file := seedFileFor(m, order.ID, item.ID)
	blobs.objects[file.StoragePath.String] = []byte("data")

	require.NoError(t, svc.DeleteFile(context.Background(), file.ID, p))
	assert.Empty(t, m.files)
	assert.Empty(t, blobs.objects)
}

func TestDeleteFileRejectedOnCompletedOrder(t *testing.T) {
	m := newMemStores()
	svc := NewUploadService(m, m, m, newMemBlobs())
	p := staffPrincipal()
	order := seedOrder(m, p.ID, models.OrderStatusCompleted)
	item := seedItem(m, true, models.ContentKindImage)
	file := seedFileFor(m, order.ID, item.ID)

	err := svc.DeleteFile(context.Background(), file.ID, p)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidState))
	assert.Len(t, m.files, 1)
}
