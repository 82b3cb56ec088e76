package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"creditsync-backend/internal/apperrors"
	"creditsync-backend/internal/logger"
	"creditsync-backend/internal/models"
	"creditsync-backend/internal/storage"
)

// Extension tables deciding the content kind of a binary upload. The
// client-declared mime type is recorded but never consulted.
var (
	imageExtensions = map[string]bool{
		"jpg": true, "jpeg": true, "png": true, "gif": true,
		"bmp": true, "webp": true, "heic": true,
	}
	videoExtensions = map[string]bool{
		"mp4": true, "avi": true, "mov": true,
		"wmv": true, "flv": true, "webm": true,
	}
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	repeatedUnderscores = regexp.MustCompile(`_{2,}`)
)

// ContentUnit is one submission: either TextContent, or a binary with
// its declared original filename and mime type.
type ContentUnit struct {
	TextContent string
	Filename    string
	MimeType    string
	Data        []byte
}

func (u *ContentUnit) isText() bool { return u.TextContent != "" }

type UploadService struct {
	orders    OrderStore
	files     FileStore
	materials MaterialStore
	blobs     BlobStore
}

func NewUploadService(orders OrderStore, files FileStore, materials MaterialStore, blobs BlobStore) *UploadService {
	return &UploadService{
		orders:    orders,
		files:     files,
		materials: materials,
		blobs:     blobs,
	}
}

// contentKind derives the kind from the filename extension.
func contentKind(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch {
	case imageExtensions[ext]:
		return models.ContentKindImage, nil
	case videoExtensions[ext]:
		return models.ContentKindVideo, nil
	default:
		return "", apperrors.UnsupportedContentType(fmt.Sprintf("unsupported file extension: %q", ext))
	}
}

func sanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = repeatedUnderscores.ReplaceAllString(name, "_")
	if len(name) > 200 {
		name = name[:200]
	}
	return name
}

// uniqueName qualifies the original filename with time and randomness
// so blob paths never collide.
func uniqueName(originalName string, now time.Time) string {
	ext := filepath.Ext(originalName)
	base := sanitizeFilename(strings.TrimSuffix(filepath.Base(originalName), ext))
	return fmt.Sprintf("%d_%s_%s%s", now.UnixMilli(), uuid.NewString()[:8], base, strings.ToLower(ext))
}

// Submit validates and persists a single content unit against an
// (order, material item) pair. Preconditions are checked in a fixed
// order, each one a distinct failure.
func (s *UploadService) Submit(ctx context.Context, orderID, itemID uuid.UUID, principal models.Principal, unit ContentUnit) (*models.UploadedFile, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, apperrors.Upstream("failed to load order", err)
	}
	if !IsOwnerOrAdmin(principal, order.CreatorID) {
		return nil, apperrors.Forbidden("no access to this order")
	}
	item, err := s.materials.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("material item not found")
		}
		return nil, apperrors.Upstream("failed to load material item", err)
	}
	if order.Status == models.OrderStatusCompleted {
		return nil, apperrors.InvalidState("completed orders cannot accept uploads")
	}

	if unit.isText() {
		return s.submitText(ctx, order, item, principal, unit)
	}
	return s.submitBinary(ctx, order, item, principal, unit)
}

// SubmitBatch processes up to maxUnits independently; a failing unit is
// reported and skipped, never aborting the rest.
func (s *UploadService) SubmitBatch(ctx context.Context, orderID, itemID uuid.UUID, principal models.Principal, units []ContentUnit) (*models.BatchUploadResult, error) {
	if len(units) == 0 {
		return nil, apperrors.ValidationFailed("no content provided")
	}

	result := &models.BatchUploadResult{
		Files:  []models.FileView{},
		Failed: []models.BatchFailure{},
	}
	for i := range units {
		file, err := s.Submit(ctx, orderID, itemID, principal, units[i])
		if err != nil {
			appErr := apperrors.As(err)
			result.Failed = append(result.Failed, models.BatchFailure{
				Filename: units[i].Filename,
				Reason:   appErr.Message,
			})
			continue
		}
		result.Files = append(result.Files, models.NewFileView(file))
	}

	logger.L.Info("batch upload completed",
		zap.String("order_id", orderID.String()),
		zap.Int("succeeded", len(result.Files)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *UploadService) submitText(ctx context.Context, order *models.Order, item *models.MaterialItem, principal models.Principal, unit ContentUnit) (*models.UploadedFile, error) {
	if !item.Accepts(models.ContentKindText) {
		return nil, apperrors.UnsupportedContentType("this material item does not accept text content")
	}

	now := time.Now().UTC()
	file := &models.UploadedFile{
		ID:             uuid.New(),
		OrderID:        order.ID,
		MaterialItemID: item.ID,
		UploaderID:     principal.ID,
		FileType:       models.ContentKindText,
		TextContent:    sql.NullString{String: unit.TextContent, Valid: true},
		UploadedAt:     now,
	}
	if err := s.files.CreateFile(ctx, file); err != nil {
		return nil, apperrors.Upstream("failed to save text content", err)
	}

	logger.L.Info("text content submitted",
		zap.String("file_id", file.ID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("material_item_id", item.ID.String()),
	)
	return file, nil
}

func (s *UploadService) submitBinary(ctx context.Context, order *models.Order, item *models.MaterialItem, principal models.Principal, unit ContentUnit) (*models.UploadedFile, error) {
	if unit.Filename == "" || len(unit.Data) == 0 {
		return nil, apperrors.ValidationFailed("no file or text content provided")
	}

	kind, err := contentKind(unit.Filename)
	if err != nil {
		return nil, err
	}
	if !item.Accepts(kind) {
		return nil, apperrors.UnsupportedContentType(fmt.Sprintf("this material item does not accept %s files", kind))
	}

	now := time.Now().UTC()
	name := uniqueName(unit.Filename, now)
	storagePath := fmt.Sprintf("orders/%s/%s", order.ID, name)

	if err := s.blobs.Upload(ctx, storagePath, unit.Data, unit.MimeType); err != nil {
		return nil, apperrors.Upstream("failed to store file", err)
	}

	sum := sha256.Sum256(unit.Data)
	checksum := hex.EncodeToString(sum[:])

	// Thumbnail derivation is best-effort: a failure is logged and the
	// upload proceeds without one.
	var thumbnailPath sql.NullString
	if kind == models.ContentKindImage {
		thumbData, err := storage.Thumbnail(unit.Data)
		if err != nil {
			logger.L.Warn("failed to generate thumbnail",
				zap.String("filename", unit.Filename),
				zap.Error(err),
			)
		} else {
			path := fmt.Sprintf("orders/%s/thumbnails/thumb_%s.jpg", order.ID, strings.TrimSuffix(name, filepath.Ext(name)))
			if err := s.blobs.Upload(ctx, path, thumbData, "image/jpeg"); err != nil {
				logger.L.Warn("failed to store thumbnail",
					zap.String("filename", unit.Filename),
					zap.Error(err),
				)
			} else {
				thumbnailPath = sql.NullString{String: path, Valid: true}
			}
		}
	}

	metadata, _ := json.Marshal(map[string]string{
		"declared_mime_type": unit.MimeType,
	})

	file := &models.UploadedFile{
		ID:             uuid.New(),
		OrderID:        order.ID,
		MaterialItemID: item.ID,
		UploaderID:     principal.ID,
		FileType:       kind,
		FileName:       sql.NullString{String: name, Valid: true},
		OriginalName:   sql.NullString{String: unit.Filename, Valid: true},
		StoragePath:    sql.NullString{String: storagePath, Valid: true},
		ThumbnailPath:  thumbnailPath,
		FileSize:       sql.NullInt64{Int64: int64(len(unit.Data)), Valid: true},
		MimeType:       sql.NullString{String: unit.MimeType, Valid: unit.MimeType != ""},
		Checksum:       sql.NullString{String: checksum, Valid: true},
		Metadata:       metadata,
		UploadedAt:     now,
	}

	if err := s.files.CreateFile(ctx, file); err != nil {
		// The blob is already written; remove it so no orphan remains.
		paths := []string{storagePath}
		if thumbnailPath.Valid {
			paths = append(paths, thumbnailPath.String)
		}
		if cleanupErr := s.blobs.Delete(ctx, paths...); cleanupErr != nil {
			logger.L.Error("failed to clean up orphaned blob",
				zap.String("storage_path", storagePath),
				zap.Error(cleanupErr),
			)
		}
		return nil, apperrors.Upstream("failed to save file record", err)
	}

	logger.L.Info("file uploaded",
		zap.String("file_id", file.ID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("material_item_id", item.ID.String()),
		zap.String("file_type", kind),
		zap.Int64("size", int64(len(unit.Data))),
	)
	return file, nil
}

// GetFileInfo returns one file record with its material item context.
func (s *UploadService) GetFileInfo(ctx context.Context, id uuid.UUID, principal models.Principal) (*models.UploadedFile, error) {
	file, order, err := s.getFileWithOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !IsOwnerOrAdmin(principal, order.CreatorID) {
		return nil, apperrors.Forbidden("no access to this file")
	}
	return file, nil
}

// DeleteFile removes the blob and thumbnail best-effort, then the
// record unconditionally.
func (s *UploadService) DeleteFile(ctx context.Context, id uuid.UUID, principal models.Principal) error {
	file, order, err := s.getFileWithOrder(ctx, id)
	if err != nil {
		return err
	}
	if !IsOwnerOrAdmin(principal, order.CreatorID) {
		return apperrors.Forbidden("no access to this file")
	}
	if order.Status == models.OrderStatusCompleted {
		return apperrors.InvalidState("files of a completed order cannot be deleted")
	}

	var paths []string
	if file.StoragePath.Valid {
		paths = append(paths, file.StoragePath.String)
	}
	if file.ThumbnailPath.Valid {
		paths = append(paths, file.ThumbnailPath.String)
	}
	if len(paths) > 0 {
		if err := s.blobs.Delete(ctx, paths...); err != nil {
			logger.L.Warn("failed to delete stored blob",
				zap.String("file_id", id.String()),
				zap.Error(err),
			)
		}
	}

	if err := s.files.DeleteFile(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.NotFound("file not found")
		}
		return apperrors.Upstream("failed to delete file record", err)
	}

	logger.L.Info("file deleted",
		zap.String("file_id", id.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("deleted_by", principal.ID.String()),
	)
	return nil
}

func (s *UploadService) getFileWithOrder(ctx context.Context, id uuid.UUID) (*models.UploadedFile, *models.Order, error) {
	file, err := s.files.GetFile(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, apperrors.NotFound("file not found")
		}
		return nil, nil, apperrors.Upstream("failed to load file", err)
	}
	order, err := s.orders.GetOrder(ctx, file.OrderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, apperrors.NotFound("order not found")
		}
		return nil, nil, apperrors.Upstream("failed to load order", err)
	}
	return file, order, nil
}
