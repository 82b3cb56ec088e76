package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UploadedFile is one content unit attached to an (order, material item)
// pair. Binary uploads carry storage fields; text submissions carry
// TextContent instead.
type UploadedFile struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	MaterialItemID uuid.UUID
	UploaderID     uuid.UUID
	FileType       string

	FileName      sql.NullString
	OriginalName  sql.NullString
	StoragePath   sql.NullString
	ThumbnailPath sql.NullString
	FileSize      sql.NullInt64
	MimeType      sql.NullString
	Checksum      sql.NullString
	TextContent   sql.NullString
	Metadata      json.RawMessage

	UploadedAt time.Time
	CreatedAt  time.Time

	// Populated by queries that join material items / categories.
	MaterialItemName string
	CategoryName     string
}

type FileView struct {
	ID               uuid.UUID       `json:"id"`
	OrderID          uuid.UUID       `json:"order_id"`
	MaterialItemID   uuid.UUID       `json:"material_item_id"`
	MaterialItemName string          `json:"material_item_name,omitempty"`
	CategoryName     string          `json:"category_name,omitempty"`
	UploaderID       uuid.UUID       `json:"uploader_id"`
	FileType         string          `json:"file_type"`
	FileName         *string         `json:"file_name,omitempty"`
	OriginalName     *string         `json:"original_name,omitempty"`
	StoragePath      *string         `json:"storage_path,omitempty"`
	ThumbnailPath    *string         `json:"thumbnail_path,omitempty"`
	FileSize         *int64          `json:"file_size,omitempty"`
	MimeType         *string         `json:"mime_type,omitempty"`
	Checksum         *string         `json:"checksum,omitempty"`
	TextContent      *string         `json:"text_content,omitempty"`
	Metadata         json.RawMessage `json:"metadata,omitempty"`
	UploadedAt       time.Time       `json:"uploaded_at"`
}

func NewFileView(f *UploadedFile) FileView {
	v := FileView{
		ID:               f.ID,
		OrderID:          f.OrderID,
		MaterialItemID:   f.MaterialItemID,
		MaterialItemName: f.MaterialItemName,
		CategoryName:     f.CategoryName,
		UploaderID:       f.UploaderID,
		FileType:         f.FileType,
		Metadata:         f.Metadata,
		UploadedAt:       f.UploadedAt,
	}
	v.FileName = nullString(f.FileName)
	v.OriginalName = nullString(f.OriginalName)
	v.StoragePath = nullString(f.StoragePath)
	v.ThumbnailPath = nullString(f.ThumbnailPath)
	v.MimeType = nullString(f.MimeType)
	v.Checksum = nullString(f.Checksum)
	v.TextContent = nullString(f.TextContent)
	if f.FileSize.Valid {
		n := f.FileSize.Int64
		v.FileSize = &n
	}
	return v
}

func NewFileViews(files []UploadedFile) []FileView {
	views := make([]FileView, len(files))
	for i := range files {
		views[i] = NewFileView(&files[i])
	}
	return views
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
