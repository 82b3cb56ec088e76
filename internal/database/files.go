package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"creditsync-backend/internal/models"
	"creditsync-backend/internal/services"
)

const fileColumns = `f.id, f.order_id, f.material_item_id, f.uploader_id, f.file_type,
	f.file_name, f.original_name, f.storage_path, f.thumbnail_path, f.file_size,
	f.mime_type, f.checksum, f.text_content, f.metadata, f.uploaded_at, f.created_at,
	mi.name, mc.name`

func scanFile(row interface{ Scan(...interface{}) error }) (*models.UploadedFile, error) {
	var f models.UploadedFile
	err := row.Scan(
		&f.ID, &f.OrderID, &f.MaterialItemID, &f.UploaderID, &f.FileType,
		&f.FileName, &f.OriginalName, &f.StoragePath, &f.ThumbnailPath, &f.FileSize,
		&f.MimeType, &f.Checksum, &f.TextContent, &f.Metadata, &f.UploadedAt, &f.CreatedAt,
		&f.MaterialItemName, &f.CategoryName,
	)
	if err != nil {
		return nil, translateErr(err)
	}
	return &f, nil
}

func (c *Client) CreateFile(ctx context.Context, file *models.UploadedFile) error {
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO uploaded_files (
			id, order_id, material_item_id, uploader_id, file_type,
			file_name, original_name, storage_path, thumbnail_path, file_size,
			mime_type, checksum, text_content, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING uploaded_at, created_at
	`, file.ID, file.OrderID, file.MaterialItemID, file.UploaderID, file.FileType,
		file.FileName, file.OriginalName, file.StoragePath, file.ThumbnailPath, file.FileSize,
		file.MimeType, file.Checksum, file.TextContent, file.Metadata,
	).Scan(&file.UploadedAt, &file.CreatedAt)
	return translateErr(err)
}

func (c *Client) GetFile(ctx context.Context, id uuid.UUID) (*models.UploadedFile, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+fileColumns+`
		FROM uploaded_files f
		JOIN material_items mi ON mi.id = f.material_item_id
		JOIN material_categories mc ON mc.id = mi.category_id
		WHERE f.id = $1
	`, id)
	return scanFile(row)
}

func (c *Client) ListFilesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.UploadedFile, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+fileColumns+`
		FROM uploaded_files f
		JOIN material_items mi ON mi.id = f.material_item_id
		JOIN material_categories mc ON mc.id = mi.category_id
		WHERE f.order_id = $1
		ORDER BY f.uploaded_at ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []models.UploadedFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

func (c *Client) ItemIDsWithFiles(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT DISTINCT material_item_id
		FROM uploaded_files
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query covered items: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (c *Client) DeleteFile(ctx context.Context, id uuid.UUID) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM uploaded_files WHERE id = $1`, id)
	if err != nil {
		return translateErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.ErrNotFound
	}
	return nil
}

var _ services.FileStore = (*Client)(nil)
