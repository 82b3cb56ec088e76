package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"creditsync-backend/internal/models"
	"creditsync-backend/internal/services"
)

const itemColumns = `id, category_id, name, description, file_types, is_required, sort_order, is_active, created_at, updated_at`

func scanItem(row interface{ Scan(...interface{}) error }) (*models.MaterialItem, error) {
	var m models.MaterialItem
	err := row.Scan(
		&m.ID, &m.CategoryID, &m.Name, &m.Description, pq.Array(&m.FileTypes),
		&m.IsRequired, &m.SortOrder, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, translateErr(err)
	}
	return &m, nil
}

func (c *Client) GetItem(ctx context.Context, id uuid.UUID) (*models.MaterialItem, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM material_items
		WHERE id = $1
	`, id)
	return scanItem(row)
}

func (c *Client) ListRequiredActiveItems(ctx context.Context) ([]models.MaterialItem, error) {
	return c.queryItems(ctx, `
		SELECT `+itemColumns+`
		FROM material_items
		WHERE is_required = TRUE AND is_active = TRUE
		ORDER BY sort_order ASC
	`)
}

func (c *Client) ListItems(ctx context.Context, includeInactive bool) ([]models.MaterialItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM material_items
	`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order ASC, name ASC`
	return c.queryItems(ctx, query)
}

func (c *Client) queryItems(ctx context.Context, query string, args ...interface{}) ([]models.MaterialItem, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query material items: %w", err)
	}
	defer rows.Close()

	var items []models.MaterialItem
	for rows.Next() {
		m, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material item: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

func (c *Client) CreateItem(ctx context.Context, item *models.MaterialItem) error {
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO material_items (id, category_id, name, description, file_types, is_required, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, item.ID, item.CategoryID, item.Name, item.Description, pq.Array(item.FileTypes),
		item.IsRequired, item.SortOrder, item.IsActive,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	return translateErr(err)
}

func (c *Client) UpdateItem(ctx context.Context, item *models.MaterialItem) error {
	res, err := c.db.ExecContext(ctx, `
		UPDATE material_items
		SET name = $1, description = $2, file_types = $3, is_required = $4,
		    sort_order = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
	`, item.Name, item.Description, pq.Array(item.FileTypes),
		item.IsRequired, item.SortOrder, item.IsActive, item.ID)
	if err != nil {
		return translateErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (c *Client) DeleteItem(ctx context.Context, id uuid.UUID) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM material_items WHERE id = $1`, id)
	if err != nil {
		return translateErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (c *Client) GetCategory(ctx context.Context, id uuid.UUID) (*models.MaterialCategory, error) {
	var cat models.MaterialCategory
	err := c.db.QueryRowContext(ctx, `
		SELECT id, name, description, sort_order, is_active, created_at, updated_at
		FROM material_categories
		WHERE id = $1
	`, id).Scan(&cat.ID, &cat.Name, &cat.Description, &cat.SortOrder, &cat.IsActive, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		return nil, translateErr(err)
	}
	return &cat, nil
}

func (c *Client) ListCategories(ctx context.Context, includeInactive bool) ([]models.MaterialCategory, error) {
	query := `
		SELECT id, name, description, sort_order, is_active, created_at, updated_at
		FROM material_categories
	`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order ASC, name ASC`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query material categories: %w", err)
	}
	defer rows.Close()

	var categories []models.MaterialCategory
	for rows.Next() {
		var cat models.MaterialCategory
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.SortOrder, &cat.IsActive, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan material category: %w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (c *Client) CreateCategory(ctx context.Context, category *models.MaterialCategory) error {
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO material_categories (id, name, description, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, category.ID, category.Name, category.Description, category.SortOrder, category.IsActive,
	).Scan(&category.CreatedAt, &category.UpdatedAt)
	return translateErr(err)
}

func (c *Client) UpdateCategory(ctx context.Context, category *models.MaterialCategory) error {
	res, err := c.db.ExecContext(ctx, `
		UPDATE material_categories
		SET name = $1, description = $2, sort_order = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
	`, category.Name, category.Description, category.SortOrder, category.IsActive, category.ID)
	if err != nil {
		return translateErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (c *Client) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM material_categories WHERE id = $1`, id)
	if err != nil {
		return translateErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.ErrNotFound
	}
	return nil
}

var _ services.MaterialStore = (*Client)(nil)
