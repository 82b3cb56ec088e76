package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"creditsync-backend/internal/models"
	"creditsync-backend/internal/services"
)

const orderColumns = `o.id, o.order_number, o.customer_name, o.customer_id_card, o.creator_id,
	o.status, o.submitted_at, o.notes, o.created_at, o.updated_at, u.username`

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerIDCard, &o.CreatorID,
		&o.Status, &o.SubmittedAt, &o.Notes, &o.CreatedAt, &o.UpdatedAt, &o.CreatorUsername,
	)
	if err != nil {
		return nil, translateErr(err)
	}
	return &o, nil
}

func (c *Client) CreateOrder(ctx context.Context, order *models.Order) error {
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, order_number, customer_name, customer_id_card, creator_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, order.ID, order.OrderNumber, order.CustomerName, order.CustomerIDCard,
		order.CreatorID, order.Status,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	return translateErr(err)
}

func (c *Client) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN users u ON u.id = o.creator_id
		WHERE o.id = $1
	`, id)
	return scanOrder(row)
}

func (c *Client) ListOrders(ctx context.Context, filter services.OrderFilter) ([]models.Order, int64, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CreatorID != uuid.Nil {
		where += " AND o.creator_id = " + arg(filter.CreatorID)
	}
	if filter.Status != "" {
		where += " AND o.status = " + arg(filter.Status)
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where += fmt.Sprintf(" AND (o.order_number ILIKE %s OR o.customer_name ILIKE %s)", p, p)
	}

	var total int64
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders o `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.id = o.creator_id
		` + where + `
		ORDER BY o.created_at DESC
		LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(offset)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, total, rows.Err()
}

func (c *Client) UpdateOrder(ctx context.Context, order *models.Order) error {
	res, err := c.db.ExecContext(ctx, `
		UPDATE orders
		SET customer_name = $1, customer_id_card = $2, notes = $3,
		    status = $4, submitted_at = $5, updated_at = NOW()
		WHERE id = $6
	`, order.CustomerName, order.CustomerIDCard, order.Notes,
		order.Status, order.SubmittedAt, order.ID)
	if err != nil {
		return translateErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.ErrNotFound
	}
	return nil
}

// DeleteOrderCascade removes the order's file rows, link rows and the
// order itself in one transaction. The storage paths of deleted files
// are collected first so the caller can clean up blobs afterwards; a
// storage failure never blocks the database deletion.
func (c *Client) DeleteOrderCascade(ctx context.Context, id uuid.UUID) ([]string, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT storage_path, thumbnail_path
		FROM uploaded_files
		WHERE order_id = $1 AND storage_path IS NOT NULL
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to collect storage paths: %w", err)
	}
	var blobPaths []string
	for rows.Next() {
		var storagePath, thumbnailPath *string
		if err := rows.Scan(&storagePath, &thumbnailPath); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan storage path: %w", err)
		}
		if storagePath != nil {
			blobPaths = append(blobPaths, *storagePath)
		}
		if thumbnailPath != nil {
			blobPaths = append(blobPaths, *thumbnailPath)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM uploaded_files WHERE order_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete order files: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collaboration_links WHERE order_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete collaboration links: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, services.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order deletion: %w", err)
	}
	return blobPaths, nil
}

var _ services.OrderStore = (*Client)(nil)
