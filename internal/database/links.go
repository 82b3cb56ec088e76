package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"creditsync-backend/internal/models"
	"creditsync-backend/internal/services"
)

const linkColumns = `l.id, l.order_id, l.token, l.expires_at, l.created_by, l.access_count,
	l.last_accessed_at, l.is_active, l.created_at, l.updated_at, u.username`

func scanLink(row interface{ Scan(...interface{}) error }) (*models.CollaborationLink, error) {
	var l models.CollaborationLink
	err := row.Scan(
		&l.ID, &l.OrderID, &l.Token, &l.ExpiresAt, &l.CreatedBy, &l.AccessCount,
		&l.LastAccessedAt, &l.IsActive, &l.CreatedAt, &l.UpdatedAt, &l.CreatorUsername,
	)
	if err != nil {
		return nil, translateErr(err)
	}
	return &l, nil
}

// ReuseOrCreateLink locks the order's valid link row, if any, so two
// concurrent issue requests for the same order settle on one row. The
// winner either extends the locked row or inserts the fresh token.
func (c *Client) ReuseOrCreateLink(ctx context.Context, orderID, createdBy uuid.UUID, token string, expiresAt time.Time) (*models.CollaborationLink, bool, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		SELECT id
		FROM collaboration_links
		WHERE order_id = $1 AND is_active = TRUE AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`, orderID).Scan(&existingID)

	var linkID uuid.UUID
	reused := false
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `
			UPDATE collaboration_links
			SET expires_at = $1, updated_at = NOW()
			WHERE id = $2
		`, expiresAt, existingID); err != nil {
			return nil, false, translateErr(err)
		}
		linkID = existingID
		reused = true
	case errors.Is(err, sql.ErrNoRows):
		linkID = uuid.New()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO collaboration_links (id, order_id, token, expires_at, created_by)
			VALUES ($1, $2, $3, $4, $5)
		`, linkID, orderID, token, expiresAt, createdBy); err != nil {
			return nil, false, translateErr(err)
		}
	default:
		return nil, false, translateErr(err)
	}

	link, err := scanLink(tx.QueryRowContext(ctx, `
		SELECT `+linkColumns+`
		FROM collaboration_links l
		JOIN users u ON u.id = l.created_by
		WHERE l.id = $1
	`, linkID))
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return link, reused, nil
}

func (c *Client) GetLink(ctx context.Context, id uuid.UUID) (*models.CollaborationLink, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+linkColumns+`
		FROM collaboration_links l
		JOIN users u ON u.id = l.created_by
		WHERE l.id = $1
	`, id)
	return scanLink(row)
}

func (c *Client) GetLinkByToken(ctx context.Context, token string) (*models.CollaborationLink, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+linkColumns+`
		FROM collaboration_links l
		JOIN users u ON u.id = l.created_by
		WHERE l.token = $1
	`, token)
	return scanLink(row)
}

func (c *Client) RecordAccess(ctx context.Context, id uuid.UUID, at time.Time) (*models.CollaborationLink, error) {
	var returnedID uuid.UUID
	err := c.db.QueryRowContext(ctx, `
		UPDATE collaboration_links
		SET access_count = access_count + 1, last_accessed_at = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id
	`, at, id).Scan(&returnedID)
	if err != nil {
		return nil, translateErr(err)
	}
	return c.GetLink(ctx, returnedID)
}

func (c *Client) ListLinksByOrder(ctx context.Context, orderID uuid.UUID) ([]models.CollaborationLink, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+linkColumns+`
		FROM collaboration_links l
		JOIN users u ON u.id = l.created_by
		WHERE l.order_id = $1
		ORDER BY l.created_at DESC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []models.CollaborationLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}

func (c *Client) SetLinkActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := c.db.ExecContext(ctx, `
		UPDATE collaboration_links
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`, active, id)
	if err != nil {
		return translateErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (c *Client) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `
		UPDATE collaboration_links
		SET is_active = FALSE, updated_at = NOW()
		WHERE is_active = TRUE AND expires_at <= $1
	`, now)
	if err != nil {
		return 0, translateErr(err)
	}
	return res.RowsAffected()
}

var _ services.LinkStore = (*Client)(nil)
