package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"creditsync-backend/internal/models"
	"creditsync-backend/internal/services"
)

const userColumns = `id, username, password_hash, display_name, role, is_active, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName,
		&u.Role, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, translateErr(err)
	}
	return &u, nil
}

func (c *Client) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1
	`, username)
	return scanUser(row)
}

func (c *Client) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := c.db.ExecContext(ctx, `
		UPDATE users
		SET last_login_at = $1, updated_at = NOW()
		WHERE id = $2
	`, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.ErrNotFound
	}
	return nil
}

var _ services.UserStore = (*Client)(nil)
