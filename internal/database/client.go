// Package database implements the service store interfaces on
// PostgreSQL via database/sql and lib/pq.
package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"creditsync-backend/internal/services"
)

const uniqueViolation = "23505"

type Client struct {
	db *sql.DB
}

func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

// translateErr maps driver errors onto the store sentinels services
// branch on.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return services.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", services.ErrDuplicate, pqErr.Constraint)
	}
	return err
}
