package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// CollaborationLink grants token-bearer upload access to one order.
// Rows are never hard-deleted; deactivation and expiry only end
// validity, the row stays for audit.
type CollaborationLink struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	Token          string
	ExpiresAt      time.Time
	CreatedBy      uuid.UUID
	AccessCount    int
	LastAccessedAt sql.NullTime
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	CreatorUsername string
}

// IsValid reports whether the link can still be redeemed.
func (l *CollaborationLink) IsValid(now time.Time) bool {
	return l.IsActive && now.Before(l.ExpiresAt)
}

type CollaborationLinkView struct {
	ID              uuid.UUID  `json:"id"`
	OrderID         uuid.UUID  `json:"order_id"`
	Token           string     `json:"token"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	CreatorUsername string     `json:"creator_username,omitempty"`
	AccessCount     int        `json:"access_count"`
	LastAccessedAt  *time.Time `json:"last_accessed_at,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

func NewCollaborationLinkView(l *CollaborationLink) CollaborationLinkView {
	v := CollaborationLinkView{
		ID:              l.ID,
		OrderID:         l.OrderID,
		Token:           l.Token,
		ExpiresAt:       l.ExpiresAt,
		CreatedBy:       l.CreatedBy,
		CreatorUsername: l.CreatorUsername,
		AccessCount:     l.AccessCount,
		IsActive:        l.IsActive,
		CreatedAt:       l.CreatedAt,
	}
	if l.LastAccessedAt.Valid {
		t := l.LastAccessedAt.Time
		v.LastAccessedAt = &t
	}
	return v
}

func NewCollaborationLinkViews(links []CollaborationLink) []CollaborationLinkView {
	views := make([]CollaborationLinkView, len(links))
	for i := range links {
		views[i] = NewCollaborationLinkView(&links[i])
	}
	return views
}
