package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
)

type Order struct {
	ID             uuid.UUID
	OrderNumber    string
	CustomerName   string
	CustomerIDCard sql.NullString
	CreatorID      uuid.UUID
	Status         string
	SubmittedAt    sql.NullTime
	Notes          sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// CreatorUsername is populated by queries that join users.
	CreatorUsername string
}

type OrderView struct {
	ID              uuid.UUID  `json:"id"`
	OrderNumber     string     `json:"order_number"`
	CustomerName    string     `json:"customer_name"`
	CustomerIDCard  *string    `json:"customer_id_card,omitempty"`
	CreatorID       uuid.UUID  `json:"creator_id"`
	CreatorUsername string     `json:"creator_username,omitempty"`
	Status          string     `json:"status"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewOrderView(o *Order) OrderView {
	v := OrderView{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CreatorID:       o.CreatorID,
		CreatorUsername: o.CreatorUsername,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.CustomerIDCard.Valid {
		s := o.CustomerIDCard.String
		v.CustomerIDCard = &s
	}
	if o.SubmittedAt.Valid {
		t := o.SubmittedAt.Time
		v.SubmittedAt = &t
	}
	if o.Notes.Valid {
		s := o.Notes.String
		v.Notes = &s
	}
	return v
}

func NewOrderViews(orders []Order) []OrderView {
	views := make([]OrderView, len(orders))
	for i := range orders {
		views[i] = NewOrderView(&orders[i])
	}
	return views
}

// OrderDetail is the order plus its uploaded files, as returned by
// get-by-id and by collaboration-link redemption.
type OrderDetail struct {
	OrderView
	Files []FileView `json:"files"`
}
