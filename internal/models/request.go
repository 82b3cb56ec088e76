package models

import "github.com/google/uuid"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateOrderRequest struct {
	CustomerName   string `json:"customer_name" binding:"required,max=100"`
	CustomerIDCard string `json:"customer_id_card" binding:"omitempty,min=15,max=18"`
}

// UpdateOrderRequest is a patch: nil pointers mean "leave unchanged".
type UpdateOrderRequest struct {
	CustomerName   *string `json:"customer_name" binding:"omitempty,min=1,max=100"`
	CustomerIDCard *string `json:"customer_id_card" binding:"omitempty,min=15,max=18"`
	Notes          *string `json:"notes"`
	Status         *string `json:"status" binding:"omitempty,oneof=in_progress completed"`
}

type ListOrdersQuery struct {
	Page   int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit  int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	Search string `form:"search" binding:"omitempty,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=in_progress completed"`
	// Query binding cannot populate a uuid.UUID, so the creator filter
	// arrives as a validated string and is parsed in the service.
	CreatorID string `form:"creator_id" binding:"omitempty,uuid"`
}

type CreateLinkRequest struct {
	OrderID        uuid.UUID `json:"order_id" binding:"required"`
	ExpiresInHours int       `json:"expires_in_hours"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

type CreateItemRequest struct {
	CategoryID  uuid.UUID `json:"category_id" binding:"required"`
	Name        string    `json:"name" binding:"required,max=100"`
	Description string    `json:"description"`
	FileTypes   []string  `json:"file_types" binding:"required,min=1,dive,oneof=image video text"`
	IsRequired  bool      `json:"is_required"`
	SortOrder   int       `json:"sort_order"`
}

type UpdateItemRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string  `json:"description"`
	FileTypes   []string `json:"file_types" binding:"omitempty,min=1,dive,oneof=image video text"`
	IsRequired  *bool    `json:"is_required"`
	SortOrder   *int     `json:"sort_order"`
	IsActive    *bool    `json:"is_active"`
}
