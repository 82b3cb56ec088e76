package models

import (
	"time"

	"creditsync-backend/internal/apperrors"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message,omitempty"`
	Data      interface{}      `json:"data,omitempty"`
	Error     *apperrors.Error `json:"error,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

func OK(message string, data interface{}) Response {
	return Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

func Fail(err *apperrors.Error) Response {
	return Response{
		Success:   false,
		Error:     err,
		Timestamp: time.Now().UTC(),
	}
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

func NewPagination(total int64, page, limit int) Pagination {
	if limit < 1 {
		limit = 1
	}
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type OrderListResponse struct {
	Orders     []OrderView `json:"orders"`
	Pagination Pagination  `json:"pagination"`
}

// BatchUploadResult reports a partially successful batch: every unit is
// validated and persisted independently.
type BatchUploadResult struct {
	Files  []FileView     `json:"files"`
	Failed []BatchFailure `json:"failed"`
}

type BatchFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type CreateLinkResult struct {
	Link   CollaborationLinkView `json:"link"`
	URL    string                `json:"url"`
	QRCode string                `json:"qr_code"`
}

type RedeemResult struct {
	Collaboration CollaborationLinkView `json:"collaboration"`
	Order         OrderDetail           `json:"order"`
}

type CleanupResult struct {
	CleanedCount int64 `json:"cleaned_count"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
