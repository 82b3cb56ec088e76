package services

import (
	"github.com/google/uuid"

	"creditsync-backend/internal/models"
)

// Access policy predicates. Every mutating operation routes through one
// of these before acting so authorization logic cannot diverge between
// components.

func IsAdmin(p models.Principal) bool {
	return p.Role == models.RoleAdmin
}

func IsOwnerOrAdmin(p models.Principal, ownerID uuid.UUID) bool {
	return IsAdmin(p) || p.ID == ownerID
}
