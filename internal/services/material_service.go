package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"creditsync-backend/internal/apperrors"
	"creditsync-backend/internal/logger"
	"creditsync-backend/internal/models"
)

// MaterialService owns the reference catalog. Reads serve the upload
// checklist; writes are admin tooling.
type MaterialService struct {
	materials MaterialStore
}

func NewMaterialService(materials MaterialStore) *MaterialService {
	return &MaterialService{materials: materials}
}

// Catalog returns categories with their items nested, sorted by sort
// order. Staff see only active rows; admins see everything.
func (s *MaterialService) Catalog(ctx context.Context, principal models.Principal) ([]models.MaterialCategoryView, error) {
	includeInactive := IsAdmin(principal)
	categories, err := s.materials.ListCategories(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.Upstream("failed to load material categories", err)
	}
	items, err := s.materials.ListItems(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.Upstream("failed to load material items", err)
	}
	return models.NewCatalogView(categories, items), nil
}

func (s *MaterialService) CreateCategory(ctx context.Context, req models.CreateCategoryRequest, principal models.Principal) (*models.MaterialCategory, error) {
	if !IsAdmin(principal) {
		return nil, apperrors.Forbidden("admin access required")
	}
	category := &models.MaterialCategory{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if err := s.materials.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperrors.ValidationFailed("a category with this name already exists")
		}
		return nil, apperrors.Upstream("failed to create category", err)
	}
	logger.L.Info("material category created",
		zap.String("category_id", category.ID.String()),
		zap.String("name", category.Name),
	)
	return category, nil
}

func (s *MaterialService) UpdateCategory(ctx context.Context, id uuid.UUID, req models.UpdateCategoryRequest, principal models.Principal) (*models.MaterialCategory, error) {
	if !IsAdmin(principal) {
		return nil, apperrors.Forbidden("admin access required")
	}
	category, err := s.materials.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("material category not found")
		}
		return nil, apperrors.Upstream("failed to load category", err)
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.materials.UpdateCategory(ctx, category); err != nil {
		return nil, apperrors.Upstream("failed to update category", err)
	}
	return category, nil
}

func (s *MaterialService) DeleteCategory(ctx context.Context, id uuid.UUID, principal models.Principal) error {
	if !IsAdmin(principal) {
		return apperrors.Forbidden("admin access required")
	}
	if err := s.materials.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.NotFound("material category not found")
		}
		return apperrors.Upstream("failed to delete category", err)
	}
	return nil
}

func (s *MaterialService) CreateItem(ctx context.Context, req models.CreateItemRequest, principal models.Principal) (*models.MaterialItem, error) {
	if !IsAdmin(principal) {
		return nil, apperrors.Forbidden("admin access required")
	}
	if _, err := s.materials.GetCategory(ctx, req.CategoryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("material category not found")
		}
		return nil, apperrors.Upstream("failed to load category", err)
	}

	item := &models.MaterialItem{
		ID:          uuid.New(),
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		FileTypes:   req.FileTypes,
		IsRequired:  req.IsRequired,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if err := s.materials.CreateItem(ctx, item); err != nil {
		return nil, apperrors.Upstream("failed to create material item", err)
	}
	logger.L.Info("material item created",
		zap.String("item_id", item.ID.String()),
		zap.String("name", item.Name),
		zap.Bool("required", item.IsRequired),
	)
	return item, nil
}

func (s *MaterialService) UpdateItem(ctx context.Context, id uuid.UUID, req models.UpdateItemRequest, principal models.Principal) (*models.MaterialItem, error) {
	if !IsAdmin(principal) {
		return nil, apperrors.Forbidden("admin access required")
	}
	item, err := s.materials.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("material item not found")
		}
		return nil, apperrors.Upstream("failed to load material item", err)
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if len(req.FileTypes) > 0 {
		item.FileTypes = req.FileTypes
	}
	if req.IsRequired != nil {
		item.IsRequired = *req.IsRequired
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.materials.UpdateItem(ctx, item); err != nil {
		return nil, apperrors.Upstream("failed to update material item", err)
	}
	return item, nil
}

func (s *MaterialService) DeleteItem(ctx context.Context, id uuid.UUID, principal models.Principal) error {
	if !IsAdmin(principal) {
		return apperrors.Forbidden("admin access required")
	}
	if err := s.materials.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.NotFound("material item not found")
		}
		return apperrors.Upstream("failed to delete material item", err)
	}
	return nil
}
