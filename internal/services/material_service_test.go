package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditsync-backend/internal/apperrors"
	"creditsync-backend/internal/models"
)

func seedCategory(m *memStores, name string, active bool) *models.MaterialCategory {
	c := &models.MaterialCategory{
		ID:       uuid.New(),
		Name:     name,
		IsActive: active,
	}
	m.categories[c.ID] = c
	return c
}

func TestCatalogVisibility(t *testing.T) {
	m := newMemStores()
	svc := NewMaterialService(m)
	active := seedCategory(m, "Identity Documents", true)
	seedCategory(m, "Retired Category", false)
	item := &models.MaterialItem{
		ID:         uuid.New(),
		CategoryID: active.ID,
		Name:       "ID Card Front",
		FileTypes:  []string{models.ContentKindImage},
		IsActive:   true,
	}
	m.items[item.ID] = item

	catalog, err := svc.Catalog(context.Background(), staffPrincipal())
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "Identity Documents", catalog[0].Name)
	assert.Len(t, catalog[0].Items, 1)

	catalog, err = svc.Catalog(context.Background(), adminPrincipal())
	require.NoError(t, err)
	assert.Len(t, catalog, 2)
}

func TestCatalogWritesRequireAdmin(t *testing.T) {
	m := newMemStores()
	svc := NewMaterialService(m)
	staff := staffPrincipal()
	category := seedCategory(m, "Identity Documents", true)

	_, err := svc.CreateCategory(context.Background(), models.CreateCategoryRequest{Name: "X"}, staff)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
	_, err = svc.CreateItem(context.Background(), models.CreateItemRequest{
		CategoryID: category.ID,
		Name:       "X",
		FileTypes:  []string{models.ContentKindImage},
	}, staff)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
	err = svc.DeleteCategory(context.Background(), category.ID, staff)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
}

func TestCategoryCRUD(t *testing.T) {
	m := newMemStores()
	svc := NewMaterialService(m)
	admin := adminPrincipal()

	category, err := svc.CreateCategory(context.Background(), models.CreateCategoryRequest{
		Name:      "Identity Documents",
		SortOrder: 1,
	}, admin)
	require.NoError(t, err)
	assert.True(t, category.IsActive)

	_, err = svc.CreateCategory(context.Background(), models.CreateCategoryRequest{Name: "Identity Documents"}, admin)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))

	inactive := false
	updated, err := svc.UpdateCategory(context.Background(), category.ID, models.UpdateCategoryRequest{
		IsActive: &inactive,
	}, admin)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	require.NoError(t, svc.DeleteCategory(context.Background(), category.ID, admin))
	err = svc.DeleteCategory(context.Background(), category.ID, admin)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestItemCRUD(t *testing.T) {
	m := newMemStores()
	svc := NewMaterialService(m)
	admin := adminPrincipal()
	category := seedCategory(m, "Identity Documents", true)

	_, err := svc.CreateItem(context.Background(), models.CreateItemRequest{
		CategoryID: uuid.New(),
		Name:       "ID Card Front",
		FileTypes:  []string{models.ContentKindImage},
	}, admin)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	item, err := svc.CreateItem(context.Background(), models.CreateItemRequest{
		CategoryID: category.ID,
		Name:       "ID Card Front",
		FileTypes:  []string{models.ContentKindImage},
		IsRequired: true,
	}, admin)
	require.NoError(t, err)
	assert.True(t, item.IsActive)

	required := false
	updated, err := svc.UpdateItem(context.Background(), item.ID, models.UpdateItemRequest{
		IsRequired: &required,
		FileTypes:  []string{models.ContentKindImage, models.ContentKindText},
	}, admin)
	require.NoError(t, err)
	assert.False(t, updated.IsRequired)
	assert.Len(t, updated.FileTypes, 2)

	require.NoError(t, svc.DeleteItem(context.Background(), item.ID, admin))
	err = svc.DeleteItem(context.Background(), item.ID, admin)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestPolicyPredicates(t *testing.T) {
	admin := adminPrincipal()
	staff := staffPrincipal()

	assert.True(t, IsAdmin(admin))
	assert.False(t, IsAdmin(staff))
	assert.True(t, IsOwnerOrAdmin(staff, staff.ID))
	assert.False(t, IsOwnerOrAdmin(staff, uuid.New()))
	assert.True(t, IsOwnerOrAdmin(admin, uuid.New()))
}
