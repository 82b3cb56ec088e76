package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"creditsync-backend/internal/models"
)

// memStores is an in-memory implementation of every store interface,
// shared by the service tests.
type memStores struct {
	users      map[uuid.UUID]*models.User
	orders     map[uuid.UUID]*models.Order
	categories map[uuid.UUID]*models.MaterialCategory
	items      map[uuid.UUID]*models.MaterialItem
	files      map[uuid.UUID]*models.UploadedFile
	links      map[uuid.UUID]*models.CollaborationLink

	// Error injection for failure-path tests.
	createFileErr error
}

func newMemStores() *memStores {
	return &memStores{
		users:      map[uuid.UUID]*models.User{},
		orders:     map[uuid.UUID]*models.Order{},
		categories: map[uuid.UUID]*models.MaterialCategory{},
		items:      map[uuid.UUID]*models.MaterialItem{},
		files:      map[uuid.UUID]*models.UploadedFile{},
		links:      map[uuid.UUID]*models.CollaborationLink{},
	}
}

func (m *memStores) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStores) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStores) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt.Time = at
	u.LastLoginAt.Valid = true
	return nil
}

func (m *memStores) CreateOrder(_ context.Context, order *models.Order) error {
	for _, o := range m.orders {
		if o.OrderNumber == order.OrderNumber {
			return ErrDuplicate
		}
	}
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *memStores) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStores) ListOrders(_ context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	var matched []models.Order
	for _, o := range m.orders {
		if filter.CreatorID != uuid.Nil && o.CreatorID != filter.CreatorID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(o.OrderNumber, filter.Search) &&
			!strings.Contains(o.CustomerName, filter.Search) {
			continue
		}
		matched = append(matched, *o)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].OrderNumber < matched[j].OrderNumber
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *memStores) UpdateOrder(_ context.Context, order *models.Order) error {
	if _, ok := m.orders[order.ID]; !ok {
		return ErrNotFound
	}
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *memStores) DeleteOrderCascade(_ context.Context, id uuid.UUID) ([]string, error) {
	if _, ok := m.orders[id]; !ok {
		return nil, ErrNotFound
	}
	var paths []string
	for fid, f := range m.files {
		if f.OrderID != id {
			continue
		}
		if f.StoragePath.Valid {
			paths = append(paths, f.StoragePath.String)
		}
		if f.ThumbnailPath.Valid {
			paths = append(paths, f.ThumbnailPath.String)
		}
		delete(m.files, fid)
	}
	for lid, l := range m.links {
		if l.OrderID == id {
			delete(m.links, lid)
		}
	}
	delete(m.orders, id)
	return paths, nil
}

func (m *memStores) GetItem(_ context.Context, id uuid.UUID) (*models.MaterialItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *memStores) ListRequiredActiveItems(_ context.Context) ([]models.MaterialItem, error) {
	var items []models.MaterialItem
	for _, item := range m.items {
		if item.IsRequired && item.IsActive {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (m *memStores) ListCategories(_ context.Context, includeInactive bool) ([]models.MaterialCategory, error) {
	var categories []models.MaterialCategory
	for _, c := range m.categories {
		if c.IsActive || includeInactive {
			categories = append(categories, *c)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].SortOrder < categories[j].SortOrder
	})
	return categories, nil
}

func (m *memStores) ListItems(_ context.Context, includeInactive bool) ([]models.MaterialItem, error) {
	var items []models.MaterialItem
	for _, item := range m.items {
		if item.IsActive || includeInactive {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].SortOrder < items[j].SortOrder
	})
	return items, nil
}

func (m *memStores) CreateCategory(_ context.Context, category *models.MaterialCategory) error {
	for _, c := range m.categories {
		if c.Name == category.Name {
			return ErrDuplicate
		}
	}
	cp := *category
	m.categories[category.ID] = &cp
	return nil
}

func (m *memStores) UpdateCategory(_ context.Context, category *models.MaterialCategory) error {
	if _, ok := m.categories[category.ID]; !ok {
		return ErrNotFound
	}
	cp := *category
	m.categories[category.ID] = &cp
	return nil
}

func (m *memStores) DeleteCategory(_ context.Context, id uuid.UUID) error {
	if _, ok := m.categories[id]; !ok {
		return ErrNotFound
	}
	delete(m.categories, id)
	for itemID, item := range m.items {
		if item.CategoryID == id {
			delete(m.items, itemID)
		}
	}
	return nil
}

func (m *memStores) GetCategory(_ context.Context, id uuid.UUID) (*models.MaterialCategory, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStores) CreateItem(_ context.Context, item *models.MaterialItem) error {
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *memStores) UpdateItem(_ context.Context, item *models.MaterialItem) error {
	if _, ok := m.items[item.ID]; !ok {
		return ErrNotFound
	}
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *memStores) DeleteItem(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memStores) CreateFile(_ context.Context, file *models.UploadedFile) error {
	if m.createFileErr != nil {
		return m.createFileErr
	}
	cp := *file
	m.files[file.ID] = &cp
	return nil
}

func (m *memStores) GetFile(_ context.Context, id uuid.UUID) (*models.UploadedFile, error) {
	f, ok := m.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memStores) ListFilesByOrder(_ context.Context, orderID uuid.UUID) ([]models.UploadedFile, error) {
	var files []models.UploadedFile
	for _, f := range m.files {
		if f.OrderID == orderID {
			files = append(files, *f)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadedAt.Before(files[j].UploadedAt)
	})
	return files, nil
}

func (m *memStores) ItemIDsWithFiles(_ context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, f := range m.files {
		if f.OrderID == orderID && !seen[f.MaterialItemID] {
			seen[f.MaterialItemID] = true
			ids = append(ids, f.MaterialItemID)
		}
	}
	return ids, nil
}

func (m *memStores) DeleteFile(_ context.Context, id uuid.UUID) error {
	if _, ok := m.files[id]; !ok {
		return ErrNotFound
	}
	delete(m.files, id)
	return nil
}

func (m *memStores) ReuseOrCreateLink(_ context.Context, orderID, createdBy uuid.UUID, token string, expiresAt time.Time) (*models.CollaborationLink, bool, error) {
	now := time.Now().UTC()
	for _, l := range m.links {
		if l.OrderID == orderID && l.IsValid(now) {
			l.ExpiresAt = expiresAt
			cp := *l
			return &cp, true, nil
		}
	}
	for _, l := range m.links {
		if l.Token == token {
			return nil, false, ErrDuplicate
		}
	}
	link := &models.CollaborationLink{
		ID:        uuid.New(),
		OrderID:   orderID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedBy: createdBy,
		IsActive:  true,
		CreatedAt: now,
	}
	m.links[link.ID] = link
	cp := *link
	return &cp, false, nil
}

func (m *memStores) GetLink(_ context.Context, id uuid.UUID) (*models.CollaborationLink, error) {
	l, ok := m.links[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memStores) GetLinkByToken(_ context.Context, token string) (*models.CollaborationLink, error) {
	for _, l := range m.links {
		if l.Token == token {
			cp := *l
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStores) RecordAccess(_ context.Context, id uuid.UUID, at time.Time) (*models.CollaborationLink, error) {
	l, ok := m.links[id]
	if !ok {
		return nil, ErrNotFound
	}
	l.AccessCount++
	l.LastAccessedAt.Time = at
	l.LastAccessedAt.Valid = true
	cp := *l
	return &cp, nil
}

func (m *memStores) ListLinksByOrder(_ context.Context, orderID uuid.UUID) ([]models.CollaborationLink, error) {
	var links []models.CollaborationLink
	for _, l := range m.links {
		if l.OrderID == orderID {
			links = append(links, *l)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	return links, nil
}

func (m *memStores) SetLinkActive(_ context.Context, id uuid.UUID, active bool) error {
	l, ok := m.links[id]
	if !ok {
		return ErrNotFound
	}
	l.IsActive = active
	return nil
}

func (m *memStores) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, l := range m.links {
		if l.IsActive && !now.Before(l.ExpiresAt) {
			l.IsActive = false
			count++
		}
	}
	return count, nil
}

var (
	_ UserStore     = (*memStores)(nil)
	_ OrderStore    = (*memStores)(nil)
	_ MaterialStore = (*memStores)(nil)
	_ FileStore     = (*memStores)(nil)
	_ LinkStore     = (*memStores)(nil)
)

// memBlobs is an in-memory blob sink.
type memBlobs struct {
	objects   map[string][]byte
	uploadErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (b *memBlobs) Upload(_ context.Context, path string, data []byte, _ string) error {
	if b.uploadErr != nil {
		return b.uploadErr
	}
	b.objects[path] = data
	return nil
}

func (b *memBlobs) Delete(_ context.Context, paths ...string) error {
	for _, p := range paths {
		delete(b.objects, p)
	}
	return nil
}

func (b *memBlobs) PublicURL(path string) string {
	return "https://blobs.test/" + path
}

var _ BlobStore = (*memBlobs)(nil)
