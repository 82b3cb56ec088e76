package models

import (
	"time"

	"github.com/google/uuid"
)

// Content kinds a material item may accept. Binary kinds are derived
// from the filename extension, never from the declared mime type.
const (
	ContentKindImage = "image"
	ContentKindVideo = "video"
	ContentKindText  = "text"
)

type MaterialCategory struct {
	ID          uuid.UUID
	Name        string
	Description string
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type MaterialItem struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	FileTypes   []string
	IsRequired  bool
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Accepts reports whether the item accepts the given content kind.
func (m *MaterialItem) Accepts(kind string) bool {
	for _, t := range m.FileTypes {
		if t == kind {
			return true
		}
	}
	return false
}

type MaterialItemView struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	FileTypes   []string  `json:"file_types"`
	IsRequired  bool      `json:"is_required"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
}

func NewMaterialItemView(m *MaterialItem) MaterialItemView {
	return MaterialItemView{
		ID:          m.ID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Description: m.Description,
		FileTypes:   m.FileTypes,
		IsRequired:  m.IsRequired,
		SortOrder:   m.SortOrder,
		IsActive:    m.IsActive,
	}
}

type MaterialCategoryView struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	SortOrder   int                `json:"sort_order"`
	IsActive    bool               `json:"is_active"`
	Items       []MaterialItemView `json:"items"`
}

func NewMaterialCategoryView(c *MaterialCategory) MaterialCategoryView {
	return MaterialCategoryView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		IsActive:    c.IsActive,
		Items:       []MaterialItemView{},
	}
}

// NewCatalogView groups items under their categories, both sorted by
// sort order as loaded from the database.
func NewCatalogView(categories []MaterialCategory, items []MaterialItem) []MaterialCategoryView {
	views := make([]MaterialCategoryView, len(categories))
	for i := range categories {
		c := &categories[i]
		view := MaterialCategoryView{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			SortOrder:   c.SortOrder,
			IsActive:    c.IsActive,
			Items:       []MaterialItemView{},
		}
		for j := range items {
			if items[j].CategoryID == c.ID {
				view.Items = append(view.Items, NewMaterialItemView(&items[j]))
			}
		}
		views[i] = view
	}
	return views
}
