package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"creditsync-backend/internal/models"
)

// Store errors the database package translates driver errors into.
// Services turn these into the apperrors taxonomy; raw driver errors
// never cross the service boundary.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type OrderFilter struct {
	Page      int
	Limit     int
	Search    string
	Status    string
	CreatorID uuid.UUID // zero value means no creator filter
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
	// DeleteOrderCascade removes the order together with its file and
	// link rows in one transaction and returns the storage paths of the
	// deleted files so the caller can clean up blobs afterwards.
	DeleteOrderCascade(ctx context.Context, id uuid.UUID) ([]string, error)
}

type MaterialStore interface {
	GetItem(ctx context.Context, id uuid.UUID) (*models.MaterialItem, error)
	ListRequiredActiveItems(ctx context.Context) ([]models.MaterialItem, error)
	ListCategories(ctx context.Context, includeInactive bool) ([]models.MaterialCategory, error)
	ListItems(ctx context.Context, includeInactive bool) ([]models.MaterialItem, error)
	CreateCategory(ctx context.Context, category *models.MaterialCategory) error
	UpdateCategory(ctx context.Context, category *models.MaterialCategory) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	GetCategory(ctx context.Context, id uuid.UUID) (*models.MaterialCategory, error)
	CreateItem(ctx context.Context, item *models.MaterialItem) error
	UpdateItem(ctx context.Context, item *models.MaterialItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type FileStore interface {
	CreateFile(ctx context.Context, file *models.UploadedFile) error
	GetFile(ctx context.Context, id uuid.UUID) (*models.UploadedFile, error)
	ListFilesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.UploadedFile, error)
	// ItemIDsWithFiles returns the distinct material item ids that have
	// at least one file row under the order.
	ItemIDsWithFiles(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error)
	DeleteFile(ctx context.Context, id uuid.UUID) error
}

type LinkStore interface {
	// ReuseOrCreateLink atomically extends the order's currently valid
	// link to expiresAt, or inserts a new row with the given token when
	// no valid link exists. The returned bool is true when an existing
	// link was reused. A token collision surfaces as ErrDuplicate.
	ReuseOrCreateLink(ctx context.Context, orderID, createdBy uuid.UUID, token string, expiresAt time.Time) (*models.CollaborationLink, bool, error)
	GetLink(ctx context.Context, id uuid.UUID) (*models.CollaborationLink, error)
	GetLinkByToken(ctx context.Context, token string) (*models.CollaborationLink, error)
	// RecordAccess increments the access counter, stamps the access
	// time and returns the updated row. Expiry is never touched.
	RecordAccess(ctx context.Context, id uuid.UUID, at time.Time) (*models.CollaborationLink, error)
	ListLinksByOrder(ctx context.Context, orderID uuid.UUID) ([]models.CollaborationLink, error)
	SetLinkActive(ctx context.Context, id uuid.UUID, active bool) error
	// DeactivateExpired flips active to false for every active row past
	// its expiry and reports how many rows changed. Idempotent.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// BlobStore is the content sink for uploaded binaries. Paths are
// append-only: names are time+random qualified so writes never race.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, paths ...string) error
	PublicURL(path string) string
}
