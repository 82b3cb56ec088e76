package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"creditsync-backend/internal/apperrors"
	"creditsync-backend/internal/logger"
	"creditsync-backend/internal/models"
)

// How many times order creation retries with a random suffix when the
// generated order number already exists.
const orderNumberRetries = 3

type OrderService struct {
	orders    OrderStore
	files     FileStore
	materials MaterialStore
	blobs     BlobStore
}

func NewOrderService(orders OrderStore, files FileStore, materials MaterialStore, blobs BlobStore) *OrderService {
	return &OrderService{
		orders:    orders,
		files:     files,
		materials: materials,
		blobs:     blobs,
	}
}

// generateOrderNumber builds ORD + date + the trailing six digits of
// the current unix-millis clock. Collisions are practically impossible
// at expected throughput; the unique index catches the rest.
func generateOrderNumber(now time.Time) string {
	millis := fmt.Sprintf("%d", now.UnixMilli())
	return fmt.Sprintf("ORD%s%s", now.Format("20060102"), millis[len(millis)-6:])
}

func randomOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD%s%06d", now.Format("20060102"), rand.Intn(1000000))
}

func (s *OrderService) Create(ctx context.Context, req models.CreateOrderRequest, principal models.Principal) (*models.Order, error) {
	if req.CustomerName == "" {
		return nil, apperrors.ValidationFailed("customer name is required")
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:           uuid.New(),
		OrderNumber:  generateOrderNumber(now),
		CustomerName: req.CustomerName,
		CreatorID:    principal.ID,
		Status:       models.OrderStatusInProgress,
	}
	if req.CustomerIDCard != "" {
		order.CustomerIDCard = sql.NullString{String: req.CustomerIDCard, Valid: true}
	}

	err := s.orders.CreateOrder(ctx, order)
	for attempt := 0; errors.Is(err, ErrDuplicate) && attempt < orderNumberRetries; attempt++ {
		order.OrderNumber = randomOrderNumber(now)
		err = s.orders.CreateOrder(ctx, order)
	}
	if err != nil {
		return nil, apperrors.Upstream("failed to create order", err)
	}

	order.CreatorUsername = principal.Username
	logger.L.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("order_id", order.ID.String()),
		zap.String("creator_id", principal.ID.String()),
	)
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID, principal models.Principal) (*models.OrderDetail, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !IsOwnerOrAdmin(principal, order.CreatorID) {
		return nil, apperrors.Forbidden("no access to this order")
	}

	files, err := s.files.ListFilesByOrder(ctx, id)
	if err != nil {
		return nil, apperrors.Upstream("failed to load order files", err)
	}

	detail := &models.OrderDetail{
		OrderView: models.NewOrderView(order),
		Files:     models.NewFileViews(files),
	}
	return detail, nil
}

func (s *OrderService) List(ctx context.Context, query models.ListOrdersQuery, principal models.Principal) ([]models.Order, int64, error) {
	filter := OrderFilter{
		Page:   query.Page,
		Limit:  query.Limit,
		Search: query.Search,
		Status: query.Status,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	// Staff only ever see their own orders; admins may filter by creator.
	if IsAdmin(principal) {
		if query.CreatorID != "" {
			creatorID, err := uuid.Parse(query.CreatorID)
			if err != nil {
				return nil, 0, apperrors.ValidationFailed("creator_id must be a valid UUID")
			}
			filter.CreatorID = creatorID
		}
	} else {
		filter.CreatorID = principal.ID
	}

	orders, total, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Upstream("failed to list orders", err)
	}
	return orders, total, nil
}

// Update applies a field patch and drives the status machine. Moving to
// completed is gated on every required+active material item having at
// least one file for the order.
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req models.UpdateOrderRequest, principal models.Principal) (*models.Order, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !IsOwnerOrAdmin(principal, order.CreatorID) {
		return nil, apperrors.Forbidden("no access to this order")
	}

	if req.CustomerName != nil {
		order.CustomerName = *req.CustomerName
	}
	if req.CustomerIDCard != nil {
		order.CustomerIDCard = sql.NullString{String: *req.CustomerIDCard, Valid: *req.CustomerIDCard != ""}
	}
	if req.Notes != nil {
		order.Notes = sql.NullString{String: *req.Notes, Valid: *req.Notes != ""}
	}

	if req.Status != nil && *req.Status != order.Status {
		switch *req.Status {
		case models.OrderStatusCompleted:
			missing, err := s.missingRequiredItems(ctx, order.ID)
			if err != nil {
				return nil, err
			}
			if len(missing) > 0 {
				names := make([]string, len(missing))
				for i, item := range missing {
					names[i] = item.Name
				}
				return nil, apperrors.InvalidState("required material items are missing files").
					WithDetails(names...)
			}
			order.Status = models.OrderStatusCompleted
			order.SubmittedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
		case models.OrderStatusInProgress:
			order.Status = models.OrderStatusInProgress
			order.SubmittedAt = sql.NullTime{}
		}
	}

	if err := s.orders.UpdateOrder(ctx, order); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, apperrors.Upstream("failed to update order", err)
	}

	logger.L.Info("order updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", order.Status),
		zap.String("updated_by", principal.ID.String()),
	)
	return order, nil
}

// Delete removes an order with its files and links. Admins may delete
// any order; staff only their own while still in progress. Blob removal
// happens after the database transaction and is best-effort.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID, principal models.Principal) error {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return err
	}
	if !IsAdmin(principal) {
		if order.CreatorID != principal.ID {
			return apperrors.Forbidden("no access to this order")
		}
		if order.Status == models.OrderStatusCompleted {
			return apperrors.InvalidState("completed orders cannot be deleted")
		}
	}

	blobPaths, err := s.orders.DeleteOrderCascade(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.NotFound("order not found")
		}
		return apperrors.Upstream("failed to delete order", err)
	}

	if len(blobPaths) > 0 {
		if err := s.blobs.Delete(ctx, blobPaths...); err != nil {
			logger.L.Warn("failed to remove blobs for deleted order",
				zap.String("order_id", id.String()),
				zap.Int("paths", len(blobPaths)),
				zap.Error(err),
			)
		}
	}

	logger.L.Info("order deleted",
		zap.String("order_number", order.OrderNumber),
		zap.String("deleted_by", principal.ID.String()),
	)
	return nil
}

// missingRequiredItems returns the required+active items that have no
// file row under the order. Empty result means completion is allowed.
func (s *OrderService) missingRequiredItems(ctx context.Context, orderID uuid.UUID) ([]models.MaterialItem, error) {
	required, err := s.materials.ListRequiredActiveItems(ctx)
	if err != nil {
		return nil, apperrors.Upstream("failed to load material items", err)
	}
	itemIDs, err := s.files.ItemIDsWithFiles(ctx, orderID)
	if err != nil {
		return nil, apperrors.Upstream("failed to load uploaded files", err)
	}

	have := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		have[id] = true
	}

	var missing []models.MaterialItem
	for _, item := range required {
		if !have[item.ID] {
			missing = append(missing, item)
		}
	}
	return missing, nil
}

func (s *OrderService) getOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, apperrors.Upstream("failed to load order", err)
	}
	return order, nil
}
