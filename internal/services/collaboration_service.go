package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"creditsync-backend/internal/apperrors"
	"creditsync-backend/internal/logger"
	"creditsync-backend/internal/models"
)

const (
	// TTL bounds for collaboration links. Out-of-range input is
	// rejected, never clamped.
	minLinkTTLHours = 1
	maxLinkTTLHours = 168

	defaultLinkTTLHours = 24

	tokenRetries = 3

	qrCodeSize = 200
)

type CollaborationService struct {
	links  LinkStore
	orders OrderStore
	files  FileStore
	users  UserStore
	upload *UploadService

	frontendURL string
}

func NewCollaborationService(links LinkStore, orders OrderStore, files FileStore, users UserStore, upload *UploadService, frontendURL string) *CollaborationService {
	return &CollaborationService{
		links:       links,
		orders:      orders,
		files:       files,
		users:       users,
		upload:      upload,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
	}
}

// newToken mints a 128-bit opaque token, hex encoded.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CreateLink issues a share link for an order, reusing the currently
// valid link when one exists: its expiry is extended and the same token
// returned, avoiding token churn on repeated shares.
func (s *CollaborationService) CreateLink(ctx context.Context, req models.CreateLinkRequest, principal models.Principal) (*models.CreateLinkResult, error) {
	ttl := req.ExpiresInHours
	if ttl == 0 {
		ttl = defaultLinkTTLHours
	}
	if ttl < minLinkTTLHours || ttl > maxLinkTTLHours {
		return nil, apperrors.ValidationFailed(fmt.Sprintf("expires_in_hours must be between %d and %d", minLinkTTLHours, maxLinkTTLHours))
	}

	order, err := s.orders.GetOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, apperrors.Upstream("failed to load order", err)
	}
	if !IsOwnerOrAdmin(principal, order.CreatorID) {
		return nil, apperrors.Forbidden("no access to this order")
	}
	if order.Status == models.OrderStatusCompleted {
		return nil, apperrors.InvalidState("completed orders cannot be shared")
	}

	expiresAt := time.Now().UTC().Add(time.Duration(ttl) * time.Hour)

	var (
		link   *models.CollaborationLink
		reused bool
	)
	for attempt := 0; attempt < tokenRetries; attempt++ {
		link, reused, err = s.links.ReuseOrCreateLink(ctx, req.OrderID, principal.ID, newToken(), expiresAt)
		if !errors.Is(err, ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return nil, apperrors.Upstream("failed to create collaboration link", err)
	}

	link.CreatorUsername = principal.Username
	shareURL := fmt.Sprintf("%s/collaboration/%s", s.frontendURL, link.Token)

	png, err := qrcode.Encode(shareURL, qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, apperrors.Upstream("failed to encode QR code", err)
	}

	logger.L.Info("collaboration link created",
		zap.String("link_id", link.ID.String()),
		zap.String("order_id", req.OrderID.String()),
		zap.Bool("reused", reused),
		zap.Time("expires_at", link.ExpiresAt),
		zap.String("created_by", principal.ID.String()),
	)

	return &models.CreateLinkResult{
		Link:   models.NewCollaborationLinkView(link),
		URL:    shareURL,
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Redeem resolves a token without any authenticated principal: token
// possession is the credential. Absent tokens are NotFound; present but
// invalidated tokens are Gone so clients can render "link expired"
// instead of "bad link".
func (s *CollaborationService) Redeem(ctx context.Context, token string) (*models.RedeemResult, error) {
	link, err := s.validLink(ctx, token)
	if err != nil {
		return nil, err
	}

	updated, err := s.links.RecordAccess(ctx, link.ID, time.Now().UTC())
	if err != nil {
		return nil, apperrors.Upstream("failed to record link access", err)
	}

	order, err := s.orders.GetOrder(ctx, link.OrderID)
	if err != nil {
		return nil, apperrors.Upstream("failed to load order", err)
	}
	files, err := s.files.ListFilesByOrder(ctx, link.OrderID)
	if err != nil {
		return nil, apperrors.Upstream("failed to load order files", err)
	}

	logger.L.Info("collaboration link accessed",
		zap.String("link_id", link.ID.String()),
		zap.String("order_id", link.OrderID.String()),
		zap.Int("access_count", updated.AccessCount),
	)

	return &models.RedeemResult{
		Collaboration: models.NewCollaborationLinkView(updated),
		Order: models.OrderDetail{
			OrderView: models.NewOrderView(order),
			Files:     models.NewFileViews(files),
		},
	}, nil
}

// SubmitViaLink lets a token holder feed the intake pipeline. The
// upload is attributed to the link's creator for audit purposes.
func (s *CollaborationService) SubmitViaLink(ctx context.Context, token string, itemID uuid.UUID, unit ContentUnit) (*models.UploadedFile, error) {
	link, err := s.validLink(ctx, token)
	if err != nil {
		return nil, err
	}

	creator, err := s.users.GetUser(ctx, link.CreatedBy)
	if err != nil {
		return nil, apperrors.Upstream("failed to load link creator", err)
	}
	principal := models.Principal{ID: creator.ID, Username: creator.Username, Role: creator.Role}

	return s.upload.Submit(ctx, link.OrderID, itemID, principal, unit)
}

// ListForOrder returns the order's full link audit trail, valid or not,
// newest first.
func (s *CollaborationService) ListForOrder(ctx context.Context, orderID uuid.UUID, principal models.Principal) ([]models.CollaborationLink, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, apperrors.Upstream("failed to load order", err)
	}
	if !IsOwnerOrAdmin(principal, order.CreatorID) {
		return nil, apperrors.Forbidden("no access to this order")
	}

	links, err := s.links.ListLinksByOrder(ctx, orderID)
	if err != nil {
		return nil, apperrors.Upstream("failed to list collaboration links", err)
	}
	return links, nil
}

// Deactivate ends a link's validity. Allowed for admins, the link's
// creator and the order's creator. Idempotent.
func (s *CollaborationService) Deactivate(ctx context.Context, id uuid.UUID, principal models.Principal) (*models.CollaborationLink, error) {
	link, err := s.links.GetLink(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("collaboration link not found")
		}
		return nil, apperrors.Upstream("failed to load collaboration link", err)
	}

	order, err := s.orders.GetOrder(ctx, link.OrderID)
	if err != nil {
		return nil, apperrors.Upstream("failed to load order", err)
	}

	canDeactivate := IsAdmin(principal) ||
		link.CreatedBy == principal.ID ||
		order.CreatorID == principal.ID
	if !canDeactivate {
		return nil, apperrors.Forbidden("no access to this collaboration link")
	}

	if err := s.links.SetLinkActive(ctx, id, false); err != nil {
		return nil, apperrors.Upstream("failed to deactivate collaboration link", err)
	}
	link.IsActive = false

	logger.L.Info("collaboration link deactivated",
		zap.String("link_id", id.String()),
		zap.String("order_id", link.OrderID.String()),
		zap.String("deactivated_by", principal.ID.String()),
	)
	return link, nil
}

// CleanupExpired bulk-deactivates expired links. Admin only; safe to
// run repeatedly or concurrently since it only tightens state.
func (s *CollaborationService) CleanupExpired(ctx context.Context, principal models.Principal) (int64, error) {
	if !IsAdmin(principal) {
		return 0, apperrors.Forbidden("admin access required")
	}

	count, err := s.links.DeactivateExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, apperrors.Upstream("failed to clean up expired links", err)
	}

	logger.L.Info("expired collaboration links cleaned up",
		zap.Int64("count", count),
		zap.String("cleaned_by", principal.ID.String()),
	)
	return count, nil
}

func (s *CollaborationService) validLink(ctx context.Context, token string) (*models.CollaborationLink, error) {
	link, err := s.links.GetLinkByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("collaboration link not found")
		}
		return nil, apperrors.Upstream("failed to load collaboration link", err)
	}
	if !link.IsValid(time.Now().UTC()) {
		return nil, apperrors.Gone("collaboration link has expired or been deactivated")
	}
	return link, nil
}
