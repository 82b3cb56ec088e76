package handlers

import (
	"github.com/gin-gonic/gin"

	"creditsync-backend/internal/middleware"
	"creditsync-backend/internal/models"
	"creditsync-backend/internal/services"
)

type CollaborationHandler struct {
	collab      *services.CollaborationService
	maxFileSize int64
}

func NewCollaborationHandler(collab *services.CollaborationService, maxFileSize int64) *CollaborationHandler {
	return &CollaborationHandler{collab: collab, maxFileSize: maxFileSize}
}

// CreateLink godoc
// @Summary     Issue a collaboration link for an order
// @Description Reuses the order's currently valid link, extending its expiry, or mints a new token. Returns the share URL and a QR code
// @Tags        collaboration
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateLinkRequest true "Order and TTL"
// @Success     201 {object} models.Response
// @Failure     400 {object} models.Response
// @Failure     403 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /collaboration/links [post]
func (h *CollaborationHandler) CreateLink(c *gin.Context) {
	var req models.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p := middleware.PrincipalFrom(c)
	result, err := h.collab.CreateLink(c.Request.Context(), req, *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "collaboration link issued", result)
}

// ListLinks godoc
// @Summary     List an order's collaboration links
// @Tags        collaboration
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID (UUID)"
// @Success     200 {object} models.Response
// @Failure     403 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /orders/{id}/links [get]
func (h *CollaborationHandler) ListLinks(c *gin.Context) {
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	p := middleware.PrincipalFrom(c)
	links, err := h.collab.ListForOrder(c.Request.Context(), orderID, *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", models.NewCollaborationLinkViews(links))
}

// DeactivateLink godoc
// @Summary     Deactivate a collaboration link
// @Description Idempotent. Allowed for admins, the link creator and the order creator
// @Tags        collaboration
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Link ID (UUID)"
// @Success     200 {object} models.Response
// @Failure     403 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /collaboration/links/{id} [delete]
func (h *CollaborationHandler) DeactivateLink(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	p := middleware.PrincipalFrom(c)
	link, err := h.collab.Deactivate(c.Request.Context(), id, *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "collaboration link deactivated", models.NewCollaborationLinkView(link))
}

// Cleanup godoc
// @Summary     Deactivate every expired link
// @Tags        collaboration
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.Response
// @Failure     403 {object} models.Response
// @Router      /collaboration/cleanup [post]
func (h *CollaborationHandler) Cleanup(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	count, err := h.collab.CleanupExpired(c.Request.Context(), *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "expired links deactivated", models.CleanupResult{CleanedCount: count})
}

// Redeem godoc
// @Summary     Redeem a collaboration token
// @Description Public. Records the access and returns the link together with the order and its files
// @Tags        collaboration
// @Produce     json
// @Param       token path string true "Collaboration token"
// @Success     200 {object} models.Response
// @Failure     404 {object} models.Response
// @Failure     410 {object} models.Response
// @Router      /share/{token} [get]
func (h *CollaborationHandler) Redeem(c *gin.Context) {
	result, err := h.collab.Redeem(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", result)
}

// UploadViaLink godoc
// @Summary     Submit content through a collaboration token
// @Description Public. The submission is attributed to the link's creator
// @Tags        collaboration
// @Accept      multipart/form-data
// @Produce     json
// @Param       token path string true "Collaboration token"
// @Param       item_id path string true "Material item ID (UUID)"
// @Param       file formData file false "Binary content"
// @Param       text_content formData string false "Text content"
// @Success     201 {object} models.Response
// @Failure     400 {object} models.Response
// @Failure     404 {object} models.Response
// @Failure     410 {object} models.Response
// @Router      /share/{token}/items/{item_id}/upload [post]
func (h *CollaborationHandler) UploadViaLink(c *gin.Context) {
	itemID, ok := uuidParam(c, "item_id")
	if !ok {
		return
	}
	unit, err := readContentUnit(c, h.maxFileSize)
	if err != nil {
		respondError(c, err)
		return
	}

	file, err := h.collab.SubmitViaLink(c.Request.Context(), c.Param("token"), itemID, unit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "content submitted", models.NewFileView(file))
}
