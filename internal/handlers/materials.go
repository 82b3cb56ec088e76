package handlers

import (
	"github.com/gin-gonic/gin"

	"creditsync-backend/internal/middleware"
	"creditsync-backend/internal/models"
	"creditsync-backend/internal/services"
)

type MaterialsHandler struct {
	materials *services.MaterialService
}

func NewMaterialsHandler(materials *services.MaterialService) *MaterialsHandler {
	return &MaterialsHandler{materials: materials}
}

// Catalog godoc
// @Summary     Get the material catalog
// @Description Categories with their items. Staff see the active catalog; admins also see inactive entries
// @Tags        materials
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.Response
// @Router      /materials [get]
func (h *MaterialsHandler) Catalog(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	catalog, err := h.materials.Catalog(c.Request.Context(), *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", catalog)
}

// CreateCategory godoc
// @Summary     Create a material category
// @Tags        materials
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateCategoryRequest true "Category fields"
// @Success     201 {object} models.Response
// @Failure     400 {object} models.Response
// @Router      /materials/categories [post]
func (h *MaterialsHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p := middleware.PrincipalFrom(c)
	category, err := h.materials.CreateCategory(c.Request.Context(), req, *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "category created", models.NewMaterialCategoryView(category))
}

// UpdateCategory godoc
// @Summary     Update a material category
// @Tags        materials
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Category ID (UUID)"
// @Param       request body models.UpdateCategoryRequest true "Fields to change"
// @Success     200 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /materials/categories/{id} [put]
func (h *MaterialsHandler) UpdateCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p := middleware.PrincipalFrom(c)
	category, err := h.materials.UpdateCategory(c.Request.Context(), id, req, *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "category updated", models.NewMaterialCategoryView(category))
}

// DeleteCategory godoc
// @Summary     Delete a material category with its items
// @Tags        materials
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Category ID (UUID)"
// @Success     200 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /materials/categories/{id} [delete]
func (h *MaterialsHandler) DeleteCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	p := middleware.PrincipalFrom(c)
	if err := h.materials.DeleteCategory(c.Request.Context(), id, *p); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "category deleted", nil)
}

// CreateItem godoc
// @Summary     Create a material item
// @Tags        materials
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateItemRequest true "Item fields"
// @Success     201 {object} models.Response
// @Failure     400 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /materials/items [post]
func (h *MaterialsHandler) CreateItem(c *gin.Context) {
	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p := middleware.PrincipalFrom(c)
	item, err := h.materials.CreateItem(c.Request.Context(), req, *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "item created", models.NewMaterialItemView(item))
}

// UpdateItem godoc
// @Summary     Update a material item
// @Tags        materials
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Item ID (UUID)"
// @Param       request body models.UpdateItemRequest true "Fields to change"
// @Success     200 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /materials/items/{id} [put]
func (h *MaterialsHandler) UpdateItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p := middleware.PrincipalFrom(c)
	item, err := h.materials.UpdateItem(c.Request.Context(), id, req, *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "item updated", models.NewMaterialItemView(item))
}

// DeleteItem godoc
// @Summary     Delete a material item
// @Tags        materials
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Item ID (UUID)"
// @Success     200 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /materials/items/{id} [delete]
func (h *MaterialsHandler) DeleteItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	p := middleware.PrincipalFrom(c)
	if err := h.materials.DeleteItem(c.Request.Context(), id, *p); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "item deleted", nil)
}
