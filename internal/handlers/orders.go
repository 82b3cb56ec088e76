package handlers

import (
	"github.com/gin-gonic/gin"

	"creditsync-backend/internal/middleware"
	"creditsync-backend/internal/models"
	"creditsync-backend/internal/services"
)

type OrdersHandler struct {
	orders *services.OrderService
}

func NewOrdersHandler(orders *services.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// CreateOrder godoc
// @Summary     Create a collection order
// @Description Creates a new order in in_progress with a generated order number
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateOrderRequest true "Order fields"
// @Success     201 {object} models.Response
// @Failure     400 {object} models.Response
// @Router      /orders [post]
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p := middleware.PrincipalFrom(c)
	order, err := h.orders.Create(c.Request.Context(), req, *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "order created", models.NewOrderView(order))
}

// ListOrders godoc
// @Summary     List orders
// @Description Paginated listing. Staff see their own orders; admins see all and may filter by creator
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       page query int false "Page number"
// @Param       limit query int false "Page size"
// @Param       search query string false "Match against order number or customer name"
// @Param       status query string false "in_progress or completed"
// @Param       creator_id query string false "Filter by creator (admins only)"
// @Success     200 {object} models.Response
// @Router      /orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	var query models.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}
	// An explicit zero passes omitempty validation; the form defaults
	// only apply when the key is absent. Normalize here so the service
	// query and the echoed pagination agree.
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}

	p := middleware.PrincipalFrom(c)
	orders, total, err := h.orders.List(c.Request.Context(), query, *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", models.OrderListResponse{
		Orders:     models.NewOrderViews(orders),
		Pagination: models.NewPagination(total, query.Page, query.Limit),
	})
}

// GetOrder godoc
// @Summary     Get one order with its files
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID (UUID)"
// @Success     200 {object} models.Response
// @Failure     403 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /orders/{id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	p := middleware.PrincipalFrom(c)
	detail, err := h.orders.Get(c.Request.Context(), id, *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", detail)
}

// UpdateOrder godoc
// @Summary     Update order fields or transition its status
// @Description Completing an order requires every required active material item to be covered
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID (UUID)"
// @Param       request body models.UpdateOrderRequest true "Fields to change"
// @Success     200 {object} models.Response
// @Failure     400 {object} models.Response
// @Failure     403 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /orders/{id} [put]
func (h *OrdersHandler) UpdateOrder(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p := middleware.PrincipalFrom(c)
	order, err := h.orders.Update(c.Request.Context(), id, req, *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "order updated", models.NewOrderView(order))
}

// DeleteOrder godoc
// @Summary     Delete an order and everything under it
// @Description Removes the order with its files and collaboration links. Staff may only delete their own in_progress orders
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID (UUID)"
// @Success     200 {object} models.Response
// @Failure     403 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /orders/{id} [delete]
func (h *OrdersHandler) DeleteOrder(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	p := middleware.PrincipalFrom(c)
	if err := h.orders.Delete(c.Request.Context(), id, *p); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "order deleted", nil)
}
