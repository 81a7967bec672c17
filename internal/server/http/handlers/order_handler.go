package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderpay/internal/domain/model"
	"github.com/polkiloo/orderpay/internal/server/http/dto"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, details, err := h.facade.CreateOrder(c.Request.Context(), CurrentUserID(c), req.Checkout())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateOrderResponse{Order: order, PaymentDetails: details})
}

// List handles GET /api/orders?page=&limit=.
func (h *OrderHandler) List(c *gin.Context) {
	page, ok := queryInt(c, "page", defaultPage)
	if !ok || page < 1 {
		c.JSON(http.StatusBadRequest, dto.Error("page must be a positive integer"))
		return
	}
	limit, ok := queryInt(c, "limit", defaultLimit)
	if !ok || limit < 1 {
		c.JSON(http.StatusBadRequest, dto.Error("limit must be a positive integer"))
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	result, err := h.facade.Orders(c.Request.Context(), CurrentUserID(c), (page-1)*limit, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	data := result.Orders
	if data == nil {
		data = []model.Order{}
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{
		Data: data,
		Meta: dto.PageMeta{
			Total:      result.Total,
			Page:       page,
			Limit:      limit,
			TotalPages: int((result.Total + int64(limit) - 1) / int64(limit)),
		},
	})
}

// UpdateStatus handles PATCH /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), c.Param("id"), model.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
