package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	ordersmapper "github.com/Apurer/storekeeper/internal/domains/orders/adapters/http/mapper"
	ordersdomain "github.com/Apurer/storekeeper/internal/domains/orders/domain"
	apierrors "github.com/Apurer/storekeeper/internal/shared/errors"
)

// IdempotencyKeyHeader lets a client retry POST /orders without placing the order twice.
const IdempotencyKeyHeader = "Idempotency-Key"

// Get /v1/owners/:ownerId/orders
// Lists the newest orders first, ?limit= defaults to 10
func (h *Handler) ListOrders(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			apierrors.Respond(c, apierrors.NewFieldProblem("limit", "must be a positive integer"))
			return
		}
		limit = n
	}
	orders, err := h.services.Orders.ListRecentOrders(c.Request.Context(), ownerID(c), limit)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordersmapper.FromOrders(orders))
}

// Post /v1/owners/:ownerId/orders
// Commits a direct order in one step
func (h *Handler) PlaceOrder(c *gin.Context) {
	var payload ordersmapper.PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	order, err := h.services.Orders.PlaceOrder(c.Request.Context(), ordersmapper.ToPlaceOrderInput(ownerID(c), payload, key))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordersmapper.FromOrder(order))
}

// Get /v1/owners/:ownerId/orders/:orderNumber
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.services.Orders.GetOrder(c.Request.Context(), ownerID(c), c.Param("orderNumber"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordersmapper.FromOrder(order))
}

func basketKey(c *gin.Context) ordersdomain.Key {
	return ordersdomain.Key{OwnerID: ownerID(c), ConversationID: c.Param("conversationId")}
}

// Post /v1/owners/:ownerId/baskets
// Starts a basket with a fresh offer; the body may name the conversation
func (h *Handler) BeginBasket(c *gin.Context) {
	var payload ordersmapper.BeginBasketRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
	}
	basket, err := h.services.Orders.BeginBasket(c.Request.Context(), ownerID(c), strings.TrimSpace(payload.ConversationID))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordersmapper.FromBasket(basket))
}

// Get /v1/owners/:ownerId/baskets/:conversationId
func (h *Handler) GetBasket(c *gin.Context) {
	basket, err := h.services.Orders.GetBasket(c.Request.Context(), basketKey(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordersmapper.FromBasket(basket))
}

// Delete /v1/owners/:ownerId/baskets/:conversationId
func (h *Handler) CancelBasket(c *gin.Context) {
	if err := h.services.Orders.CancelBasket(c.Request.Context(), basketKey(c)); err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Put /v1/owners/:ownerId/baskets/:conversationId/selection
func (h *Handler) SelectProducts(c *gin.Context) {
	var payload ordersmapper.SelectionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	selection, err := ordersmapper.ToSelection(payload)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	basket, err := h.services.Orders.SelectProducts(c.Request.Context(), basketKey(c), selection)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordersmapper.FromBasket(basket))
}

// Put /v1/owners/:ownerId/baskets/:conversationId/quantities
func (h *Handler) EnterQuantities(c *gin.Context) {
	var payload ordersmapper.QuantitiesRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	quantities, err := ordersmapper.ToQuantities(payload)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	basket, err := h.services.Orders.EnterQuantities(c.Request.Context(), basketKey(c), quantities)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordersmapper.FromBasket(basket))
}

// Post /v1/owners/:ownerId/baskets/:conversationId/confirm
// Commits the basket as an order
func (h *Handler) ConfirmBasket(c *gin.Context) {
	order, err := h.services.Orders.ConfirmBasket(c.Request.Context(), basketKey(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordersmapper.FromOrder(order))
}
