// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/storefront/storefront-backend/internal/i18n"
	"github.com/storefront/storefront-backend/internal/services"
	"github.com/storefront/storefront-backend/internal/utils"
)

type OrderHandler struct {
	orderService    *services.OrderService
	checkoutService *services.CheckoutService
}

func NewOrderHandler(orderService *services.OrderService, checkoutService *services.CheckoutService) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		checkoutService: checkoutService,
	}
}

// POST /orders
//
// Confirms a checkout: the order is built from the server-side cart,
// the payment id (when present) is verified with the gateway, and the
// cart is cleared on success.
func (h *OrderHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	var req services.ConfirmCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	order, err := h.checkoutService.CompleteCheckout(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, order)
}

// GET /orders/myorders
func (h *OrderHandler) MyOrders(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	orders, err := h.orderService.ListForUser(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, orders)
}

// GET /orders (admin)
func (h *OrderHandler) ListAll(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	orders, total, err := h.orderService.ListAll(params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	order, err := h.orderService.GetByID(id, userID, utils.IsAdminFromContext(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /orders/:id/pay
func (h *OrderHandler) Pay(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	var req struct {
		PaymentID string `json:"payment_id" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "payment_id"), nil)
		return
	}

	order, err := h.checkoutService.PayOrder(c.Request.Context(), id, userID, utils.IsAdminFromContext(c), req.PaymentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// PUT /orders/:id/deliver (admin)
func (h *OrderHandler) SetDelivered(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Delivered *bool `json:"delivered"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Delivered == nil {
		// Absent body means mark delivered
		delivered := true
		req.Delivered = &delivered
	}

	order, err := h.orderService.SetDelivered(id, *req.Delivered)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderDelivered),
		"order":   order,
	})
}
