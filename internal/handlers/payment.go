// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/storefront/storefront-backend/internal/i18n"
	"github.com/storefront/storefront-backend/internal/services"
	"github.com/storefront/storefront-backend/internal/utils"
)

type PaymentHandler struct {
	checkoutService *services.CheckoutService
}

func NewPaymentHandler(checkoutService *services.CheckoutService) *PaymentHandler {
	return &PaymentHandler{
		checkoutService: checkoutService,
	}
}

// POST /payment/create-order
//
// Opens a gateway order for the caller's cart. The amount in the body
// is advisory; the charge is always the catalog-derived cart total.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	handle, err := h.checkoutService.BeginCheckout(c.Request.Context(), userID, req.Amount)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, handle)
}
