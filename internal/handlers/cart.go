// internal/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/storefront-backend/internal/i18n"
	"github.com/storefront/storefront-backend/internal/services"
	"github.com/storefront/storefront-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	cart, err := h.cartService.Get(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"cart_items": cart.Items,
		"total":      cart.Total(),
	})
}

// POST /cart/add
func (h *CartHandler) Add(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	var req services.UpsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	cart, err := h.cartService.UpsertItem(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// POST /cart/remove
func (h *CartHandler) Remove(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == uuid.Nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "product"), nil)
		return
	}

	cart, err := h.cartService.RemoveItem(userID, req.ProductID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// POST /cart/clear
func (h *CartHandler) Clear(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	if err := h.cartService.Clear(userID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCartCleared),
	})
}
