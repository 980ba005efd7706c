// internal/handlers/user.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront/storefront-backend/internal/i18n"
	"github.com/storefront/storefront-backend/internal/services"
	"github.com/storefront/storefront-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// bindProductID accepts both the canonical snake_case key and the
// bare "productId" some clients send.
func bindProductID(c *gin.Context) (string, bool) {
	var req struct {
		ProductID    string `json:"product_id"`
		ProductIDAlt string `json:"productId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", false
	}
	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		id = strings.TrimSpace(req.ProductIDAlt)
	}
	return id, id != ""
}

// GET /auth/wishlist
func (h *UserHandler) GetWishlist(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	wishlist, err := h.userService.GetWishlist(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"wishlist": wishlist})
}

// POST /auth/wishlist
func (h *UserHandler) AddToWishlist(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	productID, ok := bindProductID(c)
	if !ok {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyWishlistProductID), nil)
		return
	}

	if err := h.userService.AddToWishlist(userID, productID); err != nil {
		if errors.Is(err, services.ErrConflict) {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyWishlistDuplicate))
			return
		}
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyWishlistAdded),
	})
}

// DELETE /auth/wishlist
func (h *UserHandler) RemoveFromWishlist(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	productID, ok := bindProductID(c)
	if !ok {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyWishlistProductID), nil)
		return
	}

	if err := h.userService.RemoveFromWishlist(userID, productID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyWishlistRemoved),
	})
}
