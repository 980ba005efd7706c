// internal/handlers/product.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/storefront-backend/internal/i18n"
	"github.com/storefront/storefront-backend/internal/services"
	"github.com/storefront/storefront-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "id"), nil)
		return uuid.Nil, false
	}
	return id, true
}

// GET /products
func (h *ProductHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	products, total, err := h.productService.List(params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyProductNotFound))
			return
		}
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// POST /products (admin)
func (h *ProductHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.productService.Create(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, product)
}

// PUT /products/:id (admin)
func (h *ProductHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	product, err := h.productService.Update(id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// DELETE /products/:id (admin)
func (h *ProductHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.productService.Delete(id); err != nil {
		if errors.Is(err, services.ErrConflict) {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyProductHasOrders))
			return
		}
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductDeleted),
	})
}

// POST /products/:id/reviews
func (h *ProductHandler) AddReview(c *gin.Context) {
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
	userName := utils.GetUserNameFromContext(c)

	var req services.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.productService.AddReview(id, userID, userName, &req); err != nil {
		switch {
		case errors.Is(err, services.ErrConflict):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyReviewDuplicate))
		case errors.Is(err, services.ErrForbidden):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyReviewNotPurchased))
		default:
			handleServiceError(c, err)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReviewAdded),
	})
}

// POST /products/:id/image (admin)
func (h *ProductHandler) UploadImage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "image"), nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadProductImage(file, header)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	product, err := h.productService.SetImage(id, result.URL)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
		"upload":  result,
	})
}
