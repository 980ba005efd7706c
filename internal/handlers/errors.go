// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/storefront/storefront-backend/internal/services"
	"github.com/storefront/storefront-backend/internal/utils"
)

// handleServiceError maps the service error taxonomy onto HTTP
// responses. Anything outside the taxonomy is treated as an internal
// error without leaking the cause to the client.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrGateway):
		utils.BadGatewayResponse(c, err.Error())
	default:
		utils.InternalErrorResponse(c, "internal server error")
	}
}
