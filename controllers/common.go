package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sakura-poker/reservation-app/services"
	"github.com/sakura-poker/reservation-app/utils"
)

// respondEngineError maps the engine's typed errors onto HTTP statuses:
// validation and capacity problems are the caller's fault (400), a missing
// table or reservation is 404, an occupied slot is 409. Anything else is an
// infrastructure failure.
func respondEngineError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var capacityErr *services.CapacityError
	var conflictErr *services.ConflictError

	switch {
	case errors.As(err, &validationErr):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, &capacityErr):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, &notFoundErr):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.As(err, &conflictErr):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.ErrorLogger.Printf("Unexpected engine error: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
