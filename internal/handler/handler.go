package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/aditya/go-gigs/internal/errors"
	"github.com/aditya/go-gigs/pkg/utils"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// handleError writes err as {"error": kind, "message": text}. Anything that
// is not an APIError is reported as an internal error.
func handleError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("kind", apiErr.Code), zap.Error(err))
		}
		utils.Error(w, apiErr)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	utils.InternalError(w, "internal server error")
}

// decodeAndValidate reads a JSON body into dst and runs the struct's
// validate tags. It writes the 400 itself and reports false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.BadRequest(w, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		utils.BadRequest(w, err.Error())
		return false
	}
	return true
}
