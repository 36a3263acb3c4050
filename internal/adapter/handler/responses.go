package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/openmkt/marketplace/internal/core/domain"
)

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// CustomValidator adapts validator/v10 to Echo's Validator interface.
type CustomValidator struct {
	Validator *validator.Validate
}

func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.Validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// errorJSON maps domain errors onto HTTP statuses. Anything unrecognized is
// a 500 with a generic message; the real error goes to the request log.
func errorJSON(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, domain.ErrInvalidAssetID),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidRoyalty),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidMetadata),
		errors.Is(err, domain.ErrInvalidChain),
		errors.Is(err, domain.ErrInvalidExternalID):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrNotAuthorized),
		errors.Is(err, domain.ErrOwnershipMismatch):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, domain.ErrAssetNotFound),
		errors.Is(err, domain.ErrNotListed),
		errors.Is(err, domain.ErrMetadataNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrAssetAlreadyExists),
		errors.Is(err, domain.ErrAlreadyListed),
		errors.Is(err, domain.ErrDuplicateRequest):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, domain.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
		message = err.Error()
	default:
		c.Logger().Error(err)
	}

	return c.JSON(status, ErrorResponse{Error: true, Message: message})
}
