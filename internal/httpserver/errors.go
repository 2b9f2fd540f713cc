package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"
)

const internalMessage = "there was an error processing your request, please try again"

type errorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Product string `json:"product,omitempty"`
}

func errorBody(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// statusFor maps a service error to an HTTP status and a client-safe body.
func statusFor(err error) (int, errorResponse) {
	var (
		validation *domain.ValidationError
		stock      *domain.InsufficientStockError
		persist    *domain.PersistenceError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, errorResponse{Error: validation.Message, Field: validation.Field}
	case errors.As(err, &stock):
		return http.StatusConflict, errorResponse{Error: stock.Error(), Product: stock.ProductName}
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrInvalidAddress):
		return http.StatusBadRequest, errorBody(err.Error())
	case errors.Is(err, domain.ErrCartChanged):
		return http.StatusConflict, errorBody(err.Error())
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return http.StatusUnauthorized, errorBody(err.Error())
	case errors.Is(err, customersvc.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorBody("invalid username/email or password")
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody("not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, errorBody("already exists")
	case errors.As(err, &persist):
		return http.StatusInternalServerError, errorBody(persist.Error())
	default:
		return http.StatusInternalServerError, errorBody(internalMessage)
	}
}

func (h *handler) fail(c *gin.Context, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.lg.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, body)
}
