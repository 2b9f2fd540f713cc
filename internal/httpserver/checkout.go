package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"storefront/internal/domain"
)

type checkoutRequest struct {
	AddressID string `json:"addressId"`
}

func (h *handler) reviewCheckout(c *gin.Context) {
	review, err := h.deps.CheckoutSvc.Review(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toReview(review))
}

// submitCheckout places the order. Rejections caused by the shopper come back
// with the review and the submitted address so the form can be shown again.
func (h *handler) submitCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	ctx := c.Request.Context()
	id := identityFrom(c)

	conf, err := h.deps.CheckoutSvc.Checkout(ctx, id, req.AddressID)
	if err == nil {
		c.JSON(http.StatusCreated, toOrder(conf.Order))
		return
	}

	var stock *domain.InsufficientStockError
	if !errors.Is(err, domain.ErrInvalidAddress) && !errors.Is(err, domain.ErrEmptyCart) &&
		!errors.Is(err, domain.ErrCartChanged) && !errors.As(err, &stock) {
		h.fail(c, err)
		return
	}

	status, body := statusFor(err)
	resp := checkoutErrorResponse{errorResponse: body, AddressID: req.AddressID}
	if review, rerr := h.deps.CheckoutSvc.Review(ctx, id); rerr == nil {
		r := toReview(review)
		resp.Review = &r
	}
	c.JSON(status, resp)
}
