package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handler) listOrders(c *gin.Context) {
	list, err := h.deps.OrderSvc.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaries(list))
}

func (h *handler) getOrder(c *gin.Context) {
	o, err := h.deps.OrderSvc.Get(c.Request.Context(), identityFrom(c), c.Param("number"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(o))
}

func (h *handler) orderConfirmation(c *gin.Context) {
	o, err := h.deps.OrderSvc.Get(c.Request.Context(), identityFrom(c), c.Param("number"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "thank you for your order",
		"order":   toOrder(o),
	})
}

func (h *handler) orderInvoice(c *gin.Context) {
	inv, err := h.deps.OrderSvc.Invoice(c.Request.Context(), identityFrom(c), c.Param("number"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoice(inv))
}
