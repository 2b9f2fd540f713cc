package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handler) categories(c *gin.Context) {
	list, err := h.deps.CatalogSvc.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]categoryResponse, 0, len(list))
	for _, cat := range list {
		out = append(out, toCategory(cat))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) categoryProducts(c *gin.Context) {
	cat, products, err := h.deps.CatalogSvc.CategoryProducts(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category": toCategory(*cat),
		"products": toProducts(products),
	})
}

func (h *handler) product(c *gin.Context) {
	detail, err := h.deps.CatalogSvc.Product(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product": toProduct(detail.Product),
		"related": toProducts(detail.Related),
	})
}
