package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	customersvc "storefront/internal/service/customer"
)

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handler) register(c *gin.Context) {
	var req customersvc.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	cust, err := h.deps.CustomerSvc.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomer(*cust))
}

// login accepts a username or an email. A session token sent along moves the
// anonymous cart into the customer's cart.
func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("login and password are required"))
		return
	}
	ctx := c.Request.Context()
	cust, access, refresh, err := h.deps.CustomerSvc.Login(ctx, req.Login, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	if v, ok := c.Get(sessionKeyKey); ok {
		if err := h.deps.CartSvc.MergeSession(ctx, v.(string), cust.ID); err != nil {
			h.lg.Warn("merge session cart", zap.String("customer_id", cust.ID), zap.Error(err))
		}
	}

	resp := toCustomer(*cust)
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    h.deps.CustomerSvc.AccessTTLSeconds(),
		RefreshToken: refresh,
		Customer:     &resp,
	})
}

func (h *handler) logout(c *gin.Context) {
	token := c.GetString(accessTokenKey)
	if err := h.deps.CustomerSvc.Logout(c.Request.Context(), token); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) anonymous(c *gin.Context) {
	token, _, err := h.deps.AnonymousSvc.Issue(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   sessionHeader,
		ExpiresIn:   h.deps.AnonymousSvc.AccessTTLSeconds(),
	})
}

func (h *handler) me(c *gin.Context) {
	cust := customerFrom(c)
	if cust == nil {
		c.JSON(http.StatusUnauthorized, errorBody("authentication required"))
		return
	}
	c.JSON(http.StatusOK, toCustomer(*cust))
}

func (h *handler) listAddresses(c *gin.Context) {
	list, err := h.deps.CustomerSvc.ListAddresses(c.Request.Context(), identityFrom(c).CustomerID())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAddresses(list))
}

func (h *handler) getAddress(c *gin.Context) {
	a, err := h.deps.CustomerSvc.GetAddress(c.Request.Context(), identityFrom(c).CustomerID(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAddress(*a))
}

func (h *handler) createAddress(c *gin.Context) {
	var req customersvc.AddressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	a, err := h.deps.CustomerSvc.CreateAddress(c.Request.Context(), identityFrom(c).CustomerID(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAddress(*a))
}

func (h *handler) updateAddress(c *gin.Context) {
	var req customersvc.AddressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	a, err := h.deps.CustomerSvc.UpdateAddress(c.Request.Context(), identityFrom(c).CustomerID(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAddress(*a))
}

func (h *handler) deleteAddress(c *gin.Context) {
	if err := h.deps.CustomerSvc.DeleteAddress(c.Request.Context(), identityFrom(c).CustomerID(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
