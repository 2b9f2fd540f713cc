package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/metrics"
)

const (
	sessionHeader = "X-Session-Token"

	identityKey    = "storefront.identity"
	customerKey    = "storefront.customer"
	accessTokenKey = "storefront.access_token"
	sessionKeyKey  = "storefront.session_key"
)

func requestLogger(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			lg.Error("request", fields...)
			return
		}
		lg.Info("request", fields...)
	}
}

func instrument(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Microseconds()) / 1000)
	}
}

// identityMiddleware resolves the caller. A bearer access token identifies a
// customer; otherwise a session token identifies an anonymous shopper. A
// request carrying neither proceeds with a zero identity.
func identityMiddleware(customers CustomerService, sessions AnonymousService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if token := bearerToken(c.GetHeader("Authorization")); token != "" {
			cust, err := customers.LookupByToken(ctx, token)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("invalid or expired access token"))
				return
			}
			c.Set(identityKey, domain.CustomerIdentity(cust.ID))
			c.Set(customerKey, cust)
			c.Set(accessTokenKey, token)
		}

		if token := strings.TrimSpace(c.GetHeader(sessionHeader)); token != "" {
			key, err := sessions.LookupByToken(ctx, token)
			if err == nil {
				c.Set(sessionKeyKey, key)
				if _, ok := c.Get(identityKey); !ok {
					c.Set(identityKey, domain.SessionIdentity(key))
				}
			} else if _, ok := c.Get(identityKey); !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("invalid or expired session token"))
				return
			}
		}

		c.Next()
	}
}

func requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identityFrom(c).IsZero() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("authentication or session token required"))
			return
		}
		c.Next()
	}
}

func requireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).IsCustomer() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody(domain.ErrAuthenticationRequired.Error()))
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) domain.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}
	}
	id, _ := v.(domain.Identity)
	return id
}

func customerFrom(c *gin.Context) *domain.Customer {
	v, ok := c.Get(customerKey)
	if !ok {
		return nil
	}
	cust, _ := v.(*domain.Customer)
	return cust
}

func bearerToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "bearer") {
		return ""
	}
	return fields[1]
}
