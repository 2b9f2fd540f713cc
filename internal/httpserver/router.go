package httpserver

import (
	"context"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	catalogsvc "storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
)

type CustomerService interface {
	Register(ctx context.Context, in customersvc.RegisterInput) (*domain.Customer, error)
	Login(ctx context.Context, login, password string) (*domain.Customer, string, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.Customer, error)
	Logout(ctx context.Context, token string) error
	AccessTTLSeconds() int

	ListAddresses(ctx context.Context, customerID string) ([]domain.Address, error)
	GetAddress(ctx context.Context, customerID, addressID string) (*domain.Address, error)
	CreateAddress(ctx context.Context, customerID string, in customersvc.AddressInput) (*domain.Address, error)
	UpdateAddress(ctx context.Context, customerID, addressID string, in customersvc.AddressInput) (*domain.Address, error)
	DeleteAddress(ctx context.Context, customerID, addressID string) error
}

type AnonymousService interface {
	Issue(ctx context.Context) (token, sessionKey string, err error)
	LookupByToken(ctx context.Context, token string) (string, error)
	AccessTTLSeconds() int
}

type CatalogService interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	CategoryProducts(ctx context.Context, slug string) (*domain.Category, []domain.Product, error)
	Product(ctx context.Context, slug string) (*catalogsvc.ProductDetail, error)
}

type CartService interface {
	View(ctx context.Context, id domain.Identity) (*domain.Cart, error)
	Count(ctx context.Context, id domain.Identity) (int, error)
	AddItem(ctx context.Context, id domain.Identity, productID string, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, id domain.Identity, lineID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, id domain.Identity, lineID string) (*domain.Cart, error)
	Clear(ctx context.Context, id domain.Identity) error
	MergeSession(ctx context.Context, sessionKey, customerID string) error
}

type CheckoutService interface {
	Review(ctx context.Context, id domain.Identity) (*checkoutsvc.Review, error)
	Checkout(ctx context.Context, id domain.Identity, addressID string) (*checkoutsvc.Confirmation, error)
}

type OrderService interface {
	Get(ctx context.Context, id domain.Identity, number string) (*domain.Order, error)
	List(ctx context.Context, id domain.Identity) ([]ordersvc.Summary, error)
	Invoice(ctx context.Context, id domain.Identity, number string) (*ordersvc.Invoice, error)
}

// Deps holds the services the router dispatches to. Metrics is optional.
type Deps struct {
	CustomerSvc  CustomerService
	AnonymousSvc AnonymousService
	CatalogSvc   CatalogService
	CartSvc      CartService
	CheckoutSvc  CheckoutService
	OrderSvc     OrderService
	Metrics      *metrics.Metrics
	CORSOrigins  []string
}

func (d Deps) validate() error {
	switch {
	case d.CustomerSvc == nil:
		return errors.New("customer service is required")
	case d.AnonymousSvc == nil:
		return errors.New("anonymous service is required")
	case d.CatalogSvc == nil:
		return errors.New("catalog service is required")
	case d.CartSvc == nil:
		return errors.New("cart service is required")
	case d.CheckoutSvc == nil:
		return errors.New("checkout service is required")
	case d.OrderSvc == nil:
		return errors.New("order service is required")
	}
	return nil
}

type handler struct {
	lg   *zap.Logger
	deps Deps
}

// buildRouter wires routes for the API.
func buildRouter(lg *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, errors.Wrap(err, "router deps")
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(lg), gin.Recovery())
	if deps.Metrics != nil {
		router.Use(instrument(deps.Metrics))
	}
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	h := &handler{lg: lg, deps: deps}
	api := router.Group("/", identityMiddleware(deps.CustomerSvc, deps.AnonymousSvc))

	accounts := api.Group("/accounts")
	accounts.POST("/register", h.register)
	accounts.POST("/login", h.login)
	accounts.POST("/logout", requireCustomer(), h.logout)
	accounts.POST("/anonymous", h.anonymous)

	me := api.Group("/me", requireCustomer())
	me.GET("", h.me)
	me.GET("/addresses", h.listAddresses)
	me.POST("/addresses", h.createAddress)
	me.GET("/addresses/:id", h.getAddress)
	me.PUT("/addresses/:id", h.updateAddress)
	me.DELETE("/addresses/:id", h.deleteAddress)

	api.GET("/categories", h.categories)
	api.GET("/categories/:slug/products", h.categoryProducts)
	api.GET("/products/:slug", h.product)

	cart := api.Group("/cart", requireIdentity())
	cart.GET("", h.viewCart)
	cart.DELETE("", h.clearCart)
	cart.GET("/count", h.cartCount)
	cart.POST("/items", h.addCartItem)
	cart.PATCH("/items/:id", h.updateCartItem)
	cart.DELETE("/items/:id", h.removeCartItem)

	checkout := api.Group("/checkout", requireCustomer())
	checkout.GET("", h.reviewCheckout)
	checkout.POST("", h.submitCheckout)

	orders := api.Group("/orders", requireCustomer())
	orders.GET("", h.listOrders)
	orders.GET("/:number", h.getOrder)
	orders.GET("/:number/confirmation", h.orderConfirmation)
	orders.GET("/:number/invoice", h.orderInvoice)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", sessionHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
