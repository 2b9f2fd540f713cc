package httpserver

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	checkoutsvc "storefront/internal/service/checkout"
	ordersvc "storefront/internal/service/order"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type customerResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCustomer(c domain.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		Username:  c.Username,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		CreatedAt: c.CreatedAt,
	}
}

type tokenResponse struct {
	AccessToken  string           `json:"access_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int              `json:"expires_in"`
	RefreshToken string           `json:"refresh_token,omitempty"`
	Customer     *customerResponse `json:"customer,omitempty"`
}

type addressResponse struct {
	ID          string `json:"id"`
	Type        string `json:"addressType"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Line1       string `json:"addressLine1"`
	Line2       string `json:"addressLine2,omitempty"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
	IsDefault   bool   `json:"isDefault"`
	OneLine     string `json:"formatted"`
}

func toAddress(a domain.Address) addressResponse {
	return addressResponse{
		ID:          a.ID,
		Type:        string(a.Type),
		FullName:    a.FullName,
		PhoneNumber: a.PhoneNumber,
		Line1:       a.Line1,
		Line2:       a.Line2,
		City:        a.City,
		State:       a.State,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
		IsDefault:   a.IsDefault,
		OneLine:     a.OneLine(),
	}
}

func toAddresses(in []domain.Address) []addressResponse {
	out := make([]addressResponse, 0, len(in))
	for _, a := range in {
		out = append(out, toAddress(a))
	}
	return out
}

type categoryResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func toCategory(c domain.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Slug: c.Slug, Name: c.Name, Description: c.Description}
}

type productResponse struct {
	ID          string  `json:"id"`
	CategoryID  *string `json:"categoryId,omitempty"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       string  `json:"price"`
	Stock       int     `json:"stock"`
	InStock     bool    `json:"inStock"`
}

func toProduct(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		Stock:       p.Stock,
		InStock:     p.InStock(),
	}
}

func toProducts(in []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(in))
	for _, p := range in {
		out = append(out, toProduct(p))
	}
	return out
}

type cartLineResponse struct {
	ID        string          `json:"id"`
	Product   productResponse `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal string          `json:"lineTotal"`
}

type cartResponse struct {
	ID        string             `json:"id"`
	Lines     []cartLineResponse `json:"lines"`
	ItemCount int                `json:"itemCount"`
	Subtotal  string             `json:"subtotal"`
}

func toCart(c *domain.Cart) cartResponse {
	resp := cartResponse{Lines: []cartLineResponse{}, Subtotal: money(c.Subtotal()), ItemCount: c.ItemCount()}
	if c == nil {
		return resp
	}
	resp.ID = c.ID
	for _, l := range c.Lines {
		resp.Lines = append(resp.Lines, cartLineResponse{
			ID:        l.ID,
			Product:   toProduct(l.Product),
			Quantity:  l.Quantity,
			LineTotal: money(l.Total()),
		})
	}
	return resp
}

type totalsResponse struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

func toTotals(t pricing.Totals) totalsResponse {
	return totalsResponse{
		Subtotal: money(t.Subtotal),
		Tax:      money(t.Tax),
		Shipping: money(t.ShippingCost),
		Total:    money(t.Total),
	}
}

type reviewResponse struct {
	Cart      cartResponse      `json:"cart"`
	Totals    totalsResponse    `json:"totals"`
	Addresses []addressResponse `json:"addresses"`
}

func toReview(r *checkoutsvc.Review) reviewResponse {
	return reviewResponse{
		Cart:      toCart(r.Cart),
		Totals:    toTotals(r.Totals),
		Addresses: toAddresses(r.Addresses),
	}
}

// checkoutErrorResponse is returned when a submission is rejected. The review
// is re-rendered when it can still be built.
type checkoutErrorResponse struct {
	errorResponse
	AddressID string          `json:"addressId,omitempty"`
	Review    *reviewResponse `json:"review,omitempty"`
}

type orderItemResponse struct {
	ProductID   *string `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   string  `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	Subtotal    string  `json:"subtotal"`
}

type orderResponse struct {
	OrderNumber     string                  `json:"orderNumber"`
	Status          domain.OrderStatus      `json:"status"`
	PaymentStatus   domain.PaymentStatus    `json:"paymentStatus"`
	PaymentMethod   string                  `json:"paymentMethod"`
	Shipping        domain.ShippingSnapshot `json:"shipping"`
	ShippingAddress string                  `json:"shippingAddress"`
	Items           []orderItemResponse     `json:"items"`
	ItemCount       int                     `json:"itemCount"`
	Totals          totalsResponse          `json:"totals"`
	CreatedAt       time.Time               `json:"createdAt"`
}

func toOrder(o *domain.Order) orderResponse {
	resp := orderResponse{
		OrderNumber:     o.Number,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		Shipping:        o.Shipping,
		ShippingAddress: o.ShippingAddress(),
		Items:           make([]orderItemResponse, 0, len(o.Items)),
		ItemCount:       o.ItemCount(),
		Totals: totalsResponse{
			Subtotal: money(o.Subtotal),
			Tax:      money(o.Tax),
			Shipping: money(o.ShippingCost),
			Total:    money(o.Total),
		},
		CreatedAt: o.CreatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   money(it.UnitPrice),
			Quantity:    it.Quantity,
			Subtotal:    money(it.Subtotal),
		})
	}
	return resp
}

type orderSummaryResponse struct {
	OrderNumber   string               `json:"orderNumber"`
	Status        domain.OrderStatus   `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	Total         string               `json:"total"`
	ItemCount     int                  `json:"itemCount"`
	CreatedAt     time.Time            `json:"createdAt"`
}

func toSummaries(in []ordersvc.Summary) []orderSummaryResponse {
	out := make([]orderSummaryResponse, 0, len(in))
	for _, s := range in {
		out = append(out, orderSummaryResponse{
			OrderNumber:   s.Number,
			Status:        s.Status,
			PaymentStatus: s.PaymentStatus,
			Total:         money(s.Total),
			ItemCount:     s.ItemCount,
			CreatedAt:     s.CreatedAt,
		})
	}
	return out
}

type invoiceLineResponse struct {
	Description string `json:"description"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	Amount      string `json:"amount"`
}

type invoiceResponse struct {
	InvoiceNumber string                `json:"invoiceNumber"`
	PlacedAt      time.Time             `json:"placedAt"`
	IssuedAt      time.Time             `json:"issuedAt"`
	BillTo        string                `json:"billTo"`
	ShipTo        string                `json:"shipTo"`
	Phone         string                `json:"phone,omitempty"`
	PaymentMethod string                `json:"paymentMethod"`
	PaymentStatus domain.PaymentStatus  `json:"paymentStatus"`
	Lines         []invoiceLineResponse `json:"lines"`
	Totals        totalsResponse        `json:"totals"`
}

func toInvoice(inv *ordersvc.Invoice) invoiceResponse {
	resp := invoiceResponse{
		InvoiceNumber: inv.Number,
		PlacedAt:      inv.PlacedAt,
		IssuedAt:      inv.IssuedAt,
		BillTo:        inv.BillTo,
		ShipTo:        inv.ShipTo,
		Phone:         inv.Phone,
		PaymentMethod: inv.PaymentMethod,
		PaymentStatus: inv.PaymentStatus,
		Lines:         make([]invoiceLineResponse, 0, len(inv.Lines)),
		Totals: totalsResponse{
			Subtotal: money(inv.Subtotal),
			Tax:      money(inv.Tax),
			Shipping: money(inv.ShippingCost),
			Total:    money(inv.Total),
		},
	}
	for _, l := range inv.Lines {
		resp.Lines = append(resp.Lines, invoiceLineResponse{
			Description: l.Description,
			UnitPrice:   money(l.UnitPrice),
			Quantity:    l.Quantity,
			Amount:      money(l.Amount),
		})
	}
	return resp
}
