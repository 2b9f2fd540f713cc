package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

const DefaultPaymentMethod = "Mock Payment"

// ShippingSnapshot is the address copied onto an order at checkout.
type ShippingSnapshot struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"addressLine1"`
	Line2      string `json:"addressLine2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func SnapshotAddress(a Address) ShippingSnapshot {
	return ShippingSnapshot{
		Name:       a.FullName,
		Phone:      a.PhoneNumber,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// Order is immutable once placed; amounts are never recomputed from the catalog.
type Order struct {
	ID            string           `json:"id"`
	Number        string           `json:"orderNumber"`
	CustomerID    string           `json:"-"`
	Shipping      ShippingSnapshot `json:"shipping"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	Tax           decimal.Decimal  `json:"tax"`
	ShippingCost  decimal.Decimal  `json:"shippingCost"`
	Total         decimal.Decimal  `json:"total"`
	Status        OrderStatus      `json:"status"`
	PaymentStatus PaymentStatus    `json:"paymentStatus"`
	PaymentMethod string           `json:"paymentMethod"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	Items         []OrderItem      `json:"items"`
}

// ShippingAddress renders the snapshot as "line1[, line2], city, state, postal, country".
func (o Order) ShippingAddress() string {
	s := o.Shipping
	return joinAddress(s.Line1, s.Line2, s.City, s.State, s.PostalCode, s.Country)
}

func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// OrderItem keeps a weak reference to its product; ProductID becomes nil when
// the product is deleted while name and price stay as captured.
type OrderItem struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"-"`
	ProductID   *string         `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	CreatedAt   time.Time       `json:"createdAt"`
}
