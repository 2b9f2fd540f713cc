package domain

import (
	"strings"
	"time"
)

type AddressType string

const (
	AddressShipping AddressType = "shipping"
	AddressBilling  AddressType = "billing"
)

// Valid reports whether t is a known address type.
func (t AddressType) Valid() bool {
	return t == AddressShipping || t == AddressBilling
}

// Address is an entry in a customer's address book.
type Address struct {
	ID          string      `json:"id"`
	CustomerID  string      `json:"-"`
	Type        AddressType `json:"addressType"`
	FullName    string      `json:"fullName"`
	PhoneNumber string      `json:"phoneNumber"`
	Line1       string      `json:"addressLine1"`
	Line2       string      `json:"addressLine2,omitempty"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	PostalCode  string      `json:"postalCode"`
	Country     string      `json:"country"`
	IsDefault   bool        `json:"isDefault"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// OneLine formats the address as a single comma separated line.
func (a Address) OneLine() string {
	return joinAddress(a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country)
}

func joinAddress(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
