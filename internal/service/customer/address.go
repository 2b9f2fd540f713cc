package customer

import (
	"context"
	"strings"

	"storefront/internal/domain"
)

// AddressInput mirrors incoming address payloads.
type AddressInput struct {
	Type        string `json:"addressType"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Line1       string `json:"addressLine1"`
	Line2       string `json:"addressLine2"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
	IsDefault   bool   `json:"isDefault"`
}

func (in AddressInput) toAddress(customerID string) (domain.Address, error) {
	a := domain.Address{
		CustomerID:  customerID,
		Type:        domain.AddressType(strings.ToLower(strings.TrimSpace(in.Type))),
		FullName:    strings.TrimSpace(in.FullName),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Line1:       strings.TrimSpace(in.Line1),
		Line2:       strings.TrimSpace(in.Line2),
		City:        strings.TrimSpace(in.City),
		State:       strings.TrimSpace(in.State),
		PostalCode:  strings.TrimSpace(in.PostalCode),
		Country:     strings.TrimSpace(in.Country),
		IsDefault:   in.IsDefault,
	}
	if a.Type == "" {
		a.Type = domain.AddressShipping
	}
	if !a.Type.Valid() {
		return a, domain.Invalid("addressType", "must be shipping or billing")
	}
	required := []struct{ field, value string }{
		{"fullName", a.FullName},
		{"phoneNumber", a.PhoneNumber},
		{"addressLine1", a.Line1},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	}
	for _, r := range required {
		if r.value == "" {
			return a, domain.Invalid(r.field, "required")
		}
	}
	return a, nil
}

func (s *Service) ListAddresses(ctx context.Context, customerID string) ([]domain.Address, error) {
	return s.addresses.ListForCustomer(ctx, customerID)
}

func (s *Service) GetAddress(ctx context.Context, customerID, addressID string) (*domain.Address, error) {
	return s.addresses.GetForCustomer(ctx, customerID, addressID)
}

func (s *Service) CreateAddress(ctx context.Context, customerID string, in AddressInput) (*domain.Address, error) {
	a, err := in.toAddress(customerID)
	if err != nil {
		return nil, err
	}
	return s.addresses.Create(ctx, a)
}

func (s *Service) UpdateAddress(ctx context.Context, customerID, addressID string, in AddressInput) (*domain.Address, error) {
	if _, err := s.addresses.GetForCustomer(ctx, customerID, addressID); err != nil {
		return nil, err
	}
	a, err := in.toAddress(customerID)
	if err != nil {
		return nil, err
	}
	a.ID = addressID
	return s.addresses.Update(ctx, a)
}

func (s *Service) DeleteAddress(ctx context.Context, customerID, addressID string) error {
	return s.addresses.Delete(ctx, customerID, addressID)
}
