package types

import "strings"

// BuyerInfo is the shopper's contact block. The length checks are gating
// conditions for step progression, not authoritative validation.
type BuyerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (b BuyerInfo) Valid() bool {
	return len(strings.TrimSpace(b.Name)) >= 2 &&
		validEmail(b.Email) &&
		len(strings.TrimSpace(b.Phone)) >= 7
}

func validEmail(v string) bool {
	v = strings.TrimSpace(v)
	at := strings.Index(v, "@")
	if at < 1 {
		return false
	}
	domain := v[at+1:]
	dot := strings.Index(domain, ".")
	return dot >= 1 && dot < len(domain)-1
}

// ShippingAddress is the delivery destination.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Notes      string `json:"notes,omitempty"`
}

func (a ShippingAddress) Valid() bool {
	return len(strings.TrimSpace(a.Address)) >= 3 &&
		len(strings.TrimSpace(a.City)) >= 2 &&
		len(strings.TrimSpace(a.Province)) >= 2 &&
		len(strings.TrimSpace(a.PostalCode)) >= 3
}
