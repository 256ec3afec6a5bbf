package notifications

import (
	"github.com/matiascortez/vestia-backend/pkg/mercadopago"
	"github.com/matiascortez/vestia-backend/pkg/types"
)

// OrderLine is one purchased item as reconstructed from the payment record.
type OrderLine struct {
	Title     string
	Quantity  int
	UnitPrice float64
}

func (l OrderLine) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Order is the confirmed purchase rebuilt from the provider's payment
// record. There is no order database; the payment metadata written at
// preference time is the only record of what was bought and where it goes.
type Order struct {
	PaymentID       int64
	Buyer           types.BuyerInfo
	Address         types.ShippingAddress
	Items           []OrderLine
	ShippingCost    float64
	ShippingService string
	ShippingDays    string
	Total           float64
}

// OrderFromPayment rebuilds the order from payment metadata, falling back to
// the provider's additional_info lines when metadata carries no items.
func OrderFromPayment(payment *mercadopago.Payment) Order {
	order := Order{
		PaymentID: payment.ID,
		Total:     payment.TransactionAmount,
	}

	meta := payment.Metadata
	order.Buyer = types.BuyerInfo{
		Name:  metaString(meta, "buyer_name"),
		Email: metaString(meta, "buyer_email"),
		Phone: metaString(meta, "buyer_phone"),
	}
	order.Address = types.ShippingAddress{
		Address:    metaString(meta, "address"),
		City:       metaString(meta, "city"),
		Province:   metaString(meta, "province"),
		PostalCode: metaString(meta, "postal_code"),
		Notes:      metaString(meta, "notes"),
	}
	order.ShippingCost = metaFloat(meta, "shipping_cost")
	order.ShippingService = metaString(meta, "shipping_service")
	order.ShippingDays = metaString(meta, "shipping_days")

	if order.Buyer.Email == "" && payment.Payer != nil {
		order.Buyer.Email = payment.Payer.Email
	}

	order.Items = metaItems(meta)
	if len(order.Items) == 0 && payment.AdditionalInfo != nil {
		for _, item := range payment.AdditionalInfo.Items {
			order.Items = append(order.Items, OrderLine{
				Title:     item.Title,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
	}
	return order
}

func metaString(meta map[string]any, key string) string {
	if value, ok := meta[key].(string); ok {
		return value
	}
	return ""
}

func metaFloat(meta map[string]any, key string) float64 {
	if value, ok := meta[key].(float64); ok {
		return value
	}
	return 0
}

func metaItems(meta map[string]any) []OrderLine {
	raw, ok := meta["items"].([]any)
	if !ok {
		return nil
	}
	lines := make([]OrderLine, 0, len(raw))
	for _, entry := range raw {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		line := OrderLine{
			Title:     metaString(fields, "title"),
			UnitPrice: metaFloat(fields, "unit_price"),
			Quantity:  int(metaFloat(fields, "quantity")),
		}
		if line.Quantity < 1 {
			line.Quantity = 1
		}
		lines = append(lines, line)
	}
	return lines
}
