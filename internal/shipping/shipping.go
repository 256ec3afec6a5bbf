package shipping

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/matiascortez/vestia-backend/pkg/andreani"
	"github.com/matiascortez/vestia-backend/pkg/config"
	"github.com/matiascortez/vestia-backend/pkg/logger"
)

const (
	carrierName  = "andreani"
	serviceLabel = "Estándar a Domicilio"
)

// Quote is the cost/ETA answer for one destination. Failures are values, not
// errors: callers branch on Success and render Error.
type Quote struct {
	Carrier      string          `json:"carrier"`
	Service      string          `json:"service"`
	Cost         decimal.Decimal `json:"cost"`
	DeliveryDays string          `json:"deliveryDays"`
	Success      bool            `json:"success"`
	Error        string          `json:"error,omitempty"`
}

func failureQuote(reason string) Quote {
	return Quote{
		Carrier:      carrierName,
		Service:      "error",
		Cost:         decimal.Zero,
		DeliveryDays: "-",
		Success:      false,
		Error:        reason,
	}
}

type carrierAPI interface {
	Configured() bool
	QuoteTariff(ctx context.Context, destinationPostal string, declaredValue float64) (*andreani.Tariff, error)
	CreateShipment(ctx context.Context, req andreani.ShipmentRequest) (*andreani.Shipment, error)
}

// Service answers rate lookups, either from the deterministic mock table or
// the real carrier. Callers cannot tell which branch ran.
type Service struct {
	carrier carrierAPI
	useMock bool
	logg    *logger.Logger
}

func NewService(carrier carrierAPI, cfg config.AndreaniConfig, logg *logger.Logger) *Service {
	return &Service{carrier: carrier, useMock: cfg.UseMock, logg: logg}
}

// Quote prices a shipment to the destination postal code. Postal codes
// shorter than 4 characters fail immediately without touching the network.
func (s *Service) Quote(ctx context.Context, postalCode, province string, declaredValue decimal.Decimal) Quote {
	postalCode = strings.TrimSpace(postalCode)
	if len(postalCode) < 4 {
		return failureQuote("Código postal inválido")
	}

	if s.useMock {
		return mockQuote(postalCode, declaredValue)
	}
	if s.carrier == nil || !s.carrier.Configured() {
		// Shipping is non-critical: without credentials we quietly serve
		// the mock table instead of failing checkout.
		if s.logg != nil {
			s.logg.Warn(ctx, "andreani api key missing, serving mock quote")
		}
		return mockQuote(postalCode, declaredValue)
	}

	tariff, err := s.carrier.QuoteTariff(ctx, postalCode, declaredValue.InexactFloat64())
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "andreani tariff lookup failed", err)
		}
		return failureQuote(err.Error())
	}

	return Quote{
		Carrier:      carrierName,
		Service:      serviceLabel,
		Cost:         decimal.NewFromFloat(tariff.Total).Round(0),
		DeliveryDays: "3-5",
		Success:      true,
	}
}

// CreateShipment registers the carrier shipping order for a paid purchase.
// Uncredentialed deployments log a mock creation and return an empty
// tracking number.
func (s *Service) CreateShipment(ctx context.Context, req andreani.ShipmentRequest) (string, error) {
	if s.useMock || s.carrier == nil || !s.carrier.Configured() {
		if s.logg != nil {
			ctx = s.logg.WithField(ctx, "destination", req.DestinationStreet)
			s.logg.Info(ctx, "shipment creation mocked (no carrier credentials)")
		}
		return "", nil
	}
	shipment, err := s.carrier.CreateShipment(ctx, req)
	if err != nil {
		return "", err
	}
	return shipment.TrackingNumber, nil
}

// declaredValueSurcharge applies above this threshold.
var surchargeThreshold = decimal.NewFromInt(50000)

var surchargeAmount = decimal.NewFromInt(500)

type mockTier struct {
	baseCost     decimal.Decimal
	deliveryDays string
}

// Zone tiers keyed on the leading character of the postal code.
var mockTiers = map[string]mockTier{
	// CABA y GBA
	"1": {decimal.NewFromInt(2500), "2-3"},
	"B": {decimal.NewFromInt(2500), "2-3"},
	// Zona centro
	"2": {decimal.NewFromInt(4500), "4-6"},
	"3": {decimal.NewFromInt(4500), "4-6"},
	"5": {decimal.NewFromInt(4500), "4-6"},
	// Patagonia
	"8": {decimal.NewFromInt(7500), "7-10"},
	"9": {decimal.NewFromInt(7500), "7-10"},
}

var defaultTier = mockTier{decimal.NewFromInt(3500), "3-5"}

func mockQuote(postalCode string, declaredValue decimal.Decimal) Quote {
	tier, ok := mockTiers[postalCode[:1]]
	if !ok {
		tier = defaultTier
	}

	cost := tier.baseCost
	if declaredValue.GreaterThan(surchargeThreshold) {
		cost = cost.Add(surchargeAmount)
	}

	return Quote{
		Carrier:      carrierName,
		Service:      serviceLabel,
		Cost:         cost,
		DeliveryDays: tier.deliveryDays,
		Success:      true,
	}
}
