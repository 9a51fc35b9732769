package pricing

import (
	"github.com/opscart/assist-advisor/pkg/catalog"
	"github.com/opscart/assist-advisor/pkg/classifier"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/shopspring/decimal"
)

// Estimator prices services for a vehicle
type Estimator struct {
	provider Provider
}

func NewEstimator(provider Provider) *Estimator {
	if provider == nil {
		provider = NewDefaultProvider()
	}
	return &Estimator{provider: provider}
}

// Provider returns the price list backing this estimator
func (e *Estimator) Provider() Provider {
	return e.provider
}

// Price returns the base price for a service on a vehicle category, falling
// back to catalog.DefaultPrice when the pair is not priced. Service names
// must match the catalog spelling exactly; see catalog.Canonical.
func (e *Estimator) Price(serviceType string, category models.VehicleCategory) decimal.Decimal {
	spec, ok := catalog.Lookup(catalog.ServiceType(serviceType))
	if !ok {
		return catalog.DefaultPrice()
	}
	price, ok := e.provider.BasePrice(spec.Type, category)
	if !ok {
		return catalog.DefaultPrice()
	}
	return price
}

// Estimate builds the cost breakdown for a service on the given model.
// The total equals the base price; labor hours are informational only.
func (e *Estimator) Estimate(serviceType, vehicleModel string) models.CostEstimate {
	category := classifier.Categorize(vehicleModel)
	basePrice := e.Price(serviceType, category)

	laborHours := catalog.DefaultLaborHours()
	parts := catalog.DefaultParts()

	if spec, ok := catalog.Lookup(catalog.ServiceType(serviceType)); ok {
		laborHours = spec.LaborHours
		parts = spec.PartsList()
	}

	return models.CostEstimate{
		ServiceType:     serviceType,
		BasePrice:       basePrice,
		LaborHours:      laborHours,
		PartsRequired:   parts,
		EstimatedTotal:  basePrice,
		VehicleCategory: category,
	}
}
