package pricing

import (
	"github.com/opscart/assist-advisor/pkg/catalog"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/shopspring/decimal"
)

// DefaultProvider serves the catalog price list
type DefaultProvider struct{}

func NewDefaultProvider() *DefaultProvider {
	return &DefaultProvider{}
}

func (d *DefaultProvider) Name() string {
	return "default"
}

func (d *DefaultProvider) BasePrice(service catalog.ServiceType, category models.VehicleCategory) (decimal.Decimal, bool) {
	spec, ok := catalog.Lookup(service)
	if !ok {
		return decimal.Zero, false
	}
	return spec.Price(category)
}
