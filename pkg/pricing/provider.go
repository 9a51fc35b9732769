package pricing

import (
	"github.com/opscart/assist-advisor/pkg/catalog"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/shopspring/decimal"
)

// Provider defines the interface for workshop price lists
type Provider interface {
	BasePrice(service catalog.ServiceType, category models.VehicleCategory) (decimal.Decimal, bool)
	Name() string
}

type Config struct {
	Provider  string
	Overrides string // "Oil Change:luxury=120;Timing Belt:sedan=550"
}
