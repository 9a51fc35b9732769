package pricing

import (
	"fmt"
	"strings"

	"github.com/opscart/assist-advisor/pkg/catalog"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/shopspring/decimal"
)

type priceKey struct {
	service  catalog.ServiceType
	category models.VehicleCategory
}

// OverrideProvider applies a workshop's own prices on top of another provider
type OverrideProvider struct {
	base      Provider
	overrides map[priceKey]decimal.Decimal
}

func NewOverrideProvider(base Provider, overrides map[priceKey]decimal.Decimal) *OverrideProvider {
	if base == nil {
		base = NewDefaultProvider()
	}
	return &OverrideProvider{
		base:      base,
		overrides: overrides,
	}
}

func (o *OverrideProvider) Name() string {
	return "override"
}

func (o *OverrideProvider) BasePrice(service catalog.ServiceType, category models.VehicleCategory) (decimal.Decimal, bool) {
	if price, ok := o.overrides[priceKey{service, category}]; ok {
		return price, true
	}
	return o.base.BasePrice(service, category)
}

// ParseOverrides reads a price list of the form
// "Oil Change:luxury=120;Timing Belt:sedan=550".
func ParseOverrides(spec string) (map[priceKey]decimal.Decimal, error) {
	overrides := make(map[priceKey]decimal.Decimal)

	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, rest, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("price override %q: missing ':'", entry)
		}
		service, ok := catalog.Parse(name)
		if !ok {
			return nil, fmt.Errorf("price override %q: unknown service type %q", entry, strings.TrimSpace(name))
		}

		cat, amount, ok := strings.Cut(rest, "=")
		if !ok {
			return nil, fmt.Errorf("price override %q: missing '='", entry)
		}
		category := models.VehicleCategory(strings.ToLower(strings.TrimSpace(cat)))
		if !category.Valid() {
			return nil, fmt.Errorf("price override %q: unknown category %q", entry, cat)
		}

		price, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil {
			return nil, fmt.Errorf("price override %q: %w", entry, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("price override %q: negative price", entry)
		}

		overrides[priceKey{service, category}] = price
	}

	return overrides, nil
}
