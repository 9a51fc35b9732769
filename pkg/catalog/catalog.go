package catalog

import (
	"strings"

	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/shopspring/decimal"
)

// ServiceType is one of the maintenance services the workshop tracks
type ServiceType string

const (
	OilChange           ServiceType = "Oil Change"
	BrakeInspection     ServiceType = "Brake Inspection"
	TireRotation        ServiceType = "Tire Rotation"
	AirFilter           ServiceType = "Air Filter"
	TransmissionService ServiceType = "Transmission Service"
	CoolantFlush        ServiceType = "Coolant Flush"
	SparkPlugs          ServiceType = "Spark Plugs"
	TimingBelt          ServiceType = "Timing Belt"
	MajorService        ServiceType = "Major Service"
	MinorService        ServiceType = "Minor Service"
)

// Fallbacks used when a service type or category has no entry
const (
	defaultPrice      = 100
	defaultLaborHours = 1.0
	defaultPart       = "Standard parts"
)

// DefaultPrice is the base price of an unpriced service
func DefaultPrice() decimal.Decimal {
	return decimal.NewFromInt(defaultPrice)
}

// DefaultLaborHours is the labor estimate of an unknown service
func DefaultLaborHours() float64 {
	return defaultLaborHours
}

// DefaultParts returns a fresh copy of the parts list of an unknown service
func DefaultParts() []string {
	return []string{defaultPart}
}

// Interval is the time/mileage cadence at which a service recurs
type Interval struct {
	Months int
	Miles  int
}

// ServiceSpec holds everything the engine knows about one service type
type ServiceSpec struct {
	Type       ServiceType
	Interval   Interval
	Prices     map[models.VehicleCategory]decimal.Decimal
	LaborHours float64
	Parts      []string
}

func prices(compact, sedan, suv, truck, luxury int64) map[models.VehicleCategory]decimal.Decimal {
	return map[models.VehicleCategory]decimal.Decimal{
		models.CategoryCompact: decimal.NewFromInt(compact),
		models.CategorySedan:   decimal.NewFromInt(sedan),
		models.CategorySUV:     decimal.NewFromInt(suv),
		models.CategoryTruck:   decimal.NewFromInt(truck),
		models.CategoryLuxury:  decimal.NewFromInt(luxury),
	}
}

// specs is in evaluation order; recommendations are generated in this order
// before the priority sort.
var specs = []ServiceSpec{
	{
		Type:       OilChange,
		Interval:   Interval{Months: 6, Miles: 5000},
		Prices:     prices(50, 60, 70, 80, 100),
		LaborHours: 0.5,
		Parts:      []string{"Engine Oil", "Oil Filter"},
	},
	{
		Type:       BrakeInspection,
		Interval:   Interval{Months: 12, Miles: 15000},
		Prices:     prices(80, 100, 120, 140, 180),
		LaborHours: 1,
		Parts:      []string{"Brake Pads (if needed)", "Brake Fluid"},
	},
	{
		Type:       TireRotation,
		Interval:   Interval{Months: 6, Miles: 7500},
		Prices:     prices(30, 35, 40, 45, 60),
		LaborHours: 0.5,
		Parts:      []string{},
	},
	{
		Type:       AirFilter,
		Interval:   Interval{Months: 12, Miles: 12000},
		Prices:     prices(25, 30, 35, 40, 50),
		LaborHours: 0.25,
		Parts:      []string{"Air Filter"},
	},
	{
		Type:       TransmissionService,
		Interval:   Interval{Months: 24, Miles: 30000},
		Prices:     prices(150, 180, 220, 250, 350),
		LaborHours: 2,
		Parts:      []string{"Transmission Fluid", "Filter"},
	},
	{
		Type:       CoolantFlush,
		Interval:   Interval{Months: 24, Miles: 30000},
		Prices:     prices(100, 120, 140, 160, 200),
		LaborHours: 1.5,
		Parts:      []string{"Coolant", "Thermostat (if needed)"},
	},
	{
		Type:       SparkPlugs,
		Interval:   Interval{Months: 36, Miles: 30000},
		Prices:     prices(120, 150, 180, 200, 300),
		LaborHours: 2,
		Parts:      []string{"Spark Plugs", "Ignition Coils (if needed)"},
	},
	{
		Type:       TimingBelt,
		Interval:   Interval{Months: 60, Miles: 60000},
		Prices:     prices(400, 500, 600, 700, 1000),
		LaborHours: 6,
		Parts:      []string{"Timing Belt", "Water Pump", "Tensioners"},
	},
	{
		Type:       MajorService,
		Interval:   Interval{Months: 12, Miles: 12000},
		Prices:     prices(300, 400, 500, 600, 800),
		LaborHours: 4,
		Parts:      []string{"Various filters", "Fluids", "Belts"},
	},
	{
		Type:       MinorService,
		Interval:   Interval{Months: 6, Miles: 6000},
		Prices:     prices(150, 200, 250, 300, 400),
		LaborHours: 2,
		Parts:      []string{"Oil", "Filter", "Fluids check"},
	},
}

// All returns the known service specs in evaluation order.
// The returned slice is a copy; the specs themselves must not be modified.
func All() []ServiceSpec {
	out := make([]ServiceSpec, len(specs))
	copy(out, specs)
	return out
}

// Types returns the known service types in evaluation order
func Types() []ServiceType {
	types := make([]ServiceType, len(specs))
	for i, s := range specs {
		types[i] = s.Type
	}
	return types
}

// Parse resolves a free-text service name to a known type.
// Matching ignores surrounding whitespace and case.
func Parse(name string) (ServiceType, bool) {
	name = strings.TrimSpace(name)
	for _, s := range specs {
		if strings.EqualFold(string(s.Type), name) {
			return s.Type, true
		}
	}
	return "", false
}

// Canonical returns the catalog spelling of name when it names a known
// service, otherwise name with surrounding whitespace removed. Write paths
// store service types through it so history matches the catalog exactly.
func Canonical(name string) string {
	if t, ok := Parse(name); ok {
		return string(t)
	}
	return strings.TrimSpace(name)
}

// Lookup returns the spec for a known service type
func Lookup(t ServiceType) (ServiceSpec, bool) {
	for _, s := range specs {
		if s.Type == t {
			return s, true
		}
	}
	return ServiceSpec{}, false
}

// Price returns the base price for a service on a vehicle category
func (s ServiceSpec) Price(category models.VehicleCategory) (decimal.Decimal, bool) {
	p, ok := s.Prices[category]
	return p, ok
}

// PartsList returns a copy of the parts list
func (s ServiceSpec) PartsList() []string {
	out := make([]string, len(s.Parts))
	copy(out, s.Parts)
	return out
}
