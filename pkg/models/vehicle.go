package models

import "strings"

// VehicleCategory is the pricing bucket derived from a model name
type VehicleCategory string

const (
	CategoryCompact VehicleCategory = "compact"
	CategorySedan   VehicleCategory = "sedan"
	CategorySUV     VehicleCategory = "suv"
	CategoryTruck   VehicleCategory = "truck"
	CategoryLuxury  VehicleCategory = "luxury"
)

// Categories lists every category in ascending price order
var Categories = []VehicleCategory{
	CategoryCompact,
	CategorySedan,
	CategorySUV,
	CategoryTruck,
	CategoryLuxury,
}

// Valid reports whether c is one of the known categories
func (c VehicleCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// VehicleIdentity groups every record belonging to one physical vehicle
type VehicleIdentity struct {
	VehicleModel   string
	RegistrationNo string
}

// NormalizeRegistration trims and upper-cases a registration number so
// every adapter stores and queries the same spelling
func NormalizeRegistration(reg string) string {
	return strings.ToUpper(strings.TrimSpace(reg))
}

// Key returns the "<model>-<registration>" label used in alerts
func (v VehicleIdentity) Key() string {
	return v.VehicleModel + "-" + v.RegistrationNo
}
