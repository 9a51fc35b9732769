package models

import "github.com/shopspring/decimal"

// CostEstimate is the price breakdown for one service on one vehicle
type CostEstimate struct {
	ServiceType     string          `json:"serviceType"`
	BasePrice       decimal.Decimal `json:"basePrice"`
	LaborHours      float64         `json:"laborHours"`
	PartsRequired   []string        `json:"partsRequired"`
	EstimatedTotal  decimal.Decimal `json:"estimatedTotal"`
	VehicleCategory VehicleCategory `json:"vehicleCategory"`
}
