package models

import "github.com/shopspring/decimal"

// DashboardStats aggregates intake records for the workshop dashboard
type DashboardStats struct {
	TotalRecords     int                `json:"totalRecords"`
	EligibleCount    int                `json:"eligibleCount"`
	NotEligibleCount int                `json:"notEligibleCount"`
	TierCounts       map[AssistTier]int `json:"tierCounts"`
	AmountCollected  decimal.Decimal    `json:"amountCollected"`
	UniqueVehicles   int                `json:"uniqueVehicles"`
	AverageAgeYears  float64            `json:"averageAgeYears"`
	UrgentAlerts     int                `json:"urgentAlerts"`
	OpenEnquiries    int                `json:"openEnquiries"`
}

// RecommendationSummary totals a set of recommendations by priority
type RecommendationSummary struct {
	Total          int              `json:"total"`
	ByPriority     map[Priority]int `json:"byPriority"`
	EstimatedTotal decimal.Decimal  `json:"estimatedTotal"`
}
