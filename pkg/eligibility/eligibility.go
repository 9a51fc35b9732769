// Package eligibility derives vehicle age and ASSIST program eligibility
// from the vehicle sale date.
package eligibility

import (
	"math"
	"time"

	"github.com/opscart/assist-advisor/pkg/models"
)

// MaxEligibleAge is the oldest vehicle age, in whole years, still eligible
const MaxEligibleAge = 15

const daysPerYear = 365.25

// Result is the outcome of an eligibility check
type Result struct {
	AgeYears    int    `json:"ageYears"`
	Eligibility string `json:"eligibility"`
}

// Eligible reports whether the result allows an ASSIST tier
func (r Result) Eligible() bool {
	return r.Eligibility == models.StatusEligible
}

// Compute returns the vehicle age and eligibility at now.
// A sale date in the future yields an age <= 0 and counts as eligible.
func Compute(saleDate, now time.Time) Result {
	days := now.Sub(saleDate).Hours() / 24
	age := int(math.Floor(days / daysPerYear))

	status := models.StatusEligible
	if age > MaxEligibleAge {
		status = models.StatusNotEligible
	}

	return Result{AgeYears: age, Eligibility: status}
}

// ResolveTier enforces the program invariant: a vehicle that is not eligible
// always carries the "Not Eligible" tier regardless of what was requested.
func ResolveTier(requested models.AssistTier, status string) models.AssistTier {
	if status == models.StatusNotEligible {
		return models.AssistNotEligible
	}
	if requested == "" {
		return models.Assist1
	}
	return requested
}

// Apply fills the derived program fields on an intake record
func Apply(rec *models.AssistRecord, now time.Time) Result {
	result := Compute(rec.VehicleSaleDate, now)

	rec.VehicleAge = result.AgeYears
	rec.Eligibility = result.Eligibility
	rec.Assist = ResolveTier(rec.Assist, result.Eligibility)

	return result
}

// ValidTier reports whether t is a tier the intake form offers
func ValidTier(t models.AssistTier) bool {
	switch t {
	case models.Assist1, models.Assist2, models.Assist3, models.AssistNotEligible:
		return true
	}
	return false
}
