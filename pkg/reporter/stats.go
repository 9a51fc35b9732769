package reporter

import (
	"time"

	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/recommender"
)

// Stats aggregates intake records and service history for the dashboard
func Stats(recs []*models.AssistRecord, history []models.ServiceRecord, now time.Time) models.DashboardStats {
	stats := models.DashboardStats{
		TierCounts: make(map[models.AssistTier]int),
	}

	vehicles := make(map[string]struct{})
	totalAge := 0

	for _, r := range recs {
		stats.TotalRecords++
		if r.Eligibility == models.StatusNotEligible {
			stats.NotEligibleCount++
		} else {
			stats.EligibleCount++
		}
		stats.TierCounts[r.Assist]++
		stats.AmountCollected = stats.AmountCollected.Add(r.AmountCollected)
		vehicles[r.Model+"-"+r.RegistrationNo] = struct{}{}
		totalAge += r.VehicleAge
	}

	stats.UniqueVehicles = len(vehicles)
	if stats.TotalRecords > 0 {
		stats.AverageAgeYears = float64(totalAge) / float64(stats.TotalRecords)
	}
	stats.UrgentAlerts = len(recommender.UrgentNeeds(history, now))

	return stats
}
