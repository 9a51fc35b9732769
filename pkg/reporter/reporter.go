package reporter

import (
	"fmt"
	"time"

	"github.com/opscart/assist-advisor/pkg/classifier"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/recommender"
	"github.com/shopspring/decimal"
)

// ReportFormat represents the output format
type ReportFormat string

const (
	FormatHTML  ReportFormat = "html"
	FormatCSV   ReportFormat = "csv"
	FormatExcel ReportFormat = "xlsx"
	FormatPDF   ReportFormat = "pdf"
)

// Report contains all data for a vehicle's maintenance report
type Report struct {
	VehicleModel    string
	RegistrationNo  string
	Category        models.VehicleCategory
	CurrentMileage  int
	GeneratedAt     time.Time
	Recommendations []models.ServiceRecommendation
	Summary         models.RecommendationSummary
	PriorityStats   []*PriorityStats
	UrgentAlerts    []string
}

// PriorityStats holds statistics per priority, most pressing first
type PriorityStats struct {
	Priority      models.Priority
	Count         int
	EstimatedCost decimal.Decimal
}

// Generate builds the report for one vehicle from its recommendations and
// the history they were computed from
func Generate(recs []models.ServiceRecommendation, history []models.ServiceRecord, vehicle models.VehicleIdentity, currentMileage int, now time.Time) *Report {
	report := &Report{
		VehicleModel:    vehicle.VehicleModel,
		RegistrationNo:  vehicle.RegistrationNo,
		Category:        classifier.Categorize(vehicle.VehicleModel),
		CurrentMileage:  currentMileage,
		GeneratedAt:     now,
		Recommendations: recs,
		Summary:         recommender.Summarize(recs),
	}

	for _, p := range []models.Priority{models.PriorityUrgent, models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		stat := &PriorityStats{Priority: p}
		for _, rec := range recs {
			if rec.Priority == p {
				stat.Count++
				stat.EstimatedCost = stat.EstimatedCost.Add(rec.EstimatedCost)
			}
		}
		if stat.Count > 0 {
			report.PriorityStats = append(report.PriorityStats, stat)
		}
	}

	var own []models.ServiceRecord
	for _, r := range history {
		if r.Identity() == vehicle {
			own = append(own, r)
		}
	}
	if len(own) > 0 {
		report.UrgentAlerts = recommender.UrgentNeeds(own, now)
	}

	return report
}

// DefaultFilename is the export name used when the caller gives none,
// e.g. ASSIST_Records_2025-06-15.xlsx
func DefaultFilename(format ReportFormat, now time.Time) string {
	return fmt.Sprintf("ASSIST_Records_%s.%s", now.Format("2006-01-02"), format)
}

// PolicyFilename names a policy certificate PDF
func PolicyFilename(registrationNo string, now time.Time) string {
	return fmt.Sprintf("ASSIST_Policy_%s_%s.pdf", registrationNo, now.Format("2006-01-02"))
}

// UrgentCount is the number of urgent recommendations in the report
func (r *Report) UrgentCount() int {
	return r.Summary.ByPriority[models.PriorityUrgent]
}
