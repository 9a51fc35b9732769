package recommender

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/opscart/assist-advisor/pkg/catalog"
	"github.com/opscart/assist-advisor/pkg/classifier"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/pricing"
	"github.com/opscart/assist-advisor/pkg/records"
)

const (
	// A vehicle with no record of a service gets it booked within a week
	noHistoryLeadTime = 7 * 24 * time.Hour

	urgentMonthsOverdue = 3
	urgentMilesOverdue  = 2000
	dueSoonMonths       = 1
	dueSoonMiles        = 1000
)

// Engine turns a vehicle's service history into prioritized recommendations
type Engine struct {
	estimator *pricing.Estimator
	newID     func() string
}

type Option func(*Engine)

// WithEstimator sets the price list used for EstimatedCost
func WithEstimator(e *pricing.Estimator) Option {
	return func(r *Engine) {
		r.estimator = e
	}
}

// WithIDFunc replaces the UUID generator, mainly for tests
func WithIDFunc(fn func() string) Option {
	return func(r *Engine) {
		r.newID = fn
	}
}

func New(opts ...Option) *Engine {
	r := &Engine{
		estimator: pricing.NewEstimator(nil),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommend evaluates every catalog service against the vehicle's history.
// Records for other vehicles and unknown service types are ignored. The
// result is ordered urgent, high, medium, low; within a priority services
// keep catalog order.
func (r *Engine) Recommend(history []models.ServiceRecord, vehicleModel, registrationNo string, currentMileage int, now time.Time) []models.ServiceRecommendation {
	vehicle := models.VehicleIdentity{VehicleModel: vehicleModel, RegistrationNo: registrationNo}

	var vehicleRecords []models.ServiceRecord
	for _, rec := range history {
		if rec.Identity() == vehicle {
			vehicleRecords = append(vehicleRecords, rec)
		}
	}

	category := classifier.Categorize(vehicleModel)
	recs := make([]models.ServiceRecommendation, 0, len(catalog.All()))

	for _, spec := range catalog.All() {
		priority, reason, due, last, ok := evaluate(spec, vehicleRecords, currentMileage, now)
		if !ok {
			continue
		}

		recs = append(recs, models.ServiceRecommendation{
			ID:                 r.newID(),
			VehicleModel:       vehicleModel,
			RegistrationNo:     registrationNo,
			RecommendedService: string(spec.Type),
			Priority:           priority,
			Reason:             reason,
			EstimatedCost:      r.estimator.Price(string(spec.Type), category),
			DueDate:            due,
			LastServiceDate:    last,
			MileageBased:       true,
			CurrentMileage:     currentMileage,
			CreatedAt:          now,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() > recs[j].Priority.Rank()
	})

	return recs
}

func evaluate(spec catalog.ServiceSpec, vehicleRecords []models.ServiceRecord, currentMileage int, now time.Time) (models.Priority, string, time.Time, *time.Time, bool) {
	service := string(spec.Type)
	interval := spec.Interval

	last, found := records.Latest(vehicleRecords, service)
	if !found {
		return models.PriorityMedium, fmt.Sprintf("No record of %s for this vehicle", service), now.Add(noHistoryLeadTime), nil, true
	}

	lastDate := last.ServiceDate
	monthsSince := monthsBetween(now, lastDate)
	milesSince := currentMileage - last.Mileage
	if milesSince < 0 {
		milesSince = 0
	}

	switch {
	case monthsSince >= interval.Months:
		if monthsSince >= interval.Months+urgentMonthsOverdue {
			return models.PriorityUrgent, fmt.Sprintf("%s is %d months overdue", service, monthsSince-interval.Months), now, &lastDate, true
		}
		return models.PriorityHigh, fmt.Sprintf("%s is due (last done %d months ago)", service, monthsSince), now, &lastDate, true

	case milesSince >= interval.Miles:
		if milesSince >= interval.Miles+urgentMilesOverdue {
			return models.PriorityUrgent, fmt.Sprintf("%s is %d miles overdue", service, milesSince-interval.Miles), now, &lastDate, true
		}
		return models.PriorityHigh, fmt.Sprintf("%s is due (%d miles since last service)", service, milesSince), now, &lastDate, true

	case monthsSince >= interval.Months-dueSoonMonths || milesSince >= interval.Miles-dueSoonMiles:
		return models.PriorityLow, fmt.Sprintf("%s will be due soon", service), addMonths(lastDate, interval.Months), &lastDate, true
	}

	return "", "", time.Time{}, nil, false
}

// Summarize counts recommendations per priority and totals their cost
func Summarize(recs []models.ServiceRecommendation) models.RecommendationSummary {
	summary := models.RecommendationSummary{
		Total:      len(recs),
		ByPriority: make(map[models.Priority]int),
	}
	for _, rec := range recs {
		summary.ByPriority[rec.Priority]++
		summary.EstimatedTotal = summary.EstimatedTotal.Add(rec.EstimatedCost)
	}
	return summary
}
