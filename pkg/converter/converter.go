package converter

import (
	"time"

	"github.com/opscart/assist-advisor/pkg/models"
)

// ToSchedule converts recommendations into scheduled maintenance slots,
// one per recommendation, booked on the recommendation's due date
func ToSchedule(recs []models.ServiceRecommendation, now time.Time) []models.MaintenanceSchedule {
	schedules := make([]models.MaintenanceSchedule, 0, len(recs))
	for _, rec := range recs {
		schedules = append(schedules, RecommendationToSchedule(rec, now))
	}
	return schedules
}

// RecommendationToSchedule converts a single recommendation
func RecommendationToSchedule(rec models.ServiceRecommendation, now time.Time) models.MaintenanceSchedule {
	return models.MaintenanceSchedule{
		ID:             "schedule-" + rec.ID,
		VehicleModel:   rec.VehicleModel,
		RegistrationNo: rec.RegistrationNo,
		ServiceType:    rec.RecommendedService,
		ScheduledDate:  rec.DueDate,
		EstimatedCost:  rec.EstimatedCost,
		Status:         models.ScheduleScheduled,
		ReminderSent:   false,
		Notes:          rec.Reason,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CompleteSchedule marks a slot completed and returns the service record
// that goes into the vehicle's history
func CompleteSchedule(s *models.MaintenanceSchedule, mileage int, at time.Time) models.ServiceRecord {
	s.Status = models.ScheduleCompleted
	s.UpdatedAt = at

	return models.ServiceRecord{
		VehicleModel:   s.VehicleModel,
		RegistrationNo: s.RegistrationNo,
		ServiceType:    s.ServiceType,
		ServiceDate:    at,
		Mileage:        mileage,
		Description:    s.Notes,
		Cost:           s.EstimatedCost,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}
