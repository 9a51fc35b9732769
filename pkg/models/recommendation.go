package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Priority ranks how overdue a service is
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities: urgent(4) > high(3) > medium(2) > low(1).
// Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ServiceRecommendation is a maintenance suggestion for one vehicle
type ServiceRecommendation struct {
	ID                 string          `json:"id" bson:"_id,omitempty"`
	VehicleModel       string          `json:"vehicleModel" bson:"vehicle_model"`
	RegistrationNo     string          `json:"registrationNo" bson:"registration_no"`
	RecommendedService string          `json:"recommendedService" bson:"recommended_service"`
	Priority           Priority        `json:"priority" bson:"priority"`
	Reason             string          `json:"reason" bson:"reason"`
	EstimatedCost      decimal.Decimal `json:"estimatedCost" bson:"estimated_cost"`
	DueDate            time.Time       `json:"dueDate" bson:"due_date"`
	LastServiceDate    *time.Time      `json:"lastServiceDate,omitempty" bson:"last_service_date,omitempty"`
	MileageBased       bool            `json:"mileageBased" bson:"mileage_based"`
	CurrentMileage     int             `json:"currentMileage" bson:"current_mileage"`
	CreatedAt          time.Time       `json:"createdAt" bson:"created_at"`
}

// ScheduleStatus tracks a planned maintenance slot
type ScheduleStatus string

const (
	ScheduleScheduled ScheduleStatus = "scheduled"
	ScheduleCompleted ScheduleStatus = "completed"
	ScheduleCancelled ScheduleStatus = "cancelled"
)

// MaintenanceSchedule is a planned service derived from a recommendation
type MaintenanceSchedule struct {
	ID             string          `json:"id"`
	VehicleModel   string          `json:"vehicleModel"`
	RegistrationNo string          `json:"registrationNo"`
	ServiceType    string          `json:"serviceType"`
	ScheduledDate  time.Time       `json:"scheduledDate"`
	EstimatedCost  decimal.Decimal `json:"estimatedCost"`
	Status         ScheduleStatus  `json:"status"`
	ReminderSent   bool            `json:"reminderSent"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// AuditEntry represents an action taken on a stored record
type AuditEntry struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	RecordID     string    `json:"recordId" bson:"record_id"`
	Action       string    `json:"action" bson:"action"` // CREATED, UPDATED, DELETED, CERTIFICATE_ISSUED
	Status       string    `json:"status" bson:"status"` // SUCCESS, FAILED
	ErrorMessage string    `json:"errorMessage,omitempty" bson:"error_message"`
	ExecutedBy   string    `json:"executedBy,omitempty" bson:"executed_by"`
	ExecutedAt   time.Time `json:"executedAt" bson:"executed_at"`
}
