package models

import (
	"strings"
	"time"
)

// Enquiry statuses
const (
	EnquiryPending    = "pending"
	EnquiryInProgress = "in-progress"
	EnquiryCompleted  = "completed"
	EnquiryCancelled  = "cancelled"
)

// DefaultWorkshop is recorded on enquiries from users without a workshop
const DefaultWorkshop = "Default Workshop"

// Enquiry is a customer's service request, tracked by the workshop until it
// is completed or cancelled
type Enquiry struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	CustomerName   string    `json:"customerName" bson:"customer_name"`
	Email          string    `json:"email" bson:"email"`
	Phone          string    `json:"phone" bson:"phone"`
	VehicleModel   string    `json:"vehicleModel" bson:"vehicle_model"`
	RegistrationNo string    `json:"registrationNo" bson:"registration_no"`
	ServiceType    string    `json:"serviceType" bson:"service_type"`
	Description    string    `json:"description,omitempty" bson:"description"`
	Status         string    `json:"status" bson:"status"`
	WorkshopName   string    `json:"workshopName" bson:"workshop_name"`
	CreatedBy      string    `json:"createdBy,omitempty" bson:"created_by"`
	CreatedAt      time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updated_at"`
}

// Open reports whether the workshop still has to act on the enquiry
func (e Enquiry) Open() bool {
	return e.Status == EnquiryPending || e.Status == EnquiryInProgress
}

// CountOpen counts enquiries that are pending or in progress
func CountOpen(enquiries []*Enquiry) int {
	n := 0
	for _, e := range enquiries {
		if e.Open() {
			n++
		}
	}
	return n
}

// EnquiryFilter narrows an enquiry listing. Zero fields match everything.
type EnquiryFilter struct {
	Status    string
	CreatedBy string
	Limit     int
}

// Matches reports whether e passes the status and creator filters
func (f EnquiryFilter) Matches(e Enquiry) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.CreatedBy != "" && e.CreatedBy != f.CreatedBy {
		return false
	}
	return true
}

// ValidEnquiryStatus reports whether s is one of the enquiry statuses
func ValidEnquiryStatus(s string) bool {
	switch s {
	case EnquiryPending, EnquiryInProgress, EnquiryCompleted, EnquiryCancelled:
		return true
	}
	return false
}

var enquiryServices = []string{
	"General Service",
	"Oil Change",
	"Brake Service",
	"Engine Repair",
	"Transmission Service",
	"AC Service",
	"Battery Replacement",
	"Tire Service",
	"Body Work",
	"Other",
}

// EnquiryServiceTypes lists the services a customer can ask for
func EnquiryServiceTypes() []string {
	return append([]string(nil), enquiryServices...)
}

// EnquiryServiceType returns the listed spelling of name, ignoring case
func EnquiryServiceType(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, s := range enquiryServices {
		if strings.EqualFold(s, name) {
			return s, true
		}
	}
	return "", false
}
