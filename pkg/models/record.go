package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceRecord is a historical maintenance fact for one vehicle
type ServiceRecord struct {
	ID             string          `json:"id" bson:"_id,omitempty"`
	VehicleModel   string          `json:"vehicleModel" bson:"vehicle_model"`
	RegistrationNo string          `json:"registrationNo" bson:"registration_no"`
	CustomerName   string          `json:"customerName,omitempty" bson:"customer_name"`
	ServiceType    string          `json:"serviceType" bson:"service_type"`
	ServiceDate    time.Time       `json:"serviceDate" bson:"service_date"`
	Mileage        int             `json:"mileage" bson:"mileage"`
	Description    string          `json:"description,omitempty" bson:"description"`
	Cost           decimal.Decimal `json:"cost" bson:"cost"`
	WorkshopName   string          `json:"workshopName,omitempty" bson:"workshop_name"`
	UserID         string          `json:"userId,omitempty" bson:"user_id"`
	CreatedAt      time.Time       `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updated_at"`
}

// Identity returns the vehicle this record belongs to
func (r ServiceRecord) Identity() VehicleIdentity {
	return VehicleIdentity{VehicleModel: r.VehicleModel, RegistrationNo: r.RegistrationNo}
}

// Eligibility status values
const (
	StatusEligible    = "Eligible"
	StatusNotEligible = "Not Eligible"
)

// AssistTier is the roadside-assistance program level sold with a vehicle
type AssistTier string

const (
	Assist1           AssistTier = "ASSIST 1"
	Assist2           AssistTier = "ASSIST 2"
	Assist3           AssistTier = "ASSIST 3"
	AssistNotEligible AssistTier = "Not Eligible"
)

// AssistRecord is one customer/vehicle intake form submission
type AssistRecord struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	UserID    string    `json:"userId,omitempty" bson:"user_id"`

	// Customer
	EmailAddress      string `json:"emailAddress" bson:"email_address"`
	CustomerName      string `json:"customerName" bson:"customer_name"`
	CustomerContactNo string `json:"customerContactNo" bson:"customer_contact_no"`
	CustomerAddress   string `json:"customerAddress" bson:"customer_address"`
	CustomerGSTNo     string `json:"customerGSTNo,omitempty" bson:"customer_gst_no"`

	// Dealership
	RegisteredAddress string `json:"registeredAddress,omitempty" bson:"registered_address"`
	DealershipGSTIN   string `json:"dealershipGSTIN,omitempty" bson:"dealership_gstin"`
	SACCode           string `json:"sacCode,omitempty" bson:"sac_code"`
	CINNumber         string `json:"cinNumber,omitempty" bson:"cin_number"`

	// Vehicle
	RegistrationNo  string    `json:"registrationNo" bson:"registration_no"`
	ChassisNo       string    `json:"chassisNo" bson:"chassis_no"`
	Model           string    `json:"model" bson:"model"`
	Variant         string    `json:"variant" bson:"variant"`
	Fuel            string    `json:"fuel" bson:"fuel"`
	Transmission    string    `json:"transmission" bson:"transmission"`
	VehicleSaleDate time.Time `json:"vehicleSaleDate" bson:"vehicle_sale_date"`

	// Workshop
	WorkshopName string `json:"workshopName" bson:"workshop_name"`
	EmployeeName string `json:"employeeName" bson:"employee_name"`

	// Program, derived from the sale date at submission
	Assist      AssistTier `json:"assist" bson:"assist"`
	Eligibility string     `json:"eligibility" bson:"eligibility"`
	VehicleAge  int        `json:"vehicleAge" bson:"vehicle_age"`

	// Payment
	AmountCollected decimal.Decimal `json:"amountCollected" bson:"amount_collected"`
	PaymentType     string          `json:"paymentType" bson:"payment_type"`
	PaymentProof    string          `json:"paymentProof" bson:"payment_proof"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}
