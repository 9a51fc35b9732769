package records

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/opscart/assist-advisor/pkg/eligibility"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/shopspring/decimal"
)

const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Columns is the export layout shared by the CSV and Excel writers and
// the CSV importer.
var Columns = []string{
	"Timestamp",
	"Email Address",
	"Customer Name",
	"Customer Contact No",
	"Customer Address",
	"Customer GST No",
	"Registration No",
	"Chassis No (Full VIN)",
	"Model",
	"Variant",
	"Fuel",
	"Transmission",
	"Vehicle Sale Date",
	"Workshop Name",
	"SA/Employee Name",
	"ASSIST Level",
	"Eligibility",
	"Vehicle Age (Years)",
	"Amount Collected",
	"Payment Type",
	"Payment Proof",
}

// Row renders a record in Columns order
func Row(r models.AssistRecord) []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		r.EmailAddress,
		r.CustomerName,
		r.CustomerContactNo,
		r.CustomerAddress,
		r.CustomerGSTNo,
		r.RegistrationNo,
		r.ChassisNo,
		r.Model,
		r.Variant,
		r.Fuel,
		r.Transmission,
		r.VehicleSaleDate.Format(DateLayout),
		r.WorkshopName,
		r.EmployeeName,
		string(r.Assist),
		r.Eligibility,
		strconv.Itoa(r.VehicleAge),
		r.AmountCollected.String(),
		r.PaymentType,
		r.PaymentProof,
	}
}

// ParseRow is the inverse of Row. Headers map column names to indexes so
// imported files may reorder or omit optional columns. A row without a sale
// date, customer, registration or model is rejected, as is an unknown tier.
func ParseRow(row []string, headers map[string]int) (models.AssistRecord, error) {
	get := func(col string) string {
		i, ok := headers[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var rec models.AssistRecord
	var err error

	if v := get("Timestamp"); v != "" {
		if rec.Timestamp, err = time.Parse(TimestampLayout, v); err != nil {
			return rec, fmt.Errorf("timestamp %q: %w", v, err)
		}
	}
	sale := get("Vehicle Sale Date")
	if sale == "" {
		return rec, errors.New("vehicle sale date is required")
	}
	if rec.VehicleSaleDate, err = time.Parse(DateLayout, sale); err != nil {
		return rec, fmt.Errorf("vehicle sale date %q: %w", sale, err)
	}
	if v := get("Vehicle Age (Years)"); v != "" {
		if rec.VehicleAge, err = strconv.Atoi(v); err != nil {
			return rec, fmt.Errorf("vehicle age %q: %w", v, err)
		}
	}
	if v := get("Amount Collected"); v != "" {
		if rec.AmountCollected, err = decimal.NewFromString(v); err != nil {
			return rec, fmt.Errorf("amount collected %q: %w", v, err)
		}
	}

	rec.EmailAddress = get("Email Address")
	rec.CustomerName = get("Customer Name")
	rec.CustomerContactNo = get("Customer Contact No")
	rec.CustomerAddress = get("Customer Address")
	rec.CustomerGSTNo = get("Customer GST No")
	rec.RegistrationNo = models.NormalizeRegistration(get("Registration No"))
	rec.ChassisNo = get("Chassis No (Full VIN)")
	rec.Model = get("Model")
	rec.Variant = get("Variant")
	rec.Fuel = get("Fuel")
	rec.Transmission = get("Transmission")
	rec.WorkshopName = get("Workshop Name")
	rec.EmployeeName = get("SA/Employee Name")
	rec.Assist = models.AssistTier(get("ASSIST Level"))
	if rec.Assist != "" && !eligibility.ValidTier(rec.Assist) {
		return rec, fmt.Errorf("unknown ASSIST level %q", rec.Assist)
	}
	rec.Eligibility = get("Eligibility")
	rec.PaymentType = get("Payment Type")
	rec.PaymentProof = get("Payment Proof")

	if rec.CustomerName == "" {
		return rec, errors.New("customer name is required")
	}
	if rec.RegistrationNo == "" {
		return rec, errors.New("registration no is required")
	}
	if rec.Model == "" {
		return rec, errors.New("model is required")
	}

	return rec, nil
}
