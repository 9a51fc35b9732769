package reporter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/records"
	"github.com/opscart/assist-advisor/pkg/sequence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func sampleRecommendations() []models.ServiceRecommendation {
	return []models.ServiceRecommendation{
		{ID: "r1", VehicleModel: "Honda Civic", RegistrationNo: "KA01AB1234", RecommendedService: "Oil Change", Priority: models.PriorityUrgent, Reason: "Oil Change is 3 months overdue", EstimatedCost: decimal.NewFromInt(40), DueDate: now},
		{ID: "r2", VehicleModel: "Honda Civic", RegistrationNo: "KA01AB1234", RecommendedService: "Brake Inspection", Priority: models.PriorityHigh, Reason: "Brake Inspection is 1 months overdue", EstimatedCost: decimal.NewFromInt(60), DueDate: now},
		{ID: "r3", VehicleModel: "Honda Civic", RegistrationNo: "KA01AB1234", RecommendedService: "Tire Rotation", Priority: models.PriorityLow, Reason: "Tire Rotation due in 1 months", EstimatedCost: decimal.NewFromInt(25), DueDate: now.AddDate(0, 1, 0)},
	}
}

var civic = models.VehicleIdentity{VehicleModel: "Honda Civic", RegistrationNo: "KA01AB1234"}

func TestGenerate(t *testing.T) {
	history := []models.ServiceRecord{
		{VehicleModel: "Honda Civic", RegistrationNo: "KA01AB1234", ServiceType: "Oil Change", ServiceDate: now.AddDate(0, -10, 0)},
		{VehicleModel: "Swift", RegistrationNo: "MH12CD5678", ServiceType: "Tire Rotation", ServiceDate: now},
	}

	report := Generate(sampleRecommendations(), history, civic, 42000, now)

	assert.Equal(t, models.CategoryCompact, report.Category)
	assert.Equal(t, 3, report.Summary.Total)
	assert.True(t, decimal.NewFromInt(125).Equal(report.Summary.EstimatedTotal))
	assert.Equal(t, 1, report.UrgentCount())

	require.Len(t, report.PriorityStats, 3)
	assert.Equal(t, models.PriorityUrgent, report.PriorityStats[0].Priority)
	assert.Equal(t, models.PriorityHigh, report.PriorityStats[1].Priority)
	assert.Equal(t, models.PriorityLow, report.PriorityStats[2].Priority)
	assert.True(t, decimal.NewFromInt(25).Equal(report.PriorityStats[2].EstimatedCost))

	assert.Equal(t, []string{"Honda Civic-KA01AB1234: Oil change is 4 months overdue!"}, report.UrgentAlerts)
}

func TestGenerateWithoutHistory(t *testing.T) {
	report := Generate(nil, nil, civic, 0, now)

	assert.Zero(t, report.Summary.Total)
	assert.Empty(t, report.PriorityStats)
	assert.Empty(t, report.UrgentAlerts)
}

func TestStats(t *testing.T) {
	recs := []*models.AssistRecord{
		{Model: "Swift", RegistrationNo: "KA01", Eligibility: models.StatusEligible, Assist: models.Assist1, VehicleAge: 4, AmountCollected: decimal.NewFromInt(1180)},
		{Model: "Swift", RegistrationNo: "KA01", Eligibility: models.StatusEligible, Assist: models.Assist2, VehicleAge: 5, AmountCollected: decimal.NewFromInt(2360)},
		{Model: "Alto", RegistrationNo: "KA02", Eligibility: models.StatusNotEligible, Assist: models.AssistNotEligible, VehicleAge: 18},
	}
	history := []models.ServiceRecord{
		{VehicleModel: "Swift", RegistrationNo: "KA01", ServiceType: "Tire Rotation", ServiceDate: now},
	}

	stats := Stats(recs, history, now)

	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, 2, stats.EligibleCount)
	assert.Equal(t, 1, stats.NotEligibleCount)
	assert.Equal(t, 1, stats.TierCounts[models.Assist1])
	assert.Equal(t, 1, stats.TierCounts[models.AssistNotEligible])
	assert.True(t, decimal.NewFromInt(3540).Equal(stats.AmountCollected))
	assert.Equal(t, 2, stats.UniqueVehicles)
	assert.InDelta(t, 9.0, stats.AverageAgeYears, 0.001)
	assert.Equal(t, 1, stats.UrgentAlerts)
}

func TestStatsEmpty(t *testing.T) {
	stats := Stats(nil, nil, now)

	assert.Zero(t, stats.TotalRecords)
	assert.Zero(t, stats.AverageAgeYears)
	assert.NotNil(t, stats.TierCounts)
}

func TestGenerateCSV(t *testing.T) {
	report := Generate(sampleRecommendations(), nil, civic, 42000, now)

	var buf bytes.Buffer
	require.NoError(t, GenerateCSV(report, &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Service,Priority,Reason,Estimated Cost,Due Date,Last Service Date\n"))
	assert.Contains(t, out, "Oil Change,urgent,Oil Change is 3 months overdue,40.00,2025-06-15,")
	assert.Contains(t, out, "Total Estimated Cost,125.00")
	assert.Contains(t, out, "high,1,60.00")
}

func sampleAssist() []*models.AssistRecord {
	return []*models.AssistRecord{
		{
			Timestamp:       time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
			CustomerName:    "Ravi Kumar",
			RegistrationNo:  "KA01AB1234",
			Model:           "Swift",
			VehicleSaleDate: time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC),
			Assist:          models.Assist2,
			Eligibility:     models.StatusEligible,
			VehicleAge:      5,
			AmountCollected: decimal.NewFromInt(2360),
			PaymentType:     "UPI",
		},
	}
}

func TestWriteRecordsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecordsCSV(sampleAssist(), &buf))

	got, err := records.ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ravi Kumar", got[0].CustomerName)
	assert.Equal(t, models.Assist2, got[0].Assist)
	assert.True(t, decimal.NewFromInt(2360).Equal(got[0].AmountCollected))
}

func TestWriteRecordsExcel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecordsExcel(sampleAssist(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, records.Columns, rows[0])
	assert.Equal(t, "Ravi Kumar", rows[1][2])
	assert.Equal(t, "2360", rows[1][18])

	width, err := f.GetColWidth(SheetName, "E")
	require.NoError(t, err)
	assert.Equal(t, 30.0, width)
}

func TestGenerateHTML(t *testing.T) {
	history := []models.ServiceRecord{
		{VehicleModel: "Honda Civic", RegistrationNo: "KA01AB1234", ServiceType: "Tire Rotation", ServiceDate: now},
	}
	report := Generate(sampleRecommendations(), history, civic, 42000, now)

	var buf bytes.Buffer
	require.NoError(t, GenerateHTML(report, &buf))

	out := buf.String()
	assert.Contains(t, out, "ASSIST Maintenance Report - KA01AB1234")
	assert.Contains(t, out, `priority-urgent`)
	assert.Contains(t, out, "Rs. 125.00")
	assert.Contains(t, out, "No oil change record found")
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "ASSIST_Records_2025-06-15.xlsx", DefaultFilename(FormatExcel, now))
	assert.Equal(t, "ASSIST_Records_2025-06-15.csv", DefaultFilename(FormatCSV, now))
	assert.Equal(t, "ASSIST_Policy_KA01AB1234_2025-06-15.pdf", PolicyFilename("KA01AB1234", now))
}

func TestNewPolicy(t *testing.T) {
	rec := sampleAssist()[0]
	rec.AmountCollected = decimal.NewFromInt(1180)
	seq := sequence.NewMemory(0)

	first, err := NewPolicy(context.Background(), rec, seq, now)
	require.NoError(t, err)
	assert.Equal(t, "0000001", first.InvoiceNumber)
	assert.Equal(t, "ASSIST-25-26-00002", first.CertificateNumber)
	assert.Equal(t, "1000.00", first.Basic.StringFixed(2))
	assert.Equal(t, "90.00", first.CGST.StringFixed(2))
	assert.Equal(t, "90.00", first.SGST.StringFixed(2))
	assert.Equal(t, time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC), first.ExpiryDate)

	second, err := NewPolicy(context.Background(), rec, seq, now)
	require.NoError(t, err)
	assert.Equal(t, "0000002", second.InvoiceNumber)
	assert.Equal(t, "ASSIST-25-26-00003", second.CertificateNumber)
}

type failingSource struct{}

func (failingSource) Next(context.Context) (int64, error) {
	return 0, errors.New("sequence unavailable")
}

func TestNewPolicySequenceError(t *testing.T) {
	_, err := NewPolicy(context.Background(), sampleAssist()[0], failingSource{}, now)
	assert.ErrorContains(t, err, "sequence unavailable")
}

func TestWritePolicyPDF(t *testing.T) {
	rec := sampleAssist()[0]
	rec.CustomerAddress = strings.Repeat("12th Cross, Indiranagar, Bengaluru ", 6)
	rec.WorkshopName = "Whitefield Service"
	rec.SACCode = "998714"

	policy, err := NewPolicy(context.Background(), rec, sequence.NewMemory(0), now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePolicyPDF(rec, policy, PolicyOptions{}, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestTerms(t *testing.T) {
	terms := Terms(DefaultPolicyOptions())

	var sections int
	for _, line := range terms {
		if sectionHeading.MatchString(line) {
			sections++
		}
	}
	assert.Equal(t, 8, sections)
	assert.Contains(t, terms, "Email: support@marutisuzuki.com")
	assert.Contains(t, terms, "In case of breakdown, call: 084306 93069")
}
