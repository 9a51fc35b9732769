package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/opscart/assist-advisor/pkg/eligibility"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var due = time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

func sampleRecs() []models.ServiceRecommendation {
	return []models.ServiceRecommendation{
		{RecommendedService: "Oil Change", Priority: models.PriorityUrgent, Reason: "No previous service record found", EstimatedCost: decimal.NewFromInt(40), DueDate: due},
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	h, err := New("", &buf)
	require.NoError(t, err)
	assert.Equal(t, "text", h.Format())

	h, err = New("json", &buf)
	require.NoError(t, err)
	assert.Equal(t, "json", h.Format())

	_, err = New("yaml", &buf)
	assert.EqualError(t, err, "unsupported output format: yaml")
}

func TestTextRecommendations(t *testing.T) {
	var buf bytes.Buffer
	h := NewTextHandler(&buf)

	require.NoError(t, h.DisplayRecommendations(context.Background(), sampleRecs()))
	out := buf.String()
	assert.Contains(t, out, "1. Oil Change [URGENT]")
	assert.Contains(t, out, "Due: 2025-07-15")
	assert.Contains(t, out, "Estimated cost: 40.00")

	buf.Reset()
	require.NoError(t, h.DisplayRecommendations(context.Background(), nil))
	assert.Equal(t, "[INFO] No services are due\n", buf.String())
}

func TestTextSummary(t *testing.T) {
	var buf bytes.Buffer
	h := NewTextHandler(&buf)

	summary := models.RecommendationSummary{
		Total:          3,
		ByPriority:     map[models.Priority]int{models.PriorityLow: 1, models.PriorityUrgent: 2},
		EstimatedTotal: decimal.NewFromInt(105),
	}
	require.NoError(t, h.DisplaySummary(context.Background(), summary))
	assert.Equal(t, "Total: 3 recommendation(s) [urgent=2 low=1], estimated 105.00\n", buf.String())
}

func TestTextEligibilityAndAlerts(t *testing.T) {
	var buf bytes.Buffer
	h := NewTextHandler(&buf)

	require.NoError(t, h.DisplayEligibility(context.Background(), eligibility.Result{AgeYears: 16, Eligibility: models.StatusNotEligible}, models.AssistNotEligible))
	require.NoError(t, h.DisplayAlerts(context.Background(), []string{"Swift-KA01: Oil change is 3 months overdue!"}))

	out := buf.String()
	assert.Contains(t, out, "Vehicle age: 16 years")
	assert.Contains(t, out, "ASSIST level: Not Eligible")
	assert.Contains(t, out, "[WARN] Swift-KA01: Oil change is 3 months overdue!")
}

func TestJSONRecommendations(t *testing.T) {
	var buf bytes.Buffer
	h := NewJSONHandler(&buf)

	require.NoError(t, h.DisplayRecommendations(context.Background(), sampleRecs()))

	var got struct {
		Count           int `json:"count"`
		Recommendations []struct {
			RecommendedService string `json:"recommendedService"`
			Priority           string `json:"priority"`
		} `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, "Oil Change", got.Recommendations[0].RecommendedService)
	assert.Equal(t, "urgent", got.Recommendations[0].Priority)
}

func TestJSONEmptyCollections(t *testing.T) {
	var buf bytes.Buffer
	h := NewJSONHandler(&buf)

	require.NoError(t, h.DisplayRecords(context.Background(), nil))
	assert.JSONEq(t, `{"records": [], "count": 0}`, buf.String())

	buf.Reset()
	require.NoError(t, h.DisplayAlerts(context.Background(), nil))
	assert.JSONEq(t, `{"urgentAlerts": []}`, buf.String())

	buf.Reset()
	require.NoError(t, h.DisplayEnquiries(context.Background(), nil))
	assert.JSONEq(t, `{"enquiries": [], "count": 0}`, buf.String())
}

func TestTextEnquiries(t *testing.T) {
	var buf bytes.Buffer
	h := NewTextHandler(&buf)

	require.NoError(t, h.DisplayEnquiries(context.Background(), []*models.Enquiry{{
		ID: "e1", CustomerName: "Ravi Kumar", Email: "ravi@example.com", Phone: "9876543210",
		VehicleModel: "Swift", RegistrationNo: "KA01AB1234", ServiceType: "Brake Service",
		Status: models.EnquiryPending, WorkshopName: "Whitefield", CreatedAt: due,
	}}))
	out := buf.String()
	assert.Contains(t, out, "1. [pending] Ravi Kumar - Brake Service for Swift KA01AB1234 (ID: e1)")
	assert.Contains(t, out, "Contact: 9876543210, ravi@example.com")
	assert.Contains(t, out, "Whitefield, opened 2025-07-15 00:00")

	buf.Reset()
	require.NoError(t, h.DisplayEnquiries(context.Background(), nil))
	assert.Equal(t, "No enquiries found\n", buf.String())
}
