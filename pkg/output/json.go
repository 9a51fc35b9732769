package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/opscart/assist-advisor/pkg/eligibility"
	"github.com/opscart/assist-advisor/pkg/models"
)

// JSONHandler writes one indented JSON document per call
type JSONHandler struct {
	enc *json.Encoder
}

func NewJSONHandler(w io.Writer) *JSONHandler {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSONHandler{enc: enc}
}

func (h *JSONHandler) Format() string { return "json" }

func (h *JSONHandler) DisplayRecommendations(_ context.Context, recs []models.ServiceRecommendation) error {
	if recs == nil {
		recs = []models.ServiceRecommendation{}
	}
	return h.enc.Encode(map[string]interface{}{
		"recommendations": recs,
		"count":           len(recs),
	})
}

func (h *JSONHandler) DisplaySummary(_ context.Context, summary models.RecommendationSummary) error {
	return h.enc.Encode(summary)
}

func (h *JSONHandler) DisplayEstimate(_ context.Context, e models.CostEstimate) error {
	return h.enc.Encode(e)
}

func (h *JSONHandler) DisplayEligibility(_ context.Context, r eligibility.Result, tier models.AssistTier) error {
	return h.enc.Encode(map[string]interface{}{
		"ageYears":    r.AgeYears,
		"eligibility": r.Eligibility,
		"assist":      tier,
	})
}

func (h *JSONHandler) DisplayRecords(_ context.Context, recs []*models.AssistRecord) error {
	if recs == nil {
		recs = []*models.AssistRecord{}
	}
	return h.enc.Encode(map[string]interface{}{
		"records": recs,
		"count":   len(recs),
	})
}

func (h *JSONHandler) DisplayEnquiries(_ context.Context, enquiries []*models.Enquiry) error {
	if enquiries == nil {
		enquiries = []*models.Enquiry{}
	}
	return h.enc.Encode(map[string]interface{}{
		"enquiries": enquiries,
		"count":     len(enquiries),
	})
}

func (h *JSONHandler) DisplayAlerts(_ context.Context, alerts []string) error {
	if alerts == nil {
		alerts = []string{}
	}
	return h.enc.Encode(map[string]interface{}{"urgentAlerts": alerts})
}
