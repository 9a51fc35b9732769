package output

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/opscart/assist-advisor/pkg/eligibility"
	"github.com/opscart/assist-advisor/pkg/models"
)

// TextHandler prints human readable listings
type TextHandler struct {
	w io.Writer
}

func NewTextHandler(w io.Writer) *TextHandler {
	return &TextHandler{w: w}
}

func (h *TextHandler) Format() string { return "text" }

func (h *TextHandler) DisplayRecommendations(_ context.Context, recs []models.ServiceRecommendation) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(h.w, "[INFO] No services are due")
		return err
	}

	fmt.Fprintf(h.w, "=== Service Recommendations ===\n\n")
	for i, rec := range recs {
		fmt.Fprintf(h.w, "%d. %s [%s]\n", i+1, rec.RecommendedService, strings.ToUpper(string(rec.Priority)))
		fmt.Fprintf(h.w, "   Reason: %s\n", rec.Reason)
		fmt.Fprintf(h.w, "   Due: %s\n", rec.DueDate.Format("2006-01-02"))
		if rec.LastServiceDate != nil {
			fmt.Fprintf(h.w, "   Last service: %s\n", rec.LastServiceDate.Format("2006-01-02"))
		}
		if _, err := fmt.Fprintf(h.w, "   Estimated cost: %s\n\n", rec.EstimatedCost.StringFixed(2)); err != nil {
			return err
		}
	}
	return nil
}

func (h *TextHandler) DisplaySummary(_ context.Context, summary models.RecommendationSummary) error {
	priorities := make([]models.Priority, 0, len(summary.ByPriority))
	for p := range summary.ByPriority {
		priorities = append(priorities, p)
	}
	sort.Slice(priorities, func(i, j int) bool { return priorities[i].Rank() > priorities[j].Rank() })

	parts := make([]string, 0, len(priorities))
	for _, p := range priorities {
		parts = append(parts, fmt.Sprintf("%s=%d", p, summary.ByPriority[p]))
	}

	_, err := fmt.Fprintf(h.w, "Total: %d recommendation(s) [%s], estimated %s\n",
		summary.Total, strings.Join(parts, " "), summary.EstimatedTotal.StringFixed(2))
	return err
}

func (h *TextHandler) DisplayEstimate(_ context.Context, e models.CostEstimate) error {
	fmt.Fprintf(h.w, "Service: %s (%s)\n", e.ServiceType, e.VehicleCategory)
	fmt.Fprintf(h.w, "   Base price: %s\n", e.BasePrice.StringFixed(2))
	fmt.Fprintf(h.w, "   Labor: %.1f h\n", e.LaborHours)
	if len(e.PartsRequired) > 0 {
		fmt.Fprintf(h.w, "   Parts: %s\n", strings.Join(e.PartsRequired, ", "))
	}
	_, err := fmt.Fprintf(h.w, "   Estimated total: %s\n", e.EstimatedTotal.StringFixed(2))
	return err
}

func (h *TextHandler) DisplayEligibility(_ context.Context, r eligibility.Result, tier models.AssistTier) error {
	_, err := fmt.Fprintf(h.w, "Vehicle age: %d years\nEligibility: %s\nASSIST level: %s\n", r.AgeYears, r.Eligibility, tier)
	return err
}

func (h *TextHandler) DisplayRecords(_ context.Context, recs []*models.AssistRecord) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(h.w, "No records found")
		return err
	}
	for i, r := range recs {
		fmt.Fprintf(h.w, "%d. %s - %s %s (ID: %s)\n", i+1, r.CustomerName, r.Model, r.RegistrationNo, r.ID)
		fmt.Fprintf(h.w, "   %s, %s, age %d\n", r.Assist, r.Eligibility, r.VehicleAge)
		fmt.Fprintf(h.w, "   Workshop: %s\n", r.WorkshopName)
		if _, err := fmt.Fprintf(h.w, "   Created: %s\n\n", r.Timestamp.Format("2006-01-02 15:04:05")); err != nil {
			return err
		}
	}
	return nil
}

func (h *TextHandler) DisplayEnquiries(_ context.Context, enquiries []*models.Enquiry) error {
	if len(enquiries) == 0 {
		_, err := fmt.Fprintln(h.w, "No enquiries found")
		return err
	}
	for i, e := range enquiries {
		fmt.Fprintf(h.w, "%d. [%s] %s - %s for %s %s (ID: %s)\n", i+1, e.Status, e.CustomerName, e.ServiceType, e.VehicleModel, e.RegistrationNo, e.ID)
		fmt.Fprintf(h.w, "   Contact: %s, %s\n", e.Phone, e.Email)
		if e.Description != "" {
			fmt.Fprintf(h.w, "   %s\n", e.Description)
		}
		if _, err := fmt.Fprintf(h.w, "   %s, opened %s\n\n", e.WorkshopName, e.CreatedAt.Format("2006-01-02 15:04")); err != nil {
			return err
		}
	}
	return nil
}

func (h *TextHandler) DisplayAlerts(_ context.Context, alerts []string) error {
	for _, a := range alerts {
		if _, err := fmt.Fprintf(h.w, "[WARN] %s\n", a); err != nil {
			return err
		}
	}
	return nil
}
