package output

import (
	"context"
	"fmt"
	"io"

	"github.com/opscart/assist-advisor/pkg/eligibility"
	"github.com/opscart/assist-advisor/pkg/models"
)

// Handler defines the interface for output formatting
type Handler interface {
	DisplayRecommendations(ctx context.Context, recs []models.ServiceRecommendation) error
	DisplaySummary(ctx context.Context, summary models.RecommendationSummary) error
	DisplayEstimate(ctx context.Context, estimate models.CostEstimate) error
	DisplayEligibility(ctx context.Context, result eligibility.Result, tier models.AssistTier) error
	DisplayRecords(ctx context.Context, recs []*models.AssistRecord) error
	DisplayEnquiries(ctx context.Context, enquiries []*models.Enquiry) error
	DisplayAlerts(ctx context.Context, alerts []string) error
	Format() string
}

// New returns the handler for format, writing to w
func New(format string, w io.Writer) (Handler, error) {
	switch format {
	case "", "text":
		return &TextHandler{w: w}, nil
	case "json":
		return NewJSONHandler(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
