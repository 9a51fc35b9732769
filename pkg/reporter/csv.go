package reporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/records"
)

// GenerateCSV writes a vehicle report's recommendations followed by a summary
func GenerateCSV(report *Report, writer io.Writer) error {
	w := csv.NewWriter(writer)

	header := []string{
		"Service",
		"Priority",
		"Reason",
		"Estimated Cost",
		"Due Date",
		"Last Service Date",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range report.Recommendations {
		last := ""
		if rec.LastServiceDate != nil {
			last = rec.LastServiceDate.Format(records.DateLayout)
		}
		row := []string{
			rec.RecommendedService,
			string(rec.Priority),
			rec.Reason,
			rec.EstimatedCost.StringFixed(2),
			rec.DueDate.Format(records.DateLayout),
			last,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	summary := [][]string{
		{},
		{"SUMMARY"},
		{"Vehicle", report.VehicleModel + "-" + report.RegistrationNo},
		{"Category", string(report.Category)},
		{"Total Recommendations", fmt.Sprintf("%d", report.Summary.Total)},
		{"Total Estimated Cost", report.Summary.EstimatedTotal.StringFixed(2)},
		{},
		{"PRIORITY BREAKDOWN"},
		{"Priority", "Count", "Estimated Cost"},
	}
	for _, stat := range report.PriorityStats {
		summary = append(summary, []string{string(stat.Priority), fmt.Sprintf("%d", stat.Count), stat.EstimatedCost.StringFixed(2)})
	}
	if err := w.WriteAll(summary); err != nil {
		return fmt.Errorf("failed to write CSV summary: %w", err)
	}

	return nil
}

// WriteRecordsCSV exports ASSIST records in the shared column layout
func WriteRecordsCSV(recs []*models.AssistRecord, writer io.Writer) error {
	w := csv.NewWriter(writer)

	if err := w.Write(records.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range recs {
		if err := w.Write(records.Row(*r)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
