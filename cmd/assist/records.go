package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opscart/assist-advisor/pkg/eligibility"
	"github.com/opscart/assist-advisor/pkg/events"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/records"
	"github.com/opscart/assist-advisor/pkg/reporter"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Audit actions
const (
	actionCreated     = "CREATED"
	actionImported    = "IMPORTED"
	actionCertificate = "CERTIFICATE_ISSUED"
)

var (
	// Record flags
	searchTerm string
	sortField  string
	sortDir    string
	listLimit  int
	exportFmt  string
	outputFile string

	form struct {
		email, contact, address, gst string
		chassis, variant, fuel, gear string
		employee, payment, proof     string
		amount                       string
	}
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage ASSIST enrolment records",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context) error {
				recs, err := tableRecords(ctx)
				if err != nil {
					return err
				}
				return handler().DisplayRecords(ctx, recs)
			})
		},
	}
	list.Flags().StringVar(&searchTerm, "search", "", "Filter by customer, registration, model or workshop")
	list.Flags().StringVar(&sortField, "sort", string(records.SortTimestamp), "Sort field")
	list.Flags().StringVar(&sortDir, "dir", string(records.Desc), "Sort direction: asc, desc")
	list.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of records (0 for all)")

	add := &cobra.Command{
		Use:   "add",
		Short: "Enrol a vehicle in ASSIST",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(runRecordAdd)
		},
	}
	addVehicleFlags(add, true)
	add.Flags().StringVar(&customerName, "customer", "", "Customer name")
	add.Flags().StringVar(&saleDate, "sale-date", "", "Vehicle sale date (YYYY-MM-DD)")
	add.Flags().StringVar(&tier, "tier", "", "ASSIST level (default \"ASSIST 1\")")
	add.Flags().StringVar(&workshopName, "workshop", "", "Workshop name")
	add.Flags().StringVar(&form.email, "email", "", "Customer email address")
	add.Flags().StringVar(&form.contact, "contact", "", "Customer contact number")
	add.Flags().StringVar(&form.address, "address", "", "Customer address")
	add.Flags().StringVar(&form.gst, "gst", "", "Customer GST number")
	add.Flags().StringVar(&form.chassis, "chassis", "", "Chassis number (full VIN)")
	add.Flags().StringVar(&form.variant, "variant", "", "Model variant")
	add.Flags().StringVar(&form.fuel, "fuel", "", "Fuel type")
	add.Flags().StringVar(&form.gear, "transmission", "", "Transmission")
	add.Flags().StringVar(&form.employee, "employee", "", "Service advisor name")
	add.Flags().StringVar(&form.amount, "amount", "0", "Amount collected")
	add.Flags().StringVar(&form.payment, "payment", "", "Payment type")
	add.Flags().StringVar(&form.proof, "payment-proof", "", "Payment reference")
	_ = add.MarkFlagRequired("customer")
	_ = add.MarkFlagRequired("sale-date")

	imp := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import records from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context) error {
				return runImport(ctx, args[0])
			})
		},
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Export records as CSV or Excel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(runExport)
		},
	}
	export.Flags().StringVar(&exportFmt, "format", "csv", "Export format: csv, xlsx")
	export.Flags().StringVar(&outputFile, "file", "", "Output file (default ASSIST_Records_<date>.<format>)")
	export.Flags().StringVar(&searchTerm, "search", "", "Only export matching records")

	cmd.AddCommand(list, add, imp, export)
	return cmd
}

// tableRecords applies the list flags the same way the records table does
func tableRecords(ctx context.Context) ([]*models.AssistRecord, error) {
	stored, err := store.ListAssistRecords(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	values := make([]models.AssistRecord, len(stored))
	for i, r := range stored {
		values[i] = *r
	}
	values = records.Search(values, searchTerm)
	if sortField != "" {
		if values, err = records.Sort(values, records.SortField(sortField), records.Direction(sortDir)); err != nil {
			return nil, err
		}
	}
	if listLimit > 0 && len(values) > listLimit {
		values = values[:listLimit]
	}

	out := make([]*models.AssistRecord, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return out, nil
}

func runRecordAdd(ctx context.Context) error {
	sale, err := time.Parse(records.DateLayout, saleDate)
	if err != nil {
		return fmt.Errorf("--sale-date must be YYYY-MM-DD")
	}
	requested := models.AssistTier(tier)
	if requested != "" && !eligibility.ValidTier(requested) {
		return fmt.Errorf("unknown ASSIST level: %s", tier)
	}
	amount, err := decimal.NewFromString(form.amount)
	if err != nil || amount.IsNegative() {
		return fmt.Errorf("--amount must be a number >= 0")
	}

	v := vehicle()
	now := time.Now()
	rec := &models.AssistRecord{
		Timestamp:         now,
		EmailAddress:      form.email,
		CustomerName:      customerName,
		CustomerContactNo: form.contact,
		CustomerAddress:   form.address,
		CustomerGSTNo:     form.gst,
		RegistrationNo:    v.RegistrationNo,
		ChassisNo:         form.chassis,
		Model:             v.VehicleModel,
		Variant:           form.variant,
		Fuel:              form.fuel,
		Transmission:      form.gear,
		VehicleSaleDate:   sale,
		WorkshopName:      workshopName,
		EmployeeName:      form.employee,
		Assist:            requested,
		AmountCollected:   amount,
		PaymentType:       form.payment,
		PaymentProof:      form.proof,
	}
	result := eligibility.Apply(rec, now)

	if err := store.CreateAssistRecord(ctx, rec); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	audit(ctx, rec.ID, actionCreated, nil)
	stats.RecordChanged(actionCreated)
	stats.EligibilityChecked(result.Eligibility)
	publishRecord(ctx, events.SubjectRecordCreated, rec)

	if cfg.OutputFormat == "json" {
		return printJSON(rec)
	}
	fmt.Printf("[INFO] Created record %s: %s, %s (%d years)\n", rec.ID, rec.Assist, rec.Eligibility, rec.VehicleAge)
	if !result.Eligible() {
		fmt.Println("[WARN] Vehicle is older than the ASSIST limit; certificate cannot be issued")
	}
	return nil
}

func runImport(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	// every row is validated before the first write
	rows, err := records.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	for i := range rows {
		rec := &rows[i]
		if rec.Timestamp.IsZero() {
			rec.Timestamp = time.Now()
		}
		eligibility.Apply(rec, rec.Timestamp)
		rec.ID = uuid.New().String()

		if err := store.CreateAssistRecord(ctx, rec); err != nil {
			err = fmt.Errorf("row %d: %w", i+1, err)
			audit(ctx, rec.ID, actionImported, err)
			return fmt.Errorf("import stopped at %w; %d of %d records were saved", err, i, len(rows))
		}
		audit(ctx, rec.ID, actionImported, nil)
		stats.RecordChanged(actionImported)
		publishRecord(ctx, events.SubjectRecordCreated, rec)
	}

	fmt.Printf("[INFO] Imported %d record(s) from %s\n", len(rows), filepath.Base(path))
	return nil
}

func runExport(ctx context.Context) error {
	recs, err := tableRecords(ctx)
	if err != nil {
		return err
	}

	format := reporter.ReportFormat(strings.ToLower(exportFmt))
	if format != reporter.FormatCSV && format != reporter.FormatExcel {
		return fmt.Errorf("unsupported export format: %s", exportFmt)
	}
	path := outputFile
	if path == "" {
		path = reporter.DefaultFilename(format, time.Now())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if format == reporter.FormatExcel {
		err = reporter.WriteRecordsExcel(recs, f)
	} else {
		err = reporter.WriteRecordsCSV(recs, f)
	}
	if err != nil {
		return err
	}
	fmt.Printf("[INFO] Exported %d record(s) to %s\n", len(recs), path)
	return nil
}

func certificateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certificate <record id>",
		Short: "Issue the ASSIST policy certificate PDF for a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context) error {
				return runCertificate(ctx, args[0])
			})
		},
	}
	cmd.Flags().StringVar(&outputFile, "file", "", "Output file (default ASSIST_Policy_<reg>_<date>.pdf)")
	return cmd
}

func runCertificate(ctx context.Context, id string) error {
	rec, err := store.GetAssistRecord(ctx, id)
	if err != nil {
		return err
	}
	if rec.Eligibility == models.StatusNotEligible {
		return fmt.Errorf("record %s: vehicle is not eligible for ASSIST", id)
	}

	invoices, err := invoiceSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource(invoices)
	now := time.Now()
	policy, err := reporter.NewPolicy(ctx, rec, invoices, now)
	if err != nil {
		audit(ctx, id, actionCertificate, err)
		return err
	}

	path := outputFile
	if path == "" {
		path = reporter.PolicyFilename(rec.RegistrationNo, now)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := reporter.WritePolicyPDF(rec, policy, policyOptions(), f); err != nil {
		audit(ctx, id, actionCertificate, err)
		return err
	}
	audit(ctx, id, actionCertificate, nil)
	stats.CertificateIssued()

	if err := publisher().Publish(ctx, events.SubjectCertificateIssued, events.CertificateEvent{
		RecordID:          id,
		InvoiceNumber:     policy.InvoiceNumber,
		CertificateNumber: policy.CertificateNumber,
		At:                now,
	}); err != nil {
		log.WithError(err).Warn("failed to publish event")
	}

	fmt.Printf("[INFO] Certificate %s (invoice %s) saved to %s\n", policy.CertificateNumber, policy.InvoiceNumber, path)
	return nil
}

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <record id>",
		Short: "Show the audit trail of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context) error {
				entries, err := store.GetAuditLog(ctx, args[0])
				if err != nil {
					return err
				}
				if cfg.OutputFormat == "json" {
					return printJSON(entries)
				}
				if len(entries) == 0 {
					fmt.Println("[INFO] No audit entries")
					return nil
				}
				for _, e := range entries {
					line := fmt.Sprintf("%s  %-18s %s", e.ExecutedAt.Format(records.TimestampLayout), e.Action, e.Status)
					if e.ErrorMessage != "" {
						line += "  " + e.ErrorMessage
					}
					fmt.Println(line)
				}
				return nil
			})
		},
	}
}

func audit(ctx context.Context, recordID, action string, cause error) {
	entry := &models.AuditEntry{
		RecordID:   recordID,
		Action:     action,
		Status:     "SUCCESS",
		ExecutedBy: os.Getenv("USER"),
		ExecutedAt: time.Now(),
	}
	if cause != nil {
		entry.Status = "FAILED"
		entry.ErrorMessage = cause.Error()
	}
	if err := store.LogAction(ctx, entry); err != nil {
		log.WithError(err).WithField("record_id", recordID).Warn("failed to write audit entry")
	}
}

func publishRecord(ctx context.Context, subject string, rec *models.AssistRecord) {
	err := publisher().Publish(ctx, subject, events.RecordEvent{
		RecordID:       rec.ID,
		RegistrationNo: rec.RegistrationNo,
		Model:          rec.Model,
		Assist:         string(rec.Assist),
		At:             time.Now(),
	})
	if err != nil {
		log.WithError(err).Warn("failed to publish event")
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
