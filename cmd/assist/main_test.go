package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opscart/assist-advisor/pkg/config"
	"github.com/opscart/assist-advisor/pkg/events"
	"github.com/opscart/assist-advisor/pkg/logger"
	"github.com/opscart/assist-advisor/pkg/metrics"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/reporter"
	"github.com/opscart/assist-advisor/pkg/sequence"
	"github.com/opscart/assist-advisor/pkg/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCLI(t *testing.T) {
	t.Helper()

	cfg = config.NewConfig()
	cfg.StorageBackend = "memory"
	cfg.RedisAddr = ""
	cfg.NATSURL = ""
	log = logger.Discard()

	var err error
	stats, err = metrics.New(false)
	require.NoError(t, err)

	store = storage.NewMemoryStore()
	pub = nil
	searchTerm, sortField, sortDir, listLimit = "", "", "", 0
	t.Cleanup(func() { store.Close() })
}

func addRecord(t *testing.T, customer, reg string, sale time.Time) *models.AssistRecord {
	t.Helper()
	rec := &models.AssistRecord{
		Timestamp:       time.Now(),
		CustomerName:    customer,
		RegistrationNo:  reg,
		Model:           "Swift",
		VehicleSaleDate: sale,
	}
	require.NoError(t, store.CreateAssistRecord(context.Background(), rec))
	return rec
}

func TestRunRecordAdd(t *testing.T) {
	setupCLI(t)
	ctx := context.Background()

	vehicleModel, registrationNo = "Swift", " ka01ab1234 "
	customerName = "Asha Rao"
	saleDate = time.Now().AddDate(-2, -1, 0).Format("2006-01-02")
	tier = "ASSIST 2"
	form.amount = "1180"
	t.Cleanup(func() { tier, form.amount = "", "0" })

	require.NoError(t, runRecordAdd(ctx))

	recs, err := store.ListAssistRecords(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "KA01AB1234", recs[0].RegistrationNo)
	assert.Equal(t, models.Assist2, recs[0].Assist)
	assert.Equal(t, models.StatusEligible, recs[0].Eligibility)
	assert.Equal(t, 2, recs[0].VehicleAge)

	entries, err := store.GetAuditLog(ctx, recs[0].ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, actionCreated, entries[0].Action)
}

func TestRunRecordAddRejectsBadInput(t *testing.T) {
	setupCLI(t)
	ctx := context.Background()

	vehicleModel, registrationNo, customerName = "Swift", "KA01", "Asha"

	saleDate = "15/06/2020"
	assert.Error(t, runRecordAdd(ctx))

	saleDate = "2020-06-15"
	tier = "ASSIST 9"
	assert.Error(t, runRecordAdd(ctx))
	tier = ""

	form.amount = "-5"
	assert.Error(t, runRecordAdd(ctx))
	form.amount = "0"
}

func TestTableRecords(t *testing.T) {
	setupCLI(t)
	ctx := context.Background()

	sale := time.Now().AddDate(-1, 0, 0)
	addRecord(t, "Zara", "KA01", sale)
	addRecord(t, "Anil", "KA02", sale)
	addRecord(t, "Meera", "MH12", sale)

	sortField, sortDir = "customerName", "asc"
	recs, err := tableRecords(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Anil", recs[0].CustomerName)
	assert.Equal(t, "Zara", recs[2].CustomerName)

	searchTerm = "ka0"
	listLimit = 1
	recs, err = tableRecords(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Anil", recs[0].CustomerName)

	sortField = "colour"
	_, err = tableRecords(ctx)
	assert.Error(t, err)
}

func TestExportAndImportRoundTrip(t *testing.T) {
	setupCLI(t)
	ctx := context.Background()

	addRecord(t, "Asha", "KA01", time.Now().AddDate(-3, 0, 0))
	addRecord(t, "Ravi", "KA02", time.Now().AddDate(-8, 0, 0))

	path := filepath.Join(t.TempDir(), "records.csv")
	exportFmt, outputFile = "csv", path
	t.Cleanup(func() { exportFmt, outputFile = "csv", "" })
	require.NoError(t, runExport(ctx))

	store = storage.NewMemoryStore()
	require.NoError(t, runImport(ctx, path))

	recs, err := store.ListAssistRecords(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		entries, err := store.GetAuditLog(ctx, r.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, actionImported, entries[0].Action)
	}
}

func TestRunExportRejectsUnknownFormat(t *testing.T) {
	setupCLI(t)
	exportFmt = "pdf"
	t.Cleanup(func() { exportFmt = "csv" })
	assert.Error(t, runExport(context.Background()))
}

func TestRunCertificate(t *testing.T) {
	setupCLI(t)
	ctx := context.Background()

	rec := addRecord(t, "Asha", "KA01", time.Now().AddDate(-2, 0, 0))
	rec.Eligibility = models.StatusEligible
	require.NoError(t, store.UpdateAssistRecord(ctx, rec))

	outputFile = filepath.Join(t.TempDir(), "policy.pdf")
	t.Cleanup(func() { outputFile = "" })
	require.NoError(t, runCertificate(ctx, rec.ID))

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))

	entries, err := store.GetAuditLog(ctx, rec.ID)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, actionCertificate, entries[0].Action)
	assert.Equal(t, "SUCCESS", entries[0].Status)
}

func TestRunCertificateNotEligible(t *testing.T) {
	setupCLI(t)
	ctx := context.Background()

	rec := addRecord(t, "Ravi", "KA02", time.Now().AddDate(-20, 0, 0))
	rec.Eligibility = models.StatusNotEligible
	require.NoError(t, store.UpdateAssistRecord(ctx, rec))

	err := runCertificate(ctx, rec.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not eligible")
}

func TestInvoiceSourceFallsBackToMemory(t *testing.T) {
	setupCLI(t)
	cfg.InvoiceStart = 41

	src, err := invoiceSource(context.Background())
	require.NoError(t, err)
	require.IsType(t, &sequence.Memory{}, src)

	n, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestPublisherWithoutNATS(t *testing.T) {
	setupCLI(t)
	assert.Equal(t, events.Discard{}, publisher())
}

func TestWriteReport(t *testing.T) {
	setupCLI(t)
	reportsDir = filepath.Join(t.TempDir(), "reports")
	t.Cleanup(func() { reportsDir = "reports" })

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	report := reporter.Generate(nil, nil, models.VehicleIdentity{VehicleModel: "Swift", RegistrationNo: "KA01"}, 1000, now)

	path, err := writeReport(report, reporter.FormatHTML, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(reportsDir, "ASSIST_Records_2025-06-15.html"), path)
	assert.FileExists(t, path)

	_, err = writeReport(report, reporter.FormatPDF, now)
	assert.Error(t, err)
}

func TestRunServiceAddUsesCatalogNames(t *testing.T) {
	setupCLI(t)
	ctx := context.Background()

	vehicleModel, registrationNo = "Honda Civic", "ka01ab1234"
	serviceType, serviceDate, currentMileage, serviceCost = "oil change", "2025-05-15", 10000, "0"
	t.Cleanup(func() { serviceType, serviceDate, currentMileage = "", "", 0 })

	require.NoError(t, runServiceAdd(ctx))

	history, err := store.ListServiceRecords(ctx, models.VehicleIdentity{VehicleModel: "Honda Civic", RegistrationNo: "KA01AB1234"})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Oil Change", history[0].ServiceType)

	currentMileage = -1
	assert.Error(t, runServiceAdd(ctx))
}

func TestCloseSourceReleasesRedis(t *testing.T) {
	setupCLI(t)

	src := sequence.NewRedis(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "assist:invoice")
	closeSource(src)

	_, err := src.Next(context.Background())
	assert.ErrorIs(t, err, redis.ErrClosed)

	closeSource(sequence.NewMemory(0))
}

// failingStore fails CreateAssistRecord on the nth call
type failingStore struct {
	storage.Store
	failOn int
	calls  int
	failed string
}

func (s *failingStore) CreateAssistRecord(ctx context.Context, rec *models.AssistRecord) error {
	s.calls++
	if s.calls == s.failOn {
		s.failed = rec.ID
		return errors.New("connection reset")
	}
	return s.Store.CreateAssistRecord(ctx, rec)
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const importHeader = "Customer Name,Registration No,Model,Vehicle Sale Date,ASSIST Level\n"

func TestRunImportValidatesBeforeWriting(t *testing.T) {
	setupCLI(t)
	ctx := context.Background()

	path := writeCSV(t, importHeader+"Asha,KA01,Swift,2022-01-01,ASSIST 2\nRavi,KA02,Swift,,ASSIST 1\n")
	err := runImport(ctx, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vehicle sale date is required")

	path = writeCSV(t, importHeader+"Asha,KA01,Swift,2022-01-01,ASSIST 2\nRavi,KA02,Swift,2021-01-01,Gold\n")
	err = runImport(ctx, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown ASSIST level "Gold"`)

	recs, err := store.ListAssistRecords(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRunImportReportsSavedCount(t *testing.T) {
	setupCLI(t)
	ctx := context.Background()

	mem := store
	failing := &failingStore{Store: mem, failOn: 2}
	store = failing

	path := writeCSV(t, importHeader+"Asha,KA01,Swift,2022-01-01,ASSIST 2\nRavi,KA02,Swift,2021-01-01,ASSIST 1\nMeera,KA03,Swift,2020-01-01,ASSIST 3\n")
	err := runImport(ctx, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import stopped at row 2: connection reset; 1 of 3 records were saved")

	recs, err := mem.ListAssistRecords(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	entries, err := mem.GetAuditLog(ctx, failing.failed)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "FAILED", entries[0].Status)
}

func TestRunEnquiryLifecycle(t *testing.T) {
	setupCLI(t)
	ctx := context.Background()
	t.Setenv("USER", "advisor1")

	vehicleModel, registrationNo = "Swift", "ka01ab1234"
	customerName, enquiryEmail, enquiryPhone = "Asha Rao", "asha@example.com", "9876543210"
	serviceType, description, workshopName = "battery replacement", "Car will not start", ""
	t.Cleanup(func() {
		customerName, enquiryEmail, enquiryPhone = "", "", ""
		serviceType, description, enquiryStatus, onlyMine = "", "", "", false
	})

	require.NoError(t, runEnquiryAdd(ctx))

	enquiries, err := store.ListEnquiries(ctx, models.EnquiryFilter{})
	require.NoError(t, err)
	require.Len(t, enquiries, 1)
	e := enquiries[0]
	assert.Equal(t, models.EnquiryPending, e.Status)
	assert.Equal(t, "Battery Replacement", e.ServiceType)
	assert.Equal(t, "KA01AB1234", e.RegistrationNo)
	assert.Equal(t, models.DefaultWorkshop, e.WorkshopName)
	assert.Equal(t, "advisor1", e.CreatedBy)

	onlyMine, enquiryStatus = true, models.EnquiryPending
	require.NoError(t, runEnquiryList(ctx))

	require.NoError(t, runEnquiryStatus(ctx, e.ID, models.EnquiryCompleted))
	got, err := store.GetEnquiry(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnquiryCompleted, got.Status)

	assert.Error(t, runEnquiryStatus(ctx, e.ID, "closed"))
	assert.ErrorIs(t, runEnquiryStatus(ctx, "missing", models.EnquiryCancelled), storage.ErrNotFound)

	require.NoError(t, runEnquiryDelete(ctx, e.ID))
	_, err = store.GetEnquiry(ctx, e.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunEnquiryAddRejectsBadInput(t *testing.T) {
	setupCLI(t)
	ctx := context.Background()

	vehicleModel, registrationNo = "Swift", "KA01"
	customerName, enquiryPhone, serviceType = "Asha", "98765", "Oil Change"
	t.Cleanup(func() { customerName, enquiryEmail, enquiryPhone, serviceType = "", "", "", "" })

	enquiryEmail = "not-an-email"
	assert.Error(t, runEnquiryAdd(ctx))

	enquiryEmail = "asha@example.com"
	serviceType = "Teleport"
	assert.Error(t, runEnquiryAdd(ctx))

	enquiryStatus = "done"
	t.Cleanup(func() { enquiryStatus = "" })
	assert.Error(t, runEnquiryList(ctx))

	enquiries, err := store.ListEnquiries(ctx, models.EnquiryFilter{})
	require.NoError(t, err)
	assert.Empty(t, enquiries)
}
