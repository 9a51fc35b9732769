package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opscart/assist-advisor/pkg/events"
	"github.com/opscart/assist-advisor/pkg/logger"
	"github.com/opscart/assist-advisor/pkg/metrics"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type published struct {
	subject string
	event   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{subject, v})
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.subject
	}
	return out
}

type fixture struct {
	srv     *Server
	store   *storage.MemoryStore
	events  *recordingPublisher
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := metrics.New(false)
	require.NoError(t, err)

	f := &fixture{
		store:   storage.NewMemoryStore(),
		events:  &recordingPublisher{},
		metrics: m,
	}
	opts := Options{
		Store:   f.store,
		Events:  f.events,
		Metrics: m,
		Logger:  logger.Discard(),
		Clock:   func() time.Time { return fixedNow },
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	f.srv = New(opts)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return f.doWith(t, method, path, body, nil)
}

func (f *fixture) doWith(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Count  *int            `json:"count"`
	Error  *Error          `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func intake(saleDate string) map[string]interface{} {
	return map[string]interface{}{
		"customerName":    "Ravi Kumar",
		"registrationNo":  "ka01ab1234",
		"model":           "Swift",
		"vehicleSaleDate": saleDate,
		"assist":          "ASSIST 2",
		"amountCollected": "1180",
		"workshopName":    "Whitefield",
		"sacCode":         "998714",
	}
}

func (f *fixture) createRecord(t *testing.T, saleDate string) models.AssistRecord {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/records", intake(saleDate))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var rec models.AssistRecord
	decode(t, w, &rec)
	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCreateRecord(t *testing.T) {
	f := newFixture(t)

	rec := f.createRecord(t, "2020-01-10")

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "KA01AB1234", rec.RegistrationNo)
	assert.Equal(t, 5, rec.VehicleAge)
	assert.Equal(t, models.StatusEligible, rec.Eligibility)
	assert.Equal(t, models.Assist2, rec.Assist)
	assert.True(t, fixedNow.Equal(rec.Timestamp))

	entries, err := f.store.GetAuditLog(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, actionCreated, entries[0].Action)

	assert.Equal(t, []string{events.SubjectRecordCreated}, f.events.subjects())
}

func TestCreateRecordNotEligible(t *testing.T) {
	f := newFixture(t)

	rec := f.createRecord(t, "2005-03-01")

	assert.Equal(t, 20, rec.VehicleAge)
	assert.Equal(t, models.StatusNotEligible, rec.Eligibility)
	assert.Equal(t, models.AssistNotEligible, rec.Assist)
}

func TestCreateRecordValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"missing customer", func(m map[string]interface{}) { delete(m, "customerName") }},
		{"bad sale date", func(m map[string]interface{}) { m["vehicleSaleDate"] = "10/01/2020" }},
		{"unknown tier", func(m map[string]interface{}) { m["assist"] = "ASSIST 9" }},
		{"negative amount", func(m map[string]interface{}) { m["amountCollected"] = "-1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := intake("2020-01-10")
			tt.mutate(body)

			w := f.do(t, http.MethodPost, "/api/records", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decode(t, w, nil)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		})
	}
}

func TestListRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, name := range []string{"Anita Rao", "José Fernandes", "Ravi Kumar"} {
		require.NoError(t, f.store.CreateAssistRecord(ctx, &models.AssistRecord{
			CustomerName:   name,
			RegistrationNo: "KA0" + string(rune('1'+i)),
			Timestamp:      fixedNow.Add(time.Duration(i) * time.Hour),
		}))
	}

	var recs []models.AssistRecord
	env := decode(t, f.do(t, http.MethodGet, "/api/records?search=jose", nil), &recs)
	require.Len(t, recs, 1)
	assert.Equal(t, "José Fernandes", recs[0].CustomerName)
	assert.Equal(t, 1, *env.Count)

	decode(t, f.do(t, http.MethodGet, "/api/records?sort=customerName&direction=asc&limit=2", nil), &recs)
	require.Len(t, recs, 2)
	assert.Equal(t, "Anita Rao", recs[0].CustomerName)
	assert.Equal(t, "José Fernandes", recs[1].CustomerName)

	w := f.do(t, http.MethodGet, "/api/records?sort=colour", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordLifecycle(t *testing.T) {
	f := newFixture(t)
	rec := f.createRecord(t, "2020-01-10")

	w := f.do(t, http.MethodGet, "/api/records/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	body := intake("2020-01-10")
	body["customerName"] = "Ravi K"
	w = f.do(t, http.MethodPut, "/api/records/"+rec.ID, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.AssistRecord
	decode(t, f.do(t, http.MethodGet, "/api/records/"+rec.ID, nil), &got)
	assert.Equal(t, "Ravi K", got.CustomerName)

	w = f.do(t, http.MethodDelete, "/api/records/"+rec.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/records/"+rec.ID, nil).Code)

	var entries []models.AuditEntry
	decode(t, f.do(t, http.MethodGet, "/api/records/"+rec.ID+"/audit", nil), &entries)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{actionDeleted, actionUpdated, actionCreated}, []string{entries[0].Action, entries[1].Action, entries[2].Action})

	assert.Equal(t, []string{events.SubjectRecordCreated, events.SubjectRecordUpdated, events.SubjectRecordDeleted}, f.events.subjects())
}

func TestExportRecords(t *testing.T) {
	f := newFixture(t)
	f.createRecord(t, "2020-01-10")

	w := f.do(t, http.MethodGet, "/api/records/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="ASSIST_Records_2025-06-15.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "Timestamp,Email Address,Customer Name"))

	w = f.do(t, http.MethodGet, "/api/records/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ASSIST_Records_2025-06-15.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = f.do(t, http.MethodGet, "/api/records/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportRecords(t *testing.T) {
	f := newFixture(t)

	csv := "Timestamp,Customer Name,Registration No,Model,Vehicle Sale Date,ASSIST Level\n" +
		"2025-03-01 10:00:00,Anita Rao,MH12CD5678,Creta,2022-05-01,ASSIST 3\n" +
		"2025-03-02 10:00:00,Old Timer,KA05XX0001,Gypsy,2001-01-01,ASSIST 1\n"

	w := f.do(t, http.MethodPost, "/api/records/import", csv)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var recs []models.AssistRecord
	env := decode(t, w, &recs)
	assert.Equal(t, 2, *env.Count)
	assert.Equal(t, models.Assist3, recs[0].Assist)
	assert.Equal(t, 2, recs[0].VehicleAge)
	assert.Equal(t, models.AssistNotEligible, recs[1].Assist)

	w = f.do(t, http.MethodPost, "/api/records/import", "Customer Name\nAnita\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportRecordsRejectsInvalidRows(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		row  string
	}{
		{"blank sale date", "2025-03-02 10:00:00,Old Timer,KA05XX0001,Gypsy,,ASSIST 1"},
		{"unknown tier", "2025-03-02 10:00:00,Old Timer,KA05XX0001,Gypsy,2001-01-01,ASSIST 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := "Timestamp,Customer Name,Registration No,Model,Vehicle Sale Date,ASSIST Level\n" +
				"2025-03-01 10:00:00,Anita Rao,MH12CD5678,Creta,2022-05-01,ASSIST 3\n" +
				tt.row + "\n"

			w := f.do(t, http.MethodPost, "/api/records/import", csv)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			env := decode(t, w, nil)
			assert.Contains(t, env.Error.Message, "line 3")

			recs, err := f.store.ListAssistRecords(context.Background(), 0)
			require.NoError(t, err)
			assert.Empty(t, recs, "no row is saved when any row is invalid")
		})
	}
}

// flakyStore fails CreateAssistRecord on the nth call
type flakyStore struct {
	storage.Store
	failOn int
	calls  int
	failed *models.AssistRecord
}

func (s *flakyStore) CreateAssistRecord(ctx context.Context, rec *models.AssistRecord) error {
	s.calls++
	if s.calls == s.failOn {
		s.failed = rec
		return errors.New("connection reset")
	}
	return s.Store.CreateAssistRecord(ctx, rec)
}

func TestImportRecordsReportsPartialWrites(t *testing.T) {
	flaky := &flakyStore{failOn: 2}
	f := newFixture(t, func(o *Options) {
		flaky.Store = o.Store
		o.Store = flaky
	})

	csv := "Timestamp,Customer Name,Registration No,Model,Vehicle Sale Date,ASSIST Level\n" +
		"2025-03-01 10:00:00,Anita Rao,MH12CD5678,Creta,2022-05-01,ASSIST 3\n" +
		"2025-03-02 10:00:00,Ravi Kumar,KA01AB1234,Swift,2020-01-10,ASSIST 2\n" +
		"2025-03-03 10:00:00,Old Timer,KA05XX0001,Gypsy,2001-01-01,ASSIST 1\n"

	w := f.do(t, http.MethodPost, "/api/records/import", csv)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var saved []models.AssistRecord
	env := decode(t, w, &saved)
	assert.Equal(t, "IMPORT_INCOMPLETE", env.Error.Code)
	assert.Equal(t, "import stopped at row 2; 1 of 3 records were saved", env.Error.Message)
	assert.Equal(t, 1, *env.Count)
	require.Len(t, saved, 1)
	assert.Equal(t, "Anita Rao", saved[0].CustomerName)

	require.NotNil(t, flaky.failed)
	entries, err := f.store.GetAuditLog(context.Background(), flaky.failed.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, actionImported, entries[0].Action)
	assert.Equal(t, "FAILED", entries[0].Status)
	assert.Contains(t, entries[0].ErrorMessage, "row 2: connection reset")
}

func TestCertificate(t *testing.T) {
	f := newFixture(t)
	rec := f.createRecord(t, "2020-01-10")

	w := f.do(t, http.MethodGet, "/api/records/"+rec.ID+"/certificate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ASSIST_Policy_KA01AB1234_2025-06-15.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	subjects := f.events.subjects()
	assert.Equal(t, events.SubjectCertificateIssued, subjects[len(subjects)-1])

	f.events.mu.Lock()
	issued := f.events.events[len(f.events.events)-1].event.(events.CertificateEvent)
	f.events.mu.Unlock()
	assert.Equal(t, "0000001", issued.InvoiceNumber)
	assert.Equal(t, "ASSIST-25-26-00002", issued.CertificateNumber)

	old := f.createRecord(t, "2001-01-01")
	w = f.do(t, http.MethodGet, "/api/records/"+old.ID+"/certificate", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRecommendations(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/service-records", map[string]interface{}{
		"vehicleModel":   "Honda Civic",
		"registrationNo": "KA01AB1234",
		"serviceType":    "Oil Change",
		"serviceDate":    "2024-09-15",
		"mileage":        10000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/recommendations", map[string]interface{}{
		"vehicleModel":   "Honda Civic",
		"registrationNo": "KA01AB1234",
		"currentMileage": 12000,
		"save":           true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Recommendations []models.ServiceRecommendation `json:"recommendations"`
		Summary         models.RecommendationSummary   `json:"summary"`
	}
	decode(t, w, &data)
	require.NotEmpty(t, data.Recommendations)
	assert.Equal(t, "Oil Change", data.Recommendations[0].RecommendedService)
	assert.Equal(t, models.PriorityUrgent, data.Recommendations[0].Priority)
	assert.Equal(t, len(data.Recommendations), data.Summary.Total)

	var saved []models.ServiceRecommendation
	decode(t, f.do(t, http.MethodGet, "/api/recommendations?vehicleModel=Honda+Civic&registrationNo=KA01AB1234", nil), &saved)
	assert.Len(t, saved, len(data.Recommendations))

	assert.Contains(t, f.events.subjects(), events.SubjectRecommendations)

	w = f.do(t, http.MethodPost, "/api/recommendations", map[string]interface{}{"vehicleModel": "Honda Civic"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServiceRecordNamesAreNormalized(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/service-records", map[string]interface{}{
		"vehicleModel":   " Honda Civic ",
		"registrationNo": "ka01ab1234",
		"serviceType":    "oil change",
		"serviceDate":    "2025-05-15",
		"mileage":        10000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.ServiceRecord
	decode(t, w, &created)
	assert.Equal(t, "Oil Change", created.ServiceType)
	assert.Equal(t, "KA01AB1234", created.RegistrationNo)
	assert.Equal(t, "Honda Civic", created.VehicleModel)

	w = f.do(t, http.MethodPost, "/api/recommendations", map[string]interface{}{
		"vehicleModel":   "Honda Civic",
		"registrationNo": "ka01ab1234",
		"currentMileage": 11000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Recommendations []models.ServiceRecommendation `json:"recommendations"`
	}
	decode(t, w, &data)
	for _, rec := range data.Recommendations {
		assert.NotEqual(t, "No record of Oil Change for this vehicle", rec.Reason)
	}

	var history []models.ServiceRecord
	decode(t, f.do(t, http.MethodGet, "/api/service-records?vehicleModel=Honda+Civic&registrationNo=ka01ab1234", nil), &history)
	assert.Len(t, history, 1)

	var est models.CostEstimate
	decode(t, f.do(t, http.MethodGet, "/api/estimate?service=oil+change&vehicleModel=Honda+Civic", nil), &est)
	assert.Equal(t, "100", est.BasePrice.String())
	assert.Equal(t, 1.0, est.LaborHours)
	assert.Equal(t, []string{"Standard parts"}, est.PartsRequired)
}

func TestScheduleAndComplete(t *testing.T) {
	f := newFixture(t)

	var schedules []models.MaintenanceSchedule
	w := f.do(t, http.MethodPost, "/api/schedule", map[string]interface{}{
		"vehicleModel":   "Swift",
		"registrationNo": "KA01",
	})
	decode(t, w, &schedules)
	require.GreaterOrEqual(t, len(schedules), 3)
	assert.Equal(t, models.ScheduleScheduled, schedules[0].Status)

	w = f.do(t, http.MethodPost, "/api/schedule/complete", map[string]interface{}{
		"schedule": schedules[0],
		"mileage":  15000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	history, err := f.store.ListServiceRecords(context.Background(), models.VehicleIdentity{VehicleModel: "Swift", RegistrationNo: "KA01"})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, schedules[0].ServiceType, history[0].ServiceType)
	assert.Equal(t, 15000, history[0].Mileage)

	lower := schedules[1]
	lower.ServiceType = strings.ToLower(lower.ServiceType)
	lower.RegistrationNo = "ka01"
	w = f.do(t, http.MethodPost, "/api/schedule/complete", map[string]interface{}{"schedule": lower, "mileage": 15000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	history, err = f.store.ListServiceRecords(context.Background(), models.VehicleIdentity{VehicleModel: "Swift", RegistrationNo: "KA01"})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, schedules[1].ServiceType, history[1].ServiceType)

	w = f.do(t, http.MethodPost, "/api/schedule/complete", map[string]interface{}{"schedule": schedules[2], "mileage": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	completed := schedules[0]
	completed.Status = models.ScheduleCompleted
	w = f.do(t, http.MethodPost, "/api/schedule/complete", map[string]interface{}{"schedule": completed})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEstimateEligibilityChat(t *testing.T) {
	f := newFixture(t)

	var est models.CostEstimate
	decode(t, f.do(t, http.MethodGet, "/api/estimate?service=Oil+Change&vehicleModel=Honda+Civic", nil), &est)
	assert.Equal(t, models.CategoryCompact, est.VehicleCategory)
	assert.False(t, est.EstimatedTotal.IsZero())
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/estimate", nil).Code)

	var elig struct {
		AgeYears    int    `json:"ageYears"`
		Eligibility string `json:"eligibility"`
		Assist      string `json:"assist"`
	}
	decode(t, f.do(t, http.MethodPost, "/api/eligibility", map[string]string{"vehicleSaleDate": "2008-01-01", "assist": "ASSIST 3"}), &elig)
	assert.Equal(t, 17, elig.AgeYears)
	assert.Equal(t, models.StatusNotEligible, elig.Eligibility)
	assert.Equal(t, string(models.AssistNotEligible), elig.Assist)

	var chat struct {
		Response string `json:"response"`
		Rule     string `json:"rule"`
	}
	decode(t, f.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "How much does it cost?"}), &chat)
	assert.Equal(t, "cost", chat.Rule)
	assert.NotEmpty(t, chat.Response)
}

func TestAlertsAndDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.SaveServiceRecord(ctx, &models.ServiceRecord{VehicleModel: "Swift", RegistrationNo: "KA01", ServiceType: "Tire Rotation", ServiceDate: fixedNow}))
	f.createRecord(t, "2020-01-10")
	for _, status := range []string{models.EnquiryPending, models.EnquiryInProgress, models.EnquiryCompleted} {
		require.NoError(t, f.store.CreateEnquiry(ctx, &models.Enquiry{CustomerName: "Asha", Status: status}))
	}

	var alerts []string
	decode(t, f.do(t, http.MethodGet, "/api/alerts", nil), &alerts)
	assert.Equal(t, []string{"Swift-KA01: No oil change record found - immediate attention needed!"}, alerts)

	var stats models.DashboardStats
	decode(t, f.do(t, http.MethodGet, "/api/dashboard", nil), &stats)
	assert.Equal(t, 1, stats.TotalRecords)
	assert.Equal(t, 1, stats.UrgentAlerts)
	assert.Equal(t, 2, stats.OpenEnquiries)
}

func TestReport(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/report?vehicleModel=Swift&registrationNo=KA01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ASSIST Maintenance Report - KA01")

	w = f.do(t, http.MethodGet, "/api/report?vehicleModel=Swift&registrationNo=KA01&format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Service,Priority"))

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/report?vehicleModel=Swift", nil).Code)
}

func enquiry() map[string]interface{} {
	return map[string]interface{}{
		"customerName":   "Ravi Kumar",
		"email":          "ravi@example.com",
		"phone":          "9876543210",
		"vehicleModel":   "Swift",
		"registrationNo": "ka01ab1234",
		"serviceType":    "brake service",
		"description":    "Squeal when braking",
	}
}

func TestCreateEnquiry(t *testing.T) {
	f := newFixture(t)

	w := f.doWith(t, http.MethodPost, "/api/enquiries", enquiry(), map[string]string{"X-User": "u1", "X-Workshop": "Whitefield"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var e models.Enquiry
	decode(t, w, &e)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, models.EnquiryPending, e.Status)
	assert.Equal(t, "Brake Service", e.ServiceType)
	assert.Equal(t, "KA01AB1234", e.RegistrationNo)
	assert.Equal(t, "Whitefield", e.WorkshopName)
	assert.Equal(t, "u1", e.CreatedBy)
	assert.True(t, fixedNow.Equal(e.CreatedAt))
	assert.True(t, fixedNow.Equal(e.UpdatedAt))

	stored, err := f.store.GetEnquiry(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Squeal when braking", stored.Description)

	assert.Equal(t, []string{events.SubjectEnquiryCreated}, f.events.subjects())

	w = f.do(t, http.MethodPost, "/api/enquiries", enquiry())
	require.Equal(t, http.StatusCreated, w.Code)
	decode(t, w, &e)
	assert.Equal(t, models.DefaultWorkshop, e.WorkshopName)
}

func TestCreateEnquiryValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"missing phone", func(m map[string]interface{}) { delete(m, "phone") }},
		{"bad email", func(m map[string]interface{}) { m["email"] = "ravi" }},
		{"unknown service", func(m map[string]interface{}) { m["serviceType"] = "Teleport" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := enquiry()
			tt.mutate(body)

			w := f.do(t, http.MethodPost, "/api/enquiries", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	list, err := f.store.ListEnquiries(context.Background(), models.EnquiryFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEnquiryLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, user := range []string{"u1", "u2", "u1"} {
		require.NoError(t, f.store.CreateEnquiry(ctx, &models.Enquiry{
			CustomerName: "Customer", VehicleModel: "Swift", RegistrationNo: "KA0" + strconv.Itoa(i),
			ServiceType: "Oil Change", Status: models.EnquiryPending, WorkshopName: "Whitefield",
			CreatedBy: user, CreatedAt: fixedNow.Add(time.Duration(i) * time.Hour),
		}))
	}

	var list []models.Enquiry
	env := decode(t, f.do(t, http.MethodGet, "/api/enquiries?createdBy=u1", nil), &list)
	require.Len(t, list, 2)
	assert.Equal(t, 2, *env.Count)
	assert.Equal(t, "KA02", list[0].RegistrationNo, "newest first")

	w := f.do(t, http.MethodPut, "/api/enquiries/"+list[0].ID+"/status", map[string]string{"status": models.EnquiryInProgress})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Enquiry
	decode(t, w, &updated)
	assert.Equal(t, models.EnquiryInProgress, updated.Status)

	decode(t, f.do(t, http.MethodGet, "/api/enquiries?status=pending", nil), &list)
	assert.Len(t, list, 2)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, "/api/enquiries/"+updated.ID+"/status", map[string]string{"status": "done"}).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPut, "/api/enquiries/missing/status", map[string]string{"status": models.EnquiryCompleted}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/enquiries?status=done", nil).Code)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/api/enquiries/"+updated.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/enquiries/"+updated.ID, nil).Code)

	assert.Equal(t, []string{events.SubjectEnquiryUpdated, events.SubjectEnquiryDeleted}, f.events.subjects())
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.RateLimit = 0.001
		o.RateBurst = 1
	})

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/health", nil).Code)

	w := f.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.createRecord(t, "2020-01-10")

	w := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `assist_records_total{action="CREATED"} 1`)
	assert.Contains(t, w.Body.String(), "assist_http_request_duration_seconds")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodOptions, "/api/records", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
