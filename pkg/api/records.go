package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opscart/assist-advisor/pkg/eligibility"
	"github.com/opscart/assist-advisor/pkg/events"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/records"
	"github.com/opscart/assist-advisor/pkg/reporter"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Audit actions
const (
	actionCreated     = "CREATED"
	actionUpdated     = "UPDATED"
	actionDeleted     = "DELETED"
	actionImported    = "IMPORTED"
	actionCertificate = "CERTIFICATE_ISSUED"
)

// recordRequest is the intake form payload. Dates travel as YYYY-MM-DD.
type recordRequest struct {
	EmailAddress      string            `json:"emailAddress"`
	CustomerName      string            `json:"customerName" binding:"required"`
	CustomerContactNo string            `json:"customerContactNo"`
	CustomerAddress   string            `json:"customerAddress"`
	CustomerGSTNo     string            `json:"customerGSTNo"`
	RegisteredAddress string            `json:"registeredAddress"`
	DealershipGSTIN   string            `json:"dealershipGSTIN"`
	SACCode           string            `json:"sacCode"`
	CINNumber         string            `json:"cinNumber"`
	RegistrationNo    string            `json:"registrationNo" binding:"required"`
	ChassisNo         string            `json:"chassisNo"`
	Model             string            `json:"model" binding:"required"`
	Variant           string            `json:"variant"`
	Fuel              string            `json:"fuel"`
	Transmission      string            `json:"transmission"`
	VehicleSaleDate   string            `json:"vehicleSaleDate" binding:"required"`
	WorkshopName      string            `json:"workshopName"`
	EmployeeName      string            `json:"employeeName"`
	Assist            models.AssistTier `json:"assist"`
	AmountCollected   decimal.Decimal   `json:"amountCollected"`
	PaymentType       string            `json:"paymentType"`
	PaymentProof      string            `json:"paymentProof"`
}

func (r recordRequest) toRecord() (models.AssistRecord, error) {
	sale, err := time.Parse(dateLayout, r.VehicleSaleDate)
	if err != nil {
		return models.AssistRecord{}, errors.New("vehicleSaleDate must be YYYY-MM-DD")
	}
	if r.Assist != "" && !eligibility.ValidTier(r.Assist) {
		return models.AssistRecord{}, fmt.Errorf("unknown ASSIST level: %s", r.Assist)
	}
	if r.AmountCollected.IsNegative() {
		return models.AssistRecord{}, errors.New("amountCollected must be >= 0")
	}

	return models.AssistRecord{
		EmailAddress:      r.EmailAddress,
		CustomerName:      r.CustomerName,
		CustomerContactNo: r.CustomerContactNo,
		CustomerAddress:   r.CustomerAddress,
		CustomerGSTNo:     r.CustomerGSTNo,
		RegisteredAddress: r.RegisteredAddress,
		DealershipGSTIN:   r.DealershipGSTIN,
		SACCode:           r.SACCode,
		CINNumber:         r.CINNumber,
		RegistrationNo:    models.NormalizeRegistration(r.RegistrationNo),
		ChassisNo:         r.ChassisNo,
		Model:             r.Model,
		Variant:           r.Variant,
		Fuel:              r.Fuel,
		Transmission:      r.Transmission,
		VehicleSaleDate:   sale,
		WorkshopName:      r.WorkshopName,
		EmployeeName:      r.EmployeeName,
		Assist:            r.Assist,
		AmountCollected:   r.AmountCollected,
		PaymentType:       r.PaymentType,
		PaymentProof:      r.PaymentProof,
	}, nil
}

func (s *Server) audit(c *gin.Context, recordID, action string, cause error) {
	entry := &models.AuditEntry{
		RecordID:   recordID,
		Action:     action,
		Status:     "SUCCESS",
		ExecutedBy: c.GetHeader("X-User"),
		ExecutedAt: s.now(),
	}
	if cause != nil {
		entry.Status = "FAILED"
		entry.ErrorMessage = cause.Error()
	}
	if err := s.store.LogAction(c.Request.Context(), entry); err != nil {
		s.log.WithError(err).WithField("record_id", recordID).Warn("failed to write audit entry")
	}
}

func (s *Server) recordEvent(c *gin.Context, subject string, rec *models.AssistRecord) {
	s.publish(c.Request.Context(), subject, events.RecordEvent{
		RecordID:       rec.ID,
		RegistrationNo: rec.RegistrationNo,
		Model:          rec.Model,
		Assist:         string(rec.Assist),
		At:             s.now(),
	})
}

func (s *Server) createRecord(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	rec, err := req.toRecord()
	if err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	now := s.now()
	rec.Timestamp = now
	result := eligibility.Apply(&rec, now)

	if err := s.store.CreateAssistRecord(c.Request.Context(), &rec); err != nil {
		s.storeError(c, err)
		return
	}
	s.audit(c, rec.ID, actionCreated, nil)
	s.recordEvent(c, events.SubjectRecordCreated, &rec)
	if s.metrics != nil {
		s.metrics.RecordChanged(actionCreated)
		s.metrics.EligibilityChecked(result.Eligibility)
	}

	s.log.WithField("record_id", rec.ID).WithField("assist", rec.Assist).Info("ASSIST record created")
	s.success(c, http.StatusCreated, "record created", rec)
}

func (s *Server) getRecord(c *gin.Context) {
	rec, err := s.store.GetAssistRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	s.success(c, http.StatusOK, "", rec)
}

func (s *Server) updateRecord(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	existing, err := s.store.GetAssistRecord(ctx, id)
	if err != nil {
		s.storeError(c, err)
		return
	}

	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	rec, err := req.toRecord()
	if err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	// eligibility is derived as of the original submission
	rec.ID = existing.ID
	rec.Timestamp = existing.Timestamp
	rec.UserID = existing.UserID
	eligibility.Apply(&rec, existing.Timestamp)

	if err := s.store.UpdateAssistRecord(ctx, &rec); err != nil {
		s.audit(c, id, actionUpdated, err)
		s.storeError(c, err)
		return
	}
	s.audit(c, id, actionUpdated, nil)
	s.recordEvent(c, events.SubjectRecordUpdated, &rec)
	if s.metrics != nil {
		s.metrics.RecordChanged(actionUpdated)
	}
	s.success(c, http.StatusOK, "record updated", rec)
}

func (s *Server) deleteRecord(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	rec, err := s.store.GetAssistRecord(ctx, id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if err := s.store.DeleteAssistRecord(ctx, id); err != nil {
		s.storeError(c, err)
		return
	}
	s.audit(c, id, actionDeleted, nil)
	s.recordEvent(c, events.SubjectRecordDeleted, rec)
	if s.metrics != nil {
		s.metrics.RecordChanged(actionDeleted)
	}
	s.success(c, http.StatusOK, "record deleted", nil)
}

// tableRecords lists records after search and sort query parameters
func (s *Server) tableRecords(c *gin.Context) ([]*models.AssistRecord, bool) {
	all, err := s.store.ListAssistRecords(c.Request.Context(), 0)
	if err != nil {
		s.storeError(c, err)
		return nil, false
	}

	values := make([]models.AssistRecord, len(all))
	for i, r := range all {
		values[i] = *r
	}
	values = records.Search(values, c.Query("search"))

	if field := c.Query("sort"); field != "" {
		values, err = records.Sort(values, records.SortField(field), records.Direction(c.Query("direction")))
		if err != nil {
			s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return nil, false
		}
	}

	out := make([]*models.AssistRecord, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return out, true
}

func (s *Server) listRecords(c *gin.Context) {
	recs, ok := s.tableRecords(c)
	if !ok {
		return
	}
	if l := c.Query("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a non-negative number")
			return
		}
		if limit > 0 && len(recs) > limit {
			recs = recs[:limit]
		}
	}
	s.list(c, recs, len(recs))
}

func (s *Server) exportRecords(c *gin.Context) {
	recs, ok := s.tableRecords(c)
	if !ok {
		return
	}

	format := reporter.ReportFormat(c.DefaultQuery("format", "xlsx"))
	filename := reporter.DefaultFilename(format, s.now())

	switch format {
	case reporter.FormatCSV:
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		if err := reporter.WriteRecordsCSV(recs, c.Writer); err != nil {
			s.log.WithError(err).Error("failed to export records")
		}
	case reporter.FormatExcel:
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		if err := reporter.WriteRecordsExcel(recs, c.Writer); err != nil {
			s.log.WithError(err).Error("failed to export records")
		}
	default:
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "format must be csv or xlsx")
	}
}

// importRecords loads a CSV export. Every row is parsed and validated before
// the first write. Eligibility is re-derived as of each row's own timestamp
// so tier and status stay consistent.
func (s *Server) importRecords(c *gin.Context) {
	ctx := c.Request.Context()

	rows, err := records.ReadCSV(c.Request.Body)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	created := make([]*models.AssistRecord, 0, len(rows))
	for i := range rows {
		rec := &rows[i]
		if rec.Timestamp.IsZero() {
			rec.Timestamp = s.now()
		}
		eligibility.Apply(rec, rec.Timestamp)
		rec.ID = uuid.New().String()

		if err := s.store.CreateAssistRecord(ctx, rec); err != nil {
			s.importFailed(c, rec, i+1, len(rows), created, err)
			return
		}
		s.audit(c, rec.ID, actionImported, nil)
		s.recordEvent(c, events.SubjectRecordCreated, rec)
		if s.metrics != nil {
			s.metrics.RecordChanged(actionImported)
		}
		created = append(created, rec)
	}

	s.log.WithField("count", len(created)).Info("ASSIST records imported")
	s.list(c, created, len(created))
}

// importFailed reports a batch that stopped part way. Rows before the failing
// one stay saved, so the response carries them and their count.
func (s *Server) importFailed(c *gin.Context, rec *models.AssistRecord, row, total int, created []*models.AssistRecord, cause error) {
	err := fmt.Errorf("row %d: %w", row, cause)
	s.audit(c, rec.ID, actionImported, err)
	s.log.WithError(err).WithFields(logrus.Fields{
		"saved": len(created),
		"total": total,
	}).Error("ASSIST import stopped")

	count := len(created)
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
		Status: statusError,
		Error: &Error{
			Code:    "IMPORT_INCOMPLETE",
			Message: fmt.Sprintf("import stopped at row %d; %d of %d records were saved", row, count, total),
		},
		Data:      created,
		Count:     &count,
		Timestamp: s.now(),
	})
}

func (s *Server) auditLog(c *gin.Context) {
	entries, err := s.store.GetAuditLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	s.list(c, entries, len(entries))
}

func (s *Server) certificate(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	rec, err := s.store.GetAssistRecord(ctx, id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if rec.Eligibility == models.StatusNotEligible {
		s.fail(c, http.StatusUnprocessableEntity, "NOT_ELIGIBLE", "vehicle is not eligible for ASSIST")
		return
	}

	now := s.now()
	policy, err := reporter.NewPolicy(ctx, rec, s.invoices, now)
	if err != nil {
		s.audit(c, id, actionCertificate, err)
		s.log.WithError(err).Error("failed to allocate invoice number")
		s.fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "could not allocate invoice number")
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="`+reporter.PolicyFilename(rec.RegistrationNo, now)+`"`)
	if err := reporter.WritePolicyPDF(rec, policy, s.policy, c.Writer); err != nil {
		s.audit(c, id, actionCertificate, err)
		s.log.WithError(err).Error("failed to render policy certificate")
		return
	}

	s.audit(c, id, actionCertificate, nil)
	s.publish(ctx, events.SubjectCertificateIssued, events.CertificateEvent{
		RecordID:          id,
		InvoiceNumber:     policy.InvoiceNumber,
		CertificateNumber: policy.CertificateNumber,
		At:                now,
	})
	if s.metrics != nil {
		s.metrics.CertificateIssued()
	}
}
