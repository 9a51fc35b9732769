package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opscart/assist-advisor/pkg/catalog"
	"github.com/opscart/assist-advisor/pkg/converter"
	"github.com/opscart/assist-advisor/pkg/eligibility"
	"github.com/opscart/assist-advisor/pkg/events"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/recommender"
	"github.com/opscart/assist-advisor/pkg/reporter"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type vehicleRequest struct {
	VehicleModel   string `json:"vehicleModel" binding:"required"`
	RegistrationNo string `json:"registrationNo" binding:"required"`
	CurrentMileage int    `json:"currentMileage"`
	Save           bool   `json:"save"`
}

func (v vehicleRequest) identity() models.VehicleIdentity {
	return models.VehicleIdentity{
		VehicleModel:   strings.TrimSpace(v.VehicleModel),
		RegistrationNo: models.NormalizeRegistration(v.RegistrationNo),
	}
}

// vehicleQuery reads an optional vehicle filter from the query string
func vehicleQuery(c *gin.Context) models.VehicleIdentity {
	return vehicleRequest{
		VehicleModel:   c.Query("vehicleModel"),
		RegistrationNo: c.Query("registrationNo"),
	}.identity()
}

// recommendFor loads the vehicle's history and runs the engine
func (s *Server) recommendFor(c *gin.Context, req vehicleRequest) ([]models.ServiceRecommendation, []models.ServiceRecord, bool) {
	vehicle := req.identity()
	history, err := s.store.ListServiceRecords(c.Request.Context(), vehicle)
	if err != nil {
		s.storeError(c, err)
		return nil, nil, false
	}
	recs := s.engine.Recommend(history, vehicle.VehicleModel, vehicle.RegistrationNo, req.CurrentMileage, s.now())
	return recs, history, true
}

func (s *Server) recommend(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	recs, _, ok := s.recommendFor(c, req)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if req.Save {
		for i := range recs {
			if err := s.store.SaveRecommendation(ctx, &recs[i]); err != nil {
				s.storeError(c, err)
				return
			}
		}
	}

	summary := recommender.Summarize(recs)
	if s.metrics != nil {
		for _, r := range recs {
			s.metrics.Recommended(string(r.Priority))
		}
	}
	s.publish(ctx, events.SubjectRecommendations, events.RecommendationsEvent{
		Vehicle: req.identity().Key(),
		Total:   summary.Total,
		Urgent:  summary.ByPriority[models.PriorityUrgent],
		At:      s.now(),
	})

	s.success(c, http.StatusOK, "", gin.H{
		"recommendations": recs,
		"summary":         summary,
	})
}

func (s *Server) recommendationHistory(c *gin.Context) {
	vehicle := vehicleQuery(c)
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a number")
		return
	}

	recs, err := s.store.ListRecommendations(c.Request.Context(), vehicle, limit)
	if err != nil {
		s.storeError(c, err)
		return
	}
	s.list(c, recs, len(recs))
}

func (s *Server) schedule(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	recs, _, ok := s.recommendFor(c, req)
	if !ok {
		return
	}
	schedules := converter.ToSchedule(recs, s.now())
	s.list(c, schedules, len(schedules))
}

type completeRequest struct {
	Schedule models.MaintenanceSchedule `json:"schedule"`
	Mileage  int                        `json:"mileage"`
}

func (s *Server) completeSchedule(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if req.Schedule.Status != models.ScheduleScheduled {
		s.fail(c, http.StatusConflict, "INVALID_STATE", "only scheduled services can be completed")
		return
	}
	if req.Mileage < 0 {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "mileage must be >= 0")
		return
	}
	req.Schedule.ServiceType = catalog.Canonical(req.Schedule.ServiceType)
	req.Schedule.RegistrationNo = models.NormalizeRegistration(req.Schedule.RegistrationNo)

	record := converter.CompleteSchedule(&req.Schedule, req.Mileage, s.now())
	if err := s.store.SaveServiceRecord(c.Request.Context(), &record); err != nil {
		s.storeError(c, err)
		return
	}

	s.success(c, http.StatusCreated, "service completed", gin.H{
		"schedule":      req.Schedule,
		"serviceRecord": record,
	})
}

func (s *Server) report(c *gin.Context) {
	req := vehicleRequest{
		VehicleModel:   c.Query("vehicleModel"),
		RegistrationNo: c.Query("registrationNo"),
	}
	if req.VehicleModel == "" || req.RegistrationNo == "" {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "vehicleModel and registrationNo are required")
		return
	}
	if m := c.Query("currentMileage"); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil {
			s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "currentMileage must be a number")
			return
		}
		req.CurrentMileage = n
	}

	recs, history, ok := s.recommendFor(c, req)
	if !ok {
		return
	}
	rep := reporter.Generate(recs, history, req.identity(), req.CurrentMileage, s.now())

	switch reporter.ReportFormat(c.DefaultQuery("format", "html")) {
	case reporter.FormatHTML:
		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := reporter.GenerateHTML(rep, c.Writer); err != nil {
			s.log.WithError(err).Error("failed to render report")
		}
	case reporter.FormatCSV:
		c.Header("Content-Type", "text/csv")
		if err := reporter.GenerateCSV(rep, c.Writer); err != nil {
			s.log.WithError(err).Error("failed to render report")
		}
	default:
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "format must be html or csv")
	}
}

func (s *Server) estimate(c *gin.Context) {
	service := c.Query("service")
	model := c.Query("vehicleModel")
	if service == "" || model == "" {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "service and vehicleModel are required")
		return
	}
	s.success(c, http.StatusOK, "", s.estimator.Estimate(service, model))
}

type eligibilityRequest struct {
	VehicleSaleDate string            `json:"vehicleSaleDate" binding:"required"`
	Assist          models.AssistTier `json:"assist"`
}

func (s *Server) checkEligibility(c *gin.Context) {
	var req eligibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	sale, err := time.Parse(dateLayout, req.VehicleSaleDate)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "vehicleSaleDate must be YYYY-MM-DD")
		return
	}

	result := eligibility.Compute(sale, s.now())
	if s.metrics != nil {
		s.metrics.EligibilityChecked(result.Eligibility)
	}
	s.success(c, http.StatusOK, "", gin.H{
		"ageYears":    result.AgeYears,
		"eligibility": result.Eligibility,
		"assist":      eligibility.ResolveTier(req.Assist, result.Eligibility),
	})
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rule, response := s.assistant.Match(req.Message)
	if s.metrics != nil {
		s.metrics.ChatReply(rule)
	}
	s.success(c, http.StatusOK, "", gin.H{"response": response, "rule": rule})
}

type serviceRecordRequest struct {
	VehicleModel   string          `json:"vehicleModel" binding:"required"`
	RegistrationNo string          `json:"registrationNo" binding:"required"`
	CustomerName   string          `json:"customerName"`
	ServiceType    string          `json:"serviceType" binding:"required"`
	ServiceDate    string          `json:"serviceDate" binding:"required"`
	Mileage        int             `json:"mileage"`
	Description    string          `json:"description"`
	Cost           decimal.Decimal `json:"cost"`
	WorkshopName   string          `json:"workshopName"`
}

func (s *Server) createServiceRecord(c *gin.Context) {
	var req serviceRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	date, err := time.Parse(dateLayout, req.ServiceDate)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "serviceDate must be YYYY-MM-DD")
		return
	}
	if req.Mileage < 0 {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "mileage must be >= 0")
		return
	}

	rec := models.ServiceRecord{
		VehicleModel:   strings.TrimSpace(req.VehicleModel),
		RegistrationNo: models.NormalizeRegistration(req.RegistrationNo),
		CustomerName:   req.CustomerName,
		ServiceType:    catalog.Canonical(req.ServiceType),
		ServiceDate:    date,
		Mileage:        req.Mileage,
		Description:    req.Description,
		Cost:           req.Cost,
		WorkshopName:   req.WorkshopName,
	}
	if err := s.store.SaveServiceRecord(c.Request.Context(), &rec); err != nil {
		s.storeError(c, err)
		return
	}
	s.success(c, http.StatusCreated, "service record saved", rec)
}

func (s *Server) listServiceRecords(c *gin.Context) {
	vehicle := vehicleQuery(c)
	recs, err := s.store.ListServiceRecords(c.Request.Context(), vehicle)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if recs == nil {
		recs = []models.ServiceRecord{}
	}
	s.list(c, recs, len(recs))
}

func (s *Server) alerts(c *gin.Context) {
	history, err := s.store.ListServiceRecords(c.Request.Context(), models.VehicleIdentity{})
	if err != nil {
		s.storeError(c, err)
		return
	}
	alerts := recommender.UrgentNeeds(history, s.now())
	if alerts == nil {
		alerts = []string{}
	}
	s.list(c, alerts, len(alerts))
}

func (s *Server) dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	recs, err := s.store.ListAssistRecords(ctx, 0)
	if err != nil {
		s.storeError(c, err)
		return
	}
	history, err := s.store.ListServiceRecords(ctx, models.VehicleIdentity{})
	if err != nil {
		s.storeError(c, err)
		return
	}
	enquiries, err := s.store.ListEnquiries(ctx, models.EnquiryFilter{})
	if err != nil {
		s.storeError(c, err)
		return
	}

	dash := reporter.Stats(recs, history, s.now())
	dash.OpenEnquiries = models.CountOpen(enquiries)
	s.success(c, http.StatusOK, "", dash)
}
