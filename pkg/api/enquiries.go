package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opscart/assist-advisor/pkg/events"
	"github.com/opscart/assist-advisor/pkg/models"
)

type enquiryRequest struct {
	CustomerName   string `json:"customerName" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"required"`
	VehicleModel   string `json:"vehicleModel" binding:"required"`
	RegistrationNo string `json:"registrationNo" binding:"required"`
	ServiceType    string `json:"serviceType" binding:"required"`
	Description    string `json:"description"`
	WorkshopName   string `json:"workshopName"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) enquiryEvent(c *gin.Context, subject string, e *models.Enquiry) {
	s.publish(c.Request.Context(), subject, events.EnquiryEvent{
		EnquiryID:      e.ID,
		RegistrationNo: e.RegistrationNo,
		ServiceType:    e.ServiceType,
		Status:         e.Status,
		Workshop:       e.WorkshopName,
		At:             s.now(),
	})
}

// createEnquiry opens a pending enquiry. The workshop falls back to the
// caller's X-Workshop header, then to the default workshop.
func (s *Server) createEnquiry(c *gin.Context) {
	var req enquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	service, ok := models.EnquiryServiceType(req.ServiceType)
	if !ok {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown serviceType: "+req.ServiceType)
		return
	}

	workshop := strings.TrimSpace(req.WorkshopName)
	if workshop == "" {
		workshop = c.GetHeader("X-Workshop")
	}
	if workshop == "" {
		workshop = models.DefaultWorkshop
	}

	e := &models.Enquiry{
		CustomerName:   strings.TrimSpace(req.CustomerName),
		Email:          req.Email,
		Phone:          strings.TrimSpace(req.Phone),
		VehicleModel:   strings.TrimSpace(req.VehicleModel),
		RegistrationNo: models.NormalizeRegistration(req.RegistrationNo),
		ServiceType:    service,
		Description:    req.Description,
		Status:         models.EnquiryPending,
		WorkshopName:   workshop,
		CreatedBy:      c.GetHeader("X-User"),
		CreatedAt:      s.now(),
	}
	if err := s.store.CreateEnquiry(c.Request.Context(), e); err != nil {
		s.storeError(c, err)
		return
	}

	s.enquiryEvent(c, events.SubjectEnquiryCreated, e)
	if s.metrics != nil {
		s.metrics.EnquiryChanged(e.Status)
	}
	s.log.WithField("enquiry_id", e.ID).Info("enquiry submitted")
	s.success(c, http.StatusCreated, "enquiry submitted", e)
}

// listEnquiries filters by status and createdBy, newest first
func (s *Server) listEnquiries(c *gin.Context) {
	filter := models.EnquiryFilter{
		Status:    c.Query("status"),
		CreatedBy: c.Query("createdBy"),
	}
	if filter.Status != "" && !models.ValidEnquiryStatus(filter.Status) {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown status: "+filter.Status)
		return
	}
	if l := c.Query("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a non-negative number")
			return
		}
		filter.Limit = limit
	}

	out, err := s.store.ListEnquiries(c.Request.Context(), filter)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if out == nil {
		out = []*models.Enquiry{}
	}
	s.list(c, out, len(out))
}

func (s *Server) getEnquiry(c *gin.Context) {
	e, err := s.store.GetEnquiry(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	s.success(c, http.StatusOK, "", e)
}

func (s *Server) updateEnquiryStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if !models.ValidEnquiryStatus(req.Status) {
		s.fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown status: "+req.Status)
		return
	}

	e, err := s.store.UpdateEnquiryStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		s.storeError(c, err)
		return
	}

	s.enquiryEvent(c, events.SubjectEnquiryUpdated, e)
	if s.metrics != nil {
		s.metrics.EnquiryChanged(e.Status)
	}
	s.success(c, http.StatusOK, "enquiry updated", e)
}

func (s *Server) deleteEnquiry(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	e, err := s.store.GetEnquiry(ctx, id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if err := s.store.DeleteEnquiry(ctx, id); err != nil {
		s.storeError(c, err)
		return
	}

	s.enquiryEvent(c, events.SubjectEnquiryDeleted, e)
	s.success(c, http.StatusOK, "enquiry deleted", nil)
}
