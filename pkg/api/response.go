package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opscart/assist-advisor/pkg/storage"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Response is the envelope every JSON endpoint returns
type Response struct {
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *Error      `json:"error,omitempty"`
	Count     *int        `json:"count,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Status:    statusSuccess,
		Message:   message,
		Data:      data,
		Timestamp: s.now(),
	})
}

func (s *Server) list(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, Response{
		Status:    statusSuccess,
		Data:      data,
		Count:     &count,
		Timestamp: s.now(),
	})
}

func (s *Server) fail(c *gin.Context, code int, errCode, message string) {
	c.AbortWithStatusJSON(code, Response{
		Status:    statusError,
		Error:     &Error{Code: errCode, Message: message},
		Timestamp: s.now(),
	})
}

// storeError maps storage failures to responses and logs the unexpected ones
func (s *Server) storeError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.fail(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	s.log.WithError(err).WithField("path", c.FullPath()).Error("storage operation failed")
	s.fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
