// Package api serves the ASSIST advisor over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opscart/assist-advisor/pkg/assistant"
	"github.com/opscart/assist-advisor/pkg/events"
	"github.com/opscart/assist-advisor/pkg/metrics"
	"github.com/opscart/assist-advisor/pkg/pricing"
	"github.com/opscart/assist-advisor/pkg/recommender"
	"github.com/opscart/assist-advisor/pkg/reporter"
	"github.com/opscart/assist-advisor/pkg/sequence"
	"github.com/opscart/assist-advisor/pkg/storage"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Options wires the server's collaborators. Store is required; the rest
// fall back to in-process defaults.
type Options struct {
	Store     storage.Store
	Estimator *pricing.Estimator
	Engine    *recommender.Engine
	Assistant *assistant.Assistant
	Invoices  sequence.Source
	Events    events.Publisher
	Metrics   *metrics.Metrics
	Logger    logrus.FieldLogger
	Policy    reporter.PolicyOptions
	Clock     func() time.Time

	ServiceName string
	CORSOrigin  string
	RateLimit   float64 // requests per second, 0 disables
	RateBurst   int
}

type Server struct {
	store     storage.Store
	estimator *pricing.Estimator
	engine    *recommender.Engine
	assistant *assistant.Assistant
	invoices  sequence.Source
	events    events.Publisher
	metrics   *metrics.Metrics
	log       logrus.FieldLogger
	policy    reporter.PolicyOptions
	now       func() time.Time

	router *gin.Engine
	name   string
}

func New(opts Options) *Server {
	s := &Server{
		store:     opts.Store,
		estimator: opts.Estimator,
		engine:    opts.Engine,
		assistant: opts.Assistant,
		invoices:  opts.Invoices,
		events:    opts.Events,
		metrics:   opts.Metrics,
		log:       opts.Logger,
		policy:    opts.Policy,
		now:       opts.Clock,
		name:      opts.ServiceName,
	}

	if s.estimator == nil {
		s.estimator = pricing.NewEstimator(nil)
	}
	if s.engine == nil {
		s.engine = recommender.New(recommender.WithEstimator(s.estimator))
	}
	if s.assistant == nil {
		s.assistant = assistant.New()
	}
	if s.invoices == nil {
		s.invoices = sequence.NewMemory(0)
	}
	if s.events == nil {
		s.events = events.Discard{}
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.policy.Brand == "" {
		s.policy = reporter.DefaultPolicyOptions()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.name == "" {
		s.name = "assist-advisor"
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog(), cors(opts.CORSOrigin))
	if opts.RateLimit > 0 {
		r.Use(s.rateLimit(rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst)))
	}
	s.routes(r)
	s.router = r

	return s
}

func (s *Server) routes(r *gin.Engine) {
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	api.GET("/health", s.health)

	api.POST("/recommendations", s.recommend)
	api.GET("/recommendations", s.recommendationHistory)
	api.POST("/schedule", s.schedule)
	api.POST("/schedule/complete", s.completeSchedule)
	api.GET("/report", s.report)
	api.GET("/estimate", s.estimate)
	api.POST("/eligibility", s.checkEligibility)
	api.POST("/chat", s.chat)

	api.GET("/service-records", s.listServiceRecords)
	api.POST("/service-records", s.createServiceRecord)
	api.GET("/alerts", s.alerts)
	api.GET("/dashboard", s.dashboard)

	enq := api.Group("/enquiries")
	enq.GET("", s.listEnquiries)
	enq.POST("", s.createEnquiry)
	enq.GET("/:id", s.getEnquiry)
	enq.PUT("/:id/status", s.updateEnquiryStatus)
	enq.DELETE("/:id", s.deleteEnquiry)

	rec := api.Group("/records")
	rec.GET("", s.listRecords)
	rec.POST("", s.createRecord)
	rec.GET("/export", s.exportRecords)
	rec.POST("/import", s.importRecords)
	rec.GET("/:id", s.getRecord)
	rec.PUT("/:id", s.updateRecord)
	rec.DELETE("/:id", s.deleteRecord)
	rec.GET("/:id/audit", s.auditLog)
	rec.GET("/:id/certificate", s.certificate)
}

// Handler returns the router wrapped in OpenTelemetry instrumentation
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, s.name)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("API listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.log.WithError(err).Warn("health check failed")
		s.fail(c, http.StatusServiceUnavailable, "UNAVAILABLE", "storage unreachable")
		return
	}
	s.success(c, http.StatusOK, "ok", gin.H{"service": s.name})
}

// publish emits an event without failing the request
func (s *Server) publish(ctx context.Context, subject string, v any) {
	if err := s.events.Publish(ctx, subject, v); err != nil {
		s.log.WithError(err).WithField("subject", subject).Warn("failed to publish event")
	}
}
