// Package metrics exposes ASSIST counters in the Prometheus format, either
// scraped over HTTP or pushed to a Pushgateway after a CLI run.
package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metrics owns a private registry so tests and multiple servers in one
// process never collide on the default one.
type Metrics struct {
	reg *prometheus.Registry

	records         *prometheus.CounterVec // assist_records_total{action}
	eligibility     *prometheus.CounterVec // assist_eligibility_checks_total{status}
	recommendations *prometheus.CounterVec // assist_recommendations_total{priority}
	certificates    prometheus.Counter     // assist_certificates_issued_total
	chat            *prometheus.CounterVec // assist_chat_messages_total{rule}
	enquiries       *prometheus.CounterVec // assist_enquiries_total{status}
	requests        *prometheus.HistogramVec
}

// New registers every ASSIST collector. Process and Go runtime collectors
// are included when withRuntime is set.
func New(withRuntime bool) (*Metrics, error) {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_records_total",
			Help: "ASSIST intake record changes by action.",
		}, []string{"action"}),
		eligibility: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_eligibility_checks_total",
			Help: "Eligibility checks by resulting status.",
		}, []string{"status"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_recommendations_total",
			Help: "Service recommendations produced, by priority.",
		}, []string{"priority"}),
		certificates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assist_certificates_issued_total",
			Help: "Policy certificates issued.",
		}),
		chat: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_chat_messages_total",
			Help: "Assistant replies by matched rule.",
		}, []string{"rule"}),
		enquiries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_enquiries_total",
			Help: "Service enquiries entering each status.",
		}, []string{"status"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assist_http_request_duration_seconds",
			Help:    "API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	cs := []prometheus.Collector{m.records, m.eligibility, m.recommendations, m.certificates, m.chat, m.enquiries, m.requests}
	if withRuntime {
		cs = append(cs, collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	for _, c := range cs {
		if err := m.reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return m, nil
}

func (m *Metrics) RecordChanged(action string) {
	m.records.WithLabelValues(action).Inc()
}

func (m *Metrics) EligibilityChecked(status string) {
	m.eligibility.WithLabelValues(status).Inc()
}

func (m *Metrics) Recommended(priority string) {
	m.recommendations.WithLabelValues(priority).Inc()
}

func (m *Metrics) CertificateIssued() {
	m.certificates.Inc()
}

func (m *Metrics) ChatReply(rule string) {
	if rule == "" {
		rule = "fallback"
	}
	m.chat.WithLabelValues(rule).Inc()
}

func (m *Metrics) EnquiryChanged(status string) {
	m.enquiries.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	m.requests.WithLabelValues(method, route, fmt.Sprintf("%d", status)).Observe(seconds)
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// WriteText dumps all metrics in the text exposition format
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	return writeFamilies(w, families)
}

func writeFamilies(w io.Writer, families []*dto.MetricFamily) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Push sends the registry to a Pushgateway under the given job name
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	if gatewayURL == "" {
		return fmt.Errorf("pushgateway URL is required")
	}
	if job == "" {
		job = "assist"
	}
	if err := push.New(gatewayURL, job).Gatherer(m.reg).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
