// Package events publishes domain events about ASSIST records over NATS.
// Trace context travels in message headers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// Subjects
const (
	SubjectRecordCreated     = "assist.record.created"
	SubjectRecordUpdated     = "assist.record.updated"
	SubjectRecordDeleted     = "assist.record.deleted"
	SubjectCertificateIssued = "assist.certificate.issued"
	SubjectRecommendations   = "assist.recommendations.generated"
	SubjectEnquiryCreated    = "assist.enquiry.created"
	SubjectEnquiryUpdated    = "assist.enquiry.updated"
	SubjectEnquiryDeleted    = "assist.enquiry.deleted"

	// SubjectAll matches every subject above
	SubjectAll = "assist.>"
)

// RecordEvent announces a change to an intake record
type RecordEvent struct {
	RecordID       string    `json:"recordId"`
	RegistrationNo string    `json:"registrationNo"`
	Model          string    `json:"model"`
	Assist         string    `json:"assist"`
	At             time.Time `json:"at"`
}

// CertificateEvent announces an issued policy certificate
type CertificateEvent struct {
	RecordID          string    `json:"recordId"`
	InvoiceNumber     string    `json:"invoiceNumber"`
	CertificateNumber string    `json:"certificateNumber"`
	At                time.Time `json:"at"`
}

// RecommendationsEvent summarizes a recommendation run for one vehicle
type RecommendationsEvent struct {
	Vehicle string    `json:"vehicle"`
	Total   int       `json:"total"`
	Urgent  int       `json:"urgent"`
	At      time.Time `json:"at"`
}

// EnquiryEvent announces a new service enquiry or a status change
type EnquiryEvent struct {
	EnquiryID      string    `json:"enquiryId"`
	RegistrationNo string    `json:"registrationNo"`
	ServiceType    string    `json:"serviceType"`
	Status         string    `json:"status"`
	Workshop       string    `json:"workshop"`
	At             time.Time `json:"at"`
}

// Publisher emits events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
	Close()
}

// headerCarrier adapts nats.Msg headers to a propagation.TextMapCarrier
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// NATSPublisher publishes JSON events on a NATS connection
type NATSPublisher struct {
	nc *nats.Conn
}

// Connect dials the NATS server at url
func Connect(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("assist-advisor"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc}, nil
}

// NewNATSPublisher wraps an existing connection
func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

// Conn exposes the underlying connection for subscribers
func (p *NATSPublisher) Conn() *nats.Conn {
	return p.nc
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", subject, err)
	}

	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))

	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

// Close drains pending messages before closing the connection
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}

// Subscribe decodes JSON events of type T on subject. Malformed messages
// are dropped.
func Subscribe[T any](nc *nats.Conn, subject string, handler func(ctx context.Context, subject string, v T)) (*nats.Subscription, error) {
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		var v T
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			return
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*headerCarrier)(msg))
		handler(ctx, msg.Subject, v)
	})
}

// Discard drops every event. Used when no broker is configured.
type Discard struct{}

func (Discard) Publish(context.Context, string, any) error { return nil }
func (Discard) Close()                                     {}
