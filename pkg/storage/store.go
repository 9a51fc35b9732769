package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opscart/assist-advisor/pkg/models"
)

// ErrNotFound is returned when a record lookup matches nothing
var ErrNotFound = errors.New("not found")

// Store defines the interface for persistent storage
type Store interface {
	// ASSIST intake records
	CreateAssistRecord(ctx context.Context, rec *models.AssistRecord) error
	GetAssistRecord(ctx context.Context, id string) (*models.AssistRecord, error)
	ListAssistRecords(ctx context.Context, limit int) ([]*models.AssistRecord, error)
	UpdateAssistRecord(ctx context.Context, rec *models.AssistRecord) error
	DeleteAssistRecord(ctx context.Context, id string) error

	// Service history. An empty identity lists every vehicle.
	SaveServiceRecord(ctx context.Context, rec *models.ServiceRecord) error
	ListServiceRecords(ctx context.Context, vehicle models.VehicleIdentity) ([]models.ServiceRecord, error)

	SaveRecommendation(ctx context.Context, rec *models.ServiceRecommendation) error
	ListRecommendations(ctx context.Context, vehicle models.VehicleIdentity, limit int) ([]*models.ServiceRecommendation, error)

	// Service enquiries. Listings are newest first.
	CreateEnquiry(ctx context.Context, e *models.Enquiry) error
	GetEnquiry(ctx context.Context, id string) (*models.Enquiry, error)
	ListEnquiries(ctx context.Context, filter models.EnquiryFilter) ([]*models.Enquiry, error)
	UpdateEnquiryStatus(ctx context.Context, id, status string) (*models.Enquiry, error)
	DeleteEnquiry(ctx context.Context, id string) error

	LogAction(ctx context.Context, entry *models.AuditEntry) error
	GetAuditLog(ctx context.Context, recordID string) ([]*models.AuditEntry, error)

	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Type     string // memory, postgres, mongo
	URL      string
	Database string
	Timeout  time.Duration
}

// New opens the store selected by cfg.Type
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		return NewPostgresStore(ctx, cfg.URL)
	case "mongo":
		return NewMongoStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Type)
	}
}

func matches(r models.ServiceRecord, vehicle models.VehicleIdentity) bool {
	return vehicle == (models.VehicleIdentity{}) || r.Identity() == vehicle
}
