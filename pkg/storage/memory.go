package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opscart/assist-advisor/pkg/models"
)

// MemoryStore keeps everything in process memory. It backs the CLI and
// tests, and is safe for concurrent use.
type MemoryStore struct {
	mu              sync.RWMutex
	assist          map[string]models.AssistRecord
	services        []models.ServiceRecord
	recommendations []models.ServiceRecommendation
	enquiries       map[string]models.Enquiry
	audit           []models.AuditEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assist:    make(map[string]models.AssistRecord),
		enquiries: make(map[string]models.Enquiry),
	}
}

func (s *MemoryStore) CreateAssistRecord(ctx context.Context, rec *models.AssistRecord) error {
	now := time.Now()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = now
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assist[rec.ID]; exists {
		return fmt.Errorf("assist record %s already exists", rec.ID)
	}
	s.assist[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) GetAssistRecord(ctx context.Context, id string) (*models.AssistRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.assist[id]
	if !ok {
		return nil, fmt.Errorf("assist record %s: %w", id, ErrNotFound)
	}
	return &rec, nil
}

// ListAssistRecords returns records newest first. A limit of 0 or less
// returns everything.
func (s *MemoryStore) ListAssistRecords(ctx context.Context, limit int) ([]*models.AssistRecord, error) {
	s.mu.RLock()
	out := make([]*models.AssistRecord, 0, len(s.assist))
	for _, rec := range s.assist {
		out = append(out, &rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) UpdateAssistRecord(ctx context.Context, rec *models.AssistRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.assist[rec.ID]
	if !ok {
		return fmt.Errorf("assist record %s: %w", rec.ID, ErrNotFound)
	}
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now()
	s.assist[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) DeleteAssistRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assist[id]; !ok {
		return fmt.Errorf("assist record %s: %w", id, ErrNotFound)
	}
	delete(s.assist, id)
	return nil
}

func (s *MemoryStore) SaveServiceRecord(ctx context.Context, rec *models.ServiceRecord) error {
	now := time.Now()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	s.services = append(s.services, *rec)
	return nil
}

// ListServiceRecords returns history in insertion order
func (s *MemoryStore) ListServiceRecords(ctx context.Context, vehicle models.VehicleIdentity) ([]models.ServiceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ServiceRecord
	for _, r := range s.services {
		if matches(r, vehicle) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveRecommendation(ctx context.Context, rec *models.ServiceRecommendation) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recommendations = append(s.recommendations, *rec)
	return nil
}

// ListRecommendations returns the most recently saved recommendations first
func (s *MemoryStore) ListRecommendations(ctx context.Context, vehicle models.VehicleIdentity, limit int) ([]*models.ServiceRecommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.ServiceRecommendation
	for i := len(s.recommendations) - 1; i >= 0; i-- {
		rec := s.recommendations[i]
		if vehicle != (models.VehicleIdentity{}) && (rec.VehicleModel != vehicle.VehicleModel || rec.RegistrationNo != vehicle.RegistrationNo) {
			continue
		}
		out = append(out, &rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateEnquiry(ctx context.Context, e *models.Enquiry) error {
	now := time.Now()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = e.CreatedAt

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.enquiries[e.ID]; exists {
		return fmt.Errorf("enquiry %s already exists", e.ID)
	}
	s.enquiries[e.ID] = *e
	return nil
}

func (s *MemoryStore) GetEnquiry(ctx context.Context, id string) (*models.Enquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.enquiries[id]
	if !ok {
		return nil, fmt.Errorf("enquiry %s: %w", id, ErrNotFound)
	}
	return &e, nil
}

func (s *MemoryStore) ListEnquiries(ctx context.Context, filter models.EnquiryFilter) ([]*models.Enquiry, error) {
	s.mu.RLock()
	out := make([]*models.Enquiry, 0, len(s.enquiries))
	for _, e := range s.enquiries {
		if filter.Matches(e) {
			out = append(out, &e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) UpdateEnquiryStatus(ctx context.Context, id, status string) (*models.Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enquiries[id]
	if !ok {
		return nil, fmt.Errorf("enquiry %s: %w", id, ErrNotFound)
	}
	e.Status = status
	e.UpdatedAt = time.Now()
	s.enquiries[id] = e
	return &e, nil
}

func (s *MemoryStore) DeleteEnquiry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.enquiries[id]; !ok {
		return fmt.Errorf("enquiry %s: %w", id, ErrNotFound)
	}
	delete(s.enquiries, id)
	return nil
}

func (s *MemoryStore) LogAction(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit = append(s.audit, *entry)
	return nil
}

// GetAuditLog returns entries for a record, newest first
func (s *MemoryStore) GetAuditLog(ctx context.Context, recordID string) ([]*models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.AuditEntry
	for i := len(s.audit) - 1; i >= 0; i-- {
		entry := s.audit[i]
		if entry.RecordID == recordID {
			out = append(out, &entry)
		}
	}
	return out, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}
