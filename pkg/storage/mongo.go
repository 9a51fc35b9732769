package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opscart/assist-advisor/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	assistCollection         = "assist_records"
	serviceCollection        = "service_records"
	recommendationCollection = "recommendations"
	enquiryCollection        = "enquiries"
	auditCollection          = "audit_log"

	defaultMongoDatabase = "assist"
	defaultMongoTimeout  = 10 * time.Second
)

// MongoStore implements Store on MongoDB. Money fields are stored as
// Decimal128 through the registry built by decimalRegistry.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, cfg Config) (*MongoStore, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultMongoTimeout
	}
	database := cfg.Database
	if database == "" {
		database = defaultMongoDatabase
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URL).
		SetRegistry(decimalRegistry()).
		SetConnectTimeout(timeout)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	store := &MongoStore{client: client, db: client.Database(database)}
	if err := store.ensureIndexes(connectCtx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return store, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		assistCollection: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "registration_no", Value: 1}}},
		},
		serviceCollection: {
			{Keys: bson.D{{Key: "vehicle_model", Value: 1}, {Key: "registration_no", Value: 1}}},
		},
		recommendationCollection: {
			{Keys: bson.D{{Key: "vehicle_model", Value: 1}, {Key: "registration_no", Value: 1}}},
		},
		enquiryCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		auditCollection: {
			{Keys: bson.D{{Key: "record_id", Value: 1}, {Key: "executed_at", Value: -1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func vehicleFilter(vehicle models.VehicleIdentity) bson.M {
	if vehicle == (models.VehicleIdentity{}) {
		return bson.M{}
	}
	return bson.M{"vehicle_model": vehicle.VehicleModel, "registration_no": vehicle.RegistrationNo}
}

func findOptions(sort bson.D, limit int) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

func (s *MongoStore) CreateAssistRecord(ctx context.Context, rec *models.AssistRecord) error {
	now := time.Now()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = now
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if _, err := s.db.Collection(assistCollection).InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to create assist record: %w", err)
	}
	return nil
}

func (s *MongoStore) GetAssistRecord(ctx context.Context, id string) (*models.AssistRecord, error) {
	var rec models.AssistRecord
	err := s.db.Collection(assistCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("assist record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assist record: %w", err)
	}
	return &rec, nil
}

func (s *MongoStore) ListAssistRecords(ctx context.Context, limit int) ([]*models.AssistRecord, error) {
	sort := bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: 1}}
	cursor, err := s.db.Collection(assistCollection).Find(ctx, bson.M{}, findOptions(sort, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list assist records: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*models.AssistRecord
	for cursor.Next(ctx) {
		var rec models.AssistRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode assist record: %w", err)
		}
		out = append(out, &rec)
	}

	return out, cursor.Err()
}

func (s *MongoStore) UpdateAssistRecord(ctx context.Context, rec *models.AssistRecord) error {
	coll := s.db.Collection(assistCollection)

	var existing models.AssistRecord
	err := coll.FindOne(ctx, bson.M{"_id": rec.ID}).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("assist record %s: %w", rec.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load assist record: %w", err)
	}

	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now()

	if _, err := coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec); err != nil {
		return fmt.Errorf("failed to update assist record: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteAssistRecord(ctx context.Context, id string) error {
	result, err := s.db.Collection(assistCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete assist record: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("assist record %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) SaveServiceRecord(ctx context.Context, rec *models.ServiceRecord) error {
	now := time.Now()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if _, err := s.db.Collection(serviceCollection).InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to save service record: %w", err)
	}
	return nil
}

func (s *MongoStore) ListServiceRecords(ctx context.Context, vehicle models.VehicleIdentity) ([]models.ServiceRecord, error) {
	// natural order is insertion order for a collection without deletes
	cursor, err := s.db.Collection(serviceCollection).Find(ctx, vehicleFilter(vehicle),
		options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list service records: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.ServiceRecord
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode service records: %w", err)
	}
	return out, nil
}

func (s *MongoStore) SaveRecommendation(ctx context.Context, rec *models.ServiceRecommendation) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	if _, err := s.db.Collection(recommendationCollection).InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to save recommendation: %w", err)
	}
	return nil
}

func (s *MongoStore) ListRecommendations(ctx context.Context, vehicle models.VehicleIdentity, limit int) ([]*models.ServiceRecommendation, error) {
	sort := bson.D{{Key: "$natural", Value: -1}}
	cursor, err := s.db.Collection(recommendationCollection).Find(ctx, vehicleFilter(vehicle), findOptions(sort, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*models.ServiceRecommendation
	for cursor.Next(ctx) {
		var rec models.ServiceRecommendation
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode recommendation: %w", err)
		}
		out = append(out, &rec)
	}

	return out, cursor.Err()
}

func (s *MongoStore) CreateEnquiry(ctx context.Context, e *models.Enquiry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.UpdatedAt = e.CreatedAt

	if _, err := s.db.Collection(enquiryCollection).InsertOne(ctx, e); err != nil {
		return fmt.Errorf("failed to create enquiry: %w", err)
	}
	return nil
}

func (s *MongoStore) GetEnquiry(ctx context.Context, id string) (*models.Enquiry, error) {
	var e models.Enquiry
	err := s.db.Collection(enquiryCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("enquiry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enquiry: %w", err)
	}
	return &e, nil
}

func enquiryFilter(filter models.EnquiryFilter) bson.M {
	m := bson.M{}
	if filter.Status != "" {
		m["status"] = filter.Status
	}
	if filter.CreatedBy != "" {
		m["created_by"] = filter.CreatedBy
	}
	return m
}

func (s *MongoStore) ListEnquiries(ctx context.Context, filter models.EnquiryFilter) ([]*models.Enquiry, error) {
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	cursor, err := s.db.Collection(enquiryCollection).Find(ctx, enquiryFilter(filter), findOptions(sort, filter.Limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list enquiries: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*models.Enquiry
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode enquiries: %w", err)
	}
	return out, nil
}

func (s *MongoStore) UpdateEnquiryStatus(ctx context.Context, id, status string) (*models.Enquiry, error) {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var e models.Enquiry
	err := s.db.Collection(enquiryCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("enquiry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update enquiry: %w", err)
	}
	return &e, nil
}

func (s *MongoStore) DeleteEnquiry(ctx context.Context, id string) error {
	result, err := s.db.Collection(enquiryCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete enquiry: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("enquiry %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) LogAction(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now()
	}

	if _, err := s.db.Collection(auditCollection).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to log action: %w", err)
	}
	return nil
}

func (s *MongoStore) GetAuditLog(ctx context.Context, recordID string) ([]*models.AuditEntry, error) {
	cursor, err := s.db.Collection(auditCollection).Find(ctx, bson.M{"record_id": recordID},
		options.Find().SetSort(bson.D{{Key: "executed_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*models.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit log: %w", err)
	}
	return entries, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
