package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/opscart/assist-advisor/pkg/models"
)

//go:embed migrations/*.sql
var postgresFS embed.FS

// PostgresStore implements Store interface using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}

	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// DB exposes the pool so other components (the invoice sequence) can share it
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// migrate applies every embedded migration in file name order. Each file
// is idempotent, so this runs on every startup.
func (s *PostgresStore) migrate(ctx context.Context) error {
	files, err := fs.Glob(postgresFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}

	for _, name := range files {
		schema, err := postgresFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(schema)); err != nil {
			return fmt.Errorf("failed to execute %s: %w", name, err)
		}
	}

	return nil
}

const assistColumns = `
	id, timestamp, user_id,
	email_address, customer_name, customer_contact_no, customer_address, customer_gst_no,
	registered_address, dealership_gstin, sac_code, cin_number,
	registration_no, chassis_no, model, variant, fuel, transmission, vehicle_sale_date,
	workshop_name, employee_name,
	assist, eligibility, vehicle_age,
	amount_collected, payment_type, payment_proof,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssistRecord(row rowScanner) (*models.AssistRecord, error) {
	var rec models.AssistRecord
	var userID, gstNo, regAddress, gstin, sac, cin sql.NullString

	err := row.Scan(
		&rec.ID, &rec.Timestamp, &userID,
		&rec.EmailAddress, &rec.CustomerName, &rec.CustomerContactNo, &rec.CustomerAddress, &gstNo,
		&regAddress, &gstin, &sac, &cin,
		&rec.RegistrationNo, &rec.ChassisNo, &rec.Model, &rec.Variant, &rec.Fuel, &rec.Transmission, &rec.VehicleSaleDate,
		&rec.WorkshopName, &rec.EmployeeName,
		&rec.Assist, &rec.Eligibility, &rec.VehicleAge,
		&rec.AmountCollected, &rec.PaymentType, &rec.PaymentProof,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.UserID = userID.String
	rec.CustomerGSTNo = gstNo.String
	rec.RegisteredAddress = regAddress.String
	rec.DealershipGSTIN = gstin.String
	rec.SACCode = sac.String
	rec.CINNumber = cin.String

	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateAssistRecord inserts a new intake record
func (s *PostgresStore) CreateAssistRecord(ctx context.Context, rec *models.AssistRecord) error {
	now := time.Now()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = now
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now

	query := `INSERT INTO assist_records (` + assistColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Timestamp, nullString(rec.UserID),
		rec.EmailAddress, rec.CustomerName, rec.CustomerContactNo, rec.CustomerAddress, nullString(rec.CustomerGSTNo),
		nullString(rec.RegisteredAddress), nullString(rec.DealershipGSTIN), nullString(rec.SACCode), nullString(rec.CINNumber),
		rec.RegistrationNo, rec.ChassisNo, rec.Model, rec.Variant, rec.Fuel, rec.Transmission, rec.VehicleSaleDate,
		rec.WorkshopName, rec.EmployeeName,
		rec.Assist, rec.Eligibility, rec.VehicleAge,
		rec.AmountCollected, rec.PaymentType, rec.PaymentProof,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert assist record: %w", err)
	}
	return nil
}

// GetAssistRecord retrieves an intake record by ID
func (s *PostgresStore) GetAssistRecord(ctx context.Context, id string) (*models.AssistRecord, error) {
	query := `SELECT ` + assistColumns + ` FROM assist_records WHERE id = $1`

	rec, err := scanAssistRecord(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assist record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListAssistRecords returns records newest first; limit <= 0 means all
func (s *PostgresStore) ListAssistRecords(ctx context.Context, limit int) ([]*models.AssistRecord, error) {
	query := `SELECT ` + assistColumns + ` FROM assist_records ORDER BY timestamp DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AssistRecord
	for rows.Next() {
		rec, err := scanAssistRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, rows.Err()
}

// UpdateAssistRecord overwrites every editable column of an existing record
func (s *PostgresStore) UpdateAssistRecord(ctx context.Context, rec *models.AssistRecord) error {
	rec.UpdatedAt = time.Now()

	query := `
		UPDATE assist_records SET
			timestamp = $2, user_id = $3,
			email_address = $4, customer_name = $5, customer_contact_no = $6, customer_address = $7, customer_gst_no = $8,
			registered_address = $9, dealership_gstin = $10, sac_code = $11, cin_number = $12,
			registration_no = $13, chassis_no = $14, model = $15, variant = $16, fuel = $17, transmission = $18, vehicle_sale_date = $19,
			workshop_name = $20, employee_name = $21,
			assist = $22, eligibility = $23, vehicle_age = $24,
			amount_collected = $25, payment_type = $26, payment_proof = $27,
			updated_at = $28
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Timestamp, nullString(rec.UserID),
		rec.EmailAddress, rec.CustomerName, rec.CustomerContactNo, rec.CustomerAddress, nullString(rec.CustomerGSTNo),
		nullString(rec.RegisteredAddress), nullString(rec.DealershipGSTIN), nullString(rec.SACCode), nullString(rec.CINNumber),
		rec.RegistrationNo, rec.ChassisNo, rec.Model, rec.Variant, rec.Fuel, rec.Transmission, rec.VehicleSaleDate,
		rec.WorkshopName, rec.EmployeeName,
		rec.Assist, rec.Eligibility, rec.VehicleAge,
		rec.AmountCollected, rec.PaymentType, rec.PaymentProof,
		rec.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return expectOneRow(result, "assist record", rec.ID)
}

func (s *PostgresStore) DeleteAssistRecord(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM assist_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result, "assist record", id)
}

func expectOneRow(result sql.Result, kind, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// SaveServiceRecord appends a service history entry
func (s *PostgresStore) SaveServiceRecord(ctx context.Context, rec *models.ServiceRecord) error {
	now := time.Now()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	query := `
		INSERT INTO service_records (
			id, vehicle_model, registration_no, customer_name, service_type,
			service_date, mileage, description, cost, workshop_name, user_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.VehicleModel, rec.RegistrationNo, nullString(rec.CustomerName), rec.ServiceType,
		rec.ServiceDate, rec.Mileage, nullString(rec.Description), rec.Cost, nullString(rec.WorkshopName), nullString(rec.UserID),
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert service record: %w", err)
	}
	return nil
}

// ListServiceRecords returns history in insertion order
func (s *PostgresStore) ListServiceRecords(ctx context.Context, vehicle models.VehicleIdentity) ([]models.ServiceRecord, error) {
	query := `
		SELECT id, vehicle_model, registration_no, customer_name, service_type,
			service_date, mileage, description, cost, workshop_name, user_id,
			created_at, updated_at
		FROM service_records
	`
	args := []any{}
	if vehicle != (models.VehicleIdentity{}) {
		query += ` WHERE vehicle_model = $1 AND registration_no = $2`
		args = append(args, vehicle.VehicleModel, vehicle.RegistrationNo)
	}
	query += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ServiceRecord
	for rows.Next() {
		var rec models.ServiceRecord
		var customer, description, workshop, userID sql.NullString

		err := rows.Scan(
			&rec.ID, &rec.VehicleModel, &rec.RegistrationNo, &customer, &rec.ServiceType,
			&rec.ServiceDate, &rec.Mileage, &description, &rec.Cost, &workshop, &userID,
			&rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		rec.CustomerName = customer.String
		rec.Description = description.String
		rec.WorkshopName = workshop.String
		rec.UserID = userID.String

		out = append(out, rec)
	}

	return out, rows.Err()
}

// SaveRecommendation saves a recommendation
func (s *PostgresStore) SaveRecommendation(ctx context.Context, rec *models.ServiceRecommendation) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO recommendations (
			id, vehicle_model, registration_no, recommended_service, priority,
			reason, estimated_cost, due_date, last_service_date, mileage_based,
			current_mileage, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.VehicleModel, rec.RegistrationNo, rec.RecommendedService, rec.Priority,
		rec.Reason, rec.EstimatedCost, rec.DueDate, rec.LastServiceDate, rec.MileageBased,
		rec.CurrentMileage, rec.CreatedAt,
	)

	return err
}

// ListRecommendations returns the most recently saved recommendations first
func (s *PostgresStore) ListRecommendations(ctx context.Context, vehicle models.VehicleIdentity, limit int) ([]*models.ServiceRecommendation, error) {
	query := `
		SELECT id, vehicle_model, registration_no, recommended_service, priority,
			reason, estimated_cost, due_date, last_service_date, mileage_based,
			current_mileage, created_at
		FROM recommendations
	`
	args := []any{}
	if vehicle != (models.VehicleIdentity{}) {
		query += ` WHERE vehicle_model = $1 AND registration_no = $2`
		args = append(args, vehicle.VehicleModel, vehicle.RegistrationNo)
	}
	query += ` ORDER BY seq DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ServiceRecommendation
	for rows.Next() {
		var rec models.ServiceRecommendation
		var lastService sql.NullTime

		err := rows.Scan(
			&rec.ID, &rec.VehicleModel, &rec.RegistrationNo, &rec.RecommendedService, &rec.Priority,
			&rec.Reason, &rec.EstimatedCost, &rec.DueDate, &lastService, &rec.MileageBased,
			&rec.CurrentMileage, &rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if lastService.Valid {
			rec.LastServiceDate = &lastService.Time
		}

		out = append(out, &rec)
	}

	return out, rows.Err()
}

const enquiryColumns = `
	id, customer_name, email, phone, vehicle_model, registration_no,
	service_type, description, status, workshop_name, created_by,
	created_at, updated_at`

func scanEnquiry(row rowScanner) (*models.Enquiry, error) {
	var e models.Enquiry
	var description, createdBy sql.NullString

	err := row.Scan(
		&e.ID, &e.CustomerName, &e.Email, &e.Phone, &e.VehicleModel, &e.RegistrationNo,
		&e.ServiceType, &description, &e.Status, &e.WorkshopName, &createdBy,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Description = description.String
	e.CreatedBy = createdBy.String
	return &e, nil
}

// CreateEnquiry inserts a new service enquiry
func (s *PostgresStore) CreateEnquiry(ctx context.Context, e *models.Enquiry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.UpdatedAt = e.CreatedAt

	query := `INSERT INTO enquiries (` + enquiryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.CustomerName, e.Email, e.Phone, e.VehicleModel, e.RegistrationNo,
		e.ServiceType, nullString(e.Description), e.Status, e.WorkshopName, nullString(e.CreatedBy),
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert enquiry: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetEnquiry(ctx context.Context, id string) (*models.Enquiry, error) {
	query := `SELECT ` + enquiryColumns + ` FROM enquiries WHERE id = $1`

	e, err := scanEnquiry(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("enquiry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEnquiries returns matching enquiries newest first
func (s *PostgresStore) ListEnquiries(ctx context.Context, filter models.EnquiryFilter) ([]*models.Enquiry, error) {
	query := `SELECT ` + enquiryColumns + ` FROM enquiries WHERE TRUE`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		query += fmt.Sprintf(` AND created_by = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Enquiry
	for rows.Next() {
		e, err := scanEnquiry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, rows.Err()
}

// UpdateEnquiryStatus moves an enquiry to status and returns the new row
func (s *PostgresStore) UpdateEnquiryStatus(ctx context.Context, id, status string) (*models.Enquiry, error) {
	query := `UPDATE enquiries SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + enquiryColumns

	e, err := scanEnquiry(s.db.QueryRowContext(ctx, query, id, status, time.Now()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("enquiry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update enquiry: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) DeleteEnquiry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM enquiries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result, "enquiry", id)
}

// LogAction logs an action to the audit trail
func (s *PostgresStore) LogAction(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now()
	}

	query := `
		INSERT INTO audit_log (
			id, record_id, action, status,
			error_message, executed_by, executed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.RecordID, entry.Action, entry.Status,
		nullString(entry.ErrorMessage), nullString(entry.ExecutedBy), entry.ExecutedAt,
	)

	return err
}

// GetAuditLog retrieves audit log entries for a record
func (s *PostgresStore) GetAuditLog(ctx context.Context, recordID string) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, record_id, action, status,
			error_message, executed_by, executed_at
		FROM audit_log
		WHERE record_id = $1
		ORDER BY executed_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		var errorMessage, executedBy sql.NullString

		err := rows.Scan(
			&entry.ID, &entry.RecordID, &entry.Action, &entry.Status,
			&errorMessage, &executedBy, &entry.ExecutedAt,
		)
		if err != nil {
			return nil, err
		}

		entry.ErrorMessage = errorMessage.String
		entry.ExecutedBy = executedBy.String

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
