package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tiltakhub/participant-api/internal/models"
)

// StaffRepository provides database access for arranger staff accounts.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository creates a new instance of StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// FindByEmail returns a staff member by email address.
func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	const query = `SELECT id, email, password_hash, first_name, middle_name, last_name, arranger_id, roles, active, last_login, created_at, updated_at FROM staff WHERE email = $1 LIMIT 1`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find staff by email: %w", err)
	}
	return &staff, nil
}

// FindByID returns a staff member by identifier.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	const query = `SELECT id, email, password_hash, first_name, middle_name, last_name, arranger_id, roles, active, last_login, created_at, updated_at FROM staff WHERE id = $1 LIMIT 1`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find staff by id: %w", err)
	}
	return &staff, nil
}

// UpdateLastLogin updates the last_login timestamp for a staff member.
func (r *StaffRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE staff SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// CreateAuditLog stores an audit log entry.
func (r *StaffRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, staff_id, action, resource, resource_id, new_values, ip_address, user_agent, created_at) VALUES (:id, :staff_id, :action, :resource, :resource_id, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
