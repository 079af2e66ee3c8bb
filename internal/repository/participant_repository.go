package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tiltakhub/participant-api/internal/models"
)

// participantRow is the flat database shape of a participant record. The
// embedded sequences (assessments, history, enrollment periods) and the
// structured snapshots live in JSONB columns and are marshalled at the
// repository boundary so the models stay driver-free.
type participantRow struct {
	ID         uuid.UUID `db:"id"`
	OfferingID uuid.UUID `db:"offering_id"`

	PersonIdent      string  `db:"person_ident"`
	FirstName        string  `db:"first_name"`
	MiddleName       *string `db:"middle_name"`
	LastName         string  `db:"last_name"`
	Phone            *string `db:"phone"`
	Email            *string `db:"email"`
	Address          []byte  `db:"address"`
	Shielded         bool    `db:"shielded"`
	AddressProtected bool    `db:"address_protected"`

	Status              string     `db:"status"`
	StatusCreatedAt     time.Time  `db:"status_created_at"`
	StatusEffectiveFrom *time.Time `db:"status_effective_from"`
	StatusReason        []byte     `db:"status_reason"`

	DaysPerWeek          *float64   `db:"days_per_week"`
	ParticipationPercent *float64   `db:"participation_percent"`
	StartDate            *time.Time `db:"start_date"`
	EndDate              *time.Time `db:"end_date"`
	AppliedAt            time.Time  `db:"applied_at"`

	LegacyNote *string `db:"legacy_note"`

	CaseOfficeName *string `db:"case_office_name"`
	CaseOfficer    []byte  `db:"case_officer"`

	HiddenByStaffID *uuid.UUID `db:"hidden_by_staff_id"`
	HiddenAt        *time.Time `db:"hidden_at"`

	Assessments       []byte `db:"assessments"`
	History           []byte `db:"history"`
	EnrollmentPeriods []byte `db:"enrollment_periods"`

	Source          string     `db:"source"`
	LastModified    time.Time  `db:"last_modified"`
	FirstDecisionAt *time.Time `db:"first_decision_at"`
	ManuallyShared  bool       `db:"manually_shared"`
}

const participantColumns = `id, offering_id, person_ident, first_name, middle_name, last_name, phone, email, address, shielded, address_protected,
        status, status_created_at, status_effective_from, status_reason,
        days_per_week, participation_percent, start_date, end_date, applied_at, legacy_note,
        case_office_name, case_officer, hidden_by_staff_id, hidden_at,
        assessments, history, enrollment_periods,
        source, last_modified, first_decision_at, manually_shared`

func toParticipantRow(rec *models.ParticipantRecord) (*participantRow, error) {
	row := &participantRow{
		ID:                   rec.ID,
		OfferingID:           rec.OfferingID,
		PersonIdent:          rec.PersonIdent,
		FirstName:            rec.FirstName,
		MiddleName:           rec.MiddleName,
		LastName:             rec.LastName,
		Phone:                rec.Phone,
		Email:                rec.Email,
		Shielded:             rec.Shielded,
		AddressProtected:     rec.AddressProtected,
		Status:               string(rec.Status),
		StatusCreatedAt:      rec.StatusCreatedAt,
		StatusEffectiveFrom:  rec.StatusEffectiveFrom,
		DaysPerWeek:          rec.DaysPerWeek,
		ParticipationPercent: rec.ParticipationPercent,
		StartDate:            rec.StartDate,
		EndDate:              rec.EndDate,
		AppliedAt:            rec.AppliedAt,
		LegacyNote:           rec.LegacyNote,
		CaseOfficeName:       rec.CaseOfficeName,
		HiddenByStaffID:      rec.HiddenByStaffID,
		HiddenAt:             rec.HiddenAt,
		Source:               rec.Source,
		LastModified:         rec.LastModified,
		FirstDecisionAt:      rec.FirstDecisionAt,
		ManuallyShared:       rec.ManuallyShared,
	}

	var err error
	if rec.Address != nil {
		if row.Address, err = json.Marshal(rec.Address); err != nil {
			return nil, fmt.Errorf("marshal address: %w", err)
		}
	}
	if rec.StatusReason != nil {
		if row.StatusReason, err = json.Marshal(rec.StatusReason); err != nil {
			return nil, fmt.Errorf("marshal status reason: %w", err)
		}
	}
	if rec.CaseOfficer != nil {
		if row.CaseOfficer, err = json.Marshal(rec.CaseOfficer); err != nil {
			return nil, fmt.Errorf("marshal case officer: %w", err)
		}
	}
	assessments := rec.Assessments
	if assessments == nil {
		assessments = []models.AssessmentRecord{}
	}
	if row.Assessments, err = json.Marshal(assessments); err != nil {
		return nil, fmt.Errorf("marshal assessments: %w", err)
	}
	history := rec.History
	if history == nil {
		history = []models.RawHistoryEvent{}
	}
	if row.History, err = json.Marshal(history); err != nil {
		return nil, fmt.Errorf("marshal history: %w", err)
	}
	periods := rec.EnrollmentPeriods
	if periods == nil {
		periods = []models.EnrollmentPeriod{}
	}
	if row.EnrollmentPeriods, err = json.Marshal(periods); err != nil {
		return nil, fmt.Errorf("marshal enrollment periods: %w", err)
	}
	return row, nil
}

func (row *participantRow) toRecord() (*models.ParticipantRecord, error) {
	rec := &models.ParticipantRecord{
		ID:                   row.ID,
		OfferingID:           row.OfferingID,
		PersonIdent:          row.PersonIdent,
		FirstName:            row.FirstName,
		MiddleName:           row.MiddleName,
		LastName:             row.LastName,
		Phone:                row.Phone,
		Email:                row.Email,
		Shielded:             row.Shielded,
		AddressProtected:     row.AddressProtected,
		Status:               models.CanonicalStatus(row.Status),
		StatusCreatedAt:      row.StatusCreatedAt,
		StatusEffectiveFrom:  row.StatusEffectiveFrom,
		DaysPerWeek:          row.DaysPerWeek,
		ParticipationPercent: row.ParticipationPercent,
		StartDate:            row.StartDate,
		EndDate:              row.EndDate,
		AppliedAt:            row.AppliedAt,
		LegacyNote:           row.LegacyNote,
		CaseOfficeName:       row.CaseOfficeName,
		HiddenByStaffID:      row.HiddenByStaffID,
		HiddenAt:             row.HiddenAt,
		Source:               row.Source,
		LastModified:         row.LastModified,
		FirstDecisionAt:      row.FirstDecisionAt,
		ManuallyShared:       row.ManuallyShared,
	}

	if len(row.Address) > 0 {
		rec.Address = &models.Address{}
		if err := json.Unmarshal(row.Address, rec.Address); err != nil {
			return nil, fmt.Errorf("unmarshal address: %w", err)
		}
	}
	if len(row.StatusReason) > 0 {
		rec.StatusReason = &models.StatusReason{}
		if err := json.Unmarshal(row.StatusReason, rec.StatusReason); err != nil {
			return nil, fmt.Errorf("unmarshal status reason: %w", err)
		}
	}
	if len(row.CaseOfficer) > 0 {
		rec.CaseOfficer = &models.CaseOfficer{}
		if err := json.Unmarshal(row.CaseOfficer, rec.CaseOfficer); err != nil {
			return nil, fmt.Errorf("unmarshal case officer: %w", err)
		}
	}
	if err := json.Unmarshal(row.Assessments, &rec.Assessments); err != nil {
		return nil, fmt.Errorf("unmarshal assessments: %w", err)
	}
	if err := json.Unmarshal(row.History, &rec.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	if err := json.Unmarshal(row.EnrollmentPeriods, &rec.EnrollmentPeriods); err != nil {
		return nil, fmt.Errorf("unmarshal enrollment periods: %w", err)
	}
	return rec, nil
}

// ParticipantRepository manages persistence for reconciled participant records.
type ParticipantRepository struct {
	db *sqlx.DB
}

// NewParticipantRepository constructs a ParticipantRepository.
func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Get fetches a participant record by ID. Returns sql.ErrNoRows when the
// participant is unknown.
func (r *ParticipantRepository) Get(ctx context.Context, id uuid.UUID) (*models.ParticipantRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM participants WHERE id = $1 LIMIT 1`, participantColumns)
	var row participantRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return row.toRecord()
}

// Upsert writes a reconciled record. The update path is guarded on
// last_modified so a replayed or out-of-order upstream event never clobbers a
// newer stored record.
func (r *ParticipantRepository) Upsert(ctx context.Context, rec *models.ParticipantRecord) error {
	row, err := toParticipantRow(rec)
	if err != nil {
		return err
	}
	const query = `INSERT INTO participants (id, offering_id, person_ident, first_name, middle_name, last_name, phone, email, address, shielded, address_protected,
        status, status_created_at, status_effective_from, status_reason,
        days_per_week, participation_percent, start_date, end_date, applied_at, legacy_note,
        case_office_name, case_officer, hidden_by_staff_id, hidden_at,
        assessments, history, enrollment_periods,
        source, last_modified, first_decision_at, manually_shared)
        VALUES (:id, :offering_id, :person_ident, :first_name, :middle_name, :last_name, :phone, :email, :address, :shielded, :address_protected,
        :status, :status_created_at, :status_effective_from, :status_reason,
        :days_per_week, :participation_percent, :start_date, :end_date, :applied_at, :legacy_note,
        :case_office_name, :case_officer, :hidden_by_staff_id, :hidden_at,
        :assessments, :history, :enrollment_periods,
        :source, :last_modified, :first_decision_at, :manually_shared)
        ON CONFLICT (id) DO UPDATE SET
        offering_id = EXCLUDED.offering_id, person_ident = EXCLUDED.person_ident,
        first_name = EXCLUDED.first_name, middle_name = EXCLUDED.middle_name, last_name = EXCLUDED.last_name,
        phone = EXCLUDED.phone, email = EXCLUDED.email, address = EXCLUDED.address,
        shielded = EXCLUDED.shielded, address_protected = EXCLUDED.address_protected,
        status = EXCLUDED.status, status_created_at = EXCLUDED.status_created_at,
        status_effective_from = EXCLUDED.status_effective_from, status_reason = EXCLUDED.status_reason,
        days_per_week = EXCLUDED.days_per_week, participation_percent = EXCLUDED.participation_percent,
        start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date, applied_at = EXCLUDED.applied_at,
        legacy_note = EXCLUDED.legacy_note, case_office_name = EXCLUDED.case_office_name,
        case_officer = EXCLUDED.case_officer, hidden_by_staff_id = EXCLUDED.hidden_by_staff_id,
        hidden_at = EXCLUDED.hidden_at, assessments = EXCLUDED.assessments, history = EXCLUDED.history,
        enrollment_periods = EXCLUDED.enrollment_periods, source = EXCLUDED.source,
        last_modified = EXCLUDED.last_modified, first_decision_at = EXCLUDED.first_decision_at,
        manually_shared = EXCLUDED.manually_shared
        WHERE participants.last_modified <= EXCLUDED.last_modified`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert participant: %w", err)
	}
	return nil
}

// Delete removes a participant record entirely. Used for upstream tombstones.
func (r *ParticipantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM participants WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return nil
}

// SetHidden marks a record hidden by the given staff member.
func (r *ParticipantRepository) SetHidden(ctx context.Context, id, staffID uuid.UUID, at time.Time) error {
	const query = `UPDATE participants SET hidden_by_staff_id = $2, hidden_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, staffID, at); err != nil {
		return fmt.Errorf("hide participant: %w", err)
	}
	return nil
}

// ClearHidden removes the hide override from a record.
func (r *ParticipantRepository) ClearHidden(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE participants SET hidden_by_staff_id = NULL, hidden_at = NULL WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("unhide participant: %w", err)
	}
	return nil
}

// UpdateAssessments replaces the stored assessment ledger of a participant.
func (r *ParticipantRepository) UpdateAssessments(ctx context.Context, id uuid.UUID, ledger []models.AssessmentRecord) error {
	if ledger == nil {
		ledger = []models.AssessmentRecord{}
	}
	payload, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("marshal assessments: %w", err)
	}
	const query = `UPDATE participants SET assessments = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, payload); err != nil {
		return fmt.Errorf("update assessments: %w", err)
	}
	return nil
}

// ListByOffering returns the visible roster of an offering. Hidden records and
// records in an always-hidden lifecycle state never appear.
func (r *ParticipantRepository) ListByOffering(ctx context.Context, filter models.ParticipantFilter) ([]models.ParticipantRecord, int, error) {
	base := `FROM participants WHERE offering_id = $1 AND hidden_at IS NULL
        AND status NOT IN ('WAITLIST', 'PENDING_REGISTRATION', 'MISREGISTERED', 'ENROLLMENT_DRAFT', 'ABANDONED_DRAFT')`
	args := []interface{}{filter.OfferingID}

	var conditions []string
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(filter.Status))
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY last_name, first_name LIMIT %d OFFSET %d", participantColumns, base, size, offset)

	var rows []participantRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list participants: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count participants: %w", err)
	}

	records := make([]models.ParticipantRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toRecord()
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *rec)
	}
	return records, total, nil
}
