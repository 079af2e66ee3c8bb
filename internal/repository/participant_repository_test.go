package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiltakhub/participant-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func participantColumnsList() []string {
	return []string{
		"id", "offering_id", "person_ident", "first_name", "middle_name", "last_name", "phone", "email", "address", "shielded", "address_protected",
		"status", "status_created_at", "status_effective_from", "status_reason",
		"days_per_week", "participation_percent", "start_date", "end_date", "applied_at", "legacy_note",
		"case_office_name", "case_officer", "hidden_by_staff_id", "hidden_at",
		"assessments", "history", "enrollment_periods",
		"source", "last_modified", "first_decision_at", "manually_shared",
	}
}

func participantRowValues(id, offeringID uuid.UUID, now time.Time) []driver.Value {
	return []driver.Value{
		id.String(), offeringID.String(), "10987654321", "Kari", nil, "Nordmann", nil, nil, nil, false, false,
		"PARTICIPATING", now, nil, nil,
		nil, nil, nil, nil, now, nil,
		nil, nil, nil, nil,
		[]byte(`[]`), []byte(`[]`), []byte(`[]`),
		"KOMET", now, nil, false,
	}
}

func TestParticipantGet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	id, offeringID := uuid.New(), uuid.New()
	now := time.Now().UTC()
	rows := sqlmock.NewRows(participantColumnsList()).AddRow(participantRowValues(id, offeringID, now)...)
	mock.ExpectQuery("SELECT (.+) FROM participants WHERE id = \\$1 LIMIT 1").
		WithArgs(id).
		WillReturnRows(rows)

	rec, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, models.StatusParticipating, rec.Status)
	assert.NotNil(t, rec.History)
	assert.False(t, rec.Hidden())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantGetNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM participants WHERE id = \\$1 LIMIT 1").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	rec, err := repo.Get(context.Background(), id)
	assert.Nil(t, rec)
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	mock.ExpectExec("INSERT INTO participants").WillReturnResult(sqlmock.NewResult(0, 1))

	rec := &models.ParticipantRecord{
		ID:           uuid.New(),
		OfferingID:   uuid.New(),
		PersonIdent:  "10987654321",
		FirstName:    "Kari",
		LastName:     "Nordmann",
		Status:       models.StatusParticipating,
		AppliedAt:    time.Now().UTC(),
		Source:       "KOMET",
		LastModified: time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM participants WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantHideUnhide(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	id, staffID := uuid.New(), uuid.New()
	at := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE participants SET hidden_by_staff_id = $2, hidden_at = $3 WHERE id = $1")).
		WithArgs(id, staffID, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetHidden(context.Background(), id, staffID, at))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE participants SET hidden_by_staff_id = NULL, hidden_at = NULL WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.ClearHidden(context.Background(), id))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantUpdateAssessments(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE participants SET assessments = $2 WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ledger := []models.AssessmentRecord{{
		ID:            uuid.New(),
		ParticipantID: id,
		AuthorStaffID: uuid.New(),
		Type:          models.AssessmentMeetsRequirements,
		CreatedAt:     time.Now().UTC(),
	}}
	require.NoError(t, repo.UpdateAssessments(context.Background(), id, ledger))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantListByOffering(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	offeringID := uuid.New()
	now := time.Now().UTC()
	rows := sqlmock.NewRows(participantColumnsList()).
		AddRow(participantRowValues(uuid.New(), offeringID, now)...)
	mock.ExpectQuery("SELECT (.+) FROM participants WHERE offering_id = \\$1 AND hidden_at IS NULL").
		WithArgs(offeringID).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM participants WHERE offering_id = \\$1").
		WithArgs(offeringID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.ListByOffering(context.Background(), models.ParticipantFilter{OfferingID: offeringID})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
