package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiltakhub/participant-api/internal/models"
)

func TestStaffFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "first_name", "middle_name", "last_name", "arranger_id", "roles", "active", "last_login", "created_at", "updated_at"}).
		AddRow("s1", "staff@example.com", "hash", "Ola", nil, "Nordmann", "a1", "{COORDINATOR}", true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, first_name, middle_name, last_name, arranger_id, roles, active, last_login, created_at, updated_at FROM staff WHERE email = $1 LIMIT 1")).
		WithArgs("staff@example.com").
		WillReturnRows(rows)

	staff, err := repo.FindByEmail(context.Background(), "staff@example.com")
	require.NoError(t, err)
	assert.Equal(t, "staff@example.com", staff.Email)
	assert.True(t, staff.HasRole(models.RoleCoordinator))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffUpdateLastLogin(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE staff SET last_login = $2, updated_at = $3 WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), "s1", time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffCreateAuditLog(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	staffID := "s1"
	err := repo.CreateAuditLog(context.Background(), &models.AuditLog{
		StaffID:   &staffID,
		Action:    models.AuditActionParticipantHide,
		Resource:  "participants",
		IPAddress: "127.0.0.1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
