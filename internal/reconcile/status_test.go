package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiltakhub/participant-api/internal/models"
	appErrors "github.com/tiltakhub/participant-api/pkg/errors"
)

func TestClassifyStatusOneToOne(t *testing.T) {
	cases := map[models.RawStatus]models.CanonicalStatus{
		models.RawStatusWaitingToStart:      models.StatusWaitingToStart,
		models.RawStatusParticipating:       models.StatusParticipating,
		models.RawStatusAssessing:           models.StatusAssessing,
		models.RawStatusWaitlist:            models.StatusWaitlist,
		models.RawStatusPendingRegistration: models.StatusPendingRegistration,
		models.RawStatusMisregistered:       models.StatusMisregistered,
		models.RawStatusEnrollmentDraft:     models.StatusEnrollmentDraft,
		models.RawStatusAbandonedDraft:      models.StatusAbandonedDraft,
		models.RawStatusLeft:                models.StatusLeft,
		models.RawStatusNotApplicable:       models.StatusNotApplicable,
		models.RawStatusAborted:             models.StatusAborted,
		models.RawStatusCompleted:           models.StatusCompleted,
	}

	for raw, want := range cases {
		for _, course := range []bool{true, false} {
			got, err := ClassifyStatus(raw, course)
			require.NoError(t, err)
			assert.Equal(t, want, got, "raw %s course=%v", raw, course)
		}
	}
}

func TestClassifyStatusAppliedBifurcates(t *testing.T) {
	got, err := ClassifyStatus(models.RawStatusApplied, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplied, got)

	got, err = ClassifyStatus(models.RawStatusApplied, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaitingToStart, got)
}

func TestClassifyStatusUnrecognized(t *testing.T) {
	_, err := ClassifyStatus("SOMETHING_NEW", false)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnrecognizedStatus))
}

func TestStatusSubsets(t *testing.T) {
	hideEligible := []models.CanonicalStatus{
		models.StatusWaitlist,
		models.StatusPendingRegistration,
		models.StatusMisregistered,
		models.StatusEnrollmentDraft,
		models.StatusAbandonedDraft,
	}
	terminal := []models.CanonicalStatus{
		models.StatusLeft,
		models.StatusNotApplicable,
		models.StatusAborted,
		models.StatusCompleted,
	}
	active := []models.CanonicalStatus{
		models.StatusWaitingToStart,
		models.StatusParticipating,
		models.StatusApplied,
		models.StatusAssessing,
	}

	for _, s := range hideEligible {
		assert.True(t, AlwaysHideEligible(s), "%s", s)
		assert.False(t, Concluding(s), "%s", s)
		assert.True(t, HideableByStaff(s), "%s", s)
	}
	for _, s := range terminal {
		assert.False(t, AlwaysHideEligible(s), "%s", s)
		assert.True(t, Concluding(s), "%s", s)
		assert.True(t, HideableByStaff(s), "%s", s)
	}
	for _, s := range active {
		assert.False(t, AlwaysHideEligible(s), "%s", s)
		assert.False(t, Concluding(s), "%s", s)
		assert.False(t, HideableByStaff(s), "%s", s)
	}
}
