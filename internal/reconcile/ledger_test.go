package reconcile

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiltakhub/participant-api/internal/models"
)

func assessment(createdAt time.Time) models.AssessmentRecord {
	return models.AssessmentRecord{
		ID:            uuid.New(),
		ParticipantID: uuid.New(),
		AuthorStaffID: uuid.New(),
		Type:          models.AssessmentMeetsRequirements,
		CreatedAt:     createdAt,
	}
}

func TestAppendAssessmentDoesNotMutate(t *testing.T) {
	first := assessment(date(2023, 1, 1))
	ledger := []models.AssessmentRecord{first}

	second := assessment(date(2023, 2, 1))
	out := AppendAssessment(ledger, second)

	require.Len(t, out, 2)
	assert.Equal(t, first.ID, out[0].ID)
	assert.Equal(t, second.ID, out[1].ID)
	// The original slice is untouched.
	require.Len(t, ledger, 1)
}

func TestCurrentAssessmentEmpty(t *testing.T) {
	assert.Nil(t, CurrentAssessment(nil))
	assert.Nil(t, CurrentAssessment([]models.AssessmentRecord{}))
}

func TestCurrentAssessmentLatestTimestampWins(t *testing.T) {
	t1 := assessment(date(2023, 1, 1))
	t3 := assessment(date(2023, 3, 1))
	t2 := assessment(date(2023, 2, 1))

	current := CurrentAssessment([]models.AssessmentRecord{t1, t3, t2})
	require.NotNil(t, current)
	assert.Equal(t, t3.ID, current.ID)
}

func TestCurrentAssessmentTieGoesToLatestAppended(t *testing.T) {
	when := date(2023, 3, 1)
	a := assessment(when)
	b := assessment(when)

	current := CurrentAssessment([]models.AssessmentRecord{a, b})
	require.NotNil(t, current)
	assert.Equal(t, b.ID, current.ID)
}
