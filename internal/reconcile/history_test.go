package reconcile

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiltakhub/participant-api/internal/models"
)

func TestProjectHistoryResolvesNamesPerEvent(t *testing.T) {
	arrangerA := uuid.New()
	arrangerB := uuid.New()
	names := map[uuid.UUID]string{
		arrangerA: "Muligheter AS",
		arrangerB: "Veien Videre AS",
	}
	lookup := func(id uuid.UUID) (string, bool) {
		n, ok := names[id]
		return n, ok
	}

	startDate := date(2023, 3, 1)
	events := []models.RawHistoryEvent{
		{
			ID:         uuid.New(),
			Type:       models.HistoryEventArrangerChange,
			CreatedAt:  time.Date(2023, 2, 10, 12, 0, 0, 0, time.UTC),
			ArrangerID: arrangerA,
			Change: &models.ParticipationChange{
				Kind:      models.ChangeSetStartDate,
				StartDate: &startDate,
			},
		},
		{
			ID:         uuid.New(),
			Type:       models.HistoryEventArrangerAssessment,
			CreatedAt:  time.Date(2023, 2, 14, 9, 0, 0, 0, time.UTC),
			ArrangerID: arrangerB,
			Assessment: &models.AssessmentRecord{
				ID:        uuid.New(),
				Type:      models.AssessmentMeetsRequirements,
				CreatedAt: time.Date(2023, 2, 14, 9, 0, 0, 0, time.UTC),
			},
		},
	}

	entries := ProjectHistory(events, lookup)
	require.Len(t, entries, 2)

	// Order is preserved and each entry gets its own actor's name.
	assert.Equal(t, events[0].ID, entries[0].ID)
	assert.Equal(t, "Muligheter AS", entries[0].ArrangerName)
	assert.Equal(t, models.ChangeSetStartDate, entries[0].Change.Kind)

	assert.Equal(t, events[1].ID, entries[1].ID)
	assert.Equal(t, "Veien Videre AS", entries[1].ArrangerName)
	require.NotNil(t, entries[1].Assessment)
}

func TestProjectHistoryUnknownArranger(t *testing.T) {
	events := []models.RawHistoryEvent{
		{ID: uuid.New(), Type: models.HistoryEventArrangerChange, ArrangerID: uuid.New()},
	}

	entries := ProjectHistory(events, func(uuid.UUID) (string, bool) { return "", false })
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].ArrangerName)
}

func TestProjectHistoryEmpty(t *testing.T) {
	entries := ProjectHistory(nil, nil)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
