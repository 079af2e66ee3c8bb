package reconcile

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiltakhub/participant-api/internal/dto"
	"github.com/tiltakhub/participant-api/internal/models"
	appErrors "github.com/tiltakhub/participant-api/pkg/errors"
)

func strPtr(s string) *string { return &s }

func baseUpdate(id, offeringID uuid.UUID) dto.ParticipantUpdate {
	return dto.ParticipantUpdate{
		ID:         id,
		OfferingID: offeringID,
		Personalia: dto.Personalia{
			PersonIdent: "10987654321",
			Name:        dto.PersonName{First: "Kari", Last: "Nordmann"},
			Contact:     dto.ContactInfo{Phone: strPtr("87654321")},
		},
		Status: dto.StatusUpdate{
			Type:      models.RawStatusParticipating,
			CreatedAt: time.Date(2023, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		AppliedAt:    time.Date(2023, 1, 15, 8, 0, 0, 0, time.UTC),
		Source:       "KOMET",
		LastModified: time.Date(2023, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func storedRecord(id, offeringID uuid.UUID) *models.ParticipantRecord {
	return &models.ParticipantRecord{
		ID:          id,
		OfferingID:  offeringID,
		PersonIdent: "10987654321",
		FirstName:   "Kari",
		LastName:    "Nordmann",
		Status:      models.StatusParticipating,
		History:     []models.RawHistoryEvent{},
	}
}

func TestMergeNewParticipant(t *testing.T) {
	id, offeringID := uuid.New(), uuid.New()
	incoming := baseUpdate(id, offeringID)
	incoming.LegacyNote = strPtr("ordered via legacy channel")

	record, err := Merge(nil, incoming)
	require.NoError(t, err)

	assert.Equal(t, id, record.ID)
	assert.Equal(t, offeringID, record.OfferingID)
	assert.Equal(t, models.StatusParticipating, record.Status)
	assert.Equal(t, "Kari", record.FirstName)
	require.NotNil(t, record.LegacyNote)
	assert.Equal(t, "ordered via legacy channel", *record.LegacyNote)
	assert.NotNil(t, record.History)
	assert.False(t, record.Hidden())
}

func TestMergeNewParticipantNeverHidden(t *testing.T) {
	// A first-seen participant starts visible even in a hide-eligible status.
	incoming := baseUpdate(uuid.New(), uuid.New())
	incoming.Status.Type = models.RawStatusWaitlist

	record, err := Merge(nil, incoming)
	require.NoError(t, err)
	assert.False(t, record.Hidden())
	assert.Nil(t, record.HiddenByStaffID)
	assert.Nil(t, record.HiddenAt)
}

func TestMergeIdentityMismatch(t *testing.T) {
	id, offeringID := uuid.New(), uuid.New()
	prev := storedRecord(id, offeringID)

	wrongID := baseUpdate(uuid.New(), offeringID)
	_, err := Merge(prev, wrongID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrIdentityMismatch))

	wrongOffering := baseUpdate(id, uuid.New())
	_, err = Merge(prev, wrongOffering)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrIdentityMismatch))
}

func TestMergeUnrecognizedStatusRejectsWholeUpdate(t *testing.T) {
	id, offeringID := uuid.New(), uuid.New()
	incoming := baseUpdate(id, offeringID)
	incoming.Status.Type = "FUTURE_STATUS"

	_, err := Merge(storedRecord(id, offeringID), incoming)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnrecognizedStatus))
}

func TestMergePreservesHiddenStateBitForBit(t *testing.T) {
	id, offeringID := uuid.New(), uuid.New()
	staffID := uuid.New()
	hiddenAt := time.Date(2023, 2, 20, 14, 3, 27, 123456789, time.UTC)

	prev := storedRecord(id, offeringID)
	prev.Status = models.StatusWaitlist
	prev.HiddenByStaffID = &staffID
	prev.HiddenAt = &hiddenAt

	incoming := baseUpdate(id, offeringID)
	incoming.Status.Type = models.RawStatusPendingRegistration

	record, err := Merge(prev, incoming)
	require.NoError(t, err)
	require.True(t, record.Hidden())
	assert.Equal(t, staffID, *record.HiddenByStaffID)
	assert.True(t, hiddenAt.Equal(*record.HiddenAt))
}

func TestMergeForciblyRevealsOnActiveStatus(t *testing.T) {
	id, offeringID := uuid.New(), uuid.New()
	staffID := uuid.New()
	hiddenAt := time.Now()

	prev := storedRecord(id, offeringID)
	prev.Status = models.StatusPendingRegistration
	prev.HiddenByStaffID = &staffID
	prev.HiddenAt = &hiddenAt

	incoming := baseUpdate(id, offeringID)
	incoming.Status.Type = models.RawStatusApplied
	incoming.IsCourseParticipation = true

	record, err := Merge(prev, incoming)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplied, record.Status)
	assert.False(t, record.Hidden())
}

func TestMergeMalformedHiddenState(t *testing.T) {
	id, offeringID := uuid.New(), uuid.New()
	staffID := uuid.New()

	prev := storedRecord(id, offeringID)
	prev.HiddenByStaffID = &staffID

	_, err := Merge(prev, baseUpdate(id, offeringID))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrMalformedHiddenState))
}

func TestMergeLegacyNote(t *testing.T) {
	id, offeringID := uuid.New(), uuid.New()

	prev := storedRecord(id, offeringID)
	prev.LegacyNote = strPtr("keep me")

	// Absent note on the update preserves the stored one.
	record, err := Merge(prev, baseUpdate(id, offeringID))
	require.NoError(t, err)
	require.NotNil(t, record.LegacyNote)
	assert.Equal(t, "keep me", *record.LegacyNote)

	// An explicit empty string is a value and wins.
	cleared := baseUpdate(id, offeringID)
	cleared.LegacyNote = strPtr("")
	record, err = Merge(prev, cleared)
	require.NoError(t, err)
	require.NotNil(t, record.LegacyNote)
	assert.Equal(t, "", *record.LegacyNote)

	// So does a new non-empty value.
	replaced := baseUpdate(id, offeringID)
	replaced.LegacyNote = strPtr("new note")
	record, err = Merge(prev, replaced)
	require.NoError(t, err)
	assert.Equal(t, "new note", *record.LegacyNote)
}

func TestMergeHistoryReplacedNotUnioned(t *testing.T) {
	id, offeringID := uuid.New(), uuid.New()

	storedEvent := models.RawHistoryEvent{
		ID:         uuid.New(),
		Type:       models.HistoryEventArrangerChange,
		CreatedAt:  date(2023, 1, 5),
		ArrangerID: uuid.New(),
	}
	prev := storedRecord(id, offeringID)
	prev.History = []models.RawHistoryEvent{storedEvent}

	// nil history keeps the stored events.
	record, err := Merge(prev, baseUpdate(id, offeringID))
	require.NoError(t, err)
	require.Len(t, record.History, 1)
	assert.Equal(t, storedEvent.ID, record.History[0].ID)

	// A non-nil list replaces them wholesale, including the empty list.
	replacement := models.RawHistoryEvent{
		ID:         uuid.New(),
		Type:       models.HistoryEventArrangerAssessment,
		CreatedAt:  date(2023, 2, 5),
		ArrangerID: uuid.New(),
	}
	withHistory := baseUpdate(id, offeringID)
	withHistory.History = []models.RawHistoryEvent{replacement}
	record, err = Merge(prev, withHistory)
	require.NoError(t, err)
	require.Len(t, record.History, 1)
	assert.Equal(t, replacement.ID, record.History[0].ID)

	emptied := baseUpdate(id, offeringID)
	emptied.History = []models.RawHistoryEvent{}
	record, err = Merge(prev, emptied)
	require.NoError(t, err)
	assert.Empty(t, record.History)
}

func TestMergeUpstreamOwnsEverythingElse(t *testing.T) {
	id, offeringID := uuid.New(), uuid.New()

	prev := storedRecord(id, offeringID)
	prev.FirstName = "Old"
	prev.Email = strPtr("old@example.com")
	prev.ManuallyShared = true

	incoming := baseUpdate(id, offeringID)
	incoming.Personalia.Name.First = "New"
	incoming.Personalia.Contact.Email = nil
	incoming.Personalia.AddressProtection = strPtr("STRICT")
	incoming.Status.ReasonCode = strPtr("FATT_JOBB")
	incoming.Status.ReasonDescription = strPtr("Got a job")
	incoming.ManuallyShared = false

	record, err := Merge(prev, incoming)
	require.NoError(t, err)
	assert.Equal(t, "New", record.FirstName)
	assert.Nil(t, record.Email)
	assert.True(t, record.AddressProtected)
	assert.False(t, record.ManuallyShared)
	require.NotNil(t, record.StatusReason)
	assert.Equal(t, "FATT_JOBB", record.StatusReason.Code)
	require.NotNil(t, record.StatusReason.Description)
	assert.Equal(t, "Got a job", *record.StatusReason.Description)
}

func TestMergeDeterministic(t *testing.T) {
	id, offeringID := uuid.New(), uuid.New()
	prev := storedRecord(id, offeringID)
	incoming := baseUpdate(id, offeringID)

	a, err := Merge(prev, incoming)
	require.NoError(t, err)
	b, err := Merge(prev, incoming)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
