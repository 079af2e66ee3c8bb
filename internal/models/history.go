package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEventType tags the variants of the participant history union.
type HistoryEventType string

const (
	// HistoryEventArrangerChange is a change request submitted by the
	// arranger organization (set start date, set end date, ...).
	HistoryEventArrangerChange HistoryEventType = "CHANGE_FROM_ARRANGER"
	// HistoryEventArrangerAssessment records that the arranger registered an
	// assessment of the participant.
	HistoryEventArrangerAssessment HistoryEventType = "ASSESSMENT_FROM_ARRANGER"
)

// ChangeKind is the sub-kind of an arranger change request.
type ChangeKind string

const (
	ChangeSetStartDate     ChangeKind = "SET_START_DATE"
	ChangeSetEndDate       ChangeKind = "SET_END_DATE"
	ChangeEndParticipation ChangeKind = "END_PARTICIPATION"
)

// ParticipationChange is the typed payload of a CHANGE_FROM_ARRANGER event.
// Only the fields relevant to the Kind are populated.
type ParticipationChange struct {
	Kind      ChangeKind `json:"kind"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Reason    *string    `json:"reason,omitempty"`
}

// RawHistoryEvent is a domain event exactly as stored on the participant
// record. The variant is selected by Type; the corresponding payload field is
// non-nil, the others nil.
type RawHistoryEvent struct {
	ID         uuid.UUID        `json:"id"`
	Type       HistoryEventType `json:"type"`
	CreatedAt  time.Time        `json:"created_at"`
	ArrangerID uuid.UUID        `json:"arranger_id"`

	Change     *ParticipationChange `json:"change,omitempty"`
	Assessment *AssessmentRecord    `json:"assessment,omitempty"`
}

// HistoryEntry is the normalized presentation form of a history event. The
// payload is carried through unchanged; the acting arranger's display name is
// resolved at projection time and left empty when unknown.
type HistoryEntry struct {
	ID           uuid.UUID        `json:"id"`
	Type         HistoryEventType `json:"type"`
	CreatedAt    time.Time        `json:"created_at"`
	ArrangerName string           `json:"arranger_name"`

	Change     *ParticipationChange `json:"change,omitempty"`
	Assessment *AssessmentRecord    `json:"assessment,omitempty"`
}
