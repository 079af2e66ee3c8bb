package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiltakhub/participant-api/internal/models"
)

// ParticipantDetail is the read model returned for a single participant. It
// carries the stored record plus the values computed per request.
type ParticipantDetail struct {
	models.ParticipantRecord

	// ActivelyEnrolled reports whether any enrollment period covers today.
	ActivelyEnrolled bool `json:"actively_enrolled"`
	// CurrentAssessment is the latest entry of the assessment ledger, nil when
	// no assessment has been registered.
	CurrentAssessment *models.AssessmentRecord `json:"current_assessment,omitempty"`
}

// RosterEntry is one line of an offering roster listing.
type RosterEntry struct {
	ID                uuid.UUID                `json:"id"`
	FirstName         string                   `json:"first_name"`
	MiddleName        *string                  `json:"middle_name,omitempty"`
	LastName          string                   `json:"last_name"`
	Status            models.CanonicalStatus   `json:"status"`
	StartDate         *time.Time               `json:"start_date,omitempty"`
	EndDate           *time.Time               `json:"end_date,omitempty"`
	CurrentAssessment *models.AssessmentRecord `json:"current_assessment,omitempty"`
}

// RosterResponse is the paginated roster of an offering.
type RosterResponse struct {
	Participants []RosterEntry     `json:"participants"`
	Pagination   models.Pagination `json:"pagination"`
}

// RegisterAssessmentRequest is the payload for registering an assessment.
type RegisterAssessmentRequest struct {
	Type          models.AssessmentType `json:"type" validate:"required,oneof=MEETS_REQUIREMENTS DOES_NOT_MEET_REQUIREMENTS"`
	Justification *string               `json:"justification,omitempty"`
}

// HistoryResponse is the projected history of a participant, newest first.
type HistoryResponse struct {
	Entries []models.HistoryEntry `json:"entries"`
}
