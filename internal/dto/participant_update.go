package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiltakhub/participant-api/internal/models"
)

// PersonName carries the legal name parts of a participant.
type PersonName struct {
	First  string  `json:"first"`
	Middle *string `json:"middle,omitempty"`
	Last   string  `json:"last"`
}

// ContactInfo carries the participant's contact details.
type ContactInfo struct {
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

// Personalia groups the person fields of an upstream update.
type Personalia struct {
	PersonIdent string          `json:"person_ident"`
	Name        PersonName      `json:"name"`
	Contact     ContactInfo     `json:"contact"`
	Address     *models.Address `json:"address,omitempty"`
	Shielded    bool            `json:"shielded"`
	// AddressProtection is the upstream protection gradation; any non-nil
	// value marks the address as protected.
	AddressProtection *string `json:"address_protection,omitempty"`
}

// StatusUpdate is the raw status block of an upstream update.
type StatusUpdate struct {
	Type              models.RawStatus `json:"type"`
	CreatedAt         time.Time        `json:"created_at"`
	EffectiveFrom     *time.Time       `json:"effective_from,omitempty"`
	ReasonCode        *string          `json:"reason_code,omitempty"`
	ReasonDescription *string          `json:"reason_description,omitempty"`
}

// ParticipantUpdate is one upstream participant event as consumed from the
// participant-updates topic. Optional fields distinguish "absent" (preserve
// the stored value where the merge contract says so) from an explicit value.
type ParticipantUpdate struct {
	ID         uuid.UUID `json:"id"`
	OfferingID uuid.UUID `json:"offering_id"`

	Personalia Personalia   `json:"personalia"`
	Status     StatusUpdate `json:"status"`

	DaysPerWeek          *float64   `json:"days_per_week,omitempty"`
	ParticipationPercent *float64   `json:"participation_percent,omitempty"`
	StartDate            *time.Time `json:"start_date,omitempty"`
	EndDate              *time.Time `json:"end_date,omitempty"`
	AppliedAt            time.Time  `json:"applied_at"`

	// LegacyNote: nil means the upstream did not carry the field and the
	// stored note survives; a non-nil value (empty string included) wins.
	LegacyNote *string `json:"legacy_note,omitempty"`

	CaseOfficeName *string             `json:"case_office_name,omitempty"`
	CaseOfficer    *models.CaseOfficer `json:"case_officer,omitempty"`

	// IsCourseParticipation selects the course variant of the APPLIED status.
	IsCourseParticipation bool `json:"is_course_participation"`

	Assessments []models.AssessmentRecord `json:"assessments,omitempty"`

	// History: nil keeps the stored events; a non-nil list replaces them
	// wholesale (never merged).
	History []models.RawHistoryEvent `json:"history,omitempty"`

	Source          string     `json:"source"`
	LastModified    time.Time  `json:"last_modified"`
	FirstDecisionAt *time.Time `json:"first_decision_at,omitempty"`
	ManuallyShared  bool       `json:"manually_shared"`

	EnrollmentPeriods []models.EnrollmentPeriod `json:"enrollment_periods,omitempty"`
}
