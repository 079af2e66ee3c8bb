package models

import (
	"time"

	"github.com/google/uuid"
)

// RawStatus is the participant status exactly as the upstream system of
// record reports it. Raw statuses are normalized into a CanonicalStatus
// before storage; an unknown raw status is rejected at the ingestion
// boundary.
type RawStatus string

const (
	RawStatusWaitingToStart      RawStatus = "WAITING_TO_START"
	RawStatusParticipating       RawStatus = "PARTICIPATING"
	RawStatusApplied             RawStatus = "APPLIED"
	RawStatusAssessing           RawStatus = "ASSESSING"
	RawStatusWaitlist            RawStatus = "WAITLIST"
	RawStatusPendingRegistration RawStatus = "PENDING_REGISTRATION"
	RawStatusMisregistered       RawStatus = "MISREGISTERED"
	RawStatusEnrollmentDraft     RawStatus = "ENROLLMENT_DRAFT"
	RawStatusAbandonedDraft      RawStatus = "ABANDONED_DRAFT"
	RawStatusLeft                RawStatus = "LEFT"
	RawStatusNotApplicable       RawStatus = "NOT_APPLICABLE"
	RawStatusAborted             RawStatus = "ABORTED"
	RawStatusCompleted           RawStatus = "COMPLETED"
)

// CanonicalStatus is the locally normalized lifecycle state used for storage
// and display. The raw APPLIED status bifurcates: for course participations
// it stays APPLIED, otherwise it is stored as WAITING_TO_START.
type CanonicalStatus string

const (
	StatusWaitingToStart      CanonicalStatus = "WAITING_TO_START"
	StatusParticipating       CanonicalStatus = "PARTICIPATING"
	StatusApplied             CanonicalStatus = "APPLIED"
	StatusAssessing           CanonicalStatus = "ASSESSING"
	StatusWaitlist            CanonicalStatus = "WAITLIST"
	StatusPendingRegistration CanonicalStatus = "PENDING_REGISTRATION"
	StatusMisregistered       CanonicalStatus = "MISREGISTERED"
	StatusEnrollmentDraft     CanonicalStatus = "ENROLLMENT_DRAFT"
	StatusAbandonedDraft      CanonicalStatus = "ABANDONED_DRAFT"
	StatusLeft                CanonicalStatus = "LEFT"
	StatusNotApplicable       CanonicalStatus = "NOT_APPLICABLE"
	StatusAborted             CanonicalStatus = "ABORTED"
	StatusCompleted           CanonicalStatus = "COMPLETED"
)

// StatusReason carries the upstream reason code and optional free text
// attached to a status change.
type StatusReason struct {
	Code        string  `json:"code"`
	Description *string `json:"description,omitempty"`
}

// Address is the participant's registered address snapshot.
type Address struct {
	Type       string  `json:"type"`
	StreetName *string `json:"street_name,omitempty"`
	PostalCode string  `json:"postal_code"`
	PostalCity string  `json:"postal_city"`
	Extra      *string `json:"extra,omitempty"`
}

// CaseOfficer is the snapshot of the responsible Nav case officer carried on
// each upstream update.
type CaseOfficer struct {
	ID    uuid.UUID `json:"id"`
	Name  *string   `json:"name,omitempty"`
	Email *string   `json:"email,omitempty"`
	Phone *string   `json:"phone,omitempty"`
}

// AssessmentType classifies a staff assessment of the participant.
type AssessmentType string

const (
	AssessmentMeetsRequirements       AssessmentType = "MEETS_REQUIREMENTS"
	AssessmentDoesNotMeetRequirements AssessmentType = "DOES_NOT_MEET_REQUIREMENTS"
)

// AssessmentRecord is a staff-authored evaluation of a participant. Records
// are immutable once created and never deleted; the ledger on the
// participant is append-only.
type AssessmentRecord struct {
	ID            uuid.UUID      `json:"id"`
	ParticipantID uuid.UUID      `json:"participant_id"`
	AuthorStaffID uuid.UUID      `json:"author_staff_id"`
	Type          AssessmentType `json:"type"`
	Justification *string        `json:"justification,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// EnrollmentPeriod is a dated interval during which the participant is under
// a program's follow-up. A nil End means the period is open-ended.
type EnrollmentPeriod struct {
	ID    uuid.UUID  `json:"id"`
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// ParticipantRecord is the locally persisted view of an upstream participant.
// It is produced exclusively by the reconciliation merge; the storage layer
// owns the persisted copy and hands out snapshots.
type ParticipantRecord struct {
	ID         uuid.UUID `json:"id"`
	OfferingID uuid.UUID `json:"offering_id"`

	PersonIdent      string   `json:"person_ident"`
	FirstName        string   `json:"first_name"`
	MiddleName       *string  `json:"middle_name,omitempty"`
	LastName         string   `json:"last_name"`
	Phone            *string  `json:"phone,omitempty"`
	Email            *string  `json:"email,omitempty"`
	Address          *Address `json:"address,omitempty"`
	Shielded         bool     `json:"shielded"`
	AddressProtected bool     `json:"address_protected"`

	Status              CanonicalStatus `json:"status"`
	StatusCreatedAt     time.Time       `json:"status_created_at"`
	StatusEffectiveFrom *time.Time      `json:"status_effective_from,omitempty"`
	StatusReason        *StatusReason   `json:"status_reason,omitempty"`

	DaysPerWeek          *float64   `json:"days_per_week,omitempty"`
	ParticipationPercent *float64   `json:"participation_percent,omitempty"`
	StartDate            *time.Time `json:"start_date,omitempty"`
	EndDate              *time.Time `json:"end_date,omitempty"`
	AppliedAt            time.Time  `json:"applied_at"`

	// LegacyNote is the free-text ordering note carried over from the legacy
	// upstream. It is only ever cleared by an explicit incoming value; an
	// absent value on an update preserves what is stored.
	LegacyNote *string `json:"legacy_note,omitempty"`

	CaseOfficeName *string      `json:"case_office_name,omitempty"`
	CaseOfficer    *CaseOfficer `json:"case_officer,omitempty"`

	// Hidden-state. Both fields are set or both are nil; anything else is an
	// invariant violation surfaced as ErrMalformedHiddenState.
	HiddenByStaffID *uuid.UUID `json:"hidden_by_staff_id,omitempty"`
	HiddenAt        *time.Time `json:"hidden_at,omitempty"`

	Assessments       []AssessmentRecord `json:"assessments"`
	History           []RawHistoryEvent  `json:"history"`
	EnrollmentPeriods []EnrollmentPeriod `json:"enrollment_periods"`

	Source          string     `json:"source"`
	LastModified    time.Time  `json:"last_modified"`
	FirstDecisionAt *time.Time `json:"first_decision_at,omitempty"`
	ManuallyShared  bool       `json:"manually_shared"`
}

// Hidden reports whether the record is currently hidden by staff.
func (p *ParticipantRecord) Hidden() bool {
	return p != nil && p.HiddenByStaffID != nil && p.HiddenAt != nil
}

// ParticipantFilter provides filters for listing participants of an offering.
type ParticipantFilter struct {
	OfferingID uuid.UUID
	Status     CanonicalStatus
	Page       int
	PageSize   int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
