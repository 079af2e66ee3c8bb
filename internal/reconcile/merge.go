package reconcile

import (
	"fmt"

	"github.com/tiltakhub/participant-api/internal/dto"
	"github.com/tiltakhub/participant-api/internal/models"
	appErrors "github.com/tiltakhub/participant-api/pkg/errors"
)

// Merge reconciles an incoming upstream update with the previously stored
// record (nil when the participant is new) and returns the record to
// persist. The upstream is authoritative for every field except the ones
// with an explicit local-ownership rule:
//
//   - hidden-state survives only while the new status is always-hide-eligible
//   - the legacy note survives unless the update carries an explicit value
//   - stored history survives unless the update carries a replacement list
//
// Merge performs no I/O and either returns a fully populated record or a
// contract violation; there is no partial result.
func Merge(previous *models.ParticipantRecord, incoming dto.ParticipantUpdate) (*models.ParticipantRecord, error) {
	if previous != nil && (previous.ID != incoming.ID || previous.OfferingID != incoming.OfferingID) {
		return nil, appErrors.Clone(appErrors.ErrIdentityMismatch,
			fmt.Sprintf("update %s/%s does not match stored record %s/%s",
				incoming.ID, incoming.OfferingID, previous.ID, previous.OfferingID))
	}

	status, err := ClassifyStatus(incoming.Status.Type, incoming.IsCourseParticipation)
	if err != nil {
		return nil, err
	}

	hidden, err := ResolveHiddenState(previous, status)
	if err != nil {
		return nil, err
	}

	legacyNote := incoming.LegacyNote
	if legacyNote == nil && previous != nil {
		legacyNote = previous.LegacyNote
	}

	history := incoming.History
	if history == nil && previous != nil {
		history = previous.History
	}
	if history == nil {
		history = []models.RawHistoryEvent{}
	}

	var reason *models.StatusReason
	if incoming.Status.ReasonCode != nil {
		reason = &models.StatusReason{
			Code:        *incoming.Status.ReasonCode,
			Description: incoming.Status.ReasonDescription,
		}
	}

	record := &models.ParticipantRecord{
		ID:         incoming.ID,
		OfferingID: incoming.OfferingID,

		PersonIdent:      incoming.Personalia.PersonIdent,
		FirstName:        incoming.Personalia.Name.First,
		MiddleName:       incoming.Personalia.Name.Middle,
		LastName:         incoming.Personalia.Name.Last,
		Phone:            incoming.Personalia.Contact.Phone,
		Email:            incoming.Personalia.Contact.Email,
		Address:          incoming.Personalia.Address,
		Shielded:         incoming.Personalia.Shielded,
		AddressProtected: incoming.Personalia.AddressProtection != nil,

		Status:              status,
		StatusCreatedAt:     incoming.Status.CreatedAt,
		StatusEffectiveFrom: incoming.Status.EffectiveFrom,
		StatusReason:        reason,

		DaysPerWeek:          incoming.DaysPerWeek,
		ParticipationPercent: incoming.ParticipationPercent,
		StartDate:            incoming.StartDate,
		EndDate:              incoming.EndDate,
		AppliedAt:            incoming.AppliedAt,

		LegacyNote: legacyNote,

		CaseOfficeName: incoming.CaseOfficeName,
		CaseOfficer:    incoming.CaseOfficer,

		HiddenByStaffID: hidden.ByStaffID,
		HiddenAt:        hidden.At,

		Assessments:       incoming.Assessments,
		History:           history,
		EnrollmentPeriods: incoming.EnrollmentPeriods,

		Source:          incoming.Source,
		LastModified:    incoming.LastModified,
		FirstDecisionAt: incoming.FirstDecisionAt,
		ManuallyShared:  incoming.ManuallyShared,
	}

	return record, nil
}
