package reconcile

import (
	"fmt"

	"github.com/tiltakhub/participant-api/internal/models"
	appErrors "github.com/tiltakhub/participant-api/pkg/errors"
)

// statusByRaw holds the 1:1 part of the raw-to-canonical mapping. The raw
// APPLIED status is handled separately because it bifurcates on course
// participation.
var statusByRaw = map[models.RawStatus]models.CanonicalStatus{
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

// alwaysHideEligible lists the pre-enrollment and abandoned-draft statuses
// for which a staff hide survives upstream resyncs. Owned here; other
// packages must go through the predicates.
var alwaysHideEligible = map[models.CanonicalStatus]struct{}{
	models.StatusWaitlist:            {},
	models.StatusPendingRegistration: {},
	models.StatusMisregistered:       {},
	models.StatusEnrollmentDraft:     {},
	models.StatusAbandonedDraft:      {},
}

// concluding lists the terminal statuses marking the end of a participant's
// engagement.
var concluding = map[models.CanonicalStatus]struct{}{
	models.StatusLeft:          {},
	models.StatusNotApplicable: {},
	models.StatusAborted:       {},
	models.StatusCompleted:     {},
}

// ClassifyStatus maps a raw upstream status to the canonical status used for
// storage and display. An unrecognized raw status is a contract violation
// and rejects the whole update.
func ClassifyStatus(raw models.RawStatus, isCourseParticipation bool) (models.CanonicalStatus, error) {
	if raw == models.RawStatusApplied {
		if isCourseParticipation {
			return models.StatusApplied, nil
		}
		return models.StatusWaitingToStart, nil
	}
	if status, ok := statusByRaw[raw]; ok {
		return status, nil
	}
	return "", appErrors.Clone(appErrors.ErrUnrecognizedStatus, fmt.Sprintf("unrecognized participant status %q", raw))
}

// AlwaysHideEligible reports whether a staff hide persists across resyncs
// while the participant holds this status.
func AlwaysHideEligible(status models.CanonicalStatus) bool {
	_, ok := alwaysHideEligible[status]
	return ok
}

// Concluding reports whether the status is terminal.
func Concluding(status models.CanonicalStatus) bool {
	_, ok := concluding[status]
	return ok
}

// HideableByStaff reports whether staff may hide a participant holding this
// status: the always-hide-eligible states plus the concluding ones.
func HideableByStaff(status models.CanonicalStatus) bool {
	return AlwaysHideEligible(status) || Concluding(status)
}
