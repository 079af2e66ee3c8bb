package reconcile

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiltakhub/participant-api/internal/models"
	appErrors "github.com/tiltakhub/participant-api/pkg/errors"
)

// HiddenState is the staff hide override on a record: who hid it and when.
// The zero value means not hidden. Both fields are set together or not at
// all.
type HiddenState struct {
	ByStaffID *uuid.UUID
	At        *time.Time
}

// Hidden reports whether the state marks the record as hidden.
func (h HiddenState) Hidden() bool {
	return h.ByStaffID != nil && h.At != nil
}

// ResolveHiddenState decides whether the stored hide survives a merge.
// Hiding is a staff action scoped to specific lifecycle states: it is
// preserved only while the new status stays in the always-hide-eligible
// subset, and any other status (concluding ones included) forcibly reveals
// the record. A stored record with exactly one hidden-state field set is an
// invariant violation and is never auto-repaired here.
func ResolveHiddenState(previous *models.ParticipantRecord, newStatus models.CanonicalStatus) (HiddenState, error) {
	if previous == nil {
		return HiddenState{}, nil
	}
	if (previous.HiddenByStaffID == nil) != (previous.HiddenAt == nil) {
		return HiddenState{}, appErrors.Clone(appErrors.ErrMalformedHiddenState, "")
	}
	if !previous.Hidden() {
		return HiddenState{}, nil
	}
	if !AlwaysHideEligible(newStatus) {
		return HiddenState{}, nil
	}
	return HiddenState{ByStaffID: previous.HiddenByStaffID, At: previous.HiddenAt}, nil
}
