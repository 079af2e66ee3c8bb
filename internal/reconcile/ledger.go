package reconcile

import "github.com/tiltakhub/participant-api/internal/models"

// AppendAssessment returns a new ledger with the assessment appended. The
// ledger is insertion-ordered and append-only; nothing is ever removed.
func AppendAssessment(ledger []models.AssessmentRecord, rec models.AssessmentRecord) []models.AssessmentRecord {
	out := make([]models.AssessmentRecord, 0, len(ledger)+1)
	out = append(out, ledger...)
	return append(out, rec)
}

// CurrentAssessment returns the entry with the latest creation timestamp, or
// nil for an empty ledger. Equal timestamps resolve to the latest appended
// entry.
func CurrentAssessment(ledger []models.AssessmentRecord) *models.AssessmentRecord {
	var current *models.AssessmentRecord
	for i := range ledger {
		if current == nil || !ledger[i].CreatedAt.Before(current.CreatedAt) {
			current = &ledger[i]
		}
	}
	return current
}
