package models

import "github.com/google/uuid"

// Arranger is an organization in the arranger directory. ParentID points to
// the umbrella organization when the arranger is a local branch.
type Arranger struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	OrgNumber string     `db:"org_number" json:"org_number"`
	ParentID  *uuid.UUID `db:"parent_id" json:"parent_id,omitempty"`
}
