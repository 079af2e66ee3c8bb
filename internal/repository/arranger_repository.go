package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tiltakhub/participant-api/internal/models"
)

// ArrangerRepository provides read access to the arranger directory.
type ArrangerRepository struct {
	db *sqlx.DB
}

// NewArrangerRepository constructs an ArrangerRepository.
func NewArrangerRepository(db *sqlx.DB) *ArrangerRepository {
	return &ArrangerRepository{db: db}
}

// FindByID returns a single arranger organization.
func (r *ArrangerRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Arranger, error) {
	const query = `SELECT id, name, org_number, parent_id FROM arrangers WHERE id = $1 LIMIT 1`
	var arranger models.Arranger
	if err := r.db.GetContext(ctx, &arranger, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find arranger: %w", err)
	}
	return &arranger, nil
}

// FindByIDs returns the arrangers for the given set of ids. Unknown ids are
// simply absent from the result.
func (r *ArrangerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Arranger, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, name, org_number, parent_id FROM arrangers WHERE id = ANY($1)`
	var arrangers []models.Arranger
	if err := r.db.SelectContext(ctx, &arrangers, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find arrangers: %w", err)
	}
	return arrangers, nil
}
