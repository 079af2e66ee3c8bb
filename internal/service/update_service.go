package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tiltakhub/participant-api/internal/dto"
	"github.com/tiltakhub/participant-api/internal/models"
	"github.com/tiltakhub/participant-api/internal/reconcile"
	appErrors "github.com/tiltakhub/participant-api/pkg/errors"
)

type updateStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.ParticipantRecord, error)
	Upsert(ctx context.Context, rec *models.ParticipantRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UpdateService applies upstream participant events to local storage. Each
// event is reconciled against the stored record before the write, so locally
// owned state survives upstream overwrites.
type UpdateService struct {
	store   updateStore
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewUpdateService constructs an UpdateService.
func NewUpdateService(store updateStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *UpdateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// Apply reconciles one upstream update payload and persists the result. A
// contract violation aborts the apply with no write; the caller decides
// whether the event is retried.
func (s *UpdateService) Apply(ctx context.Context, payload []byte) error {
	start := time.Now()

	var incoming dto.ParticipantUpdate
	if err := json.Unmarshal(payload, &incoming); err != nil {
		s.observe("rejected", start)
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed participant update")
	}
	if incoming.ID == uuid.Nil {
		s.observe("rejected", start)
		return appErrors.Clone(appErrors.ErrValidation, "participant update without id")
	}

	previous, err := s.store.Get(ctx, incoming.ID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.observe("rejected", start)
			return fmt.Errorf("load stored record: %w", err)
		}
		previous = nil
	}

	record, err := reconcile.Merge(previous, incoming)
	if err != nil {
		s.observe("rejected", start)
		s.logger.Error("participant update rejected",
			zap.String("participant_id", incoming.ID.String()),
			zap.Error(err))
		return err
	}

	if err := s.store.Upsert(ctx, record); err != nil {
		s.observe("rejected", start)
		return fmt.Errorf("persist record: %w", err)
	}

	s.invalidate(ctx, record.OfferingID, record.ID)
	s.observe("applied", start)
	s.logger.Debug("participant update applied",
		zap.String("participant_id", record.ID.String()),
		zap.String("status", string(record.Status)))
	return nil
}

// ApplyTombstone removes the stored record for a participant the upstream has
// deleted.
func (s *UpdateService) ApplyTombstone(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	previous, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.observe("tombstone", start)
			return nil
		}
		s.observe("rejected", start)
		return fmt.Errorf("load stored record: %w", err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.observe("rejected", start)
		return fmt.Errorf("delete record: %w", err)
	}

	s.invalidate(ctx, previous.OfferingID, id)
	s.observe("tombstone", start)
	s.logger.Info("participant record deleted", zap.String("participant_id", id.String()))
	return nil
}

func (s *UpdateService) observe(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveUpdateApplied(outcome, time.Since(start))
	}
}

func (s *UpdateService) invalidate(ctx context.Context, offeringID, participantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("roster:%s:*", offeringID))
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("history:%s", participantID))
}
