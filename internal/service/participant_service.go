package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tiltakhub/participant-api/internal/dto"
	"github.com/tiltakhub/participant-api/internal/models"
	"github.com/tiltakhub/participant-api/internal/reconcile"
	appErrors "github.com/tiltakhub/participant-api/pkg/errors"
)

type participantStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.ParticipantRecord, error)
	SetHidden(ctx context.Context, id, staffID uuid.UUID, at time.Time) error
	ClearHidden(ctx context.Context, id uuid.UUID) error
	UpdateAssessments(ctx context.Context, id uuid.UUID, ledger []models.AssessmentRecord) error
	ListByOffering(ctx context.Context, filter models.ParticipantFilter) ([]models.ParticipantRecord, int, error)
}

type arrangerDirectory interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Arranger, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ParticipantService serves the staff-facing read and command operations on
// reconciled participant records.
type ParticipantService struct {
	store     participantStore
	arrangers arrangerDirectory
	audit     auditWriter
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger

	rosterTTL  time.Duration
	historyTTL time.Duration
	now        func() time.Time
}

// NewParticipantService constructs a ParticipantService.
func NewParticipantService(store participantStore, arrangers arrangerDirectory, audit auditWriter, cache *CacheService, validate *validator.Validate, logger *zap.Logger, rosterTTL, historyTTL time.Duration) *ParticipantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ParticipantService{
		store:      store,
		arrangers:  arrangers,
		audit:      audit,
		cache:      cache,
		validator:  validate,
		logger:     logger,
		rosterTTL:  rosterTTL,
		historyTTL: historyTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Get returns a participant with the per-request computed fields: whether any
// enrollment period covers today, and the current assessment of the ledger.
func (s *ParticipantService) Get(ctx context.Context, id uuid.UUID) (*dto.ParticipantDetail, error) {
	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &dto.ParticipantDetail{
		ParticipantRecord: *rec,
		ActivelyEnrolled:  reconcile.AnyPeriodActive(rec.EnrollmentPeriods, s.now()),
		CurrentAssessment: reconcile.CurrentAssessment(rec.Assessments),
	}
	return detail, nil
}

// GetHistory returns the projected history of a participant, newest first,
// with the acting arrangers' display names resolved.
func (s *ParticipantService) GetHistory(ctx context.Context, id uuid.UUID) (*dto.HistoryResponse, error) {
	cacheKey := fmt.Sprintf("history:%s", id)
	if s.cache != nil {
		var cached dto.HistoryResponse
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	events := make([]models.RawHistoryEvent, len(rec.History))
	copy(events, rec.History)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})

	lookup, err := s.arrangerLookup(ctx, events)
	if err != nil {
		return nil, err
	}

	resp := &dto.HistoryResponse{Entries: reconcile.ProjectHistory(events, lookup)}
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, resp, s.historyTTL)
	}
	return resp, nil
}

// RegisterAssessment appends a staff assessment to the participant's ledger.
// Assessments can only be registered while the participant is being assessed.
func (s *ParticipantService) RegisterAssessment(ctx context.Context, id uuid.UUID, claims *models.JWTClaims, req dto.RegisterAssessmentRequest) (*models.AssessmentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}

	staffID, err := uuid.Parse(claims.StaffID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid staff identity")
	}

	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.StatusAssessing {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "assessments can only be registered while the participant is being assessed")
	}

	assessment := models.AssessmentRecord{
		ID:            uuid.New(),
		ParticipantID: rec.ID,
		AuthorStaffID: staffID,
		Type:          req.Type,
		Justification: req.Justification,
		CreatedAt:     s.now(),
	}
	ledger := reconcile.AppendAssessment(rec.Assessments, assessment)

	if err := s.store.UpdateAssessments(ctx, rec.ID, ledger); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store assessment")
	}

	s.writeAudit(ctx, claims, models.AuditActionAssessmentRegister, rec.ID, []byte(fmt.Sprintf(`{"type":%q}`, assessment.Type)))
	s.invalidate(ctx, rec)

	return &assessment, nil
}

// Hide marks a participant hidden on the arranger's roster. Only participants
// in a hide-eligible or concluded lifecycle state can be hidden.
func (s *ParticipantService) Hide(ctx context.Context, id uuid.UUID, claims *models.JWTClaims) error {
	staffID, err := uuid.Parse(claims.StaffID)
	if err != nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "invalid staff identity")
	}

	rec, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !reconcile.HideableByStaff(rec.Status) {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "participant cannot be hidden in the current status")
	}

	if err := s.store.SetHidden(ctx, rec.ID, staffID, s.now()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hide participant")
	}

	s.writeAudit(ctx, claims, models.AuditActionParticipantHide, rec.ID, nil)
	s.invalidate(ctx, rec)
	return nil
}

// Unhide removes the hide override from a participant.
func (s *ParticipantService) Unhide(ctx context.Context, id uuid.UUID, claims *models.JWTClaims) error {
	rec, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.ClearHidden(ctx, rec.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unhide participant")
	}

	s.writeAudit(ctx, claims, models.AuditActionParticipantUnhide, rec.ID, nil)
	s.invalidate(ctx, rec)
	return nil
}

// ListByOffering returns the visible roster of an offering.
func (s *ParticipantService) ListByOffering(ctx context.Context, filter models.ParticipantFilter) (*dto.RosterResponse, error) {
	cacheKey := fmt.Sprintf("roster:%s:%s:%d:%d", filter.OfferingID, filter.Status, filter.Page, filter.PageSize)
	if s.cache != nil {
		var cached dto.RosterResponse
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	records, total, err := s.store.ListByOffering(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list participants")
	}

	entries := make([]dto.RosterEntry, 0, len(records))
	for i := range records {
		rec := &records[i]
		entries = append(entries, dto.RosterEntry{
			ID:                rec.ID,
			FirstName:         rec.FirstName,
			MiddleName:        rec.MiddleName,
			LastName:          rec.LastName,
			Status:            rec.Status,
			StartDate:         rec.StartDate,
			EndDate:           rec.EndDate,
			CurrentAssessment: reconcile.CurrentAssessment(rec.Assessments),
		})
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}

	resp := &dto.RosterResponse{
		Participants: entries,
		Pagination:   models.Pagination{Page: page, PageSize: size, TotalCount: total},
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, resp, s.rosterTTL)
	}
	return resp, nil
}

func (s *ParticipantService) load(ctx context.Context, id uuid.UUID) (*models.ParticipantRecord, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "participant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participant")
	}
	return rec, nil
}

func (s *ParticipantService) arrangerLookup(ctx context.Context, events []models.RawHistoryEvent) (reconcile.ArrangerNameLookup, error) {
	seen := make(map[uuid.UUID]struct{}, len(events))
	ids := make([]uuid.UUID, 0, len(events))
	for _, ev := range events {
		if _, ok := seen[ev.ArrangerID]; ok {
			continue
		}
		seen[ev.ArrangerID] = struct{}{}
		ids = append(ids, ev.ArrangerID)
	}

	arrangers, err := s.arrangers.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve arrangers")
	}

	names := make(map[uuid.UUID]string, len(arrangers))
	for _, a := range arrangers {
		names[a.ID] = a.Name
	}
	return func(id uuid.UUID) (string, bool) {
		name, ok := names[id]
		return name, ok
	}, nil
}

func (s *ParticipantService) writeAudit(ctx context.Context, claims *models.JWTClaims, action string, participantID uuid.UUID, payload []byte) {
	if s.audit == nil {
		return
	}
	resourceID := participantID.String()
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		StaffID:    &claims.StaffID,
		Action:     action,
		Resource:   "participants",
		ResourceID: &resourceID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func (s *ParticipantService) invalidate(ctx context.Context, rec *models.ParticipantRecord) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("roster:%s:*", rec.OfferingID))
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("history:%s", rec.ID))
}
