package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tiltakhub/participant-api/internal/dto"
	"github.com/tiltakhub/participant-api/internal/models"
	appErrors "github.com/tiltakhub/participant-api/pkg/errors"
	"github.com/tiltakhub/participant-api/pkg/response"
)

type participantService interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.ParticipantDetail, error)
	GetHistory(ctx context.Context, id uuid.UUID) (*dto.HistoryResponse, error)
	RegisterAssessment(ctx context.Context, id uuid.UUID, claims *models.JWTClaims, req dto.RegisterAssessmentRequest) (*models.AssessmentRecord, error)
	Hide(ctx context.Context, id uuid.UUID, claims *models.JWTClaims) error
	Unhide(ctx context.Context, id uuid.UUID, claims *models.JWTClaims) error
	ListByOffering(ctx context.Context, filter models.ParticipantFilter) (*dto.RosterResponse, error)
}

// ParticipantHandler wires HTTP endpoints to the participant service.
type ParticipantHandler struct {
	service participantService
}

// NewParticipantHandler creates a new handler.
func NewParticipantHandler(svc participantService) *ParticipantHandler {
	return &ParticipantHandler{service: svc}
}

// Get godoc
// @Summary Get participant
// @Description Returns a participant record with computed enrollment and assessment state
// @Tags Participants
// @Produce json
// @Param id path string true "Participant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /participants/{id} [get]
func (h *ParticipantHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// History godoc
// @Summary Participant history
// @Description Returns the participant's history, newest first, with arranger display names
// @Tags Participants
// @Produce json
// @Param id path string true "Participant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /participants/{id}/history [get]
func (h *ParticipantHandler) History(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	history, err := h.service.GetHistory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, history, nil)
}

// RegisterAssessment godoc
// @Summary Register assessment
// @Description Appends a staff assessment to the participant's ledger
// @Tags Participants
// @Accept json
// @Produce json
// @Param id path string true "Participant ID"
// @Param payload body dto.RegisterAssessmentRequest true "Assessment payload"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /participants/{id}/assessments [post]
func (h *ParticipantHandler) RegisterAssessment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.RegisterAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assessment payload"))
		return
	}

	created, err := h.service.RegisterAssessment(c.Request.Context(), id, claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, created)
}

// Hide godoc
// @Summary Hide participant
// @Description Hides the participant from the arranger's roster
// @Tags Participants
// @Produce json
// @Param id path string true "Participant ID"
// @Success 204 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /participants/{id} [delete]
func (h *ParticipantHandler) Hide(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Hide(c.Request.Context(), id, claims); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Unhide godoc
// @Summary Unhide participant
// @Description Removes the hide override from a participant
// @Tags Participants
// @Produce json
// @Param id path string true "Participant ID"
// @Success 204 {object} response.Envelope
// @Router /participants/{id}/unhide [post]
func (h *ParticipantHandler) Unhide(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Unhide(c.Request.Context(), id, claims); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Roster godoc
// @Summary Offering roster
// @Description Returns the visible participants of an offering, paginated
// @Tags Offerings
// @Produce json
// @Param id path string true "Offering ID"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /offerings/{id}/participants [get]
func (h *ParticipantHandler) Roster(c *gin.Context) {
	offeringID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	filter := models.ParticipantFilter{
		OfferingID: offeringID,
		Status:     models.CanonicalStatus(c.Query("status")),
		Page:       page,
		PageSize:   pageSize,
	}

	roster, err := h.service.ListByOffering(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, roster.Participants, &roster.Pagination)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
