package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiltakhub/participant-api/internal/dto"
	"github.com/tiltakhub/participant-api/internal/middleware"
	"github.com/tiltakhub/participant-api/internal/models"
	appErrors "github.com/tiltakhub/participant-api/pkg/errors"
)

type participantServiceMock struct {
	getResp     *dto.ParticipantDetail
	getErr      error
	historyResp *dto.HistoryResponse
	historyErr  error
	createdResp *models.AssessmentRecord
	createErr   error
	hideErr     error
	unhideErr   error
	rosterResp  *dto.RosterResponse
	rosterErr   error

	hideCalled   bool
	unhideCalled bool
	lastFilter   models.ParticipantFilter
}

func (m *participantServiceMock) Get(ctx context.Context, id uuid.UUID) (*dto.ParticipantDetail, error) {
	return m.getResp, m.getErr
}

func (m *participantServiceMock) GetHistory(ctx context.Context, id uuid.UUID) (*dto.HistoryResponse, error) {
	return m.historyResp, m.historyErr
}

func (m *participantServiceMock) RegisterAssessment(ctx context.Context, id uuid.UUID, claims *models.JWTClaims, req dto.RegisterAssessmentRequest) (*models.AssessmentRecord, error) {
	return m.createdResp, m.createErr
}

func (m *participantServiceMock) Hide(ctx context.Context, id uuid.UUID, claims *models.JWTClaims) error {
	m.hideCalled = true
	return m.hideErr
}

func (m *participantServiceMock) Unhide(ctx context.Context, id uuid.UUID, claims *models.JWTClaims) error {
	m.unhideCalled = true
	return m.unhideErr
}

func (m *participantServiceMock) ListByOffering(ctx context.Context, filter models.ParticipantFilter) (*dto.RosterResponse, error) {
	m.lastFilter = filter
	return m.rosterResp, m.rosterErr
}

func testContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != nil {
		reader = bytes.NewBuffer(body)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		StaffID: uuid.NewString(),
		Roles:   []models.StaffRole{models.RoleCoordinator},
	})
	return c, w
}

func TestParticipantHandlerGet(t *testing.T) {
	id := uuid.New()
	mockSvc := &participantServiceMock{
		getResp: &dto.ParticipantDetail{
			ParticipantRecord: models.ParticipantRecord{ID: id, FirstName: "Kari"},
			ActivelyEnrolled:  true,
		},
	}
	h := NewParticipantHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/participants/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "actively_enrolled")
}

func TestParticipantHandlerGetInvalidID(t *testing.T) {
	h := NewParticipantHandler(&participantServiceMock{})

	c, w := testContext(t, http.MethodGet, "/participants/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParticipantHandlerGetNotFound(t *testing.T) {
	h := NewParticipantHandler(&participantServiceMock{getErr: appErrors.ErrNotFound})

	id := uuid.New()
	c, w := testContext(t, http.MethodGet, "/participants/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParticipantHandlerRegisterAssessment(t *testing.T) {
	id := uuid.New()
	mockSvc := &participantServiceMock{
		createdResp: &models.AssessmentRecord{ID: uuid.New(), ParticipantID: id, Type: models.AssessmentMeetsRequirements},
	}
	h := NewParticipantHandler(mockSvc)

	body := []byte(`{"type":"MEETS_REQUIREMENTS"}`)
	c, w := testContext(t, http.MethodPost, "/participants/"+id.String()+"/assessments", body)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.RegisterAssessment(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "MEETS_REQUIREMENTS")
}

func TestParticipantHandlerHidePreconditionFailed(t *testing.T) {
	mockSvc := &participantServiceMock{hideErr: appErrors.ErrPreconditionFailed}
	h := NewParticipantHandler(mockSvc)

	id := uuid.New()
	c, w := testContext(t, http.MethodDelete, "/participants/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Hide(c)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.True(t, mockSvc.hideCalled)
}

func TestParticipantHandlerUnhide(t *testing.T) {
	mockSvc := &participantServiceMock{}
	h := NewParticipantHandler(mockSvc)

	id := uuid.New()
	c, w := testContext(t, http.MethodPost, "/participants/"+id.String()+"/unhide", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Unhide(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, mockSvc.unhideCalled)
}

func TestParticipantHandlerRoster(t *testing.T) {
	offeringID := uuid.New()
	mockSvc := &participantServiceMock{
		rosterResp: &dto.RosterResponse{
			Participants: []dto.RosterEntry{{ID: uuid.New(), LastName: "Nordmann", Status: models.StatusParticipating}},
			Pagination:   models.Pagination{Page: 2, PageSize: 10, TotalCount: 11},
		},
	}
	h := NewParticipantHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/offerings/"+offeringID.String()+"/participants?page=2&page_size=10&status=PARTICIPATING", nil)
	c.Params = gin.Params{{Key: "id", Value: offeringID.String()}}

	h.Roster(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, offeringID, mockSvc.lastFilter.OfferingID)
	assert.Equal(t, models.StatusParticipating, mockSvc.lastFilter.Status)
	assert.Equal(t, 2, mockSvc.lastFilter.Page)
	assert.Contains(t, w.Body.String(), "Nordmann")
}
