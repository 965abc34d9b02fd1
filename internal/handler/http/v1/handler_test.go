package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/incident_dispatch_system/internal/config"
	"github.com/shenikar/incident_dispatch_system/internal/models"
	"github.com/shenikar/incident_dispatch_system/internal/service"
	"github.com/shenikar/incident_dispatch_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestHandler создает новый экземпляр Handler с мокированными сервисами
func newTestHandler(t *testing.T) (*mocks.MockDispatchService, *mocks.MockResponderService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	dispatchMock := mocks.NewMockDispatchService(ctrl)
	responderMock := mocks.NewMockResponderService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
	}

	handler := NewHandler(dispatchMock, responderMock, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return dispatchMock, responderMock, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func authHeader() map[string]string {
	return map[string]string{"X-API-Key": "test-api-key"}
}

func TestReportIncident_AssignedResponse(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)
	incidentID := uuid.New()
	responderID := uuid.New()
	reqBody := ReportIncidentRequest{
		ReporterID: "reporter-1",
		Category:   "medical",
		Latitude:   9.03,
		Longitude:  38.74,
	}
	decision := &models.DispatchDecision{
		Outcome:       models.OutcomeAssigned,
		ResponderID:   responderID,
		ResponderName: "Bole Clinic Unit",
		DistanceKm:    1.6,
	}

	dispatchMock.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) (*models.DispatchDecision, error) {
			inc.ID = incidentID
			return decision, nil
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/incidents", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp DispatchResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, incidentID, resp.IncidentID)
	require.NotNil(t, resp.Responder)
	assert.Equal(t, responderID, resp.Responder.ID)
	assert.Equal(t, "Bole Clinic Unit", resp.Responder.Name)
}

func TestReportIncident_QueuedResponse(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)
	incidentID := uuid.New()
	reqBody := ReportIncidentRequest{
		ReporterID: "reporter-1",
		Category:   "fire",
		Latitude:   9.03,
		Longitude:  38.74,
	}
	decision := &models.DispatchDecision{
		Outcome: models.OutcomeQueued,
		Reason:  models.QueuedReasonNoResponder,
	}

	dispatchMock.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) (*models.DispatchDecision, error) {
			inc.ID = incidentID
			return decision, nil
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/incidents", bytes.NewBuffer(bodyBytes), authHeader())

	// Очередь - тоже успешный исход для заявителя
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp DispatchResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, incidentID, resp.IncidentID)
	assert.Nil(t, resp.Responder)
}

func TestReportIncident_InvalidJSON(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)

	dispatchMock.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/incidents", bytes.NewBufferString(`{"category": "medical"`), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestReportIncident_ValidationError(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)
	reqBody := ReportIncidentRequest{ // Недопустимая категория
		ReporterID: "reporter-1",
		Category:   "flood",
		Latitude:   9.03,
		Longitude:  38.74,
	}

	dispatchMock.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/incidents", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Category' failed on the 'oneof' tag")
}

func TestReportIncident_ServiceError(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)
	reqBody := ReportIncidentRequest{
		ReporterID: "reporter-1",
		Category:   "medical",
		Latitude:   9.03,
		Longitude:  38.74,
	}
	serviceError := errors.New("failed to report incident in service")

	dispatchMock.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any()).
		Return(nil, serviceError).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/incidents", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp DispatchResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "please retry")
}

func TestReportIncident_Unauthorized(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)

	dispatchMock.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	reqBody := ReportIncidentRequest{
		ReporterID: "reporter-1",
		Category:   "medical",
		Latitude:   9.03,
		Longitude:  38.74,
	}
	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/incidents", bytes.NewBuffer(bodyBytes))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetIncident_Success(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)
	incidentID := uuid.New()
	expectedIncident := &models.Incident{
		ID:         incidentID,
		ReporterID: "reporter-1",
		Category:   models.CategoryMedical,
		Latitude:   9.03,
		Longitude:  38.74,
		Status:     models.IncidentStatusAssigned,
	}

	dispatchMock.EXPECT().GetIncident(gomock.Any(), incidentID).Return(expectedIncident, nil).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s", incidentID.String()), nil, authHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, incidentID, resp.ID)
	assert.Equal(t, string(models.IncidentStatusAssigned), resp.Status)
}

func TestGetIncident_InvalidID(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)

	dispatchMock.EXPECT().GetIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "GET", "/api/v1/incidents/invalid-uuid", nil, authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid incident ID")
}

func TestGetIncident_NotFound(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)
	incidentID := uuid.New()

	dispatchMock.EXPECT().
		GetIncident(gomock.Any(), incidentID).
		Return(nil, fmt.Errorf("service: could not get incident: %w", service.ErrIncidentNotFound)).
		Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s", incidentID.String()), nil, authHeader())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "incident not found")
}

func TestListIncidents_Success(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)
	expectedIncidents := []*models.Incident{
		{ID: uuid.New(), ReporterID: "reporter-1", Category: models.CategoryMedical, Status: models.IncidentStatusAssigned},
		{ID: uuid.New(), ReporterID: "reporter-2", Category: models.CategoryFire, Status: models.IncidentStatusQueued},
	}

	dispatchMock.EXPECT().ListIncidents(gomock.Any(), 1, 10).Return(expectedIncidents, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents?page=1&pageSize=10", nil, authHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, expectedIncidents[0].ID, resp[0].ID)
}

func TestRegisterResponder_Created(t *testing.T) {
	_, responderMock, router := newTestHandler(t)
	responderID := uuid.New()
	lat, lon := 9.04, 38.75
	reqBody := RegisterResponderRequest{
		Name:          "Bole Clinic Unit",
		ResponderType: "medical",
		Latitude:      &lat,
		Longitude:     &lon,
	}

	responderMock.EXPECT().
		RegisterResponder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *models.Responder) error {
			r.ID = responderID
			r.ApprovalStatus = models.ApprovalPending
			r.AvailabilityStatus = models.AvailabilityUnavailable
			return nil
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/responders", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp ResponderResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, responderID, resp.ID)
	assert.Equal(t, string(models.ApprovalPending), resp.ApprovalStatus)
	assert.Equal(t, string(models.AvailabilityUnavailable), resp.AvailabilityStatus)
}

func TestRegisterResponder_ValidationError(t *testing.T) {
	_, responderMock, router := newTestHandler(t)
	reqBody := RegisterResponderRequest{ // Отсутствует Name
		ResponderType: "medical",
	}

	responderMock.EXPECT().RegisterResponder(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/responders", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Name' failed on the 'required' tag")
}

func TestUpdateApproval_Success(t *testing.T) {
	_, responderMock, router := newTestHandler(t)
	responderID := uuid.New()
	reqBody := UpdateApprovalRequest{Status: "approved"}

	responderMock.EXPECT().
		UpdateApproval(gomock.Any(), responderID, models.ApprovalApproved).
		Return(nil).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "PATCH", fmt.Sprintf("/api/v1/responders/%s/approval", responderID.String()), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateApproval_NotFound(t *testing.T) {
	_, responderMock, router := newTestHandler(t)
	responderID := uuid.New()
	reqBody := UpdateApprovalRequest{Status: "rejected"}

	responderMock.EXPECT().
		UpdateApproval(gomock.Any(), responderID, models.ApprovalRejected).
		Return(fmt.Errorf("service: responder %s: %w", responderID, service.ErrResponderNotFound)).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "PATCH", fmt.Sprintf("/api/v1/responders/%s/approval", responderID.String()), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "responder not found")
}

func TestUpdateLocation_Success(t *testing.T) {
	_, responderMock, router := newTestHandler(t)
	responderID := uuid.New()
	reqBody := UpdateLocationRequest{Latitude: 9.04, Longitude: 38.75}

	responderMock.EXPECT().
		UpdateLocation(gomock.Any(), responderID, 9.04, 38.75).
		Return(nil).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "PUT", fmt.Sprintf("/api/v1/responders/%s/location", responderID.String()), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChangeAvailability_SweepResponse(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)
	responderID := uuid.New()
	reqBody := ChangeAvailabilityRequest{Status: "unavailable"}

	dispatchMock.EXPECT().
		ChangeAvailability(gomock.Any(), responderID, models.AvailabilityUnavailable).
		Return(&models.SweepResult{Reassigned: 2, Unassigned: 1}, nil).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "PUT", fmt.Sprintf("/api/v1/responders/%s/availability", responderID.String()), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusOK, w.Code)

	var resp SweepResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Reassigned)
	assert.Equal(t, 1, resp.Unassigned)
}

func TestChangeAvailability_InvalidStatus(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)
	responderID := uuid.New()
	reqBody := ChangeAvailabilityRequest{Status: "offline"}

	dispatchMock.EXPECT().ChangeAvailability(gomock.Any(), gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "PUT", fmt.Sprintf("/api/v1/responders/%s/availability", responderID.String()), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Status' failed on the 'oneof' tag")
}

func TestChangeAvailability_NotApproved(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)
	responderID := uuid.New()
	reqBody := ChangeAvailabilityRequest{Status: "available"}

	dispatchMock.EXPECT().
		ChangeAvailability(gomock.Any(), responderID, models.AvailabilityAvailable).
		Return(nil, fmt.Errorf("service: responder %s: %w", responderID, service.ErrResponderNotApproved)).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "PUT", fmt.Sprintf("/api/v1/responders/%s/availability", responderID.String()), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "responder is not approved")
}

func TestChangeAvailability_NotFound(t *testing.T) {
	dispatchMock, _, router := newTestHandler(t)
	responderID := uuid.New()
	reqBody := ChangeAvailabilityRequest{Status: "busy"}

	dispatchMock.EXPECT().
		ChangeAvailability(gomock.Any(), responderID, models.AvailabilityBusy).
		Return(nil, fmt.Errorf("service: responder %s: %w", responderID, service.ErrResponderNotFound)).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "PUT", fmt.Sprintf("/api/v1/responders/%s/availability", responderID.String()), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "responder not found")
}

func TestHealthCheck_NoAuthRequired(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
