package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/incident_dispatch_system/internal/config"
	"github.com/shenikar/incident_dispatch_system/internal/models"
	"github.com/shenikar/incident_dispatch_system/internal/service"
	"github.com/shenikar/incident_dispatch_system/pkg/geo"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	dispatchService  service.DispatchService
	responderService service.ResponderService
	logger           *logrus.Logger
	validate         *validator.Validate
	cfg              *config.Config
}

func NewHandler(dispatchService service.DispatchService, responderService service.ResponderService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		dispatchService:  dispatchService,
		responderService: responderService,
		logger:           logger,
		validate:         validator.New(),
		cfg:              cfg,
	}
}

// @Summary Report a new incident
// @Description Report an incident and dispatch the nearest eligible responder. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param incident body ReportIncidentRequest true "Incident report request"
// @Success 201 {object} DispatchResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} DispatchResponse "Internal server error"
// @Router /incidents [post]
func (h *Handler) reportIncident(c *gin.Context) {
	var input ReportIncidentRequest
	log := h.logger.WithField("method", "reportIncident")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident := ReportDTOToIncidentModel(input)
	decision, err := h.dispatchService.ReportIncident(c.Request.Context(), incident)
	if err != nil {
		if errors.Is(err, geo.ErrInvalidCoordinate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident coordinates"})
			return
		}
		log.WithError(err).Error("Failed to report incident in service")
		c.JSON(http.StatusInternalServerError, DispatchResponse{
			Success: false,
			Message: "internal server error, please retry",
		})
		return
	}

	c.JSON(http.StatusCreated, DecisionToDispatchResponse(incident.ID, decision))
}

// @Summary Get a list of incidents
// @Description Get a paginated list of all incidents. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(10)
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	incidents, err := h.dispatchService.ListIncidents(c.Request.Context(), page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.dispatchService.GetIncident(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from service")
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Register a new responder
// @Description Register a responder. The responder stays out of dispatch until approved. Requires API key.
// @Tags Responders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param responder body RegisterResponderRequest true "Responder registration request"
// @Success 201 {object} ResponderResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /responders [post]
func (h *Handler) registerResponder(c *gin.Context) {
	var input RegisterResponderRequest
	log := h.logger.WithField("method", "registerResponder")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := RegisterDTOToResponderModel(input)
	if err := h.responderService.RegisterResponder(c.Request.Context(), model); err != nil {
		log.WithError(err).Error("Failed to register responder in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, ModelToResponderResponse(model))
}

// @Summary Get a list of responders
// @Description Get a paginated list of all responders. Requires API key.
// @Tags Responders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(10)
// @Success 200 {array} ResponderResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /responders [get]
func (h *Handler) listResponders(c *gin.Context) {
	log := h.logger.WithField("method", "listResponders")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	responders, err := h.responderService.ListResponders(c.Request.Context(), page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list responders from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToResponderResponses(responders))
}

// @Summary Get responder by ID
// @Description Get a single responder by its ID. Requires API key.
// @Tags Responders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Responder ID"
// @Success 200 {object} ResponderResponse
// @Failure 400 {object} map[string]string "Invalid responder ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Responder not found"
// @Router /responders/{id} [get]
func (h *Handler) getResponder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid responder ID"})
		return
	}
	log := h.logger.WithField("method", "getResponder").WithField("id", id)

	responder, err := h.responderService.GetResponder(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Warn("Failed to get responder from service")
		c.JSON(http.StatusNotFound, gin.H{"error": "responder not found"})
		return
	}
	c.JSON(http.StatusOK, ModelToResponderResponse(responder))
}

// @Summary Update responder approval status
// @Description Approve or reject a registered responder. Requires API key.
// @Tags Responders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Responder ID"
// @Param approval body UpdateApprovalRequest true "Approval decision"
// @Success 200 "OK"
// @Failure 400 {object} map[string]string "Invalid responder ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Responder not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /responders/{id}/approval [patch]
func (h *Handler) updateApproval(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid responder ID"})
		return
	}
	log := h.logger.WithField("method", "updateApproval").WithField("id", id)

	var input UpdateApprovalRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.responderService.UpdateApproval(c.Request.Context(), id, models.ApprovalStatus(input.Status)); err != nil {
		if errors.Is(err, service.ErrResponderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "responder not found"})
			return
		}
		log.WithError(err).Error("Failed to update approval in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusOK)
}

// @Summary Update responder location
// @Description Store the coordinates reported by the responder's client. Requires API key.
// @Tags Responders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Responder ID"
// @Param location body UpdateLocationRequest true "Responder coordinates"
// @Success 200 "OK"
// @Failure 400 {object} map[string]string "Invalid responder ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Responder not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /responders/{id}/location [put]
func (h *Handler) updateLocation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid responder ID"})
		return
	}
	log := h.logger.WithField("method", "updateLocation").WithField("id", id)

	var input UpdateLocationRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.responderService.UpdateLocation(c.Request.Context(), id, input.Latitude, input.Longitude); err != nil {
		if errors.Is(err, service.ErrResponderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "responder not found"})
			return
		}
		log.WithError(err).Error("Failed to update location in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusOK)
}

// @Summary Change responder availability
// @Description Change availability status. Going offline re-routes the responder's active incidents. Requires API key.
// @Tags Responders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Responder ID"
// @Param availability body ChangeAvailabilityRequest true "New availability status"
// @Success 200 {object} SweepResponse
// @Failure 400 {object} map[string]string "Invalid responder ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Responder not found"
// @Failure 409 {object} map[string]string "Responder not approved"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /responders/{id}/availability [put]
func (h *Handler) changeAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid responder ID"})
		return
	}
	log := h.logger.WithField("method", "changeAvailability").WithField("id", id)

	var input ChangeAvailabilityRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.dispatchService.ChangeAvailability(c.Request.Context(), id, models.AvailabilityStatus(input.Status))
	if err != nil {
		if errors.Is(err, service.ErrResponderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "responder not found"})
			return
		}
		if errors.Is(err, service.ErrResponderNotApproved) {
			c.JSON(http.StatusConflict, gin.H{"error": "responder is not approved"})
			return
		}
		log.WithError(err).Error("Failed to change availability in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, SweepResponse{
		Reassigned: result.Reassigned,
		Unassigned: result.Unassigned,
	})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
