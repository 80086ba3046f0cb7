package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/wildfire_broadcasting_system/internal/broadcast"
	"github.com/shenikar/wildfire_broadcasting_system/internal/config"
	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
	"github.com/shenikar/wildfire_broadcasting_system/internal/service"
)

// Broadcaster выдает подписки на поток обновлений
type Broadcaster interface {
	Subscribe(ctx context.Context) (*broadcast.Subscription, error)
}

type Handler struct {
	incidentService service.IncidentService
	broadcaster     Broadcaster
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
	upgrader        websocket.Upgrader
}

func NewHandler(incidentService service.IncidentService, broadcaster Broadcaster, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		incidentService: incidentService,
		broadcaster:     broadcaster,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// respondError переводит ошибки реестра в HTTP-статусы
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		log.Debug("Incident not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
	case errors.Is(err, models.ErrInvalidRange):
		log.WithError(err).Debug("Invalid grid range")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grid range", "details": err.Error()})
	case errors.Is(err, models.ErrValidation):
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "details": err.Error()})
	default:
		log.WithError(err).Error("Incident registry is unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
	}
}

// @Summary Get a list of incidents
// @Description Get incidents matching all supplied filters, most recently updated first
// @Tags Incidents
// @Accept json
// @Produce json
// @Param status query string false "Status" Enums(active, contained, extinguished)
// @Param region query string false "Region name"
// @Param cause query string false "Cause"
// @Param minAcres query number false "Minimum size in acres"
// @Param maxAcres query number false "Maximum size in acres"
// @Param gridX query int false "Grid cell X"
// @Param gridY query int false "Grid cell Y"
// @Success 200 {array} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 503 {object} map[string]string "Service unavailable"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	var query ListIncidentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		log.WithError(err).Warn("Failed to bind query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	if err := h.validate.Struct(query); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incidents, err := h.incidentService.ListIncidents(c.Request.Context(), QueryToFilter(query))
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 503 {object} map[string]string "Service unavailable"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Partially update an incident
// @Description Merge the supplied fields into the incident. Nested objects are merged per field, evacuation orders are appended.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident ID"
// @Param incident body UpdateIncidentRequest true "Fields to change"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request body or illegal transition"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 503 {object} map[string]string "Service unavailable"
// @Router /incidents/{id} [patch]
func (h *Handler) updateIncident(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "updateIncident").WithField("id", id)

	var input UpdateIncidentRequest
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

	incident, err := h.incidentService.UpdateIncident(c.Request.Context(), id, DTOToIncidentPatch(input, time.Now().UTC()))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Find incidents in a grid range
// @Description Get incidents of a region whose grid cell lies inside the inclusive range
// @Tags Incidents
// @Accept json
// @Produce json
// @Param region path string true "Region name"
// @Param minX query int true "Minimum X"
// @Param maxX query int true "Maximum X"
// @Param minY query int true "Minimum Y"
// @Param maxY query int true "Maximum Y"
// @Success 200 {object} GridRangeResponse
// @Failure 400 {object} map[string]string "Invalid grid range"
// @Failure 503 {object} map[string]string "Service unavailable"
// @Router /incidents/grid/{region} [get]
func (h *Handler) findInGridRange(c *gin.Context) {
	region := c.Param("region")
	log := h.logger.WithField("method", "findInGridRange").WithField("region", region)

	var query GridRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		log.WithError(err).Debug("Failed to bind grid range")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grid range", "details": err.Error()})
		return
	}
	if err := h.validate.Struct(query); err != nil {
		log.WithError(err).Debug("Grid range validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grid range", "details": err.Error()})
		return
	}

	result, err := h.incidentService.FindInGridRange(c.Request.Context(), QueryToGridRange(region, query))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToGridRangeResponse(result))
}

// @Summary List region grids
// @Description Get the declared grid size and bounding box of every region
// @Tags Regions
// @Produce json
// @Success 200 {array} RegionResponse
// @Router /regions [get]
func (h *Handler) listRegions(c *gin.Context) {
	c.JSON(http.StatusOK, RegionsToResponses(h.incidentService.Regions()))
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
