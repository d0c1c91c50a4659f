package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/andresuchdata/skusim/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type SimulationHandler struct {
	service  *service.SimulationService
	defaults domain.SimulationParams
}

// NewSimulationHandler creates a handler; defaults fill any parameter a request omits.
func NewSimulationHandler(svc *service.SimulationService, defaults domain.SimulationParams) *SimulationHandler {
	return &SimulationHandler{service: svc, defaults: defaults}
}

type simulationRequest struct {
	TotalPeriods   *int     `json:"total_periods"`
	ReviewPeriod   *int     `json:"review_period"`
	ServiceLevel   *float64 `json:"service_level"`
	Seed           *uint64  `json:"seed"`
	QuantilePolicy string   `json:"quantile_policy"`

	Forecast []float64 `json:"forecast"`
	Errors   []float64 `json:"errors"`
	LeadTime []int     `json:"lead_time"`
}

func (r simulationRequest) toRunRequest(defaults domain.SimulationParams) service.RunRequest {
	params := defaults
	if r.TotalPeriods != nil {
		params.TotalPeriods = *r.TotalPeriods
	}
	if r.ReviewPeriod != nil {
		params.ReviewPeriod = *r.ReviewPeriod
	}
	if r.ServiceLevel != nil {
		params.ServiceLevel = *r.ServiceLevel
	}
	if r.Seed != nil {
		params.Seed = *r.Seed
	}
	if r.QuantilePolicy != "" {
		params.QuantilePolicy = domain.QuantilePolicy(strings.ToLower(r.QuantilePolicy))
	}

	req := service.RunRequest{Params: params}
	if r.Forecast != nil || r.Errors != nil || r.LeadTime != nil {
		req.Input = &domain.HistoricalInput{
			Forecast:  r.Forecast,
			Errors:    r.Errors,
			LeadTimes: r.LeadTime,
		}
	}
	return req
}

// CreateSimulation runs a simulation from the posted parameters and, when given,
// inline historical input.
func (h *SimulationHandler) CreateSimulation(c *gin.Context) {
	var body simulationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
	}

	run, err := h.service.Run(c.Request.Context(), body.toRunRequest(h.defaults))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Msg("simulation run failed")
		}
		c.JSON(status, gin.H{
			"error":   service.Outcome(err),
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, run)
}

// GetSimulation returns a stored run by id.
func (h *SimulationHandler) GetSimulation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		log.Error().Err(err).Str("run_id", id.String()).Msg("failed to fetch run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch run"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// ListSimulations returns recent runs, optionally filtered by status.
func (h *SimulationHandler) ListSimulations(c *gin.Context) {
	filter := domain.RunFilter{
		Limit: parsePositiveIntWithDefault(c.Query("limit"), 50),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, ok := domain.ParseRunStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + strconv.Quote(raw)})
			return
		}
		filter.Status = status
	}

	runs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientData), errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}
