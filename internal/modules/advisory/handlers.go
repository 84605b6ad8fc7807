package advisory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/modules/scenarios"
)

// Handler handles advisory and scenario HTTP requests
type Handler struct {
	service   *Service
	scenarios *scenarios.Engine
	repo      *Repository
	log       zerolog.Logger
}

// NewHandler creates a new advisory handler
func NewHandler(service *Service, scenarioEngine *scenarios.Engine, repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		scenarios: scenarioEngine,
		repo:      repo,
		log:       log.With().Str("handler", "advisory").Logger(),
	}
}

// HandleRecommend runs the recommendation pipeline.
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	response, err := h.service.Recommend(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Recommendation pipeline failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, response)
}

// scenarioRequest is the shared shape of the counterfactual endpoints.
type scenarioRequest struct {
	Recommendation   domain.ScoredRecommendation `json:"recommendation"`
	Season           string                      `json:"season,omitempty"`
	DelayDays        int                         `json:"delay_days,omitempty"`
	FailurePercent   float64                     `json:"failure_percent,omitempty"`
	FailureDays      int                         `json:"failure_days,omitempty"`
	ReductionPercent float64                     `json:"reduction_percent,omitempty"`
	Severity         string                      `json:"severity,omitempty"`
}

func (h *Handler) decodeScenario(w http.ResponseWriter, r *http.Request) (*scenarioRequest, bool) {
	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}
	if req.Recommendation.Crop == "" {
		h.writeError(w, http.StatusBadRequest, "recommendation.crop is required")
		return nil, false
	}
	return &req, true
}

// HandleSowingDelay simulates delayed sowing.
func (h *Handler) HandleSowingDelay(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScenario(w, r)
	if !ok {
		return
	}

	season, err := parseSeason(req.Season)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, h.scenarios.SimulateSowingDelay(req.Recommendation, season, req.DelayDays))
}

// HandleRainfallFailure simulates a rainfall shortfall.
func (h *Handler) HandleRainfallFailure(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScenario(w, r)
	if !ok {
		return
	}
	if req.FailurePercent < 0 || req.FailurePercent > 100 {
		h.writeError(w, http.StatusBadRequest, "failure_percent must be within [0, 100]")
		return
	}

	h.writeJSON(w, http.StatusOK, h.scenarios.SimulateRainfallFailure(req.Recommendation, req.FailurePercent, req.FailureDays))
}

// HandleFertilizerReduction simulates reduced fertilizer use.
func (h *Handler) HandleFertilizerReduction(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScenario(w, r)
	if !ok {
		return
	}
	if req.ReductionPercent < 0 || req.ReductionPercent > 100 {
		h.writeError(w, http.StatusBadRequest, "reduction_percent must be within [0, 100]")
		return
	}

	h.writeJSON(w, http.StatusOK, h.scenarios.SimulateFertilizerReduction(req.Recommendation, req.ReductionPercent))
}

// HandlePestOutbreak simulates a pest outbreak.
func (h *Handler) HandlePestOutbreak(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScenario(w, r)
	if !ok {
		return
	}

	result, err := h.scenarios.SimulatePestOutbreak(req.Recommendation, req.Severity)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// compareRequest carries a baseline and its scenario variants.
type compareRequest struct {
	Base      domain.ScoredRecommendation `json:"base"`
	Scenarios []scenarios.Recommendation  `json:"scenarios"`
}

// HandleCompareScenarios summarizes the spread across scenario variants.
func (h *Handler) HandleCompareScenarios(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Scenarios) == 0 {
		h.writeError(w, http.StatusBadRequest, "at least one scenario is required")
		return
	}

	h.writeJSON(w, http.StatusOK, h.scenarios.CompareScenarios(req.Base, req.Scenarios))
}

// HandleRecentAdvisories lists the newest stored advisory runs.
func (h *Handler) HandleRecentAdvisories(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	records, err := h.repo.GetRecent(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list advisories")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []StoredAdvisory{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
