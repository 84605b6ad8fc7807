package soil

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles soil HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new soil handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "soil").Logger(),
	}
}

// HandleGetSoil resolves soil parameters for ?district=X&mandal=Y.
func (h *Handler) HandleGetSoil(w http.ResponseWriter, r *http.Request) {
	district := r.URL.Query().Get("district")
	if district == "" {
		h.writeError(w, http.StatusBadRequest, "district is required")
		return
	}
	mandal := r.URL.Query().Get("mandal")

	info := h.service.GetSoilInfo(r.Context(), district, mandal)
	h.writeJSON(w, http.StatusOK, info)
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
