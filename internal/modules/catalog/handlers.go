package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles catalog HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "catalog").Logger(),
	}
}

// HandleListCrops returns all crop profiles.
func (h *Handler) HandleListCrops(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.All())
}

// HandleGetCrop returns a single crop profile by name.
func (h *Handler) HandleGetCrop(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	profile, ok := h.service.Get(name)
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown crop: "+name)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
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
