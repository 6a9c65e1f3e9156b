// Package handlers provides the HTTP handler for the chat endpoint.
package handlers

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/aristath/perfagent/internal/modules/agent"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Handler handles chat HTTP requests
type Handler struct {
	service  *agent.Service
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new chat handler
func NewHandler(service *agent.Service, log zerolog.Logger) *Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names in validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		service:  service,
		validate: validate,
		log:      log.With().Str("handler", "agent").Logger(),
	}
}

// HandleChat handles POST /api/chat
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req agent.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.Chat(r.Context(), req))
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	// Report the first failing field by its JSON path
	fe := verrs[0]
	return fe.Namespace() + " failed on the '" + fe.Tag() + "' rule"
}

func (h *Handler) writeError(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, map[string]string{"detail": detail})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
