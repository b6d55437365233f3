package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/amadou/nexus-connect/internal/service"
)

// ContactHandler exposes the public contact form endpoint.
type ContactHandler struct {
	contact *service.ContactService
	logger  *slog.Logger
}

// NewContactHandler creates a ContactHandler.
func NewContactHandler(contact *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{contact: contact, logger: logger}
}

// HandleSubmit stores a contact message.
//
// HTTP: POST /api/contact
// Body: {"name": "...", "email": "...", "subject": "...", "message": "..."}
func (h *ContactHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	msg, err := h.contact.Submit(r.Context(), req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}
