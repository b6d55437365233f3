package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/amadou/nexus-connect/internal/auth"
	"github.com/amadou/nexus-connect/internal/repository"
	"github.com/amadou/nexus-connect/internal/service"
)

// EntrepreneurHandler exposes profile CRUD, the public listing, and the
// contact gate.
type EntrepreneurHandler struct {
	entrepreneurs *service.EntrepreneurService
	logger        *slog.Logger
}

// NewEntrepreneurHandler creates an EntrepreneurHandler.
func NewEntrepreneurHandler(entrepreneurs *service.EntrepreneurService, logger *slog.Logger) *EntrepreneurHandler {
	return &EntrepreneurHandler{entrepreneurs: entrepreneurs, logger: logger}
}

// HandleCreate creates the caller's profile.
//
// HTTP: POST /api/entrepreneurs (bearer)
func (h *EntrepreneurHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var input service.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	ent, err := h.entrepreneurs.Create(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ent)
}

// HandleList is the public search/listing endpoint.
//
// HTTP: GET /api/entrepreneurs
// Query: search, location, city, profileType, tags (comma-separated),
// minRating, sort (createdAt|rating|relevance), limit, skip.
func (h *EntrepreneurHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.ProfileFilter{
		Search:      q.Get("search"),
		Location:    q.Get("location"),
		City:        q.Get("city"),
		ProfileType: q.Get("profileType"),
		Sort:        q.Get("sort"),
	}
	if tags := q.Get("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}
	if v := q.Get("minRating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "minRating must be a number", http.StatusBadRequest)
			return
		}
		filter.MinRating = rating
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("skip"); v != "" {
		filter.Skip, _ = strconv.Atoi(v)
	}

	views, err := h.entrepreneurs.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// HandleGet returns a profile's public view.
//
// HTTP: GET /api/entrepreneurs/{id}
func (h *EntrepreneurHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.entrepreneurs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleGetContact is the contact gate: the single endpoint that discloses
// phone/whatsapp/email.
//
// HTTP: GET /api/entrepreneurs/{id}/contact
func (h *EntrepreneurHandler) HandleGetContact(w http.ResponseWriter, r *http.Request) {
	info, err := h.entrepreneurs.GetContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// HandleGetMine returns the caller's own full profile.
//
// HTTP: GET /api/entrepreneurs/user/me (bearer)
func (h *EntrepreneurHandler) HandleGetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	ent, err := h.entrepreneurs.GetOwn(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ent)
}

// HandleUpdate replaces the mutable fields of the caller's profile.
//
// HTTP: PUT /api/entrepreneurs/{id} (bearer)
func (h *EntrepreneurHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var input service.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	ent, err := h.entrepreneurs.Update(r.Context(), chi.URLParam(r, "id"), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ent)
}
