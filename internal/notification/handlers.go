package notification

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"roombooking/internal/api"
)

type Handlers struct {
	Notifications *Repository
}

type CreateRequest struct {
	UserID  string `json:"userId" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
	Type    string `json:"type"`
}

// Create lets an admin push a notification to a user.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}
	if err := validator.New().Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", ve.Error())
			return
		}
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request")
		return
	}
	if req.Type == "" {
		req.Type = TypeInfo
	}

	n := &Notification{
		ID:      uuid.NewString(),
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
	}
	if err := h.Notifications.Insert(r.Context(), n); err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, n)
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return
	}

	var isRead *bool
	if s := r.URL.Query().Get("isRead"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "isRead must be a boolean")
			return
		}
		isRead = &v
	}

	items, err := h.Notifications.ListForUser(r.Context(), id.ID, isRead)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	if items == nil {
		items = []Notification{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return
	}
	count, err := h.Notifications.UnreadCount(r.Context(), id.ID)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"count": count})
}

func (h Handlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return
	}
	n, err := h.Notifications.MarkRead(r.Context(), chi.URLParam(r, "id"), id.ID)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, n)
}

func (h Handlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return
	}
	updated, err := h.Notifications.MarkAllRead(r.Context(), id.ID)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"updated": updated})
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return
	}
	if err := h.Notifications.Delete(r.Context(), chi.URLParam(r, "id"), id.ID); err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": "notification deleted"})
}
