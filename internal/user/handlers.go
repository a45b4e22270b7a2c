package user

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"roombooking/internal/api"
	"roombooking/pkg/token"
)

type Handlers struct {
	Users *Repository
}

// List is admin-only (enforced by routing); supports ?role= filtering.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role != "" && role != token.RoleUser && role != token.RoleAdmin {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid role filter")
		return
	}

	items, err := h.Users.List(r.Context(), role)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	if items == nil {
		items = []User{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type UpdateProfileRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Avatar *string `json:"avatar"`
}

// Update patches a profile. Users may edit themselves; admins may edit
// anyone.
func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	actor := api.IdentityFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing identity")
		return
	}

	id := chi.URLParam(r, "id")
	if id != actor.ID && !actor.IsAdmin() {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "cannot edit another user's profile")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}

	u, err := h.Users.UpdateProfile(r.Context(), id, req.Name, req.Phone, req.Avatar)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (h Handlers) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}
	if req.Role != token.RoleUser && req.Role != token.RoleAdmin {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid role")
		return
	}

	u, err := h.Users.UpdateRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": "user deleted"})
}
