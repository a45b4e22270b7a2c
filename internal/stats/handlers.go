package stats

import (
	"net/http"

	"roombooking/internal/api"
)

type Handlers struct {
	Stats *Repository
}

func (h Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return
	}
	s, err := h.Stats.Dashboard(r.Context(), id.ID)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, s)
}

func (h Handlers) Admin(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stats.Admin(r.Context())
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, s)
}
