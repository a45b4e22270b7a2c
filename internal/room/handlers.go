package room

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"roombooking/internal/api"
)

type Handlers struct {
	Rooms *Repository
}

type CreateRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Capacity    int      `json:"capacity" validate:"required,gt=0"`
	Facilities  []string `json:"facilities"`
	Floor       string   `json:"floor"`
}

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

	if req.Facilities == nil {
		req.Facilities = []string{}
	}
	rm := &Room{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Facilities:  req.Facilities,
		Floor:       req.Floor,
		Status:      StatusAvailable,
	}
	if err := h.Rooms.Create(r.Context(), rm); err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, rm)
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	rm, err := h.Rooms.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, rm)
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	var status Status
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, err := ParseStatus(s)
		if err != nil {
			api.WriteFault(w, err)
			return
		}
		status = parsed
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.Rooms.List(r.Context(), status, limit, offset)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	if items == nil {
		items = []Room{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Available answers "which rooms are free between start and end".
func (h Handlers) Available(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid start time")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid end time")
		return
	}
	if !end.After(start) {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "end time must be after start time")
		return
	}

	items, err := h.Rooms.Available(r.Context(), start, end)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	if items == nil {
		items = []Room{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type UpdateRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Capacity    *int     `json:"capacity"`
	Facilities  []string `json:"facilities"`
	Floor       *string  `json:"floor"`
	Status      *string  `json:"status"`
}

func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}
	if req.Capacity != nil && *req.Capacity <= 0 {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "capacity must be positive")
		return
	}

	p := Patch{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Facilities:  req.Facilities,
		Floor:       req.Floor,
	}
	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			api.WriteFault(w, err)
			return
		}
		p.Status = &status
	}

	rm, err := h.Rooms.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, rm)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Rooms.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": "room deleted"})
}
