package schedule

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"roombooking/internal/api"
	"roombooking/internal/fault"
)

type Handlers struct {
	Schedules *Repository
}

type CreateRequest struct {
	RoomID      string `json:"roomId" validate:"required"`
	DayOfWeek   int    `json:"dayOfWeek" validate:"min=0,max=6"`
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime" validate:"required"`
	IsAvailable *bool  `json:"isAvailable"`
	Notes       string `json:"notes"`
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
	if req.EndTime <= req.StartTime {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "end time must be after start time")
		return
	}

	s := &Schedule{
		ID:          uuid.NewString(),
		RoomID:      req.RoomID,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
		Notes:       req.Notes,
	}
	if err := h.Schedules.Create(r.Context(), s); err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, s)
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Schedules.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, s)
}

// ListByRoom serves the weekly template of the room in the URL.
func (h Handlers) ListByRoom(w http.ResponseWriter, r *http.Request) {
	items, err := h.Schedules.ListByRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	if items == nil {
		items = []Schedule{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type UpdateRequest struct {
	DayOfWeek   *int    `json:"dayOfWeek"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
	IsAvailable *bool   `json:"isAvailable"`
	Notes       *string `json:"notes"`
}

func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}
	if req.DayOfWeek != nil && (*req.DayOfWeek < 0 || *req.DayOfWeek > 6) {
		api.WriteFault(w, fault.New(fault.InvalidInput, "dayOfWeek must be between 0 and 6"))
		return
	}

	s, err := h.Schedules.Update(r.Context(), chi.URLParam(r, "id"), Patch{
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: req.IsAvailable,
		Notes:       req.Notes,
	})
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, s)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Schedules.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": "schedule deleted"})
}
