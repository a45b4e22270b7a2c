package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"roombooking/internal/api"
	"roombooking/pkg/token"
)

type Handlers struct {
	Admission *Admission
}

func identity(w http.ResponseWriter, r *http.Request) (token.Identity, bool) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing identity")
		return token.Identity{}, false
	}
	return *id, true
}

type SubmitBookingRequest struct {
	RoomID       string `json:"roomId" validate:"required"`
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
	Purpose      string `json:"purpose" validate:"required"`
	Attendees    int    `json:"attendees" validate:"omitempty,gte=1"`
	DocumentURL  string `json:"documentUrl"`
	DocumentName string `json:"documentName"`
	Notes        string `json:"notes"`
}

func (h Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}

	var req SubmitBookingRequest
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

	// Timestamps must parse before any other constraint is considered.
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid start time")
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid end time")
		return
	}

	b, err := h.Admission.Submit(r.Context(), actor, SubmitRequest{
		RoomID:       req.RoomID,
		StartTime:    start,
		EndTime:      end,
		Purpose:      req.Purpose,
		Attendees:    req.Attendees,
		DocumentURL:  req.DocumentURL,
		DocumentName: req.DocumentName,
		Notes:        req.Notes,
	})
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, b)
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := identity(w, r); !ok {
		return
	}
	b, err := h.Admission.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

type UpdateBookingRequest struct {
	StartTime    *string `json:"startTime"`
	EndTime      *string `json:"endTime"`
	Purpose      *string `json:"purpose"`
	Attendees    *int    `json:"attendees"`
	DocumentURL  *string `json:"documentUrl"`
	DocumentName *string `json:"documentName"`
	Notes        *string `json:"notes"`
}

func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}

	var req UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}

	upd := UpdateRequest{
		Purpose:      req.Purpose,
		Attendees:    req.Attendees,
		DocumentURL:  req.DocumentURL,
		DocumentName: req.DocumentName,
		Notes:        req.Notes,
	}
	if req.StartTime != nil {
		t, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid start time")
			return
		}
		upd.StartTime = &t
	}
	if req.EndTime != nil {
		t, err := time.Parse(time.RFC3339, *req.EndTime)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid end time")
			return
		}
		upd.EndTime = &t
	}

	b, err := h.Admission.Update(r.Context(), actor, chi.URLParam(r, "id"), upd)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

type TransitionRequest struct {
	Status               string `json:"status" validate:"required"`
	AdminNote            string `json:"adminNote"`
	ApprovedDocumentURL  string `json:"approvedDocumentUrl"`
	ApprovedDocumentName string `json:"approvedDocumentName"`
}

func (h Handlers) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}
	next, err := ParseStatus(req.Status)
	if err != nil {
		api.WriteFault(w, err)
		return
	}

	b, err := h.Admission.Transition(r.Context(), actor, chi.URLParam(r, "id"), next,
		req.AdminNote, req.ApprovedDocumentURL, req.ApprovedDocumentName)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

func (h Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}
	b, err := h.Admission.Cancel(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}
	if err := h.Admission.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": "booking deleted"})
}

// List serves both availability checks (?roomId=) and the admin overview.
// Room-scoped queries are open to any authenticated caller and show only
// active bookings; everything else requires ADMIN.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}

	if roomID := r.URL.Query().Get("roomId"); roomID != "" {
		var status Status
		if s := r.URL.Query().Get("status"); s != "" {
			parsed, err := ParseStatus(s)
			if err != nil {
				api.WriteFault(w, err)
				return
			}
			status = parsed
		}
		items, err := h.Admission.ListForRoom(r.Context(), roomID, status)
		if err != nil {
			api.WriteFault(w, err)
			return
		}
		writeBookingList(w, items)
		return
	}

	var status Status
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, err := ParseStatus(s)
		if err != nil {
			api.WriteFault(w, err)
			return
		}
		status = parsed
	}

	items, err := h.Admission.ListAll(r.Context(), actor, r.URL.Query().Get("userId"), status)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	writeBookingList(w, items)
}

func (h Handlers) Mine(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}

	var status Status
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, err := ParseStatus(s)
		if err != nil {
			api.WriteFault(w, err)
			return
		}
		status = parsed
	}

	items, err := h.Admission.ListForUser(r.Context(), actor, status)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	writeBookingList(w, items)
}

func (h Handlers) Upcoming(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}
	items, err := h.Admission.UpcomingForUser(r.Context(), actor)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	writeBookingList(w, items)
}

func writeBookingList(w http.ResponseWriter, items []Booking) {
	if items == nil {
		items = []Booking{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
