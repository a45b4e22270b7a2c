package booking

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/internal/api"
	"roombooking/pkg/token"
)

func newTestRouter(t *testing.T) (chi.Router, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	store.rooms["r-1"] = &RoomInfo{ID: "r-1", Name: "Lecture Hall A", Capacity: 40}
	store.names[alice.ID] = alice.Name

	adm := NewAdmission(store, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	adm.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	h := Handlers{Admission: adm}

	r := chi.NewRouter()
	r.Post("/bookings", h.Submit)
	r.Get("/bookings/{id}", h.Get)
	r.Patch("/bookings/{id}/status", h.Transition)
	return r, store
}

func doJSON(t *testing.T, r http.Handler, method, path, body string, id *token.Identity) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if id != nil {
		req = req.WithContext(api.WithIdentity(req.Context(), id))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestSubmitHandler_Created(t *testing.T) {
	r, store := newTestRouter(t)

	body := `{"roomId":"r-1","startTime":"2025-01-10T08:00:00Z","endTime":"2025-01-10T10:00:00Z","purpose":"lecture","attendees":10}`
	rr := doJSON(t, r, http.MethodPost, "/bookings", body, &alice)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"status":"PENDING"`)
	assert.Len(t, store.bookings, 1)
}

func TestSubmitHandler_MissingIdentity(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/bookings", `{}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSubmitHandler_InvalidJSON(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/bookings", `not json`, &alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_INPUT")
}

func TestSubmitHandler_MissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/bookings", `{"roomId":"r-1"}`, &alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSubmitHandler_UnparseableTimestamp(t *testing.T) {
	r, _ := newTestRouter(t)

	body := `{"roomId":"r-1","startTime":"tomorrow","endTime":"2025-01-10T10:00:00Z","purpose":"lecture"}`
	rr := doJSON(t, r, http.MethodPost, "/bookings", body, &alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid start time")
}

func TestSubmitHandler_ConflictStatus(t *testing.T) {
	r, _ := newTestRouter(t)

	body := `{"roomId":"r-1","startTime":"2025-01-10T08:00:00Z","endTime":"2025-01-10T10:00:00Z","purpose":"lecture"}`
	rr := doJSON(t, r, http.MethodPost, "/bookings", body, &alice)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, r, http.MethodPost, "/bookings", body, &alice)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "Alice")
}

func TestTransitionHandler_UnknownStatus(t *testing.T) {
	r, store := newTestRouter(t)
	store.bookings["b-1"] = &Booking{ID: "b-1", UserID: alice.ID, RoomID: "r-1", Status: StatusPending}

	rr := doJSON(t, r, http.MethodPatch, "/bookings/b-1/status", `{"status":"SHIPPED"}`, &admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTransitionHandler_IllegalEdge(t *testing.T) {
	r, store := newTestRouter(t)
	store.bookings["b-1"] = &Booking{ID: "b-1", UserID: alice.ID, RoomID: "r-1", Status: StatusPending}

	rr := doJSON(t, r, http.MethodPatch, "/bookings/b-1/status", `{"status":"APPROVED"}`, &admin)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_STATE_TRANSITION")
}

func TestGetHandler_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/bookings/missing", "", &alice)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
