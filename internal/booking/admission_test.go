package booking

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/internal/fault"
	"roombooking/pkg/token"
)

// fakeStore is an in-memory Store. Atomic runs the callback directly;
// the per-room serialization guarantee is the Postgres store's concern.
type fakeStore struct {
	rooms    map[string]*RoomInfo
	bookings map[string]*Booking
	names    map[string]string // user id -> display name
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:    map[string]*RoomInfo{},
		bookings: map[string]*Booking{},
		names:    map[string]string{},
	}
}

func (f *fakeStore) Atomic(ctx context.Context, fn func(Store) error) error { return fn(f) }

func (f *fakeStore) RoomForUpdate(ctx context.Context, roomID string) (*RoomInfo, error) {
	rm, ok := f.rooms[roomID]
	if !ok {
		return nil, fault.New(fault.NotFound, "room not found")
	}
	return rm, nil
}

func (f *fakeStore) FirstConflict(ctx context.Context, roomID string, start, end time.Time, excludeID string) (*Conflict, error) {
	var conflicts []*Booking
	for _, b := range f.bookings {
		if b.RoomID != roomID || !b.Status.Active() || b.ID == excludeID {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			conflicts = append(conflicts, b)
		}
	}
	if len(conflicts) == 0 {
		return nil, nil
	}
	sort.Slice(conflicts, func(i, j int) bool {
		if !conflicts[i].StartTime.Equal(conflicts[j].StartTime) {
			return conflicts[i].StartTime.Before(conflicts[j].StartTime)
		}
		return conflicts[i].ID < conflicts[j].ID
	})
	c := conflicts[0]
	return &Conflict{
		BookingID:    c.ID,
		OccupantName: f.names[c.UserID],
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
	}, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, fault.New(fault.NotFound, "booking not found")
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) Insert(ctx context.Context, b *Booking) error {
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateFields(ctx context.Context, b *Booking) error {
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id string, next Status, adminNote, approvedDocURL, approvedDocName string) (*Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, fault.New(fault.NotFound, "booking not found")
	}
	b.Status = next
	if adminNote != "" {
		b.AdminNote = adminNote
	}
	if approvedDocURL != "" {
		b.ApprovedDocumentURL = approvedDocURL
	}
	if approvedDocName != "" {
		b.ApprovedDocumentName = approvedDocName
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.bookings[id]; !ok {
		return fault.New(fault.NotFound, "booking not found")
	}
	delete(f.bookings, id)
	return nil
}

func (f *fakeStore) ListForRoom(ctx context.Context, roomID string, status Status) ([]Booking, error) {
	var out []Booking
	for _, b := range f.bookings {
		if b.RoomID != roomID {
			continue
		}
		if status == "" && !b.Status.Active() {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeStore) ListAll(ctx context.Context, userID string, status Status) ([]Booking, error) {
	var out []Booking
	for _, b := range f.bookings {
		if userID != "" && b.UserID != userID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeStore) ListForUser(ctx context.Context, userID string, status Status) ([]Booking, error) {
	return f.ListAll(ctx, userID, status)
}

func (f *fakeStore) UpcomingForUser(ctx context.Context, userID string, now time.Time) ([]Booking, error) {
	var out []Booking
	for _, b := range f.bookings {
		if b.UserID == userID && !b.StartTime.Before(now) &&
			(b.Status == StatusPending || b.Status == StatusApproved) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

type fakeNotifier struct {
	decisions []string
}

func (f *fakeNotifier) BookingDecided(ctx context.Context, userID, roomName string, start time.Time, approved bool, adminNote string) error {
	verdict := "rejected"
	if approved {
		verdict = "approved"
	}
	f.decisions = append(f.decisions, userID+":"+verdict)
	return nil
}

var (
	alice = token.Identity{ID: "u-alice", Name: "Alice", Role: token.RoleUser}
	bob   = token.Identity{ID: "u-bob", Name: "Bob", Role: token.RoleUser}
	admin = token.Identity{ID: "u-admin", Name: "Admin", Role: token.RoleAdmin}
)

func newTestAdmission(t *testing.T) (*Admission, *fakeStore, *fakeNotifier) {
	t.Helper()
	store := newFakeStore()
	store.rooms["r-1"] = &RoomInfo{ID: "r-1", Name: "Lecture Hall A", Capacity: 40}
	store.names[alice.ID] = alice.Name
	store.names[bob.ID] = bob.Name

	notify := &fakeNotifier{}
	adm := NewAdmission(store, notify, slog.New(slog.NewTextHandler(io.Discard, nil)))
	adm.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return adm, store, notify
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 1, 10, hour, minute, 0, 0, time.UTC)
}

func submit(t *testing.T, adm *Admission, actor token.Identity, start, end time.Time) *Booking {
	t.Helper()
	b, err := adm.Submit(context.Background(), actor, SubmitRequest{
		RoomID:    "r-1",
		StartTime: start,
		EndTime:   end,
		Purpose:   "lecture",
		Attendees: 10,
	})
	require.NoError(t, err)
	return b
}

func TestSubmit_Succeeds(t *testing.T) {
	adm, store, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, alice.ID, b.UserID)
	assert.Equal(t, "Lecture Hall A", b.RoomName)
	assert.Contains(t, store.bookings, b.ID)
}

func TestSubmit_EndNotAfterStart(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	for _, end := range []time.Time{at(8, 0), at(7, 0)} {
		_, err := adm.Submit(context.Background(), alice, SubmitRequest{
			RoomID: "r-1", StartTime: at(8, 0), EndTime: end, Purpose: "x", Attendees: 1,
		})
		require.Error(t, err)
		assert.Equal(t, fault.InvalidInput, fault.KindOf(err))
	}
}

func TestSubmit_StartInPast(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	_, err := adm.Submit(context.Background(), alice, SubmitRequest{
		RoomID:    "r-1",
		StartTime: time.Date(2024, 12, 31, 8, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC),
		Purpose:   "x",
		Attendees: 1,
	})
	require.Error(t, err)
	assert.Equal(t, fault.InvalidInput, fault.KindOf(err))
}

func TestSubmit_UnknownRoom(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	_, err := adm.Submit(context.Background(), alice, SubmitRequest{
		RoomID: "r-missing", StartTime: at(8, 0), EndTime: at(10, 0), Purpose: "x", Attendees: 1,
	})
	require.Error(t, err)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestSubmit_AttendeesOverCapacity(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	_, err := adm.Submit(context.Background(), alice, SubmitRequest{
		RoomID: "r-1", StartTime: at(8, 0), EndTime: at(10, 0), Purpose: "x", Attendees: 41,
	})
	require.Error(t, err)
	assert.Equal(t, fault.InvalidInput, fault.KindOf(err))
	assert.Contains(t, err.Error(), "40")
}

func TestSubmit_AttendeesDefaultsToOne(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b, err := adm.Submit(context.Background(), alice, SubmitRequest{
		RoomID: "r-1", StartTime: at(8, 0), EndTime: at(10, 0), Purpose: "x",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Attendees)
}

func TestSubmit_EmptyPurpose(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	_, err := adm.Submit(context.Background(), alice, SubmitRequest{
		RoomID: "r-1", StartTime: at(8, 0), EndTime: at(10, 0), Attendees: 1,
	})
	require.Error(t, err)
	assert.Equal(t, fault.InvalidInput, fault.KindOf(err))
}

func TestSubmit_ConflictNamesOccupantAndWindow(t *testing.T) {
	adm, store, _ := newTestAdmission(t)

	existing := submit(t, adm, alice, at(8, 0), at(10, 0))
	_, err := adm.Transition(context.Background(), admin, existing.ID, StatusProcessing, "", "", "")
	require.NoError(t, err)
	_, err = adm.Transition(context.Background(), admin, existing.ID, StatusApproved, "", "", "")
	require.NoError(t, err)

	_, err = adm.Submit(context.Background(), bob, SubmitRequest{
		RoomID: "r-1", StartTime: at(9, 0), EndTime: at(11, 0), Purpose: "seminar", Attendees: 5,
	})
	require.Error(t, err)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))
	assert.Contains(t, err.Error(), "Alice")
	assert.Contains(t, err.Error(), "08:00–10:00")

	// Half-open boundary: touching endpoints do not conflict.
	b := submit(t, adm, bob, at(10, 0), at(12, 0))
	assert.Equal(t, StatusPending, b.Status)
	assert.Len(t, store.bookings, 2)
}

func TestSubmit_EarliestConflictReported(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	submit(t, adm, alice, at(9, 0), at(10, 0))
	submit(t, adm, bob, at(8, 0), at(9, 0))

	_, err := adm.Submit(context.Background(), bob, SubmitRequest{
		RoomID: "r-1", StartTime: at(8, 30), EndTime: at(9, 30), Purpose: "x", Attendees: 1,
	})
	require.Error(t, err)
	// Bob's 08:00 booking starts first, so it is the one reported.
	assert.Contains(t, err.Error(), "Bob")
	assert.Contains(t, err.Error(), "08:00–09:00")
}

func TestSubmit_InactiveBookingsDoNotConflict(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	_, err := adm.Transition(context.Background(), admin, b.ID, StatusProcessing, "", "", "")
	require.NoError(t, err)
	_, err = adm.Transition(context.Background(), admin, b.ID, StatusRejected, "ruangan dipakai acara lain", "", "")
	require.NoError(t, err)

	got := submit(t, adm, bob, at(8, 0), at(10, 0))
	assert.Equal(t, StatusPending, got.Status)
}

func TestUpdate_OwnerWhilePending(t *testing.T) {
	adm, store, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	purpose := "thesis defense"
	got, err := adm.Update(context.Background(), alice, b.ID, UpdateRequest{Purpose: &purpose})
	require.NoError(t, err)
	assert.Equal(t, "thesis defense", got.Purpose)
	assert.Equal(t, "thesis defense", store.bookings[b.ID].Purpose)
}

func TestUpdate_NonOwnerForbidden(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	purpose := "hijack"
	_, err := adm.Update(context.Background(), bob, b.ID, UpdateRequest{Purpose: &purpose})
	require.Error(t, err)
	assert.Equal(t, fault.Forbidden, fault.KindOf(err))
}

func TestUpdate_OnlyWhilePending(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	_, err := adm.Transition(context.Background(), admin, b.ID, StatusProcessing, "", "", "")
	require.NoError(t, err)

	purpose := "too late"
	_, err = adm.Update(context.Background(), alice, b.ID, UpdateRequest{Purpose: &purpose})
	require.Error(t, err)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))
}

func TestUpdate_TimeChangeRevalidatesConflicts(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	submit(t, adm, alice, at(8, 0), at(10, 0))
	b := submit(t, adm, bob, at(10, 0), at(12, 0))

	// Moving into Alice's window is refused.
	newStart := at(9, 0)
	_, err := adm.Update(context.Background(), bob, b.ID, UpdateRequest{StartTime: &newStart})
	require.Error(t, err)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	// Moving within a free window succeeds; the booking does not
	// conflict with itself.
	newStart, newEnd := at(10, 30), at(12, 0)
	got, err := adm.Update(context.Background(), bob, b.ID, UpdateRequest{StartTime: &newStart, EndTime: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, newStart, got.StartTime)
}

func TestTransition_PendingToApprovedIsIllegal(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	_, err := adm.Transition(context.Background(), admin, b.ID, StatusApproved, "", "", "")
	require.Error(t, err)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	var fe *fault.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "INVALID_STATE_TRANSITION", fe.Code)
}

func TestTransition_RejectRequiresNote(t *testing.T) {
	adm, store, notify := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	_, err := adm.Transition(context.Background(), admin, b.ID, StatusProcessing, "", "", "")
	require.NoError(t, err)

	_, err = adm.Transition(context.Background(), admin, b.ID, StatusRejected, "", "", "")
	require.Error(t, err)
	assert.Equal(t, fault.InvalidInput, fault.KindOf(err))

	got, err := adm.Transition(context.Background(), admin, b.ID, StatusRejected, "ruangan dipakai acara lain", "", "")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)
	assert.Equal(t, "ruangan dipakai acara lain", got.AdminNote)
	assert.Equal(t, "ruangan dipakai acara lain", store.bookings[b.ID].AdminNote)
	assert.Equal(t, []string{alice.ID + ":rejected"}, notify.decisions)
}

func TestTransition_ApproveAttachesDocument(t *testing.T) {
	adm, _, notify := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	_, err := adm.Transition(context.Background(), admin, b.ID, StatusProcessing, "", "", "")
	require.NoError(t, err)

	got, err := adm.Transition(context.Background(), admin, b.ID, StatusApproved,
		"approved for the seminar", "https://files/approval.pdf", "approval.pdf")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	assert.Equal(t, "https://files/approval.pdf", got.ApprovedDocumentURL)
	assert.Equal(t, []string{alice.ID + ":approved"}, notify.decisions)
}

func TestTransition_OwnerSelfCompletes(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	_, err := adm.Transition(context.Background(), admin, b.ID, StatusProcessing, "", "", "")
	require.NoError(t, err)
	_, err = adm.Transition(context.Background(), admin, b.ID, StatusApproved, "", "", "")
	require.NoError(t, err)

	// A different non-admin user may not complete it.
	_, err = adm.Transition(context.Background(), bob, b.ID, StatusCompleted, "", "", "")
	require.Error(t, err)
	assert.Equal(t, fault.Forbidden, fault.KindOf(err))

	got, err := adm.Transition(context.Background(), alice, b.ID, StatusCompleted, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestTransition_OwnerCannotCompleteUnapproved(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	_, err := adm.Transition(context.Background(), alice, b.ID, StatusCompleted, "", "", "")
	require.Error(t, err)
	assert.Equal(t, fault.Forbidden, fault.KindOf(err))
}

func TestTransition_NonAdminCannotProcess(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	_, err := adm.Transition(context.Background(), alice, b.ID, StatusProcessing, "", "", "")
	require.Error(t, err)
	assert.Equal(t, fault.Forbidden, fault.KindOf(err))
}

func TestCancel_OwnerWhilePending(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	got, err := adm.Cancel(context.Background(), alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestCancel_NonOwnerForbidden(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	_, err := adm.Cancel(context.Background(), bob, b.ID)
	require.Error(t, err)
	assert.Equal(t, fault.Forbidden, fault.KindOf(err))
}

func TestCancel_OwnerNeedsAdminForProcessing(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	_, err := adm.Transition(context.Background(), admin, b.ID, StatusProcessing, "", "", "")
	require.NoError(t, err)

	_, err = adm.Cancel(context.Background(), alice, b.ID)
	require.Error(t, err)
	assert.Equal(t, fault.Forbidden, fault.KindOf(err))

	got, err := adm.Cancel(context.Background(), admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestCancel_TerminalBookingRefused(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))
	_, err := adm.Cancel(context.Background(), alice, b.ID)
	require.NoError(t, err)

	_, err = adm.Cancel(context.Background(), admin, b.ID)
	require.Error(t, err)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))
}

func TestDelete_AdminOnlyAndTerminalOnly(t *testing.T) {
	adm, store, _ := newTestAdmission(t)

	b := submit(t, adm, alice, at(8, 0), at(10, 0))

	err := adm.Delete(context.Background(), alice, b.ID)
	require.Error(t, err)
	assert.Equal(t, fault.Forbidden, fault.KindOf(err))

	err = adm.Delete(context.Background(), admin, b.ID)
	require.Error(t, err)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	_, err = adm.Cancel(context.Background(), admin, b.ID)
	require.NoError(t, err)
	require.NoError(t, adm.Delete(context.Background(), admin, b.ID))
	assert.NotContains(t, store.bookings, b.ID)
}

func TestListAll_AdminOnlyAndPriorityOrdered(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b1 := submit(t, adm, alice, at(8, 0), at(10, 0))
	b2 := submit(t, adm, bob, at(10, 0), at(12, 0))
	_, err := adm.Transition(context.Background(), admin, b1.ID, StatusProcessing, "", "", "")
	require.NoError(t, err)
	_, err = adm.Transition(context.Background(), admin, b1.ID, StatusApproved, "", "", "")
	require.NoError(t, err)

	_, err = adm.ListAll(context.Background(), alice, "", "")
	require.Error(t, err)
	assert.Equal(t, fault.Forbidden, fault.KindOf(err))

	items, err := adm.ListAll(context.Background(), admin, "", "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	// PENDING sorts before APPROVED regardless of start time.
	assert.Equal(t, b2.ID, items[0].ID)
	assert.Equal(t, b1.ID, items[1].ID)
}

func TestNonOverlapInvariantHolds(t *testing.T) {
	adm, store, _ := newTestAdmission(t)

	windows := [][2]time.Time{
		{at(8, 0), at(10, 0)},
		{at(9, 0), at(11, 0)},
		{at(10, 0), at(12, 0)},
		{at(11, 30), at(12, 30)},
		{at(7, 0), at(8, 0)},
	}
	for _, w := range windows {
		_, _ = adm.Submit(context.Background(), alice, SubmitRequest{
			RoomID: "r-1", StartTime: w[0], EndTime: w[1], Purpose: "x", Attendees: 1,
		})
	}

	var active []*Booking
	for _, b := range store.bookings {
		if b.Status.Active() {
			active = append(active, b)
		}
	}
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if a.StartTime.Before(b.EndTime) && a.EndTime.After(b.StartTime) {
				t.Fatalf("overlap between %v–%v and %v–%v",
					a.StartTime, a.EndTime, b.StartTime, b.EndTime)
			}
		}
	}
}

func TestListForRoom_StatusFilter(t *testing.T) {
	adm, _, _ := newTestAdmission(t)

	b1 := submit(t, adm, alice, at(8, 0), at(10, 0))
	b2 := submit(t, adm, bob, at(10, 0), at(12, 0))
	_, err := adm.Transition(context.Background(), admin, b2.ID, StatusProcessing, "", "", "")
	require.NoError(t, err)

	active, err := adm.ListForRoom(context.Background(), "r-1", "")
	require.NoError(t, err)
	assert.Len(t, active, 2)

	pending, err := adm.ListForRoom(context.Background(), "r-1", StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b1.ID, pending[0].ID)
}
