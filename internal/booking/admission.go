// Package booking implements the booking admission service: request
// validation, time-range conflict detection against active bookings, and
// the role-gated status lifecycle.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"roombooking/internal/fault"
	"roombooking/pkg/token"
)

// Store is the persistence boundary of the admission service. Mutating
// flows run inside Atomic, which hands the callback a transaction-bound
// Store; RoomForUpdate locks the room row for the duration of that
// transaction so concurrent admissions for one room serialize.
type Store interface {
	Atomic(ctx context.Context, fn func(Store) error) error

	RoomForUpdate(ctx context.Context, roomID string) (*RoomInfo, error)
	FirstConflict(ctx context.Context, roomID string, start, end time.Time, excludeID string) (*Conflict, error)

	GetByID(ctx context.Context, id string) (*Booking, error)
	Insert(ctx context.Context, b *Booking) error
	UpdateFields(ctx context.Context, b *Booking) error
	UpdateStatus(ctx context.Context, id string, next Status, adminNote, approvedDocURL, approvedDocName string) (*Booking, error)
	Delete(ctx context.Context, id string) error

	ListForRoom(ctx context.Context, roomID string, status Status) ([]Booking, error)
	ListAll(ctx context.Context, userID string, status Status) ([]Booking, error)
	ListForUser(ctx context.Context, userID string, status Status) ([]Booking, error)
	UpcomingForUser(ctx context.Context, userID string, now time.Time) ([]Booking, error)
}

// Notifier is told about admin decisions so the owner can be informed.
// Implementations must tolerate failure; decisions are committed before
// notification.
type Notifier interface {
	BookingDecided(ctx context.Context, userID, roomName string, start time.Time, approved bool, adminNote string) error
}

type Admission struct {
	store  Store
	notify Notifier
	log    *slog.Logger
	now    func() time.Time
}

func NewAdmission(store Store, notify Notifier, log *slog.Logger) *Admission {
	return &Admission{store: store, notify: notify, log: log, now: time.Now}
}

type SubmitRequest struct {
	RoomID       string
	StartTime    time.Time
	EndTime      time.Time
	Purpose      string
	Attendees    int
	DocumentURL  string
	DocumentName string
	Notes        string
}

// Submit validates a booking request and commits it as a PENDING
// reservation, or refuses with the first violated constraint. The
// conflict check and the insert happen in one transaction under a room
// row lock.
func (a *Admission) Submit(ctx context.Context, actor token.Identity, req SubmitRequest) (*Booking, error) {
	now := a.now()
	if !req.EndTime.After(req.StartTime) {
		return nil, fault.New(fault.InvalidInput, "end time must be after start time")
	}
	if req.StartTime.Before(now) {
		return nil, fault.New(fault.InvalidInput, "start time must not be in the past")
	}
	if req.Attendees == 0 {
		req.Attendees = 1
	}

	b := &Booking{
		ID:           uuid.NewString(),
		UserID:       actor.ID,
		RoomID:       req.RoomID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Purpose:      req.Purpose,
		Attendees:    req.Attendees,
		DocumentURL:  req.DocumentURL,
		DocumentName: req.DocumentName,
		Notes:        req.Notes,
		Status:       StatusPending,
		UserName:     actor.Name,
	}

	err := a.store.Atomic(ctx, func(s Store) error {
		rm, err := s.RoomForUpdate(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if req.Attendees < 1 || req.Attendees > rm.Capacity {
			return fault.New(fault.InvalidInput,
				fmt.Sprintf("attendees must be between 1 and the room capacity of %d", rm.Capacity))
		}
		if req.Purpose == "" {
			return fault.New(fault.InvalidInput, "purpose is required")
		}
		if err := a.checkConflict(ctx, s, req.RoomID, req.StartTime, req.EndTime, ""); err != nil {
			return err
		}
		b.RoomName = rm.Name
		return s.Insert(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

type UpdateRequest struct {
	StartTime    *time.Time
	EndTime      *time.Time
	Purpose      *string
	Attendees    *int
	DocumentURL  *string
	DocumentName *string
	Notes        *string
}

// Update edits a PENDING booking. Owner or admin only. A changed time
// range is re-validated against conflicts, excluding the booking itself.
func (a *Admission) Update(ctx context.Context, actor token.Identity, id string, req UpdateRequest) (*Booking, error) {
	var out *Booking
	err := a.store.Atomic(ctx, func(s Store) error {
		b, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b.UserID != actor.ID && !actor.IsAdmin() {
			return fault.New(fault.Forbidden, "not your booking")
		}
		if b.Status != StatusPending {
			return fault.WithCode(fault.Conflict, "BOOKING_NOT_EDITABLE", "only pending bookings can be edited")
		}

		timeChanged := false
		if req.StartTime != nil {
			b.StartTime = *req.StartTime
			timeChanged = true
		}
		if req.EndTime != nil {
			b.EndTime = *req.EndTime
			timeChanged = true
		}
		if req.Purpose != nil {
			if *req.Purpose == "" {
				return fault.New(fault.InvalidInput, "purpose is required")
			}
			b.Purpose = *req.Purpose
		}
		if req.Attendees != nil {
			b.Attendees = *req.Attendees
		}
		if req.DocumentURL != nil {
			b.DocumentURL = *req.DocumentURL
		}
		if req.DocumentName != nil {
			b.DocumentName = *req.DocumentName
		}
		if req.Notes != nil {
			b.Notes = *req.Notes
		}

		if !b.EndTime.After(b.StartTime) {
			return fault.New(fault.InvalidInput, "end time must be after start time")
		}

		rm, err := s.RoomForUpdate(ctx, b.RoomID)
		if err != nil {
			return err
		}
		if b.Attendees < 1 || b.Attendees > rm.Capacity {
			return fault.New(fault.InvalidInput,
				fmt.Sprintf("attendees must be between 1 and the room capacity of %d", rm.Capacity))
		}
		if timeChanged {
			if err := a.checkConflict(ctx, s, b.RoomID, b.StartTime, b.EndTime, b.ID); err != nil {
				return err
			}
		}

		if err := s.UpdateFields(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Transition moves a booking along the status lifecycle.
//
// Admins follow the transition table. Non-admin callers get exactly one
// move: completing their own APPROVED booking; anything else is
// unauthorized.
func (a *Admission) Transition(ctx context.Context, actor token.Identity, id string, next Status, adminNote, approvedDocURL, approvedDocName string) (*Booking, error) {
	var out *Booking
	err := a.store.Atomic(ctx, func(s Store) error {
		b, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if !actor.IsAdmin() {
			if b.UserID != actor.ID {
				return fault.New(fault.Forbidden, "not your booking")
			}
			if next != StatusCompleted {
				return fault.New(fault.Forbidden, "users may only complete their own approved bookings")
			}
			if b.Status != StatusApproved {
				return fault.New(fault.Forbidden, "booking must be approved before it can be completed")
			}
		} else {
			if !CanTransition(b.Status, next) {
				return fault.WithCode(fault.Conflict, "INVALID_STATE_TRANSITION",
					fmt.Sprintf("cannot transition booking from %s to %s", b.Status, next))
			}
			if next == StatusRejected && adminNote == "" {
				return fault.New(fault.InvalidInput, "a rejection note is required")
			}
		}

		out, err = s.UpdateStatus(ctx, id, next, adminNote, approvedDocURL, approvedDocName)
		return err
	})
	if err != nil {
		return nil, err
	}

	if a.notify != nil && actor.IsAdmin() && (next == StatusApproved || next == StatusRejected) {
		if err := a.notify.BookingDecided(ctx, out.UserID, out.RoomName, out.StartTime, next == StatusApproved, adminNote); err != nil {
			a.log.Warn("booking decision notification failed",
				slog.String("booking_id", out.ID), slog.Any("error", err))
		}
	}
	return out, nil
}

// Cancel releases a booking's claim on room-time. Owners may cancel
// while PENDING; admins may cancel any active booking.
func (a *Admission) Cancel(ctx context.Context, actor token.Identity, id string) (*Booking, error) {
	var out *Booking
	err := a.store.Atomic(ctx, func(s Store) error {
		b, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b.UserID != actor.ID && !actor.IsAdmin() {
			return fault.New(fault.Forbidden, "not your booking")
		}
		if !b.Status.Active() {
			return fault.WithCode(fault.Conflict, "INVALID_STATE_TRANSITION",
				fmt.Sprintf("cannot cancel a booking in %s status", b.Status))
		}
		if !actor.IsAdmin() && b.Status != StatusPending {
			return fault.New(fault.Forbidden,
				fmt.Sprintf("only an admin can cancel a booking in %s status", b.Status))
		}

		out, err = s.UpdateStatus(ctx, id, StatusCancelled, "", "", "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete hard-deletes a CANCELLED or REJECTED booking. Admin only.
func (a *Admission) Delete(ctx context.Context, actor token.Identity, id string) error {
	if !actor.IsAdmin() {
		return fault.New(fault.Forbidden, "admin role required")
	}
	return a.store.Atomic(ctx, func(s Store) error {
		b, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b.Status != StatusCancelled && b.Status != StatusRejected {
			return fault.WithCode(fault.Conflict, "BOOKING_NOT_DELETABLE",
				"only cancelled or rejected bookings can be deleted")
		}
		return s.Delete(ctx, id)
	})
}

func (a *Admission) GetByID(ctx context.Context, id string) (*Booking, error) {
	return a.store.GetByID(ctx, id)
}

// ListForRoom exposes a room's bookings, so any authenticated caller
// can see when it is occupied. An empty status means active bookings
// only; a concrete status selects exactly that status.
func (a *Admission) ListForRoom(ctx context.Context, roomID string, status Status) ([]Booking, error) {
	items, err := a.store.ListForRoom(ctx, roomID, status)
	if err != nil {
		return nil, err
	}
	sortByPriority(items)
	return items, nil
}

// ListAll is the admin view across users, optionally filtered.
func (a *Admission) ListAll(ctx context.Context, actor token.Identity, userID string, status Status) ([]Booking, error) {
	if !actor.IsAdmin() {
		return nil, fault.New(fault.Forbidden, "admin role required")
	}
	items, err := a.store.ListAll(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	sortByPriority(items)
	return items, nil
}

func (a *Admission) ListForUser(ctx context.Context, actor token.Identity, status Status) ([]Booking, error) {
	items, err := a.store.ListForUser(ctx, actor.ID, status)
	if err != nil {
		return nil, err
	}
	sortByPriority(items)
	return items, nil
}

func (a *Admission) UpcomingForUser(ctx context.Context, actor token.Identity) ([]Booking, error) {
	return a.store.UpcomingForUser(ctx, actor.ID, a.now())
}

// checkConflict refuses when an active booking overlaps [start, end).
// The store reports the earliest-starting conflict, so the refusal is
// deterministic when several exist.
func (a *Admission) checkConflict(ctx context.Context, s Store, roomID string, start, end time.Time, excludeID string) error {
	c, err := s.FirstConflict(ctx, roomID, start, end, excludeID)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	occupant := c.OccupantName
	if occupant == "" {
		occupant = "another user"
	}
	return fault.New(fault.Conflict,
		fmt.Sprintf("room is already booked by %s on %s, please choose another time", occupant, c.Window()))
}

// sortByPriority orders lists the way the admin screens expect: by
// status priority, then newest start first.
func sortByPriority(items []Booking) {
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].Status.Priority(), items[j].Status.Priority()
		if pi != pj {
			return pi < pj
		}
		return items[i].StartTime.After(items[j].StartTime)
	})
}
