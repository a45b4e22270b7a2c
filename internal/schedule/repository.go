// Package schedule manages the weekly availability template of a room,
// separate from one-off bookings.
package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roombooking/internal/fault"
)

// Schedule is one recurring slot. DayOfWeek follows time.Weekday
// numbering (0 = Sunday); StartTime and EndTime are clock times in the
// form "HH:MM".
type Schedule struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	DayOfWeek   int       `json:"dayOfWeek"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	IsAvailable bool      `json:"isAvailable"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const scheduleColumns = `
id, room_id, day_of_week, start_time, end_time, is_available, COALESCE(notes,''), created_at, updated_at
`

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	if err := row.Scan(
		&s.ID, &s.RoomID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.IsAvailable, &s.Notes,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "schedule not found")
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Create(ctx context.Context, s *Schedule) error {
	const q = `
INSERT INTO schedules (id, room_id, day_of_week, start_time, end_time, is_available, notes)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
RETURNING created_at, updated_at
`
	return r.db.QueryRow(ctx, q,
		s.ID, s.RoomID, s.DayOfWeek, s.StartTime, s.EndTime, s.IsAvailable, s.Notes,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	return scanSchedule(r.db.QueryRow(ctx, q, id))
}

// ListByRoom returns the room's slots in week order.
func (r *Repository) ListByRoom(ctx context.Context, roomID string) ([]Schedule, error) {
	const q = `
SELECT ` + scheduleColumns + `
FROM schedules
WHERE room_id = $1
ORDER BY day_of_week, start_time
`
	rows, err := r.db.Query(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Schedule
	for rows.Next() {
		var s Schedule
		if err := rows.Scan(
			&s.ID, &s.RoomID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.IsAvailable, &s.Notes,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type Patch struct {
	DayOfWeek   *int
	StartTime   *string
	EndTime     *string
	IsAvailable *bool
	Notes       *string
}

func (r *Repository) Update(ctx context.Context, id string, p Patch) (*Schedule, error) {
	const q = `
UPDATE schedules
SET day_of_week  = COALESCE($2, day_of_week),
    start_time   = COALESCE($3, start_time),
    end_time     = COALESCE($4, end_time),
    is_available = COALESCE($5, is_available),
    notes        = COALESCE($6, notes),
    updated_at   = NOW()
WHERE id = $1
RETURNING ` + scheduleColumns
	return scanSchedule(r.db.QueryRow(ctx, q, id, p.DayOfWeek, p.StartTime, p.EndTime, p.IsAvailable, p.Notes))
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.New(fault.NotFound, "schedule not found")
	}
	return nil
}
