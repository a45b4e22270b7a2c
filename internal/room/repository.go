package room

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roombooking/internal/fault"
)

type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusMaintenance Status = "MAINTENANCE"
	StatusUnavailable Status = "UNAVAILABLE"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusAvailable, StatusMaintenance, StatusUnavailable:
		return Status(s), nil
	default:
		return "", fault.New(fault.InvalidInput, "unknown room status: "+s)
	}
}

type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Capacity    int       `json:"capacity"`
	Facilities  []string  `json:"facilities"`
	Floor       string    `json:"floor,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const roomColumns = `
id, name, COALESCE(description,''), capacity, facilities, COALESCE(floor,''), status, created_at, updated_at
`

func scanRoom(row pgx.Row) (*Room, error) {
	var rm Room
	if err := row.Scan(
		&rm.ID, &rm.Name, &rm.Description, &rm.Capacity, &rm.Facilities, &rm.Floor, &rm.Status,
		&rm.CreatedAt, &rm.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "room not found")
		}
		return nil, err
	}
	return &rm, nil
}

func (r *Repository) Create(ctx context.Context, rm *Room) error {
	const q = `
INSERT INTO rooms (id, name, description, capacity, facilities, floor, status)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7)
RETURNING created_at, updated_at
`
	return r.db.QueryRow(ctx, q,
		rm.ID, rm.Name, rm.Description, rm.Capacity, rm.Facilities, rm.Floor, rm.Status,
	).Scan(&rm.CreatedAt, &rm.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	return scanRoom(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) List(ctx context.Context, status Status, limit, offset int) ([]Room, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	const q = `
SELECT ` + roomColumns + `
FROM rooms
WHERE ($1 = '' OR status = $1)
ORDER BY name
LIMIT $2 OFFSET $3
`
	rows, err := r.db.Query(ctx, q, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRooms(rows)
}

// Available lists AVAILABLE rooms with no active booking overlapping
// [start, end).
func (r *Repository) Available(ctx context.Context, start, end time.Time) ([]Room, error) {
	const q = `
SELECT ` + roomColumns + `
FROM rooms r
WHERE r.status = 'AVAILABLE'
  AND NOT EXISTS (
    SELECT 1
    FROM bookings b
    WHERE b.room_id = r.id
      AND b.status IN ('PENDING', 'PROCESSING', 'APPROVED')
      AND b.start_time < $2
      AND b.end_time > $1
  )
ORDER BY r.name
`
	rows, err := r.db.Query(ctx, q, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRooms(rows)
}

type Patch struct {
	Name        *string
	Description *string
	Capacity    *int
	Facilities  []string
	Floor       *string
	Status      *Status
}

func (r *Repository) Update(ctx context.Context, id string, p Patch) (*Room, error) {
	const q = `
UPDATE rooms
SET name        = COALESCE($2, name),
    description = COALESCE($3, description),
    capacity    = COALESCE($4, capacity),
    facilities  = COALESCE($5, facilities),
    floor       = COALESCE($6, floor),
    status      = COALESCE($7, status),
    updated_at  = NOW()
WHERE id = $1
RETURNING ` + roomColumns
	return scanRoom(r.db.QueryRow(ctx, q, id, p.Name, p.Description, p.Capacity, p.Facilities, p.Floor, p.Status))
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.New(fault.NotFound, "room not found")
	}
	return nil
}

func collectRooms(rows pgx.Rows) ([]Room, error) {
	var out []Room
	for rows.Next() {
		var rm Room
		if err := rows.Scan(
			&rm.ID, &rm.Name, &rm.Description, &rm.Capacity, &rm.Facilities, &rm.Floor, &rm.Status,
			&rm.CreatedAt, &rm.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}
