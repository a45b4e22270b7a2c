package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"roombooking/internal/fault"
	"roombooking/pkg/db"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements Store over pgx. Atomic yields a copy bound to
// a transaction; the room row lock taken by RoomForUpdate then holds
// until commit.
type PostgresStore struct {
	pool *pgxpool.Pool
	q    querier
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, q: pool}
}

func (s *PostgresStore) Atomic(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		// Already transaction-bound; nested use joins the outer tx.
		return fn(s)
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&PostgresStore{q: tx})
	})
}

func (s *PostgresStore) RoomForUpdate(ctx context.Context, roomID string) (*RoomInfo, error) {
	const q = `SELECT id, name, capacity FROM rooms WHERE id = $1 FOR UPDATE`
	var rm RoomInfo
	if err := s.q.QueryRow(ctx, q, roomID).Scan(&rm.ID, &rm.Name, &rm.Capacity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "room not found")
		}
		return nil, err
	}
	return &rm, nil
}

// FirstConflict reports the earliest-starting active booking overlapping
// the half-open [start, end) window, or nil when the window is free.
func (s *PostgresStore) FirstConflict(ctx context.Context, roomID string, start, end time.Time, excludeID string) (*Conflict, error) {
	const q = `
SELECT b.id, u.name, b.start_time, b.end_time
FROM bookings b
JOIN users u ON u.id = b.user_id
WHERE b.room_id = $1
  AND b.status IN ('PENDING', 'PROCESSING', 'APPROVED')
  AND b.start_time < $3
  AND b.end_time > $2
  AND ($4 = '' OR b.id <> $4)
ORDER BY b.start_time ASC, b.id ASC
LIMIT 1
`
	var c Conflict
	err := s.q.QueryRow(ctx, q, roomID, start, end, excludeID).Scan(&c.BookingID, &c.OccupantName, &c.StartTime, &c.EndTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

const bookingColumns = `
b.id, b.user_id, b.room_id, b.start_time, b.end_time, b.purpose, b.attendees,
COALESCE(b.document_url,''), COALESCE(b.document_name,''),
COALESCE(b.approved_document_url,''), COALESCE(b.approved_document_name,''),
COALESCE(b.notes,''), COALESCE(b.admin_note,''), b.status, b.created_at, b.updated_at,
u.name, r.name
`

const bookingFrom = `
FROM bookings b
JOIN users u ON u.id = b.user_id
JOIN rooms r ON r.id = b.room_id
`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.StartTime, &b.EndTime, &b.Purpose, &b.Attendees,
		&b.DocumentURL, &b.DocumentName, &b.ApprovedDocumentURL, &b.ApprovedDocumentName,
		&b.Notes, &b.AdminNote, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		&b.UserName, &b.RoomName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "booking not found")
		}
		return nil, err
	}
	return &b, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Booking, error) {
	const q = `SELECT ` + bookingColumns + bookingFrom + ` WHERE b.id = $1`
	return scanBooking(s.q.QueryRow(ctx, q, id))
}

func (s *PostgresStore) Insert(ctx context.Context, b *Booking) error {
	const q = `
INSERT INTO bookings (id, user_id, room_id, start_time, end_time, purpose, attendees,
                      document_url, document_name, notes, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11)
RETURNING created_at, updated_at
`
	return s.q.QueryRow(ctx, q,
		b.ID, b.UserID, b.RoomID, b.StartTime, b.EndTime, b.Purpose, b.Attendees,
		b.DocumentURL, b.DocumentName, b.Notes, b.Status,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (s *PostgresStore) UpdateFields(ctx context.Context, b *Booking) error {
	const q = `
UPDATE bookings
SET start_time    = $2,
    end_time      = $3,
    purpose       = $4,
    attendees     = $5,
    document_url  = NULLIF($6, ''),
    document_name = NULLIF($7, ''),
    notes         = NULLIF($8, ''),
    updated_at    = NOW()
WHERE id = $1
RETURNING updated_at
`
	return s.q.QueryRow(ctx, q,
		b.ID, b.StartTime, b.EndTime, b.Purpose, b.Attendees,
		b.DocumentURL, b.DocumentName, b.Notes,
	).Scan(&b.UpdatedAt)
}

// UpdateStatus writes the new status; note and approved document fields
// are only overwritten when provided, matching partial admin updates.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, next Status, adminNote, approvedDocURL, approvedDocName string) (*Booking, error) {
	const q = `
UPDATE bookings b
SET status                 = $2,
    admin_note             = COALESCE(NULLIF($3, ''), b.admin_note),
    approved_document_url  = COALESCE(NULLIF($4, ''), b.approved_document_url),
    approved_document_name = COALESCE(NULLIF($5, ''), b.approved_document_name),
    updated_at             = NOW()
FROM users u, rooms r
WHERE b.id = $1 AND u.id = b.user_id AND r.id = b.room_id
RETURNING ` + bookingColumns
	return scanBooking(s.q.QueryRow(ctx, q, id, next, adminNote, approvedDocURL, approvedDocName))
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.New(fault.NotFound, "booking not found")
	}
	return nil
}

func (s *PostgresStore) ListForRoom(ctx context.Context, roomID string, status Status) ([]Booking, error) {
	const q = `
SELECT ` + bookingColumns + bookingFrom + `
WHERE b.room_id = $1
  AND (($2 = '' AND b.status IN ('PENDING', 'PROCESSING', 'APPROVED')) OR b.status = $2)
ORDER BY b.start_time DESC
`
	return s.collect(ctx, q, roomID, string(status))
}

func (s *PostgresStore) ListAll(ctx context.Context, userID string, status Status) ([]Booking, error) {
	const q = `
SELECT ` + bookingColumns + bookingFrom + `
WHERE ($1 = '' OR b.user_id = $1)
  AND ($2 = '' OR b.status = $2)
ORDER BY b.start_time DESC
`
	return s.collect(ctx, q, userID, string(status))
}

func (s *PostgresStore) ListForUser(ctx context.Context, userID string, status Status) ([]Booking, error) {
	const q = `
SELECT ` + bookingColumns + bookingFrom + `
WHERE b.user_id = $1 AND ($2 = '' OR b.status = $2)
ORDER BY b.start_time DESC
`
	return s.collect(ctx, q, userID, string(status))
}

func (s *PostgresStore) UpcomingForUser(ctx context.Context, userID string, now time.Time) ([]Booking, error) {
	const q = `
SELECT ` + bookingColumns + bookingFrom + `
WHERE b.user_id = $1
  AND b.start_time >= $2
  AND b.status IN ('PENDING', 'APPROVED')
ORDER BY b.start_time ASC
`
	return s.collect(ctx, q, userID, now)
}

func (s *PostgresStore) collect(ctx context.Context, q string, args ...any) ([]Booking, error) {
	rows, err := s.q.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.RoomID, &b.StartTime, &b.EndTime, &b.Purpose, &b.Attendees,
			&b.DocumentURL, &b.DocumentName, &b.ApprovedDocumentURL, &b.ApprovedDocumentName,
			&b.Notes, &b.AdminNote, &b.Status, &b.CreatedAt, &b.UpdatedAt,
			&b.UserName, &b.RoomName,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
