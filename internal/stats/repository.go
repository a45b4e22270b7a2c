// Package stats aggregates booking counts for the dashboard screens.
package stats

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DashboardStats summarizes one user's bookings.
type DashboardStats struct {
	TotalBookings     int `json:"totalBookings"`
	PendingBookings   int `json:"pendingBookings"`
	ApprovedBookings  int `json:"approvedBookings"`
	RejectedBookings  int `json:"rejectedBookings"`
	CancelledBookings int `json:"cancelledBookings"`
	CompletedBookings int `json:"completedBookings"`
}

// AdminStats is the system-wide view. TotalRevenue stays zero until
// rooms carry an hourly rate; it is kept in the payload so the admin
// dashboard contract does not change when billing lands.
type AdminStats struct {
	TotalUsers      int             `json:"totalUsers"`
	TotalRooms      int             `json:"totalRooms"`
	TotalBookings   int             `json:"totalBookings"`
	PendingBookings int             `json:"pendingBookings"`
	ActiveBookings  int             `json:"activeBookings"`
	OccupancyRate   float64         `json:"occupancyRate"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Dashboard(ctx context.Context, userID string) (*DashboardStats, error) {
	const q = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status = 'PENDING'),
       COUNT(*) FILTER (WHERE status = 'APPROVED'),
       COUNT(*) FILTER (WHERE status = 'REJECTED'),
       COUNT(*) FILTER (WHERE status = 'CANCELLED'),
       COUNT(*) FILTER (WHERE status = 'COMPLETED')
FROM bookings
WHERE user_id = $1
`
	var s DashboardStats
	if err := r.db.QueryRow(ctx, q, userID).Scan(
		&s.TotalBookings, &s.PendingBookings, &s.ApprovedBookings,
		&s.RejectedBookings, &s.CancelledBookings, &s.CompletedBookings,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Admin(ctx context.Context) (*AdminStats, error) {
	const q = `
SELECT (SELECT COUNT(*) FROM users),
       (SELECT COUNT(*) FROM rooms),
       COUNT(*),
       COUNT(*) FILTER (WHERE status = 'PENDING'),
       COUNT(*) FILTER (WHERE status IN ('PENDING', 'PROCESSING', 'APPROVED'))
FROM bookings
`
	s := AdminStats{TotalRevenue: decimal.Zero}
	if err := r.db.QueryRow(ctx, q).Scan(
		&s.TotalUsers, &s.TotalRooms, &s.TotalBookings, &s.PendingBookings, &s.ActiveBookings,
	); err != nil {
		return nil, err
	}
	if s.TotalRooms > 0 {
		const qOccupied = `
SELECT COUNT(DISTINCT room_id)
FROM bookings
WHERE status IN ('PENDING', 'PROCESSING', 'APPROVED')
  AND start_time <= NOW() AND end_time > NOW()
`
		var occupied int
		if err := r.db.QueryRow(ctx, qOccupied).Scan(&occupied); err != nil {
			return nil, err
		}
		s.OccupancyRate = float64(occupied) / float64(s.TotalRooms)
	}
	return &s, nil
}
