package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roombooking/internal/fault"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Avatar       string    `json:"avatar,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `
id, email, password_hash, name, role, COALESCE(avatar,''), COALESCE(phone,''), created_at, updated_at
`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Avatar, &u.Phone, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "user not found")
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Create(ctx context.Context, u *User) error {
	const q = `
INSERT INTO users (id, email, password_hash, name, role, phone)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
RETURNING created_at, updated_at
`
	return r.db.QueryRow(ctx, q, u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.Phone).
		Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, q, email))
}

func (r *Repository) List(ctx context.Context, role string) ([]User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE ($1 = '' OR role = $1)
ORDER BY created_at DESC
`
	rows, err := r.db.Query(ctx, q, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Avatar, &u.Phone, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateProfile patches name/phone/avatar; nil fields are left untouched.
func (r *Repository) UpdateProfile(ctx context.Context, id string, name, phone, avatar *string) (*User, error) {
	const q = `
UPDATE users
SET name   = COALESCE($2, name),
    phone  = COALESCE($3, phone),
    avatar = COALESCE($4, avatar),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, q, id, name, phone, avatar))
}

func (r *Repository) UpdateRole(ctx context.Context, id, role string) (*User, error) {
	const q = `
UPDATE users
SET role = $2, updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, q, id, role))
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.New(fault.NotFound, "user not found")
	}
	return nil
}
