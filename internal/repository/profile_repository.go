// Profile rows are the application-level user records, keyed by the
// auth identity's id. They are created lazily by the reconciliation
// that runs on session establishment, so GetByID returning
// ErrProfileNotFound is an expected condition, not a failure.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/qmotor/car-marketplace/internal/model"
)

// ErrProfileNotFound is returned when no profile row exists for an
// identity yet.
var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// GetByID fetches a profile by the owning user's id.
func (r *ProfileRepo) GetByID(ctx context.Context, id uint64) (*model.Profile, error) {
	const q = `SELECT id, email, full_name, phone_number, role, created_at, updated_at
	           FROM profiles WHERE id = ?`
	var p model.Profile
	if err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Email, &p.FullName, &p.PhoneNumber, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Insert creates a new profile row. Role must be set by the caller;
// reconciliation always seeds it with "normal_user".
func (r *ProfileRepo) Insert(ctx context.Context, p *model.Profile) error {
	const q = `INSERT INTO profiles (id, email, full_name, phone_number, role)
	           VALUES (?, ?, ?, ?, ?)`
	if _, err := r.DB.ExecContext(ctx, q, p.ID, p.Email, p.FullName, p.PhoneNumber, p.Role); err != nil {
		return err
	}
	// Follow-up SELECT to populate default timestamp fields.
	const qSel = `SELECT created_at, updated_at FROM profiles WHERE id = ?`
	return r.DB.QueryRowContext(ctx, qSel, p.ID).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// UpdateContact refreshes the mutable contact fields. Role is
// deliberately not part of this statement: reconciliation must never
// change it.
func (r *ProfileRepo) UpdateContact(ctx context.Context, id uint64, email, fullName string, phone *string) error {
	const q = `UPDATE profiles
	           SET email = ?, full_name = ?, phone_number = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, email, fullName, phone, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// ProfileWithStats pairs a profile with the number of listings the user
// has posted. Used by the admin users tab.
type ProfileWithStats struct {
	model.Profile
	TotalAds int
}

// ListWithStats returns all profiles together with their listing
// counts, newest first.
func (r *ProfileRepo) ListWithStats(ctx context.Context) ([]*ProfileWithStats, error) {
	const q = `SELECT p.id, p.email, p.full_name, p.phone_number, p.role, p.created_at, p.updated_at,
	                  COUNT(c.id)
	           FROM profiles p
	           LEFT JOIN cars c ON c.user_id = p.id
	           GROUP BY p.id
	           ORDER BY p.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ProfileWithStats
	for rows.Next() {
		p := new(ProfileWithStats)
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.PhoneNumber, &p.Role,
			&p.CreatedAt, &p.UpdatedAt, &p.TotalAds); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountAll returns the total number of profiles.
func (r *ProfileRepo) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n)
	return n, err
}

// ListRecent returns the newest profiles, used for the admin activity
// feed.
func (r *ProfileRepo) ListRecent(ctx context.Context, limit int) ([]*model.Profile, error) {
	const q = `SELECT id, email, full_name, phone_number, role, created_at, updated_at
	           FROM profiles ORDER BY created_at DESC LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Profile
	for rows.Next() {
		p := new(model.Profile)
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.PhoneNumber, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
