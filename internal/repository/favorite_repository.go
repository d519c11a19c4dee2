package repository

import (
	"context"
	"database/sql"
)

// FavoriteRepo manages the user↔car join rows. Uniqueness per
// (user, car) is application-enforced: Toggle checks for an existing
// row and inserts or deletes accordingly, so toggling twice always
// returns to the original state.
type FavoriteRepo struct{ DB *sql.DB }

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{DB: db} }

// Exists reports whether the user has favorited the car.
func (r *FavoriteRepo) Exists(ctx context.Context, userID, carID uint64) (bool, error) {
	var n int
	const q = `SELECT COUNT(1) FROM favorites WHERE user_id = ? AND car_id = ?`
	if err := r.DB.QueryRowContext(ctx, q, userID, carID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Toggle flips the favorite state and returns the resulting state
// (true = now favorited).
func (r *FavoriteRepo) Toggle(ctx context.Context, userID, carID uint64) (bool, error) {
	exists, err := r.Exists(ctx, userID, carID)
	if err != nil {
		return false, err
	}
	if exists {
		_, err := r.DB.ExecContext(ctx,
			`DELETE FROM favorites WHERE user_id = ? AND car_id = ?`, userID, carID)
		return false, err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO favorites (user_id, car_id) VALUES (?, ?)`, userID, carID)
	return true, err
}

// ListCarIDs returns the ids of all cars the user has favorited. The
// browse screen merges this set into its results by id lookup.
func (r *FavoriteRepo) ListCarIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT car_id FROM favorites WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
