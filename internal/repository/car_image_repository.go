package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/qmotor/car-marketplace/internal/model"
)

// ErrImageNotFound is returned when an image row does not exist.
var ErrImageNotFound = errors.New("image not found")

type CarImageRepo struct{ DB *sql.DB }

func NewCarImageRepo(db *sql.DB) *CarImageRepo { return &CarImageRepo{DB: db} }

// Insert stores one image row. The submission workflow inserts exactly
// one row per successfully uploaded file, in upload order.
func (r *CarImageRepo) Insert(ctx context.Context, img *model.CarImage) error {
	const q = `INSERT INTO car_images (car_id, url, is_primary, position) VALUES (?,?,?,?)`
	res, err := r.DB.ExecContext(ctx, q, img.CarID, img.URL, img.IsPrimary, img.Position)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	img.ID = uint64(id)
	return nil
}

// ListByCar returns a car's images in upload order.
func (r *CarImageRepo) ListByCar(ctx context.Context, carID uint64) ([]*model.CarImage, error) {
	const q = `SELECT id, car_id, url, is_primary, position, created_at
	           FROM car_images WHERE car_id = ? ORDER BY position`
	rows, err := r.DB.QueryContext(ctx, q, carID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.CarImage
	for rows.Next() {
		img := new(model.CarImage)
		if err := rows.Scan(&img.ID, &img.CarID, &img.URL, &img.IsPrimary, &img.Position, &img.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByCar returns how many images a car currently has.
func (r *CarImageRepo) CountByCar(ctx context.Context, carID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM car_images WHERE car_id = ?`, carID).Scan(&n)
	return n, err
}

// NextPosition returns the position for the next uploaded image, one
// past the current maximum. Deletions leave gaps in the sequence, so
// the row count cannot stand in for this.
func (r *CarImageRepo) NextPosition(ctx context.Context, carID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position)+1, 0) FROM car_images WHERE car_id = ?`, carID).Scan(&n)
	return n, err
}

// Delete removes one image row of a specific car and returns its URL
// so the stored file can be cleaned up. The car id is part of the
// predicate so a caller cannot delete another listing's image by id.
func (r *CarImageRepo) Delete(ctx context.Context, id, carID uint64) (string, error) {
	var url string
	err := r.DB.QueryRowContext(ctx,
		`SELECT url FROM car_images WHERE id = ? AND car_id = ?`, id, carID).Scan(&url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrImageNotFound
		}
		return "", err
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM car_images WHERE id = ? AND car_id = ?`, id, carID); err != nil {
		return "", err
	}
	return url, nil
}

// DeleteByCar removes all image rows of a car and returns their URLs.
// Used by the saga compensation when an upload fails partway.
func (r *CarImageRepo) DeleteByCar(ctx context.Context, carID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT url FROM car_images WHERE car_id = ?`, carID)
	if err != nil {
		return nil, err
	}
	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			rows.Close()
			return nil, err
		}
		urls = append(urls, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM car_images WHERE car_id = ?`, carID); err != nil {
		return nil, err
	}
	return urls, nil
}

// PromoteFirstPrimary flags the car's position-0 image as primary in
// case earlier deletions removed the original primary.
func (r *CarImageRepo) PromoteFirstPrimary(ctx context.Context, carID uint64) error {
	const q = `UPDATE car_images SET is_primary = (position = (
	               SELECT MIN(position) FROM (SELECT position FROM car_images WHERE car_id = ?) x
	           )) WHERE car_id = ?`
	_, err := r.DB.ExecContext(ctx, q, carID, carID)
	return err
}
