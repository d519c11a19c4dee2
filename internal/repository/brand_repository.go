// Brands and models are reference data: the application reads them to
// populate the submission form's cascading selects and never writes
// them. Rows are seeded out of band.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/qmotor/car-marketplace/internal/model"
)

// ErrBrandNotFound is returned when a brand id does not exist.
var ErrBrandNotFound = errors.New("brand not found")

type BrandRepo struct{ DB *sql.DB }

func NewBrandRepo(db *sql.DB) *BrandRepo { return &BrandRepo{DB: db} }

// ListAll returns all brands ordered by name.
func (r *BrandRepo) ListAll(ctx context.Context) ([]*model.Brand, error) {
	const q = `SELECT id, name, logo_url, created_at, updated_at FROM brands ORDER BY name`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Brand
	for rows.Next() {
		b := new(model.Brand)
		if err := rows.Scan(&b.ID, &b.Name, &b.LogoURL, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches one brand.
func (r *BrandRepo) GetByID(ctx context.Context, id uint64) (*model.Brand, error) {
	const q = `SELECT id, name, logo_url, created_at, updated_at FROM brands WHERE id = ?`
	var b model.Brand
	if err := r.DB.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.Name, &b.LogoURL, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListModelsByBrand returns the models of one brand ordered by name.
// Changing the brand in the submission form cascades into this query.
func (r *BrandRepo) ListModelsByBrand(ctx context.Context, brandID uint64) ([]*model.CarModel, error) {
	const q = `SELECT id, brand_id, name, created_at, updated_at
	           FROM models WHERE brand_id = ? ORDER BY name`
	rows, err := r.DB.QueryContext(ctx, q, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.CarModel
	for rows.Next() {
		m := new(model.CarModel)
		if err := rows.Scan(&m.ID, &m.BrandID, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ModelBelongsToBrand reports whether the model id exists under the
// brand id. The submission workflow uses it to reject a stale model
// selection left over from a previous brand choice.
func (r *BrandRepo) ModelBelongsToBrand(ctx context.Context, modelID, brandID uint64) (bool, error) {
	var n int
	const q = `SELECT COUNT(1) FROM models WHERE id = ? AND brand_id = ?`
	if err := r.DB.QueryRowContext(ctx, q, modelID, brandID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
