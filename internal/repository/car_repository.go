// Car listings are the central entity of the marketplace. The
// repository exposes ownership-checked mutations (sellers may only
// touch their own rows), status-guarded updates used by the moderation
// workflow, and aggregate queries backing the admin analytics tab.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/qmotor/car-marketplace/internal/model"
)

// ErrCarNotFound is returned when a car cannot be found in the DB.
var ErrCarNotFound = errors.New("car not found")

// Seller is the slice of a profile embedded in listing responses.
type Seller struct {
	ID          uint64
	FullName    string
	Email       string
	PhoneNumber *string
}

// CarDetail is a car together with its embedded brand, model, seller
// and images, mirroring the relationship embedding the browse and
// moderation screens need in a single fetch.
type CarDetail struct {
	model.Car
	BrandName string
	ModelName string
	Seller    Seller
	Images    []model.CarImage
}

// Filter holds the conjunctive browse predicates. Nil fields are
// inactive; every non-nil field must hold for a row to be returned.
// Ranges are inclusive on both ends.
type Filter struct {
	BrandID     *uint64
	MinPrice    *int
	MaxPrice    *int
	MinYear     *int
	MaxYear     *int
	Condition   *string
	FuelType    *string
	BodyType    *string
	GearboxType *string
}

// BrandCount is one row of the cars-by-brand ranking.
type BrandCount struct {
	Brand string
	Count int
}

type CarRepo struct{ DB *sql.DB }

func NewCarRepo(db *sql.DB) *CarRepo { return &CarRepo{DB: db} }

const carColumns = `c.id, c.user_id, c.brand_id, c.model_id, c.year, c.mileage, c.price,
	c.description, c.fuel_type, c.gearbox_type, c.body_type, c.condition, c.color,
	c.cylinders, c.status, c.created_at, c.updated_at`

func scanCar(row interface{ Scan(...any) error }, c *model.Car) error {
	return row.Scan(&c.ID, &c.UserID, &c.BrandID, &c.ModelID, &c.Year, &c.Mileage, &c.Price,
		&c.Description, &c.FuelType, &c.GearboxType, &c.BodyType, &c.Condition, &c.Color,
		&c.Cylinders, &c.Status, &c.CreatedAt, &c.UpdatedAt)
}

// condition is a reserved word in MySQL, so the write statements must
// backtick-quote it; the filtered reads get away without quoting only
// because they reference it through the table alias.
const carInsertSQL = `INSERT INTO cars
    (user_id, brand_id, model_id, year, mileage, price, description,
     fuel_type, gearbox_type, body_type, ` + "`condition`" + `, color, cylinders, status)
    VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

const carUpdateOwnedSQL = `UPDATE cars SET
    brand_id = ?, model_id = ?, year = ?, mileage = ?, price = ?, description = ?,
    fuel_type = ?, gearbox_type = ?, body_type = ?, ` + "`condition`" + ` = ?, color = ?, cylinders = ?,
    updated_at = CURRENT_TIMESTAMP
    WHERE id = ? AND user_id = ?`

// Create inserts a new car row. On success the ID and timestamp fields
// are populated. The caller decides the status; the submission
// workflow always passes Draft.
func (r *CarRepo) Create(ctx context.Context, c *model.Car) error {
	res, err := r.DB.ExecContext(ctx, carInsertSQL,
		c.UserID, c.BrandID, c.ModelID, c.Year, c.Mileage, c.Price, c.Description,
		c.FuelType, c.GearboxType, c.BodyType, c.Condition, c.Color, c.Cylinders, c.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)

	const qSel = `SELECT created_at, updated_at FROM cars WHERE id = ?`
	return r.DB.QueryRowContext(ctx, qSel, c.ID).Scan(&c.CreatedAt, &c.UpdatedAt)
}

// GetByID fetches a bare car row.
func (r *CarRepo) GetByID(ctx context.Context, id uint64) (*model.Car, error) {
	q := fmt.Sprintf(`SELECT %s FROM cars c WHERE c.id = ?`, carColumns)
	var c model.Car
	if err := scanCar(r.DB.QueryRowContext(ctx, q, id), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return &c, nil
}

const detailColumns = carColumns + `, b.name, m.name, p.id, p.full_name, p.email, p.phone_number`

const detailJoins = ` FROM cars c
	JOIN brands b ON b.id = c.brand_id
	JOIN models m ON m.id = c.model_id
	JOIN profiles p ON p.id = c.user_id`

func scanDetail(row interface{ Scan(...any) error }) (*CarDetail, error) {
	d := new(CarDetail)
	if err := row.Scan(&d.ID, &d.UserID, &d.BrandID, &d.ModelID, &d.Year, &d.Mileage, &d.Price,
		&d.Description, &d.FuelType, &d.GearboxType, &d.BodyType, &d.Condition, &d.Color,
		&d.Cylinders, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.BrandName, &d.ModelName,
		&d.Seller.ID, &d.Seller.FullName, &d.Seller.Email, &d.Seller.PhoneNumber); err != nil {
		return nil, err
	}
	return d, nil
}

// GetDetail fetches one car with embedded brand, model, seller and
// images.
func (r *CarRepo) GetDetail(ctx context.Context, id uint64) (*CarDetail, error) {
	q := `SELECT ` + detailColumns + detailJoins + ` WHERE c.id = ?`
	d, err := scanDetail(r.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	if err := r.attachImages(ctx, []*CarDetail{d}); err != nil {
		return nil, err
	}
	return d, nil
}

// ListApproved returns Approved listings newest first, narrowed by the
// active filter predicates. Predicates are appended one by one so the
// resulting WHERE clause contains exactly the active filters.
func (r *CarRepo) ListApproved(ctx context.Context, f Filter) ([]*CarDetail, error) {
	q := `SELECT ` + detailColumns + detailJoins + ` WHERE c.status = ?`
	args := []any{model.StatusApproved}

	if f.BrandID != nil {
		q += ` AND c.brand_id = ?`
		args = append(args, *f.BrandID)
	}
	if f.MinPrice != nil {
		q += ` AND c.price >= ?`
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q += ` AND c.price <= ?`
		args = append(args, *f.MaxPrice)
	}
	if f.MinYear != nil {
		q += ` AND c.year >= ?`
		args = append(args, *f.MinYear)
	}
	if f.MaxYear != nil {
		q += ` AND c.year <= ?`
		args = append(args, *f.MaxYear)
	}
	if f.Condition != nil {
		q += ` AND c.condition = ?`
		args = append(args, *f.Condition)
	}
	if f.FuelType != nil {
		q += ` AND c.fuel_type = ?`
		args = append(args, *f.FuelType)
	}
	if f.BodyType != nil {
		q += ` AND c.body_type = ?`
		args = append(args, *f.BodyType)
	}
	if f.GearboxType != nil {
		q += ` AND c.gearbox_type = ?`
		args = append(args, *f.GearboxType)
	}
	q += ` ORDER BY c.created_at DESC`

	return r.listDetails(ctx, q, args...)
}

// ListByOwner returns a user's own listings newest first, all statuses.
func (r *CarRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*CarDetail, error) {
	q := `SELECT ` + detailColumns + detailJoins + ` WHERE c.user_id = ? ORDER BY c.created_at DESC`
	return r.listDetails(ctx, q, ownerID)
}

// ListByStatus returns listings in one status newest first, used by the
// moderation tab.
func (r *CarRepo) ListByStatus(ctx context.Context, status string) ([]*CarDetail, error) {
	q := `SELECT ` + detailColumns + detailJoins + ` WHERE c.status = ? ORDER BY c.created_at DESC`
	return r.listDetails(ctx, q, status)
}

// ListRecent returns the newest listings regardless of status, for the
// admin activity feed.
func (r *CarRepo) ListRecent(ctx context.Context, limit int) ([]*CarDetail, error) {
	q := `SELECT ` + detailColumns + detailJoins + ` ORDER BY c.created_at DESC LIMIT ?`
	return r.listDetails(ctx, q, limit)
}

func (r *CarRepo) listDetails(ctx context.Context, q string, args ...any) ([]*CarDetail, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CarDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachImages loads the images of all given cars in one query and
// distributes them by car id, ordered by upload position.
func (r *CarRepo) attachImages(ctx context.Context, cars []*CarDetail) error {
	if len(cars) == 0 {
		return nil
	}
	byID := make(map[uint64]*CarDetail, len(cars))
	args := make([]any, 0, len(cars))
	for _, c := range cars {
		byID[c.ID] = c
		args = append(args, c.ID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cars)), ",")
	q := `SELECT id, car_id, url, is_primary, position, created_at
	      FROM car_images WHERE car_id IN (` + placeholders + `) ORDER BY car_id, position`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var img model.CarImage
		if err := rows.Scan(&img.ID, &img.CarID, &img.URL, &img.IsPrimary, &img.Position, &img.CreatedAt); err != nil {
			return err
		}
		if c, ok := byID[img.CarID]; ok {
			c.Images = append(c.Images, img)
		}
	}
	return rows.Err()
}

// UpdateOwned rewrites the editable fields of a listing provided it
// belongs to ownerID. Returns ErrCarNotFound when the row does not
// exist and ErrForbidden when it is owned by someone else.
func (r *CarRepo) UpdateOwned(ctx context.Context, c *model.Car, ownerID uint64) error {
	var dbOwner uint64
	if err := r.DB.QueryRowContext(ctx, `SELECT user_id FROM cars WHERE id = ?`, c.ID).Scan(&dbOwner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCarNotFound
		}
		return err
	}
	if dbOwner != ownerID {
		return ErrForbidden
	}
	_, err := r.DB.ExecContext(ctx, carUpdateOwnedSQL,
		c.BrandID, c.ModelID, c.Year, c.Mileage, c.Price, c.Description,
		c.FuelType, c.GearboxType, c.BodyType, c.Condition, c.Color, c.Cylinders,
		c.ID, ownerID)
	return err
}

// AdminUpdate rewrites the fields the admin edit modal exposes.
func (r *CarRepo) AdminUpdate(ctx context.Context, id uint64, price, mileage int, description *string, status string) error {
	const q = `UPDATE cars SET price = ?, mileage = ?, description = ?, status = ?,
	           updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, price, mileage, description, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCarNotFound
	}
	return nil
}

// UpdateStatusFrom moves a car from one status to another in a single
// guarded statement. ErrConflict means the row was not in the expected
// status (or does not exist), which keeps concurrent moderation
// decisions from overwriting each other.
func (r *CarRepo) UpdateStatusFrom(ctx context.Context, id uint64, from, to string) error {
	const q = `UPDATE cars SET status = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND status = ?`
	res, err := r.DB.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// UpdateStatusOwned is UpdateStatusFrom with an ownership guard, used
// when a seller marks an approved listing as sold.
func (r *CarRepo) UpdateStatusOwned(ctx context.Context, id, ownerID uint64, from, to string) error {
	var dbOwner uint64
	if err := r.DB.QueryRowContext(ctx, `SELECT user_id FROM cars WHERE id = ?`, id).Scan(&dbOwner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCarNotFound
		}
		return err
	}
	if dbOwner != ownerID {
		return ErrForbidden
	}
	return r.UpdateStatusFrom(ctx, id, from, to)
}

// Delete removes a car and its dependent rows inside a transaction:
// favorites and image rows first, then the car itself. It returns the
// URLs of the removed images so the caller can clean up stored files
// best-effort. When ownerID is non-zero the row must belong to that
// user; admins pass zero to skip the check.
func (r *CarRepo) Delete(ctx context.Context, id, ownerID uint64) (urls []string, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var dbOwner uint64
	if err = tx.QueryRowContext(ctx, `SELECT user_id FROM cars WHERE id = ?`, id).Scan(&dbOwner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrCarNotFound
		}
		return nil, err
	}
	if ownerID != 0 && dbOwner != ownerID {
		err = ErrForbidden
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `SELECT url FROM car_images WHERE car_id = ?`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var u string
		if err = rows.Scan(&u); err != nil {
			rows.Close()
			return nil, err
		}
		urls = append(urls, u)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM favorites WHERE car_id = ?`, id); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM car_images WHERE car_id = ?`, id); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM cars WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return urls, nil
}

// CountByStatus returns how many cars sit in each status.
func (r *CarRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM cars GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

// CountByBrand returns the cars-by-brand ranking, most listed first.
func (r *CarRepo) CountByBrand(ctx context.Context) ([]BrandCount, error) {
	const q = `SELECT b.name, COUNT(*) FROM cars c
	           JOIN brands b ON b.id = c.brand_id
	           GROUP BY b.name ORDER BY COUNT(*) DESC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BrandCount
	for rows.Next() {
		var bc BrandCount
		if err := rows.Scan(&bc.Brand, &bc.Count); err != nil {
			return nil, err
		}
		out = append(out, bc)
	}
	return out, rows.Err()
}
