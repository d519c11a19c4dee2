package repository

import (
	"context"
	"database/sql"

	"github.com/qmotor/car-marketplace/internal/model"
)

// AdminLogRepo writes the append-only audit trail. The application
// never reads these rows back; they exist for operators.
type AdminLogRepo struct{ DB *sql.DB }

func NewAdminLogRepo(db *sql.DB) *AdminLogRepo { return &AdminLogRepo{DB: db} }

// Insert appends one audit row.
func (r *AdminLogRepo) Insert(ctx context.Context, l *model.AdminLog) error {
	const q = `INSERT INTO admin_logs (admin_id, action_type, table_name, record_id, changes)
	           VALUES (?,?,?,?,?)`
	res, err := r.DB.ExecContext(ctx, q, l.AdminID, l.ActionType, l.TableName, l.RecordID, l.Changes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}
