package model

import "time"

// Admin log action types.
const (
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// AdminLog is one row of the append-only audit trail written alongside
// every admin mutation. The application only ever writes these rows;
// nothing reads them back.
//
// Fields:
//  ID         – primary key identifier.
//  AdminID    – user id of the acting admin.
//  ActionType – one of the Action* constants.
//  TableName  – table the action targeted.
//  RecordID   – primary key of the targeted row.
//  Changes    – free-form JSON describing the change (nullable).
//  CreatedAt  – when the action happened.
type AdminLog struct {
	ID         uint64    // admin_logs.id
	AdminID    uint64    // admin_logs.admin_id
	ActionType string    // admin_logs.action_type
	TableName  string    // admin_logs.table_name
	RecordID   uint64    // admin_logs.record_id
	Changes    *string   // admin_logs.changes (nullable JSON text)
	CreatedAt  time.Time // admin_logs.created_at
}
