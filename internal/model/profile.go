package model

import "time"

// Role values stored in profiles.role.
const (
	RoleNormalUser = "normal_user"
	RoleAdmin      = "admin"
)

// Profile is the application-level user record, keyed by the auth
// identity (profiles.id = users.id). Exactly one profile exists per
// identity: it is created lazily on the first session and its mutable
// fields (email, full name, phone) are refreshed from the auth record
// on every session establishment. Role is never touched by that
// reconciliation; only an admin changes it.
//
// Fields:
//  ID          – users.id of the owning identity.
//  Email       – contact email, mirrors the auth record.
//  FullName    – display name shown on listings.
//  PhoneNumber – contact phone (nullable).
//  Role        – "normal_user" or "admin".
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Profile struct {
	ID          uint64    // profiles.id
	Email       string    // profiles.email
	FullName    string    // profiles.full_name
	PhoneNumber *string   // profiles.phone_number (nullable)
	Role        string    // profiles.role
	CreatedAt   time.Time // profiles.created_at
	UpdatedAt   time.Time // profiles.updated_at
}
