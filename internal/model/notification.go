package model

import "time"

// NotificationTypeCarStatus marks notifications produced by a
// moderation decision on a listing.
const NotificationTypeCarStatus = "car_status_update"

// Notification is a best-effort side record written after a moderation
// decision. A failed insert is logged and swallowed; it never rolls
// back the decision that produced it.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	Type      string    // notifications.type
	Title     string    // notifications.title
	Message   string    // notifications.message
	IsRead    bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
