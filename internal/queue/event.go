// Package queue defines message payloads exchanged over the message broker.
package queue

// ListingModeratedEvent is published when an admin decides on a
// listing. It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type ListingModeratedEvent struct {
	CarID     uint64 `json:"car_id"`
	OwnerID   uint64 `json:"owner_id"`
	AdminID   uint64 `json:"admin_id"`
	BrandName string `json:"brand_name"`
	ModelName string `json:"model_name"`
	Year      int    `json:"year"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	DecidedAt string `json:"decided_at"`
}
