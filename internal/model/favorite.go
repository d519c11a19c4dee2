package model

import "time"

// Favorite is a join row between a user and a car. Uniqueness per
// (user, car) is enforced by the repository's check-then-insert, not
// by a database constraint.
type Favorite struct {
	ID        uint64    // favorites.id
	UserID    uint64    // favorites.user_id
	CarID     uint64    // favorites.car_id
	CreatedAt time.Time // favorites.created_at
}
