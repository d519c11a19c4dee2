package model

import "time"

// Brand is reference data describing a car manufacturer. The
// application reads brands but never mutates them.
type Brand struct {
	ID        uint64    // brands.id
	Name      string    // brands.name
	LogoURL   *string   // brands.logo_url (nullable)
	CreatedAt time.Time // brands.created_at
	UpdatedAt time.Time // brands.updated_at
}

// CarModel is reference data describing a model belonging to a brand.
// Named CarModel rather than Model to avoid colliding with the
// package name at call sites.
type CarModel struct {
	ID        uint64    // models.id
	BrandID   uint64    // models.brand_id
	Name      string    // models.name
	CreatedAt time.Time // models.created_at
	UpdatedAt time.Time // models.updated_at
}
