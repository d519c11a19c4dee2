package model

import "time"

// Listing status values stored in cars.status.
//
// Draft is the saga intermediate: a listing being assembled by the
// submission workflow. It is promoted to Pending only once all of its
// images have been stored, so a partially uploaded listing never
// becomes visible to moderators. Rejected is part of the canonical set;
// rejected listings keep their row and their audit trail.
const (
	StatusDraft    = "Draft"
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
	StatusSold     = "Sold"
)

// Enumerated attribute values accepted on a listing. These mirror the
// columns' SQL enum definitions; handlers validate against them before
// any insert so a bad value is a 422 rather than a driver error.
var (
	FuelTypes     = []string{"Petrol", "Diesel", "Hybrid", "Electric"}
	GearboxTypes  = []string{"Manual", "Automatic"}
	BodyTypes     = []string{"Sedan", "SUV", "Hatchback", "Coupe", "Truck", "Van", "Wagon", "Convertible", "Other"}
	Conditions    = []string{"New", "Excellent", "Good", "Not Working"}
	CylinderSizes = []string{"3", "4", "5", "6", "8", "10", "12", "16"}
)

// Car represents a vehicle listing as stored in the `cars` table.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owning user (seller).
//  BrandID     – reference into brands.
//  ModelID     – reference into models.
//  Year        – model year.
//  Mileage     – odometer reading in km.
//  Price       – asking price as a whole integer (no fractions).
//  Description – free text (nullable).
//  FuelType    – one of FuelTypes.
//  GearboxType – one of GearboxTypes.
//  BodyType    – one of BodyTypes.
//  Condition   – one of Conditions.
//  Color       – color name.
//  Cylinders   – optional cylinder count as text (nullable).
//  Status      – one of the Status* constants.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Car struct {
	ID          uint64    // cars.id
	UserID      uint64    // cars.user_id
	BrandID     uint64    // cars.brand_id
	ModelID     uint64    // cars.model_id
	Year        int       // cars.year
	Mileage     int       // cars.mileage
	Price       int       // cars.price
	Description *string   // cars.description (nullable)
	FuelType    string    // cars.fuel_type
	GearboxType string    // cars.gearbox_type
	BodyType    string    // cars.body_type
	Condition   string    // cars.condition
	Color       string    // cars.color
	Cylinders   *string   // cars.cylinders (nullable)
	Status      string    // cars.status
	CreatedAt   time.Time // cars.created_at
	UpdatedAt   time.Time // cars.updated_at
}

// CarImage is one stored photo of a listing. The first uploaded image
// is flagged primary and is the one shown on listing cards.
type CarImage struct {
	ID        uint64    // car_images.id
	CarID     uint64    // car_images.car_id
	URL       string    // car_images.url
	IsPrimary bool      // car_images.is_primary
	Position  int       // car_images.position (upload order, 0-based)
	CreatedAt time.Time // car_images.created_at
}

// ValidEnum reports whether v is one of the allowed values.
func ValidEnum(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a canonical listing status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusSold:
		return true
	}
	return false
}
