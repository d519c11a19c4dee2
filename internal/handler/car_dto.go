package handler

import (
	"time"

	"github.com/qmotor/car-marketplace/internal/repository"
	"github.com/qmotor/car-marketplace/internal/utils"
)

// carImagePart is one listing photo in a response.
type carImagePart struct {
	ID        uint64 `json:"id"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
	Position  int    `json:"position"`
}

// sellerPart is the seller contact block shown on listing detail.
type sellerPart struct {
	ID          uint64  `json:"id"`
	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

// carResp is a full listing response. PriceFormatted carries the
// thousand-separated rendering so every client prints prices the same
// way.
type carResp struct {
	ID             uint64         `json:"id"`
	UserID         uint64         `json:"user_id"`
	BrandID        uint64         `json:"brand_id"`
	BrandName      string         `json:"brand_name"`
	ModelID        uint64         `json:"model_id"`
	ModelName      string         `json:"model_name"`
	Year           int            `json:"year"`
	Mileage        int            `json:"mileage"`
	Price          int            `json:"price"`
	PriceFormatted string         `json:"price_formatted"`
	Description    *string        `json:"description"`
	FuelType       string         `json:"fuel_type"`
	GearboxType    string         `json:"gearbox_type"`
	BodyType       string         `json:"body_type"`
	Condition      string         `json:"condition"`
	Color          string         `json:"color"`
	Cylinders      *string        `json:"cylinders"`
	Status         string         `json:"status"`
	IsFavorite     bool           `json:"is_favorite"`
	Seller         sellerPart     `json:"seller"`
	Images         []carImagePart `json:"images"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func toCarResp(d *repository.CarDetail, favorite bool) carResp {
	images := make([]carImagePart, 0, len(d.Images))
	for _, img := range d.Images {
		images = append(images, carImagePart{
			ID: img.ID, URL: img.URL, IsPrimary: img.IsPrimary, Position: img.Position,
		})
	}
	return carResp{
		ID:             d.ID,
		UserID:         d.UserID,
		BrandID:        d.BrandID,
		BrandName:      d.BrandName,
		ModelID:        d.ModelID,
		ModelName:      d.ModelName,
		Year:           d.Year,
		Mileage:        d.Mileage,
		Price:          d.Price,
		PriceFormatted: utils.FormatPrice(d.Price),
		Description:    d.Description,
		FuelType:       d.FuelType,
		GearboxType:    d.GearboxType,
		BodyType:       d.BodyType,
		Condition:      d.Condition,
		Cylinders:      d.Cylinders,
		Color:          d.Color,
		Status:         d.Status,
		IsFavorite:     favorite,
		Seller: sellerPart{
			ID: d.Seller.ID, FullName: d.Seller.FullName,
			Email: d.Seller.Email, PhoneNumber: d.Seller.PhoneNumber,
		},
		Images:    images,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toCarResps(cars []*repository.CarDetail, favs map[uint64]bool) []carResp {
	out := make([]carResp, 0, len(cars))
	for _, d := range cars {
		out = append(out, toCarResp(d, favs[d.ID]))
	}
	return out
}

func favoriteSet(ids []uint64) map[uint64]bool {
	m := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
