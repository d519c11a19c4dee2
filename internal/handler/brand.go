package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qmotor/car-marketplace/internal/repository"
)

// BrandHandler serves the public brand and model catalogs that feed
// the listing wizard and the browse filters.
type BrandHandler struct {
	Brands *repository.BrandRepo
}

func NewBrandHandler(b *repository.BrandRepo) *BrandHandler {
	return &BrandHandler{Brands: b}
}

type brandPart struct {
	ID      uint64  `json:"id"`
	Name    string  `json:"name"`
	LogoURL *string `json:"logo_url"`
}

type modelPart struct {
	ID      uint64 `json:"id"`
	BrandID uint64 `json:"brand_id"`
	Name    string `json:"name"`
}

// List returns every brand, ordered by name.
func (h *BrandHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	brands, err := h.Brands.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]brandPart, 0, len(brands))
	for _, b := range brands {
		out = append(out, brandPart{ID: b.ID, Name: b.Name, LogoURL: b.LogoURL})
	}
	return c.JSON(http.StatusOK, echo.Map{"brands": out})
}

// Models returns the models of one brand, ordered by name.
func (h *BrandHandler) Models(c echo.Context) error {
	brandID := pathID(c, "id")
	if brandID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid brand id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Brands.GetByID(ctx, brandID); err != nil {
		if err == repository.ErrBrandNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "brand not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	models, err := h.Brands.ListModelsByBrand(ctx, brandID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]modelPart, 0, len(models))
	for _, m := range models {
		out = append(out, modelPart{ID: m.ID, BrandID: m.BrandID, Name: m.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"models": out})
}
