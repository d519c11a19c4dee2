package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qmotor/car-marketplace/internal/model"
	"github.com/qmotor/car-marketplace/internal/repository"
)

type favoriteStore interface {
	Toggle(ctx context.Context, userID, carID uint64) (bool, error)
	ListCarIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

type favoriteCarStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Car, error)
	GetDetail(ctx context.Context, id uint64) (*repository.CarDetail, error)
}

// FavoriteHandler serves the per-user favorites: a single toggle
// endpoint and the favorites list.
type FavoriteHandler struct {
	Favorites favoriteStore
	Cars      favoriteCarStore
}

func NewFavoriteHandler(favs *repository.FavoriteRepo, cars *repository.CarRepo) *FavoriteHandler {
	return &FavoriteHandler{Favorites: favs, Cars: cars}
}

// Toggle flips the favorite state of one approved listing and returns
// the new state, so the client can reconcile its optimistic flip.
func (h *FavoriteHandler) Toggle(c echo.Context) error {
	uid := authedUserID(c)
	carID := pathID(c, "carID")
	if carID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	car, err := h.Cars.GetByID(ctx, carID)
	if err != nil {
		if err == repository.ErrCarNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if car.Status != model.StatusApproved {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
	}

	favorited, err := h.Favorites.Toggle(ctx, uid, carID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "toggle failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"car_id":      carID,
		"is_favorite": favorited,
	})
}

// List returns the user's favorited listings that are still visible.
// Listings that left Approved since being favorited are filtered out
// rather than deleted; favoriting again later is a plain toggle.
func (h *FavoriteHandler) List(c echo.Context) error {
	uid := authedUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Favorites.ListCarIDs(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	cars := make([]*repository.CarDetail, 0, len(ids))
	for _, id := range ids {
		d, err := h.Cars.GetDetail(ctx, id)
		if err != nil {
			if err == repository.ErrCarNotFound {
				continue
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if d.Status == model.StatusApproved {
			cars = append(cars, d)
		}
	}

	favs := make(map[uint64]bool, len(cars))
	carIDs := make([]uint64, 0, len(cars))
	for _, d := range cars {
		favs[d.ID] = true
		carIDs = append(carIDs, d.ID)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"car_ids": carIDs,
		"cars":    toCarResps(cars, favs),
		"total":   len(cars),
	})
}
