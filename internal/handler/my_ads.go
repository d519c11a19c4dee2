package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qmotor/car-marketplace/internal/model"
	"github.com/qmotor/car-marketplace/internal/repository"
	"github.com/qmotor/car-marketplace/internal/storage"
)

// MyAdsHandler serves the seller's own listings: the full list in any
// status, marking a sale, and deletion.
type MyAdsHandler struct {
	Cars  *repository.CarRepo
	Store *storage.Store
}

func NewMyAdsHandler(cars *repository.CarRepo, store *storage.Store) *MyAdsHandler {
	return &MyAdsHandler{Cars: cars, Store: store}
}

// List returns every listing of the current user, newest first,
// drafts included.
func (h *MyAdsHandler) List(c echo.Context) error {
	uid := authedUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cars, err := h.Cars.ListByOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"cars":  toCarResps(cars, nil),
		"total": len(cars),
	})
}

// MarkSold moves an approved listing to Sold. Only the owner may do
// this, and only from Approved; anything else is a 409.
func (h *MyAdsHandler) MarkSold(c echo.Context) error {
	uid := authedUserID(c)
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Cars.UpdateStatusOwned(ctx, id, uid, model.StatusApproved, model.StatusSold)
	switch err {
	case nil:
		return c.JSON(http.StatusOK, echo.Map{"id": id, "status": model.StatusSold})
	case repository.ErrCarNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your listing"})
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "only approved listings can be marked sold"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
}

// Delete removes an owned listing with its favorites and images; the
// stored files are cleaned up best-effort after the transaction.
func (h *MyAdsHandler) Delete(c echo.Context) error {
	uid := authedUserID(c)
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	urls, err := h.Cars.Delete(ctx, id, uid)
	if err != nil {
		switch err {
		case repository.ErrCarNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your listing"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	for _, url := range urls {
		if err := h.Store.Remove(url); err != nil {
			log.Printf("my-ads: remove stored file %s failed: %v", url, err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}
