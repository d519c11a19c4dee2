package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qmotor/car-marketplace/internal/model"
	"github.com/qmotor/car-marketplace/internal/repository"
	"github.com/qmotor/car-marketplace/internal/service"
	"github.com/qmotor/car-marketplace/internal/storage"
	"github.com/qmotor/car-marketplace/internal/utils"
)

// AdminHandler serves the admin surface: the moderation queue, listing
// edits and removal, the analytics dashboard and the user overview.
// Every mutation leaves an audit row.
type AdminHandler struct {
	Cars       *repository.CarRepo
	Profiles   *repository.ProfileRepo
	Audit      *repository.AdminLogRepo
	Store      *storage.Store
	Moderation *service.Moderation
}

func NewAdminHandler(cars *repository.CarRepo, profiles *repository.ProfileRepo, audit *repository.AdminLogRepo, store *storage.Store, mod *service.Moderation) *AdminHandler {
	return &AdminHandler{Cars: cars, Profiles: profiles, Audit: audit, Store: store, Moderation: mod}
}

// ListCars returns listings of one status for the moderation queue.
// Without a status parameter it serves the Pending queue.
func (h *AdminHandler) ListCars(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = model.StatusPending
	}
	if !model.ValidStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cars, err := h.Cars.ListByStatus(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"cars":  toCarResps(cars, nil),
		"total": len(cars),
	})
}

type statusReq struct {
	Status string `json:"status"`
}

// ChangeStatus applies one moderation decision through the unified
// transition workflow.
func (h *AdminHandler) ChangeStatus(c echo.Context) error {
	adminID := authedUserID(c)
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	d, err := h.Moderation.ChangeStatus(ctx, adminID, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTransition):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid status transition"})
		case errors.Is(err, repository.ErrCarNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "listing status changed concurrently"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status change failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":     d.ID,
		"status": d.Status,
	})
}

type adminEditReq struct {
	Price       string  `json:"price"`
	Mileage     *int    `json:"mileage"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

// UpdateCar rewrites the fields the admin edit modal exposes: price,
// mileage, description and optionally status. A status change runs
// through the same transition workflow as ChangeStatus, so the edit
// modal cannot make moves the moderation tab would reject.
func (h *AdminHandler) UpdateCar(c echo.Context) error {
	adminID := authedUserID(c)
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}
	var req adminEditReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	price, err := utils.ParsePrice(req.Price)
	if err != nil || price <= 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "price required"})
	}
	if req.Mileage == nil || *req.Mileage < 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "mileage required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	current, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrCarNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Cars.AdminUpdate(ctx, id, price, *req.Mileage, req.Description, current.Status); err != nil {
		if err == repository.ErrCarNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	h.audit(ctx, adminID, model.ActionUpdate, id, map[string]any{
		"price":   map[string]int{"old": current.Price, "new": price},
		"mileage": map[string]int{"old": current.Mileage, "new": *req.Mileage},
	})

	status := current.Status
	if req.Status != "" && req.Status != current.Status {
		d, err := h.Moderation.ChangeStatus(ctx, adminID, id, req.Status)
		if err != nil {
			if errors.Is(err, service.ErrInvalidTransition) {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid status transition"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status change failed"})
		}
		status = d.Status
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":      id,
		"price":   price,
		"mileage": *req.Mileage,
		"status":  status,
	})
}

// DeleteCar removes any listing regardless of owner, cleaning up the
// stored images afterwards.
func (h *AdminHandler) DeleteCar(c echo.Context) error {
	adminID := authedUserID(c)
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	urls, err := h.Cars.Delete(ctx, id, 0) // zero owner: no ownership check
	if err != nil {
		if err == repository.ErrCarNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	for _, url := range urls {
		if err := h.Store.Remove(url); err != nil {
			log.Printf("admin: remove stored file %s failed: %v", url, err)
		}
	}
	h.audit(ctx, adminID, model.ActionDelete, id, nil)
	return c.NoContent(http.StatusNoContent)
}

// Analytics aggregates the dashboard numbers: listing counts by status,
// the brand ranking, and the newest listings and sign-ups.
func (h *AdminHandler) Analytics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	byStatus, err := h.Cars.CountByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	byBrand, err := h.Cars.CountByBrand(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	users, err := h.Profiles.CountAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	recentCars, err := h.Cars.ListRecent(ctx, 5)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	recentUsers, err := h.Profiles.ListRecent(ctx, 5)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	totalCars := 0
	for _, n := range byStatus {
		totalCars += n
	}
	brands := make([]echo.Map, 0, len(byBrand))
	for _, b := range byBrand {
		brands = append(brands, echo.Map{"brand": b.Brand, "count": b.Count})
	}
	signups := make([]echo.Map, 0, len(recentUsers))
	for _, p := range recentUsers {
		signups = append(signups, echo.Map{
			"id": p.ID, "email": p.Email, "full_name": p.FullName, "created_at": p.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_cars":     totalCars,
		"total_users":    users,
		"cars_by_status": byStatus,
		"cars_by_brand":  brands,
		"recent_cars":    toCarResps(recentCars, nil),
		"recent_signups": signups,
	})
}

// ListUsers returns every profile with its listing count.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	profiles, err := h.Profiles.ListWithStats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	users := make([]echo.Map, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, echo.Map{
			"id":           p.ID,
			"email":        p.Email,
			"full_name":    p.FullName,
			"phone_number": p.PhoneNumber,
			"role":         p.Role,
			"total_ads":    p.TotalAds,
			"created_at":   p.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users": users,
		"total": len(users),
	})
}

// audit appends one admin log row; failures are logged, the admin
// action itself already succeeded.
func (h *AdminHandler) audit(ctx context.Context, adminID uint64, action string, recordID uint64, changes map[string]any) {
	var changesStr *string
	if changes != nil {
		if b, err := json.Marshal(changes); err == nil {
			s := string(b)
			changesStr = &s
		}
	}
	if err := h.Audit.Insert(ctx, &model.AdminLog{
		AdminID:    adminID,
		ActionType: action,
		TableName:  "cars",
		RecordID:   recordID,
		Changes:    changesStr,
	}); err != nil {
		log.Printf("admin: audit insert failed for car %d: %v", recordID, err)
	}
}
