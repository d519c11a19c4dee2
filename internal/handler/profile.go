package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qmotor/car-marketplace/internal/repository"
)

// ProfileHandler serves the authenticated user's profile.
type ProfileHandler struct {
	Profiles *repository.ProfileRepo
}

func NewProfileHandler(p *repository.ProfileRepo) *ProfileHandler {
	return &ProfileHandler{Profiles: p}
}

type profileResp struct {
	ID          uint64  `json:"id"`
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	Role        string  `json:"role"`
}

type updateProfileReq struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// Get returns the current user's profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	uid := authedUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, uid)
	if err != nil {
		if err == repository.ErrProfileNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, profileResp{
		ID: p.ID, Email: p.Email, FullName: p.FullName,
		PhoneNumber: p.PhoneNumber, Role: p.Role,
	})
}

// Update changes the current user's contact fields. Email and role are
// not editable here: email belongs to the auth record and role changes
// are an admin concern.
func (h *ProfileHandler) Update(c echo.Context) error {
	uid := authedUserID(c)

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name required"})
	}
	var phone *string
	if p := strings.TrimSpace(req.PhoneNumber); p != "" {
		phone = &p
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, uid)
	if err != nil {
		if err == repository.ErrProfileNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Profiles.UpdateContact(ctx, uid, p.Email, fullName, phone); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, profileResp{
		ID: p.ID, Email: p.Email, FullName: fullName,
		PhoneNumber: phone, Role: p.Role,
	})
}
