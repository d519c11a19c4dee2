package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qmotor/car-marketplace/internal/model"
	"github.com/qmotor/car-marketplace/internal/repository"
)

type notificationStore interface {
	ListByUser(ctx context.Context, userID uint64, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id, userID uint64) error
}

// NotificationHandler serves the notification rows the moderation flow
// writes, so sellers can see why their listing changed status.
type NotificationHandler struct {
	Notifications notificationStore
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

type notificationPart struct {
	ID        uint64    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns the current user's notifications newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	uid := authedUserID(c)

	limit := 50
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 200 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Notifications.ListByUser(ctx, uid, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]notificationPart, 0, len(rows))
	for _, n := range rows {
		out = append(out, notificationPart{
			ID: n.ID, Type: n.Type, Title: n.Title,
			Message: n.Message, IsRead: n.IsRead, CreatedAt: n.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": out})
}

// MarkRead flags one notification as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid := authedUserID(c)
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, uid); err != nil {
		if err == repository.ErrNotificationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
