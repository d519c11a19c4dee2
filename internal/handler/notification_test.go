package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmotor/car-marketplace/internal/model"
	"github.com/qmotor/car-marketplace/internal/repository"
)

type mockNotificationStore struct {
	listFunc     func(ctx context.Context, userID uint64, limit int) ([]*model.Notification, error)
	markReadFunc func(ctx context.Context, id, userID uint64) error
}

func (m *mockNotificationStore) ListByUser(ctx context.Context, userID uint64, limit int) ([]*model.Notification, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, limit)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, id, userID uint64) error {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, id, userID)
	}
	return errors.New("not implemented")
}

func TestNotificationList(t *testing.T) {
	var gotUser uint64
	var gotLimit int
	store := &mockNotificationStore{
		listFunc: func(ctx context.Context, userID uint64, limit int) ([]*model.Notification, error) {
			gotUser, gotLimit = userID, limit
			return []*model.Notification{
				{ID: 3, UserID: userID, Type: model.NotificationTypeCarStatus,
					Title: "Car Listing Approved", Message: "Your car listing (Toyota Camry) has been approved."},
			}, nil
		},
	}
	h := &NotificationHandler{Notifications: store}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(42))
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), gotUser)
	assert.Equal(t, 10, gotLimit)
	assert.Contains(t, rec.Body.String(), "Car Listing Approved")
}

func TestNotificationMarkReadForeignRowIsNotFound(t *testing.T) {
	store := &mockNotificationStore{
		markReadFunc: func(ctx context.Context, id, userID uint64) error {
			return repository.ErrNotificationNotFound
		},
	}
	h := &NotificationHandler{Notifications: store}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/notifications/:id/read")
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set("user_id", uint64(42))
	require.NoError(t, h.MarkRead(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
