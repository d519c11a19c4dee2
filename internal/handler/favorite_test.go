package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmotor/car-marketplace/internal/model"
	"github.com/qmotor/car-marketplace/internal/repository"
)

type mockFavoriteStore struct {
	toggleFunc func(ctx context.Context, userID, carID uint64) (bool, error)
	listFunc   func(ctx context.Context, userID uint64) ([]uint64, error)
}

func (m *mockFavoriteStore) Toggle(ctx context.Context, userID, carID uint64) (bool, error) {
	if m.toggleFunc != nil {
		return m.toggleFunc(ctx, userID, carID)
	}
	return false, errors.New("not implemented")
}

func (m *mockFavoriteStore) ListCarIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

type mockFavoriteCars struct {
	getByIDFunc   func(ctx context.Context, id uint64) (*model.Car, error)
	getDetailFunc func(ctx context.Context, id uint64) (*repository.CarDetail, error)
}

func (m *mockFavoriteCars) GetByID(ctx context.Context, id uint64) (*model.Car, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockFavoriteCars) GetDetail(ctx context.Context, id uint64) (*repository.CarDetail, error) {
	if m.getDetailFunc != nil {
		return m.getDetailFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func doToggle(t *testing.T, h *FavoriteHandler, uid, carID uint64) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/favorites/:carID/toggle")
	c.SetParamNames("carID")
	c.SetParamValues(strconv.FormatUint(carID, 10))
	c.Set("user_id", uid)
	require.NoError(t, h.Toggle(c))
	return rec
}

func TestToggleTwiceReturnsToOriginalState(t *testing.T) {
	// The store fake mirrors the repository's check-then-insert/delete
	// behavior on a plain set.
	favs := map[uint64]bool{}
	store := &mockFavoriteStore{
		toggleFunc: func(ctx context.Context, userID, carID uint64) (bool, error) {
			if favs[carID] {
				delete(favs, carID)
				return false, nil
			}
			favs[carID] = true
			return true, nil
		},
	}
	cars := &mockFavoriteCars{
		getByIDFunc: func(ctx context.Context, id uint64) (*model.Car, error) {
			return &model.Car{ID: id, UserID: 9, Status: model.StatusApproved}, nil
		},
	}
	h := &FavoriteHandler{Favorites: store, Cars: cars}

	rec := doToggle(t, h, 1, 5)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"car_id":5,"is_favorite":true}`, rec.Body.String())

	rec = doToggle(t, h, 1, 5)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"car_id":5,"is_favorite":false}`, rec.Body.String())
	assert.Empty(t, favs, "second toggle removed the row again")
}

func TestToggleHiddenCarIsNotFound(t *testing.T) {
	toggled := false
	store := &mockFavoriteStore{
		toggleFunc: func(ctx context.Context, userID, carID uint64) (bool, error) {
			toggled = true
			return true, nil
		},
	}
	cars := &mockFavoriteCars{
		getByIDFunc: func(ctx context.Context, id uint64) (*model.Car, error) {
			return &model.Car{ID: id, UserID: 9, Status: model.StatusPending}, nil
		},
	}
	h := &FavoriteHandler{Favorites: store, Cars: cars}

	rec := doToggle(t, h, 1, 5)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, toggled, "unmoderated listings cannot be favorited")
}
