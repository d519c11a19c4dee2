package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qmotor/car-marketplace/internal/model"
	"github.com/qmotor/car-marketplace/internal/repository"
)

// CarBrowseHandler serves the public catalog: approved listings with
// conjunctive filters and the free-text search refinement.
type CarBrowseHandler struct {
	Cars      *repository.CarRepo
	Favorites *repository.FavoriteRepo
}

func NewCarBrowseHandler(cars *repository.CarRepo, favs *repository.FavoriteRepo) *CarBrowseHandler {
	return &CarBrowseHandler{Cars: cars, Favorites: favs}
}

// List returns approved listings matching the query filters. All
// filters are conjunctive; ranges are inclusive. The q parameter
// refines the SQL result in memory with a case-insensitive substring
// match over brand, model and description.
func (h *CarBrowseHandler) List(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cars, err := h.Cars.ListApproved(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	cars = repository.FilterBySearch(c.QueryParam("q"), cars)

	favs := h.favoriteIDs(ctx, authedUserID(c))
	return c.JSON(http.StatusOK, echo.Map{
		"cars":  toCarResps(cars, favs),
		"total": len(cars),
	})
}

// Get returns one listing with its images and seller. Only approved
// listings are public; the owner and admins can fetch any status.
func (h *CarBrowseHandler) Get(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Cars.GetDetail(ctx, id)
	if err != nil {
		if err == repository.ErrCarNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	uid := authedUserID(c)
	role, _ := c.Get("role").(string)
	if d.Status != model.StatusApproved && d.UserID != uid && role != model.RoleAdmin {
		// Hide non-public listings from everyone but the owner and admins.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
	}

	favorite := false
	if uid > 0 && h.Favorites != nil {
		favorite, _ = h.Favorites.Exists(ctx, uid, id)
	}
	return c.JSON(http.StatusOK, toCarResp(d, favorite))
}

// favoriteIDs loads the user's favorite set; best-effort, an error just
// means no favorite flags on this response.
func (h *CarBrowseHandler) favoriteIDs(ctx context.Context, uid uint64) map[uint64]bool {
	if uid == 0 || h.Favorites == nil {
		return nil
	}
	ids, err := h.Favorites.ListCarIDs(ctx, uid)
	if err != nil {
		log.Printf("browse: load favorites failed for user %d: %v", uid, err)
		return nil
	}
	return favoriteSet(ids)
}

// parseFilter reads the browse filter query parameters. Unknown
// parameters are ignored; malformed values of known parameters are a
// 400.
func parseFilter(c echo.Context) (repository.Filter, error) {
	var f repository.Filter
	var err error
	if f.BrandID, err = queryUint(c, "brand_id"); err != nil {
		return f, err
	}
	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"min_price", &f.MinPrice},
		{"max_price", &f.MaxPrice},
		{"min_year", &f.MinYear},
		{"max_year", &f.MaxYear},
	} {
		if *p.dst, err = queryInt(c, p.name); err != nil {
			return f, err
		}
	}
	for _, p := range []struct {
		name    string
		dst     **string
		allowed []string
	}{
		{"condition", &f.Condition, model.Conditions},
		{"fuel_type", &f.FuelType, model.FuelTypes},
		{"body_type", &f.BodyType, model.BodyTypes},
		{"gearbox_type", &f.GearboxType, model.GearboxTypes},
	} {
		if *p.dst, err = queryEnum(c, p.name, p.allowed); err != nil {
			return f, err
		}
	}
	return f, nil
}

func queryUint(c echo.Context, name string) (*uint64, error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return nil, invalidParam(name)
	}
	return &v, nil
}

func queryInt(c echo.Context, name string) (*int, error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return nil, invalidParam(name)
	}
	return &v, nil
}

func queryEnum(c echo.Context, name string, allowed []string) (*string, error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return nil, nil
	}
	if !model.ValidEnum(s, allowed) {
		return nil, invalidParam(name)
	}
	return &s, nil
}

type paramError string

func (e paramError) Error() string { return "invalid " + string(e) }

func invalidParam(name string) error { return paramError(name) }
