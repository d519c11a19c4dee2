// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/qmotor/car-marketplace/internal/config"
	"github.com/qmotor/car-marketplace/internal/handler"
	"github.com/qmotor/car-marketplace/internal/middleware"
	"github.com/qmotor/car-marketplace/internal/model"
)

// Handlers bundles every handler the route table needs.
type Handlers struct {
	Auth         *handler.AuthHandler
	Profile      *handler.ProfileHandler
	Brand        *handler.BrandHandler
	Browse       *handler.CarBrowseHandler
	Listing      *handler.ListingHandler
	MyAds        *handler.MyAdsHandler
	Favorite     *handler.FavoriteHandler
	Notification *handler.NotificationHandler
	Admin        *handler.AdminHandler
}

// Register wires every route group: the public catalog, the
// authenticated seller surface and the admin surface. The response
// cache fronts only the public browse endpoints; the rate limiter
// wraps every authenticated write.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated session operations.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// Public catalog. OptionalJWT lets signed-in visitors get their
	// favorite flags merged into browse responses; the cache keys on
	// route+query only, so cached pages never leak another user's flags —
	// which is why the cache is applied to the anonymous-identical
	// brand endpoints only.
	cacheCfg := config.LoadCacheConfig()
	cached := middleware.NewRedisCache(cacheCfg, rdb)
	e.GET("/v1/brands", h.Brand.List, cached)
	e.GET("/v1/brands/:id/models", h.Brand.Models, cached)

	browse := e.Group("/v1/cars", middleware.OptionalJWT(jwtSecret))
	browse.GET("", h.Browse.List)
	browse.GET("/:id", h.Browse.Get)

	// Authenticated surface: any signed-in profile role.
	rlCfg := config.LoadRateLimitConfig()
	limited := middleware.NewTokenBucket(rlCfg, rdb)

	user := e.Group("/v1", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleNormalUser, model.RoleAdmin))
	user.GET("/me", h.Auth.Me)
	user.GET("/profile", h.Profile.Get)
	user.PUT("/profile", h.Profile.Update, limited)

	user.POST("/listings", h.Listing.Create, limited)
	user.PUT("/listings/:id", h.Listing.Update, limited)
	user.POST("/listings/:id/images", h.Listing.UploadImages, limited)
	user.POST("/listings/:id/submit", h.Listing.Submit, limited)
	user.DELETE("/listings/:id/images/:imageID", h.Listing.DeleteImage, limited)

	user.GET("/my/cars", h.MyAds.List)
	user.POST("/my/cars/:id/sold", h.MyAds.MarkSold, limited)
	user.DELETE("/my/cars/:id", h.MyAds.Delete, limited)

	user.POST("/favorites/:carID/toggle", h.Favorite.Toggle, limited)
	user.GET("/favorites", h.Favorite.List)

	user.GET("/notifications", h.Notification.List)
	user.POST("/notifications/:id/read", h.Notification.MarkRead, limited)

	// Admin surface.
	admin := e.Group("/v1/admin", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin))
	admin.GET("/cars", h.Admin.ListCars)
	admin.POST("/cars/:id/status", h.Admin.ChangeStatus, limited)
	admin.PUT("/cars/:id", h.Admin.UpdateCar, limited)
	admin.DELETE("/cars/:id", h.Admin.DeleteCar, limited)
	admin.GET("/analytics", h.Admin.Analytics)
	admin.GET("/users", h.Admin.ListUsers)
}
