// Package handler contains the HTTP handlers for every route group:
// auth, public browsing, seller listings, favorites and the admin
// surface.
package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// authedUserID returns the user id stored in the context by the JWT
// middleware, or 0 when the request is unauthenticated.
func authedUserID(c echo.Context) uint64 {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v
	}
	return 0
}

// pathID parses a numeric path parameter. Returns 0 for anything that
// is not a positive integer.
func pathID(c echo.Context, name string) uint64 {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
