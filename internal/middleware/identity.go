package middleware

// identity.go holds helpers shared across middleware files: extraction
// of the authenticated user id from the Echo context for rate-limit
// keying.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's id as a string for
// rate-limit keys, or "anon" for unauthenticated requests.
func currentUserID(c echo.Context) string {
	if v, ok := c.Get("user_id").(uint64); ok && v > 0 {
		return strconv.FormatUint(v, 10)
	}
	return "anon"
}
