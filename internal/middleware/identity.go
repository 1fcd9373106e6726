package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userKey returns the authenticated user id as a string for key building,
// or "anon" when the request carries no identity.
func userKey(c echo.Context) string {
	switch v := c.Get(CtxUserID).(type) {
	case uint64:
		if v != 0 {
			return strconv.FormatUint(v, 10)
		}
	case string:
		if v != "" {
			return v
		}
	}
	return "anon"
}
