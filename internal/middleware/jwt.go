package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id" // uint64
	CtxRol    = "rol"     // string, "No Role" when unassigned
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// signed by issuer and injects its user_id and rol claims into the request
// context.  Refresh tokens are refused.
func JWTAuth(issuer *utils.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"detail": "Authentication credentials were not provided.",
					"code":   "not_authenticated",
				})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := issuer.Parse(raw, utils.AccessTokenType)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"detail": "Given token not valid for any token type",
					"code":   "token_not_valid",
				})
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRol, claims.Rol)
			return next(c)
		}
	}
}
