package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-service/internal/model"
)

const (
	ctxIdentity = "identity"
	ctxToken    = "token"
)

// IdentityFrom returns the identity SessionAuth stored on c.  ok is false on
// routes that are not behind SessionAuth.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(ctxIdentity).(model.Identity)
	return id, ok
}

// TokenFrom returns the raw session token that authenticated c.
func TokenFrom(c echo.Context) string {
	raw, _ := c.Get(ctxToken).(string)
	return raw
}
