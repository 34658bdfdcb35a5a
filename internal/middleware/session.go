package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/service"
)

// Authenticator resolves the caller of a request.  service.SessionAuthority
// implements it.
type Authenticator interface {
	AuthenticateRequest(r *http.Request) (model.Identity, string, error)
}

// SessionAuth rejects requests without a valid, unrevoked session token.  On
// success the identity and the raw token are stored in the echo context for
// handlers (see IdentityFrom and TokenFrom).  Every authentication failure
// produces the same 401 body; a denylist outage produces a 500.
func SessionAuth(auth Authenticator, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, raw, err := auth.AuthenticateRequest(c.Request())
			if err != nil {
				if errors.Is(err, service.ErrInternal) {
					log.Error("session check failed", zap.String("path", c.Path()), zap.Error(err))
					return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
				}
				log.Debug("unauthenticated request", zap.String("path", c.Path()), zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
			}
			c.Set(ctxIdentity, id)
			c.Set(ctxToken, raw)
			return next(c)
		}
	}
}
