package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/auth-service/internal/config"
	"github.com/iliyamo/auth-service/internal/service"
	"github.com/iliyamo/auth-service/internal/validation"
)

// storeTimeout bounds the store and denylist calls made by one request.
const storeTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// bindAndValidate decodes the JSON body into dst and runs the registered
// validator.  On failure the 400 response is already written and ok is false.
func bindAndValidate(c echo.Context, dst any) (ok bool, err error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if err := c.Validate(dst); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return false, c.JSON(http.StatusBadRequest, echo.Map{
				"message": "Validation errors",
				"errors":  verr.Fields,
			})
		}
		return false, c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	return true, nil
}

// writeError maps service errors onto HTTP responses.  Internal causes are
// logged and never returned to the client.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	switch {
	case service.IsUnauthorized(err):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials"})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"message": "User already exists"})
	case errors.Is(err, service.ErrAddressNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Address not found"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	default:
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
}

// sessionCookie carries the token.  Production deployments serve the
// frontend from another site, hence Secure with SameSite=None there.
func sessionCookie(cfg config.Config, value string, maxAge int) *http.Cookie {
	ck := &http.Cookie{
		Name:     service.TokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.IsProduction() {
		ck.SameSite = http.SameSiteNoneMode
	}
	return ck
}

func setSessionCookie(c echo.Context, cfg config.Config, token string) {
	c.SetCookie(sessionCookie(cfg, token, int(cfg.TokenTTL/time.Second)))
}

func clearSessionCookie(c echo.Context, cfg config.Config) {
	c.SetCookie(sessionCookie(cfg, "", -1))
}
