package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness probe for load balancers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Root answers GET / so a browser hitting the service sees it is up.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Auth service is running"})
}
