package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// HealthCheck pings every dependency and reports 503 if any is down.
func HealthCheck(checks map[string]Check) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			deps[name] = "up"
			if err := check(ctx); err != nil {
				deps[name] = "down"
				status = http.StatusServiceUnavailable
			}
		}
		health := "healthy"
		if status != http.StatusOK {
			health = "unhealthy"
		}
		return c.JSON(status, echo.Map{
			"status":       health,
			"service":      "goer-api",
			"dependencies": deps,
		})
	}
}
