package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vn33/ecom-backend/internal/models"
	authmw "github.com/vn33/ecom-backend/internal/middleware/auth"
	"github.com/vn33/ecom-backend/internal/mykafka"
)

func requireUser(c echo.Context) (uint, models.Role, error) {
	id, ok := authmw.UserID(c)
	if !ok {
		return 0, "", echo.NewHTTPError(http.StatusUnauthorized, "The token is missing")
	}
	role, ok := authmw.UserRole(c)
	if !ok {
		return 0, "", echo.NewHTTPError(http.StatusUnauthorized, "The token is missing")
	}
	return id, role, nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// publish sends an event best-effort: a nil producer or a broker failure is
// logged and never surfaces to the caller.
func publish(c echo.Context, producer *mykafka.Producer, topic string, key string, event any) {
	if producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := producer.PublishEvent(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
