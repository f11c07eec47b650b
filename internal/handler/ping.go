package handler

import (
	"net/http"
	"time"

	"second-chance/internal/api"
	"second-chance/internal/cache"
	"second-chance/internal/database"

	"github.com/labstack/echo/v4"
)

// PingHandler health check
// @Summary     Health Check
// @Description Returns pong after checking the database and, when configured, the cache
// @Tags        health
// @Produce     json
// @Success     200 {object} api.PingResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /ping [get]
func PingHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "database unhealthy"})
		}
		if cch != nil {
			if err := cch.Set(ctx, "health:ping", "pong", 10*time.Second).Err(); err != nil {
				return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "cache unhealthy"})
			}
		}
		return c.JSON(http.StatusOK, api.PingResponse{Message: "pong"})
	}
}
