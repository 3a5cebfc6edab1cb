package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticket-sales/internal/repository"
)

// StatisticsHandler serves the admin sales dashboard.
type StatisticsHandler struct {
	Stats *repository.StatisticsRepo
}

func NewStatisticsHandler(s *repository.StatisticsRepo) *StatisticsHandler {
	return &StatisticsHandler{Stats: s}
}

// Get returns total sales, tickets sold and the popular-movie ranking.
// Admin only.
func (h *StatisticsHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	stats, err := h.Stats.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not compute statistics"})
	}
	return c.JSON(http.StatusOK, stats)
}
