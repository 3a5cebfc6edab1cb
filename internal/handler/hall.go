package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticket-sales/internal/model"
	"github.com/iliyamo/cinema-ticket-sales/internal/repository"
)

// HallHandler serves hall listings and the admin management endpoints.
// Creating a hall materializes its full seat grid in the same request.
type HallHandler struct {
	Halls *repository.HallRepo
}

func NewHallHandler(h *repository.HallRepo) *HallHandler {
	return &HallHandler{Halls: h}
}

type hallReq struct {
	Name        string `json:"name" validate:"required"`
	Capacity    uint32 `json:"capacity"`
	Rows        uint32 `json:"rows" validate:"required,gt=0"`
	SeatsPerRow uint32 `json:"seats_per_row" validate:"required,gt=0"`
}

// List returns all halls.
func (h *HallHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	halls, err := h.Halls.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list halls"})
	}
	return c.JSON(http.StatusOK, halls)
}

// Get returns one hall by id.
func (h *HallHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hall id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hall, err := h.Halls.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load hall"})
	}
	return c.JSON(http.StatusOK, hall)
}

// Create inserts a hall together with its Rows×SeatsPerRow seat grid.
// Admin only.
func (h *HallHandler) Create(c echo.Context) error {
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, rows and seats_per_row are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	hall := &model.Hall{
		Name:        req.Name,
		Capacity:    req.Capacity,
		Rows:        req.Rows,
		SeatsPerRow: req.SeatsPerRow,
	}
	if err := h.Halls.CreateWithSeats(ctx, hall); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create hall"})
	}
	return c.JSON(http.StatusOK, hall)
}

// Update overwrites hall fields.  The seat grid is not regenerated.
// Admin only.
func (h *HallHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hall id"})
	}
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, rows and seats_per_row are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hall := &model.Hall{
		ID:          id,
		Name:        req.Name,
		Capacity:    req.Capacity,
		Rows:        req.Rows,
		SeatsPerRow: req.SeatsPerRow,
	}
	if err := h.Halls.Update(ctx, hall); err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update hall"})
	}
	return c.JSON(http.StatusOK, hall)
}

// Delete removes a hall and its seats.  Halls with scheduled showtimes
// cannot be deleted.  Admin only.
func (h *HallHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hall id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Halls.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrHallHasShowtimes):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete hall with associated showtimes"})
		case errors.Is(err, repository.ErrHallNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete hall"})
	}
	return c.NoContent(http.StatusNoContent)
}
