package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticket-sales/internal/config"
	"github.com/iliyamo/cinema-ticket-sales/internal/model"
	"github.com/iliyamo/cinema-ticket-sales/internal/repository"
)

// ShowtimeHandler serves the public schedule, the seat map and the
// admin scheduling endpoints.
type ShowtimeHandler struct {
	Cfg          config.Config
	Showtimes    *repository.ShowtimeRepo
	Seats        *repository.SeatRepo
	Reservations *repository.ReservationRepo
}

func NewShowtimeHandler(cfg config.Config, st *repository.ShowtimeRepo, se *repository.SeatRepo, re *repository.ReservationRepo) *ShowtimeHandler {
	return &ShowtimeHandler{Cfg: cfg, Showtimes: st, Seats: se, Reservations: re}
}

type showtimeReq struct {
	MovieID   uint64    `json:"movie_id" validate:"required"`
	HallID    uint64    `json:"hall_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Price     float64   `json:"price" validate:"gte=0"`
}

// seatStatus is a seat annotated with its reservation state for one
// showtime.
type seatStatus struct {
	ID         uint64 `json:"id"`
	HallID     uint64 `json:"hall_id"`
	Row        uint32 `json:"row"`
	Number     uint32 `json:"number"`
	IsReserved bool   `json:"is_reserved"`
}

// List returns all showtimes with nested movie and hall, optionally
// filtered by the movie_id query parameter.
func (h *ShowtimeHandler) List(c echo.Context) error {
	var movieID *uint64
	if raw := c.QueryParam("movie_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie_id"})
		}
		movieID = &id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Showtimes.List(ctx, movieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list showtimes"})
	}
	return c.JSON(http.StatusOK, details)
}

// Create schedules a movie into a hall.  Admin only.
func (h *ShowtimeHandler) Create(c echo.Context) error {
	var req showtimeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id, hall_id, start_time and end_time are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	det, err := h.Showtimes.Create(ctx, &model.Showtime{
		MovieID:   req.MovieID,
		HallID:    req.HallID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Price:     req.Price,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create showtime"})
	}
	return c.JSON(http.StatusOK, det)
}

// Update overwrites a showtime.  Admin only.
func (h *ShowtimeHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	var req showtimeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id, hall_id, start_time and end_time are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	det, err := h.Showtimes.Update(ctx, &model.Showtime{
		ID:        id,
		MovieID:   req.MovieID,
		HallID:    req.HallID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Price:     req.Price,
	})
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update showtime"})
	}
	return c.JSON(http.StatusOK, det)
}

// Delete removes a showtime along with its reservations.  Admin only.
func (h *ShowtimeHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Showtimes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete showtime"})
	}
	return c.NoContent(http.StatusNoContent)
}

// SeatMap returns every seat of the showtime's hall with its current
// reservation state.  An unknown showtime yields an empty list rather
// than an error so the seat picker can render a blank room.
func (h *ShowtimeHandler) SeatMap(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	st, err := h.Showtimes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusOK, []seatStatus{})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load showtime"})
	}

	seats, err := h.Seats.GetByHall(ctx, st.HallID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load seats"})
	}
	reserved, err := h.Reservations.ReservedSeatIDs(ctx, id, h.Cfg.CancelledBlocksSeats)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load reservations"})
	}

	out := make([]seatStatus, 0, len(seats))
	for _, s := range seats {
		out = append(out, seatStatus{
			ID:         s.ID,
			HallID:     s.HallID,
			Row:        s.Row,
			Number:     s.Number,
			IsReserved: reserved[s.ID],
		})
	}
	return c.JSON(http.StatusOK, out)
}
