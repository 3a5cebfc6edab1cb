package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticket-sales/internal/config"
	"github.com/iliyamo/cinema-ticket-sales/internal/metrics"
	"github.com/iliyamo/cinema-ticket-sales/internal/middleware"
	"github.com/iliyamo/cinema-ticket-sales/internal/model"
	"github.com/iliyamo/cinema-ticket-sales/internal/queue"
	"github.com/iliyamo/cinema-ticket-sales/internal/repository"
	"github.com/iliyamo/cinema-ticket-sales/internal/service"
	"github.com/iliyamo/cinema-ticket-sales/internal/ticket"
)

// ReservationHandler serves the booking flow: creating reservations,
// reading them back, updating payment status and rendering tickets.
type ReservationHandler struct {
	Cfg          config.Config
	Reservations *repository.ReservationRepo

	// AMQPURL is the broker address for completion events.  Empty means
	// the publisher falls back to the local default.
	AMQPURL string
}

func NewReservationHandler(cfg config.Config, r *repository.ReservationRepo, amqpURL string) *ReservationHandler {
	return &ReservationHandler{Cfg: cfg, Reservations: r, AMQPURL: amqpURL}
}

type reservationReq struct {
	ShowtimeID uint64   `json:"showtime_id" validate:"required"`
	SeatIDs    []uint64 `json:"seat_ids" validate:"required"`
}

type reservationUpdateReq struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
}

// Create books seats for the authenticated user.  Seat count outside
// 1..MAX is 400, unknown showtime or seat is 404, and a seat conflict
// is 409 so clients can refresh the seat map and retry.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime_id and seat_ids are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	det, err := h.Reservations.Create(ctx, middleware.UserID(c), req.ShowtimeID, req.SeatIDs,
		repository.CreateOptions{
			MaxSeats:             h.Cfg.MaxSeatsPerReservation,
			CancelledBlocksSeats: h.Cfg.CancelledBlocksSeats,
		})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoSeats):
			metrics.TrackReservation("rejected")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one seat is required"})
		case errors.Is(err, repository.ErrTooManySeats):
			metrics.TrackReservation("rejected")
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": fmt.Sprintf("cannot reserve more than %d seats", h.Cfg.MaxSeatsPerReservation)})
		case errors.Is(err, repository.ErrShowtimeNotFound):
			metrics.TrackReservation("rejected")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		case errors.Is(err, repository.ErrSeatNotFound):
			metrics.TrackReservation("rejected")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		case errors.Is(err, repository.ErrSeatsTaken):
			metrics.TrackReservation("conflict")
			return c.JSON(http.StatusConflict, echo.Map{"error": "one or more seats are already reserved"})
		}
		metrics.TrackReservation("error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create reservation"})
	}
	metrics.TrackReservation("created")
	return c.JSON(http.StatusOK, det)
}

// Get returns one reservation with nested showtime and seats.  Only the
// owner or an admin may read it.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	det, err := h.Reservations.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load reservation"})
	}
	if det.UserID != middleware.UserID(c) && !middleware.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you don't have permission to access this reservation"})
	}
	return c.JSON(http.StatusOK, det)
}

// Update sets the payment status.  Only the owner or an admin may
// update; a transition into "completed" publishes an event for the
// background consumer, best effort.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req reservationUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidPaymentStatus(req.PaymentStatus) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_status must be pending, completed or cancelled"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prev, err := h.Reservations.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load reservation"})
	}
	if prev.UserID != middleware.UserID(c) && !middleware.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you don't have permission to update this reservation"})
	}

	det, err := h.Reservations.UpdateStatus(ctx, id, req.PaymentStatus)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update reservation"})
	}

	if det.PaymentStatus == model.PaymentCompleted && prev.PaymentStatus != model.PaymentCompleted {
		go h.publishCompleted(det)
	}
	return c.JSON(http.StatusOK, det)
}

// ListMine returns the authenticated user's reservations, newest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Reservations.ListByUser(ctx, middleware.UserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list reservations"})
	}
	return c.JSON(http.StatusOK, details)
}

// Ticket renders the reservation as a PDF.  Only completed
// reservations have tickets; anything else is 400.
func (h *ReservationHandler) Ticket(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	det, err := h.Reservations.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load reservation"})
	}
	if det.UserID != middleware.UserID(c) && !middleware.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you don't have permission to access this reservation"})
	}
	if det.PaymentStatus != model.PaymentCompleted {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot generate ticket for unpaid reservation"})
	}

	pdf, err := ticket.Generate(det)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not generate ticket"})
	}
	metrics.TrackTicket()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="ticket_%d.pdf"`, id))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// publishCompleted emits a reservation.completed event.  It runs off
// the request goroutine with its own timeout; failures are logged by
// the publisher and otherwise ignored.
func (h *ReservationHandler) publishCompleted(det *repository.ReservationDetail) {
	ev := queue.ReservationCompletedEvent{
		ReservationID: det.ID,
		UserID:        det.UserID,
		ShowtimeID:    det.ShowtimeID,
		CompletedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if det.Showtime != nil {
		ev.StartsAt = det.Showtime.StartTime.UTC().Format(time.RFC3339)
		ev.Price = det.Showtime.Price
		if det.Showtime.Movie != nil {
			ev.MovieTitle = det.Showtime.Movie.Title
		}
		if det.Showtime.Hall != nil {
			ev.HallName = det.Showtime.Hall.Name
		}
	}
	for _, s := range det.Seats {
		ev.SeatLabels = append(ev.SeatLabels, fmt.Sprintf("Row %d Seat %d", s.Row, s.Number))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = service.PublishReservationCompleted(ctx, h.AMQPURL, ev)
}
