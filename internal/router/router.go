// Package router wires repositories, handlers and middleware into an
// Echo instance and registers all HTTP routes.
package router

import (
	"database/sql"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-ticket-sales/internal/config"
	"github.com/iliyamo/cinema-ticket-sales/internal/handler"
	"github.com/iliyamo/cinema-ticket-sales/internal/metrics"
	"github.com/iliyamo/cinema-ticket-sales/internal/middleware"
	"github.com/iliyamo/cinema-ticket-sales/internal/repository"
)

// requestValidator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate on bound DTOs.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// New builds the Echo instance: global middleware, validator and every
// route of the API.  rdb may be nil, in which case rate limiting and
// response caching are disabled.
func New(cfg config.Config, db *sql.DB, rdb *redis.Client, amqpURL string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(metrics.Middleware())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	users := repository.NewUserRepo(db)
	movies := repository.NewMovieRepo(db)
	halls := repository.NewHallRepo(db)
	seats := repository.NewSeatRepo(db)
	showtimes := repository.NewShowtimeRepo(db)
	reservations := repository.NewReservationRepo(db)
	stats := repository.NewStatisticsRepo(db)

	auth := handler.NewAuthHandler(cfg, users)
	movieH := handler.NewMovieHandler(movies)
	hallH := handler.NewHallHandler(halls)
	showtimeH := handler.NewShowtimeHandler(cfg, showtimes, seats, reservations)
	reservationH := handler.NewReservationHandler(cfg, reservations, amqpURL)
	statsH := handler.NewStatisticsHandler(stats)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	authRequired := middleware.JWTAuth(cfg.JWTSecret)
	adminOnly := middleware.RequireAdmin()

	e.GET("/healthz", handler.Health)
	e.GET("/metrics", metrics.Handler())

	e.POST("/token", auth.Token)
	e.POST("/users/", auth.Register)

	// Public catalogue, cached briefly so seat maps stay fresh.
	e.GET("/movies/", movieH.List, cache)
	e.GET("/movies/:id", movieH.Get, cache)
	e.GET("/halls/", hallH.List, cache)
	e.GET("/halls/:id", hallH.Get, cache)
	e.GET("/showtimes/", showtimeH.List, cache)
	e.GET("/showtime/:id/seats", showtimeH.SeatMap, cache)

	// Admin management.
	e.POST("/movies/", movieH.Create, authRequired, adminOnly)
	e.POST("/halls/", hallH.Create, authRequired, adminOnly)
	e.PUT("/halls/:id", hallH.Update, authRequired, adminOnly)
	e.DELETE("/halls/:id", hallH.Delete, authRequired, adminOnly)
	e.POST("/showtimes/", showtimeH.Create, authRequired, adminOnly)
	e.PUT("/showtimes/:id", showtimeH.Update, authRequired, adminOnly)
	e.DELETE("/showtimes/:id", showtimeH.Delete, authRequired, adminOnly)
	e.GET("/admin/statistics", statsH.Get, authRequired, adminOnly)

	// Booking flow, owner-or-admin checks inside the handlers.
	e.POST("/reservations/", reservationH.Create, authRequired)
	e.GET("/reservations/:id", reservationH.Get, authRequired)
	e.PATCH("/reservations/:id", reservationH.Update, authRequired)
	e.GET("/reservations/:id/ticket", reservationH.Ticket, authRequired)
	e.GET("/users/me/reservations", reservationH.ListMine, authRequired)

	return e
}
