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

// MovieHandler serves the public movie catalogue and the admin-only
// creation endpoint.
type MovieHandler struct {
	Movies *repository.MovieRepo
}

func NewMovieHandler(m *repository.MovieRepo) *MovieHandler {
	return &MovieHandler{Movies: m}
}

type movieReq struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Duration    uint32 `json:"duration" validate:"required,gt=0"`
	PosterURL   string `json:"poster_url"`
	ReleaseDate string `json:"release_date"`
}

// List returns all movies.
func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, err := h.Movies.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list movies"})
	}
	return c.JSON(http.StatusOK, movies)
}

// Get returns one movie by id.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load movie"})
	}
	return c.JSON(http.StatusOK, m)
}

// Create adds a movie to the catalogue.  Admin only.
func (h *MovieHandler) Create(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and positive duration are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := &model.Movie{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		PosterURL:   req.PosterURL,
		ReleaseDate: req.ReleaseDate,
	}
	if err := h.Movies.Create(ctx, m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create movie"})
	}
	return c.JSON(http.StatusOK, m)
}
