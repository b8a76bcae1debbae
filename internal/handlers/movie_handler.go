package handlers

import (
	"strconv"

	"moviehub-backend/internal/apperrors"
	"moviehub-backend/internal/models"
	"moviehub-backend/internal/services"
	"moviehub-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type MovieHandler struct {
	service services.MovieService
	logger  *logrus.Logger
}

func NewMovieHandler(service services.MovieService, logger *logrus.Logger) *MovieHandler {
	return &MovieHandler{
		service: service,
		logger:  logger,
	}
}

// GetAllMovies godoc
// @Summary Get all movies
// @Description Get list of all movies with pagination, search and sorting
// @Tags movies
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param search query string false "Search by title, director or genre"
// @Param sort_by query string false "Sort by field (id, title, release_year, rating, created_at, updated_at)" default(created_at)
// @Param order query string false "Sort order (ASC/DESC)" default(DESC)
// @Success 200 {object} utils.StandardResponse "List of movies"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /movies [get]
func (h *MovieHandler) GetAllMovies(c *fiber.Ctx) error {
	ctx := c.Context()

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	search := c.Query("search", "")
	sortBy := c.Query("sort_by", "created_at")
	order := c.Query("order", "DESC")

	movies, total, err := h.service.GetAll(ctx, page, limit, search, sortBy, order)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get movies")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve movies")
	}

	meta := utils.CreatePaginationMeta(page, limit, total)
	return utils.SuccessWithMetaResponse(c, fiber.StatusOK, "Movies retrieved successfully", movies, meta)
}

// GetMovieByID godoc
// @Summary Get movie by ID
// @Description Get a single movie by its internal ID
// @Tags movies
// @Accept json
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} utils.StandardResponse "Movie details"
// @Failure 400 {object} utils.StandardResponse "Invalid movie ID"
// @Failure 404 {object} utils.StandardResponse "Movie not found"
// @Router /movies/{id} [get]
func (h *MovieHandler) GetMovieByID(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid movie ID")
	}

	movie, err := h.service.GetByID(ctx, uint(id))
	if err != nil {
		h.logger.WithError(err).WithField("id", id).Warn("Failed to get movie")
		return utils.ErrorResponse(c, apperrors.StatusCode(err), err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Movie retrieved successfully", movie)
}

// FetchMovie godoc
// @Summary Fetch and save a movie by IMDB ID
// @Description Resolve a movie through cache, store and OMDB, persisting it on first sight
// @Tags movies
// @Accept json
// @Produce json
// @Param request body FetchMovieRequest true "IMDB ID to fetch"
// @Success 200 {object} utils.StandardResponse "Resolved movie"
// @Failure 400 {object} utils.StandardResponse "Invalid request body"
// @Failure 404 {object} utils.StandardResponse "Movie not found in OMDB"
// @Failure 502 {object} utils.StandardResponse "OMDB unavailable"
// @Security BearerAuth
// @Router /movies/fetch [post]
func (h *MovieHandler) FetchMovie(c *fiber.Ctx) error {
	ctx := c.Context()

	var req FetchMovieRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if !imdbIDPattern.MatchString(req.IMDBID) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "imdb_id must follow the format tt followed by 7 or 8 digits")
	}

	movie, err := h.service.Resolve(ctx, req.IMDBID)
	if err != nil {
		h.logger.WithError(err).WithField("imdb_id", req.IMDBID).Warn("Failed to resolve movie")
		return utils.ErrorResponse(c, apperrors.StatusCode(err), err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Movie fetched and saved successfully", movie)
}

// FetchMovieByTitle godoc
// @Summary Fetch and save a movie by title
// @Description Resolve a movie by exact title through store and OMDB
// @Tags movies
// @Accept json
// @Produce json
// @Param request body FetchByTitleRequest true "Title to fetch"
// @Success 200 {object} utils.StandardResponse "Resolved movie"
// @Failure 400 {object} utils.StandardResponse "Title is required"
// @Failure 404 {object} utils.StandardResponse "Movie not found in OMDB"
// @Failure 502 {object} utils.StandardResponse "OMDB unavailable"
// @Router /movies/fetch-by-title [post]
func (h *MovieHandler) FetchMovieByTitle(c *fiber.Ctx) error {
	ctx := c.Context()

	var req FetchByTitleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Title == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Title is required")
	}

	movie, err := h.service.ResolveByTitle(ctx, req.Title)
	if err != nil {
		h.logger.WithError(err).WithField("title", req.Title).Warn("Failed to resolve movie by title")
		return utils.ErrorResponse(c, apperrors.StatusCode(err), err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Movie fetched and saved successfully", movie)
}

// UpdateMovie godoc
// @Summary Update a movie
// @Description Merge-patch an existing movie; omitted fields keep their value
// @Tags movies
// @Accept json
// @Produce json
// @Param id path int true "Movie ID"
// @Param movie body models.MoviePatch true "Fields to update"
// @Success 200 {object} utils.StandardResponse "Movie updated successfully"
// @Failure 400 {object} utils.StandardResponse "Invalid request"
// @Failure 404 {object} utils.StandardResponse "Movie not found"
// @Security BearerAuth
// @Router /movies/{id} [put]
func (h *MovieHandler) UpdateMovie(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid movie ID")
	}

	var patch models.MoviePatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	movie, err := h.service.Update(ctx, uint(id), &patch)
	if err != nil {
		h.logger.WithError(err).WithField("id", id).Warn("Failed to update movie")
		return utils.ErrorResponse(c, apperrors.StatusCode(err), err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Movie updated successfully", movie)
}

// DeleteMovie godoc
// @Summary Delete a movie
// @Description Delete a movie and clean up saved-movie references to it
// @Tags movies
// @Accept json
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} utils.StandardResponse "Movie deleted successfully"
// @Failure 400 {object} utils.StandardResponse "Invalid movie ID"
// @Failure 404 {object} utils.StandardResponse "Movie not found"
// @Security BearerAuth
// @Router /movies/{id} [delete]
func (h *MovieHandler) DeleteMovie(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid movie ID")
	}

	if err := h.service.Delete(ctx, uint(id)); err != nil {
		h.logger.WithError(err).WithField("id", id).Warn("Failed to delete movie")
		return utils.ErrorResponse(c, apperrors.StatusCode(err), err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Movie deleted successfully", nil)
}
