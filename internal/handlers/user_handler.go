package handlers

import (
	"moviehub-backend/internal/apperrors"
	"moviehub-backend/internal/middleware"
	"moviehub-backend/internal/services"
	"moviehub-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	users  services.UserService
	saved  services.SavedMoviesService
	logger *logrus.Logger
}

func NewUserHandler(users services.UserService, saved services.SavedMoviesService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		saved:  saved,
		logger: logger,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Create a user account and return an auth token
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} utils.StandardResponse "User registered"
// @Failure 400 {object} utils.StandardResponse "Invalid registration data"
// @Failure 409 {object} utils.StandardResponse "Email already registered"
// @Router /users/register [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	ctx := c.Context()

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, token, err := h.users.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		h.logger.WithError(err).Warn("Registration failed")
		return utils.ErrorResponse(c, apperrors.StatusCode(err), err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, "User registered successfully", newAuthResponse(user, token))
}

// Login godoc
// @Summary Authenticate a user
// @Description Verify credentials and return an auth token
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} utils.StandardResponse "Authenticated"
// @Failure 401 {object} utils.StandardResponse "Invalid email or password"
// @Router /users/login [post]
func (h *UserHandler) Login(c *fiber.Ctx) error {
	ctx := c.Context()

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, token, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return utils.ErrorResponse(c, apperrors.StatusCode(err), err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Authenticated successfully", newAuthResponse(user, token))
}

// GetProfile godoc
// @Summary Get the authenticated user's profile
// @Tags users
// @Produce json
// @Success 200 {object} utils.StandardResponse "User profile"
// @Failure 401 {object} utils.StandardResponse "Not authorized"
// @Security BearerAuth
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	ctx := c.Context()

	current := middleware.CurrentUser(c)
	user, err := h.users.GetProfile(ctx, current.ID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", current.ID).Error("Failed to load profile")
		return utils.ErrorResponse(c, apperrors.StatusCode(err), err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Profile retrieved successfully", user)
}

// SaveMovie godoc
// @Summary Save a movie to the user's collection
// @Description Resolve the movie by IMDB ID (fetching from OMDB if unseen) and add it to the saved list
// @Tags users
// @Accept json
// @Produce json
// @Param request body FetchMovieRequest true "IMDB ID to save"
// @Success 200 {object} utils.StandardResponse "Movie saved"
// @Failure 400 {object} utils.StandardResponse "Invalid request"
// @Failure 404 {object} utils.StandardResponse "Movie not found in OMDB"
// @Failure 409 {object} utils.StandardResponse "Movie already saved"
// @Failure 502 {object} utils.StandardResponse "OMDB unavailable"
// @Security BearerAuth
// @Router /users/saved-movies [post]
func (h *UserHandler) SaveMovie(c *fiber.Ctx) error {
	ctx := c.Context()
	user := middleware.CurrentUser(c)

	var req FetchMovieRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if !imdbIDPattern.MatchString(req.IMDBID) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "imdb_id must follow the format tt followed by 7 or 8 digits")
	}

	movie, err := h.saved.Save(ctx, user.ID, req.IMDBID)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": user.ID,
			"imdb_id": req.IMDBID,
		}).Warn("Failed to save movie")
		return utils.ErrorResponse(c, apperrors.StatusCode(err), err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Movie saved successfully", movie)
}

// RemoveSavedMovie godoc
// @Summary Remove a movie from the user's collection
// @Tags users
// @Produce json
// @Param imdbId path string true "IMDB ID"
// @Success 200 {object} utils.StandardResponse "Movie removed"
// @Failure 404 {object} utils.StandardResponse "Movie not found"
// @Failure 409 {object} utils.StandardResponse "Movie not saved by the user"
// @Security BearerAuth
// @Router /users/saved-movies/{imdbId} [delete]
func (h *UserHandler) RemoveSavedMovie(c *fiber.Ctx) error {
	ctx := c.Context()
	user := middleware.CurrentUser(c)

	imdbID := c.Params("imdbId")

	movie, err := h.saved.Remove(ctx, user.ID, imdbID)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": user.ID,
			"imdb_id": imdbID,
		}).Warn("Failed to remove saved movie")
		return utils.ErrorResponse(c, apperrors.StatusCode(err), err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Movie removed from saved collection", movie)
}

// GetSavedMovies godoc
// @Summary List the user's saved movies
// @Tags users
// @Produce json
// @Success 200 {object} utils.StandardResponse "Saved movies"
// @Failure 401 {object} utils.StandardResponse "Not authorized"
// @Security BearerAuth
// @Router /users/saved-movies [get]
func (h *UserHandler) GetSavedMovies(c *fiber.Ctx) error {
	ctx := c.Context()
	user := middleware.CurrentUser(c)

	movies, err := h.saved.List(ctx, user.ID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to list saved movies")
		return utils.ErrorResponse(c, apperrors.StatusCode(err), err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Saved movies retrieved successfully", movies)
}
