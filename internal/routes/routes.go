package routes

import (
	"moviehub-backend/internal/handlers"
	"moviehub-backend/internal/middleware"
	"moviehub-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Movies *handlers.MovieHandler
	Users  *handlers.UserHandler
	Upload *handlers.UploadHandler
}

func Setup(app *fiber.App, h Handlers, protect fiber.Handler) {
	// API versioning
	api := app.Group("/api")
	v1 := api.Group("/v1")

	adminOnly := middleware.Authorize(models.RoleAdmin)
	authLimiter := middleware.AuthLimiter()

	// User routes - registration, auth and the saved-movies collection
	users := v1.Group("/users")
	{
		users.Post("/register", authLimiter, h.Users.Register)
		users.Post("/login", authLimiter, h.Users.Login)
		users.Get("/profile", protect, h.Users.GetProfile)

		users.Post("/saved-movies", protect, h.Users.SaveMovie)
		users.Get("/saved-movies", protect, h.Users.GetSavedMovies)
		users.Delete("/saved-movies/:imdbId", protect, h.Users.RemoveSavedMovie)
	}

	// Movie routes - catalog reads and OMDB-backed resolution
	movies := v1.Group("/movies")
	{
		movies.Get("/", h.Movies.GetAllMovies)
		movies.Post("/fetch", protect, h.Movies.FetchMovie)
		movies.Post("/fetch-by-title", h.Movies.FetchMovieByTitle)
		movies.Get("/:id", h.Movies.GetMovieByID)
		movies.Put("/:id", protect, adminOnly, h.Movies.UpdateMovie)
		movies.Delete("/:id", protect, adminOnly, h.Movies.DeleteMovie)
	}

	if h.Upload != nil {
		upload := v1.Group("/upload")
		{
			upload.Get("/presign", protect, adminOnly, h.Upload.GetPresignedURL)
		}
	}
}
