package services

import (
	"context"
	"fmt"
	"strings"

	"moviehub-backend/internal/apperrors"
	"moviehub-backend/internal/models"
	"moviehub-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// SavedMoviesService maintains the user<->movie saved relationship. Both
// directions live in one join table, so each mutation is a single
// transactional write and the association can never end up half-applied.
type SavedMoviesService interface {
	// Save resolves the movie (fetching from OMDB if needed) and adds it to
	// the user's list. A repeated save is a user-visible ErrAlreadySaved, not
	// a silent no-op.
	Save(ctx context.Context, userID uint, imdbID string) (*models.Movie, error)
	// Remove takes the movie out of the user's list. It only consults the
	// store; removal never triggers an upstream fetch.
	Remove(ctx context.Context, userID uint, imdbID string) (*models.Movie, error)
	List(ctx context.Context, userID uint) ([]models.Movie, error)
}

type savedMoviesService struct {
	users  repository.UserRepository
	movies MovieService
	store  repository.MovieRepository
	logger *logrus.Logger
}

func NewSavedMoviesService(users repository.UserRepository, movies MovieService, store repository.MovieRepository, logger *logrus.Logger) SavedMoviesService {
	return &savedMoviesService{
		users:  users,
		movies: movies,
		store:  store,
		logger: logger,
	}
}

func (s *savedMoviesService) Save(ctx context.Context, userID uint, imdbID string) (*models.Movie, error) {
	movie, err := s.movies.Resolve(ctx, imdbID)
	if err != nil {
		return nil, err
	}

	saved, err := s.users.HasSaved(ctx, userID, movie.ID)
	if err != nil {
		return nil, err
	}
	if saved {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAlreadySaved, imdbID)
	}

	if err := s.users.AppendSaved(ctx, userID, movie.ID); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"imdb_id": imdbID,
	}).Info("Movie saved to user collection")

	return movie, nil
}

func (s *savedMoviesService) Remove(ctx context.Context, userID uint, imdbID string) (*models.Movie, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, fmt.Errorf("%w: imdb id is required", apperrors.ErrValidation)
	}

	movie, err := s.store.FindByIMDBID(ctx, imdbID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, fmt.Errorf("%w: movie with IMDB ID %s", apperrors.ErrNotFound, imdbID)
	}

	if err := s.users.RemoveSaved(ctx, userID, movie.ID); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"imdb_id": imdbID,
	}).Info("Movie removed from user collection")

	return movie, nil
}

func (s *savedMoviesService) List(ctx context.Context, userID uint) ([]models.Movie, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.ListSaved(ctx, userID)
}
