package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"moviehub-backend/internal/apperrors"
	"moviehub-backend/internal/cache"
	"moviehub-backend/internal/models"
	"moviehub-backend/internal/omdb"
	"moviehub-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// CatalogLookup is the external catalog capability the reconciliation flow
// falls back to when neither the cache nor the store knows a movie.
type CatalogLookup interface {
	ByID(ctx context.Context, imdbID string) (*omdb.Metadata, error)
	ByTitle(ctx context.Context, title string) (*omdb.Metadata, error)
}

type MovieService interface {
	// Resolve returns the authoritative record for an IMDB ID via the
	// cache -> store -> external lookup chain, persisting newly fetched movies.
	Resolve(ctx context.Context, imdbID string) (*models.Movie, error)
	// ResolveByTitle is the same chain keyed by exact title; the cache is not
	// consulted because it is keyed by IMDB ID.
	ResolveByTitle(ctx context.Context, title string) (*models.Movie, error)
	Update(ctx context.Context, id uint, patch *models.MoviePatch) (*models.Movie, error)
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Movie, error)
	GetAll(ctx context.Context, page, limit int, search, sortBy, order string) ([]models.Movie, int64, error)
}

type movieService struct {
	repo    repository.MovieRepository
	catalog CatalogLookup
	cache   *cache.MovieCache
	posters *PosterService
	logger  *logrus.Logger
}

func NewMovieService(repo repository.MovieRepository, catalog CatalogLookup, movieCache *cache.MovieCache, logger *logrus.Logger) MovieService {
	return &movieService{
		repo:    repo,
		catalog: catalog,
		cache:   movieCache,
		logger:  logger,
	}
}

// SetPosterService enables poster mirroring; without it poster URLs stay
// pointed at OMDB's image host.
func (s *movieService) SetPosterService(posters *PosterService) {
	s.posters = posters
}

func (s *movieService) Resolve(ctx context.Context, imdbID string) (*models.Movie, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, fmt.Errorf("%w: imdb id is required", apperrors.ErrValidation)
	}

	// A live cache entry is trusted for its whole TTL window; staleness is
	// bounded by the TTL, not by store re-validation.
	if movie, found := s.cache.Get(imdbID); found {
		return movie, nil
	}

	movie, err := s.repo.FindByIMDBID(ctx, imdbID)
	if err != nil {
		return nil, err
	}
	if movie != nil {
		s.cache.Set(imdbID, movie)
		return movie, nil
	}

	// From here on the caller's cancellation is deliberately ignored: once the
	// external lookup is in flight it completes and persists, so a client
	// retry finds the record in the store instead of re-fetching upstream.
	fetchCtx := context.WithoutCancel(ctx)

	meta, err := s.catalog.ByID(fetchCtx, imdbID)
	if err != nil {
		return nil, err
	}

	movie = s.movieFromMetadata(meta)
	movie, err = s.persistResolved(fetchCtx, movie)
	if err != nil {
		return nil, err
	}

	s.cache.Set(imdbID, movie)
	return movie, nil
}

func (s *movieService) ResolveByTitle(ctx context.Context, title string) (*models.Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}

	movie, err := s.repo.FindByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if movie != nil {
		return movie, nil
	}

	fetchCtx := context.WithoutCancel(ctx)

	meta, err := s.catalog.ByTitle(fetchCtx, title)
	if err != nil {
		return nil, err
	}

	movie = s.movieFromMetadata(meta)
	movie, err = s.persistResolved(fetchCtx, movie)
	if err != nil {
		return nil, err
	}

	s.cache.Set(movie.IMDBID, movie)
	return movie, nil
}

// persistResolved stores a freshly fetched movie. Losing a concurrent insert
// race on the unique imdb_id index is not an error: the winner's record is
// the same external entity, so re-read and return it.
func (s *movieService) persistResolved(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	s.archivePoster(ctx, movie)

	err := s.repo.Create(ctx, movie)
	if err == nil {
		return movie, nil
	}
	if !errors.Is(err, apperrors.ErrConflict) {
		return nil, err
	}

	existing, findErr := s.repo.FindByIMDBID(ctx, movie.IMDBID)
	if findErr != nil {
		return nil, findErr
	}
	if existing == nil {
		// The winning record disappeared between the conflict and the re-read.
		return nil, err
	}

	s.logger.WithField("imdb_id", movie.IMDBID).Debug("Lost resolution race, reusing existing record")
	return existing, nil
}

func (s *movieService) Update(ctx context.Context, id uint, patch *models.MoviePatch) (*models.Movie, error) {
	movie, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldPoster := movie.Poster
	applyPatch(movie, patch)

	if err := validateMovie(movie); err != nil {
		return nil, err
	}

	if s.posters != nil && patch.Poster != nil && oldPoster != movie.Poster && s.posters.Owns(oldPoster) {
		if err := s.posters.DeletePoster(oldPoster); err != nil {
			s.logger.WithError(err).Warn("Failed to delete replaced poster from MinIO")
		}
	}

	if err := s.repo.Update(ctx, movie); err != nil {
		return nil, err
	}

	// The cache may still hold the pre-update snapshot; drop it so the next
	// resolution re-reads the store.
	s.cache.Delete(movie.IMDBID)

	return movie, nil
}

func (s *movieService) Delete(ctx context.Context, id uint) error {
	movie, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if s.posters != nil && s.posters.Owns(movie.Poster) {
		if err := s.posters.DeletePoster(movie.Poster); err != nil {
			s.logger.WithError(err).Warn("Failed to delete poster from MinIO")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Delete(movie.IMDBID)
	return nil
}

func (s *movieService) GetByID(ctx context.Context, id uint) (*models.Movie, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *movieService) GetAll(ctx context.Context, page, limit int, search, sortBy, order string) ([]models.Movie, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return s.repo.FindAll(ctx, page, limit, search, sortBy, order)
}

// movieFromMetadata builds a movie record from raw OMDB fields. Numeric
// fields are parsed defensively: upstream format drift in Year or imdbRating
// degrades to 0 instead of failing the whole resolution.
func (s *movieService) movieFromMetadata(meta *omdb.Metadata) *models.Movie {
	year := parseLeadingInt(meta.Year)
	if year == 0 && meta.Year != "" && meta.Year != "N/A" {
		s.logger.WithField("year", meta.Year).Debug("Unparseable OMDB year, defaulting to 0")
	}

	rating, err := strconv.ParseFloat(strings.TrimSpace(meta.ImdbRating), 64)
	if err != nil {
		if meta.ImdbRating != "" && meta.ImdbRating != "N/A" {
			s.logger.WithField("rating", meta.ImdbRating).Debug("Unparseable OMDB rating, defaulting to 0")
		}
		rating = 0
	}

	poster := meta.Poster
	if poster == "N/A" {
		poster = ""
	}

	description := meta.Plot
	if len(description) > 500 {
		description = description[:500]
	}

	return &models.Movie{
		IMDBID:      meta.IMDBID,
		Title:       meta.Title,
		Director:    meta.Director,
		Genre:       meta.Genre,
		ReleaseYear: year,
		Rating:      rating,
		Description: description,
		Poster:      poster,
		Runtime:     meta.Runtime,
	}
}

func (s *movieService) archivePoster(ctx context.Context, movie *models.Movie) {
	if s.posters == nil || movie.Poster == "" {
		return
	}

	publicURL, err := s.posters.ArchivePoster(ctx, movie.IMDBID, movie.Poster)
	if err != nil {
		s.logger.WithError(err).WithField("imdb_id", movie.IMDBID).Warn("Failed to archive poster, keeping upstream URL")
		return
	}
	movie.Poster = publicURL
}

func applyPatch(movie *models.Movie, patch *models.MoviePatch) {
	if patch.Title != nil {
		movie.Title = *patch.Title
	}
	if patch.Director != nil {
		movie.Director = *patch.Director
	}
	if patch.Genre != nil {
		movie.Genre = *patch.Genre
	}
	if patch.ReleaseYear != nil {
		movie.ReleaseYear = *patch.ReleaseYear
	}
	if patch.Rating != nil {
		movie.Rating = *patch.Rating
	}
	if patch.Description != nil {
		movie.Description = *patch.Description
	}
	if patch.Poster != nil {
		movie.Poster = *patch.Poster
	}
	if patch.Runtime != nil {
		movie.Runtime = *patch.Runtime
	}
}

func validateMovie(movie *models.Movie) error {
	if strings.TrimSpace(movie.Title) == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if movie.ReleaseYear != 0 && (movie.ReleaseYear < 1800 || movie.ReleaseYear > time.Now().Year()) {
		return fmt.Errorf("%w: release year must be between 1800 and the current year", apperrors.ErrValidation)
	}
	if movie.Rating < 0 || movie.Rating > 10 {
		return fmt.Errorf("%w: rating must be between 0 and 10", apperrors.ErrValidation)
	}
	if len(movie.Description) > 500 {
		return fmt.Errorf("%w: description cannot exceed 500 characters", apperrors.ErrValidation)
	}
	return nil
}

// parseLeadingInt reads the leading digits of a string, matching how the
// OMDB year for a series ("2010-2013") still yields its first year.
func parseLeadingInt(value string) int {
	value = strings.TrimSpace(value)
	end := 0
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}
	return n
}
