package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"moviehub-backend/internal/apperrors"
	"moviehub-backend/internal/models"
	"moviehub-backend/internal/omdb"
)

// fakeMovieRepo is an in-memory MovieRepository that enforces the unique
// imdb_id constraint the same way the Postgres index does.
type fakeMovieRepo struct {
	mu          sync.Mutex
	nextID      uint
	byID        map[uint]models.Movie
	imdbLookups int
	createErr   error
	// winner, when set, is inserted during the failed Create to simulate a
	// concurrent resolution winning the insert race.
	winner *models.Movie
}

func newFakeMovieRepo() *fakeMovieRepo {
	return &fakeMovieRepo{byID: map[uint]models.Movie{}}
}

func (r *fakeMovieRepo) Create(_ context.Context, movie *models.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		if r.winner != nil {
			r.nextID++
			w := *r.winner
			w.ID = r.nextID
			r.byID[w.ID] = w
			r.winner = nil
		}
		return r.createErr
	}

	for _, existing := range r.byID {
		if existing.IMDBID == movie.IMDBID {
			return fmt.Errorf("%w: movie with IMDB ID %s", apperrors.ErrConflict, movie.IMDBID)
		}
	}

	r.nextID++
	movie.ID = r.nextID
	r.byID[movie.ID] = *movie
	return nil
}

func (r *fakeMovieRepo) Update(_ context.Context, movie *models.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[movie.ID]; !ok {
		return fmt.Errorf("%w: movie with ID %d", apperrors.ErrNotFound, movie.ID)
	}
	r.byID[movie.ID] = *movie
	return nil
}

func (r *fakeMovieRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("%w: movie with ID %d", apperrors.ErrNotFound, id)
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeMovieRepo) FindByID(_ context.Context, id uint) (*models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	movie, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: movie with ID %d", apperrors.ErrNotFound, id)
	}
	clone := movie
	return &clone, nil
}

func (r *fakeMovieRepo) FindByIMDBID(_ context.Context, imdbID string) (*models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.imdbLookups++
	for _, movie := range r.byID {
		if movie.IMDBID == imdbID {
			clone := movie
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeMovieRepo) FindByTitle(_ context.Context, title string) (*models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, movie := range r.byID {
		if strings.EqualFold(movie.Title, title) {
			clone := movie
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeMovieRepo) FindAll(_ context.Context, page, limit int, search, sortBy, order string) ([]models.Movie, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var movies []models.Movie
	for _, movie := range r.byID {
		movies = append(movies, movie)
	}
	return movies, int64(len(movies)), nil
}

func (r *fakeMovieRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// fakeCatalog is an in-memory CatalogLookup. It honors context cancellation
// so tests can verify that resolution detaches from the caller's context.
type fakeCatalog struct {
	mu    sync.Mutex
	byID  map[string]*omdb.Metadata
	err   error
	calls int
}

func newFakeCatalog(entries ...*omdb.Metadata) *fakeCatalog {
	c := &fakeCatalog{byID: map[string]*omdb.Metadata{}}
	for _, entry := range entries {
		c.byID[entry.IMDBID] = entry
	}
	return c
}

func (c *fakeCatalog) ByID(ctx context.Context, imdbID string) (*omdb.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	meta, ok := c.byID[imdbID]
	if !ok {
		return nil, fmt.Errorf("%w: movie not found", apperrors.ErrNotFound)
	}
	return meta, nil
}

func (c *fakeCatalog) ByTitle(ctx context.Context, title string) (*omdb.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	for _, meta := range c.byID {
		if strings.EqualFold(meta.Title, title) {
			return meta, nil
		}
	}
	return nil, fmt.Errorf("%w: movie not found", apperrors.ErrNotFound)
}

func (c *fakeCatalog) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// fakeUserRepo is an in-memory UserRepository. The saved relationship is one
// pair set, mirroring the single join table of the real implementation.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]models.User
	saved  map[uint]map[uint]bool // userID -> movieID set
	movies *fakeMovieRepo
}

func newFakeUserRepo(movies *fakeMovieRepo) *fakeUserRepo {
	return &fakeUserRepo{
		byID:   map[uint]models.User{},
		saved:  map[uint]map[uint]bool{},
		movies: movies,
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return fmt.Errorf("%w: user with email %s", apperrors.ErrAlreadyExists, user.Email)
		}
	}

	r.nextID++
	user.ID = r.nextID
	r.byID[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: user with ID %d", apperrors.ErrNotFound, id)
	}
	clone := user
	return &clone, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.byID {
		if user.Email == email {
			clone := user
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) HasSaved(_ context.Context, userID, movieID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved[userID][movieID], nil
}

func (r *fakeUserRepo) AppendSaved(_ context.Context, userID, movieID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saved[userID][movieID] {
		return fmt.Errorf("%w: movie %d for user %d", apperrors.ErrAlreadySaved, movieID, userID)
	}
	if r.saved[userID] == nil {
		r.saved[userID] = map[uint]bool{}
	}
	r.saved[userID][movieID] = true
	return nil
}

func (r *fakeUserRepo) RemoveSaved(_ context.Context, userID, movieID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.saved[userID][movieID] {
		return fmt.Errorf("%w: movie %d for user %d", apperrors.ErrNotSaved, movieID, userID)
	}
	delete(r.saved[userID], movieID)
	return nil
}

func (r *fakeUserRepo) ListSaved(ctx context.Context, userID uint) ([]models.Movie, error) {
	r.mu.Lock()
	ids := make([]uint, 0, len(r.saved[userID]))
	for movieID := range r.saved[userID] {
		ids = append(ids, movieID)
	}
	r.mu.Unlock()

	movies := make([]models.Movie, 0, len(ids))
	for _, id := range ids {
		movie, err := r.movies.FindByID(ctx, id)
		if err != nil {
			continue // dangling reference, skipped at read time
		}
		movies = append(movies, *movie)
	}
	return movies, nil
}
