package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"moviehub-backend/internal/apperrors"
	"moviehub-backend/internal/cache"
	"moviehub-backend/internal/models"
	"moviehub-backend/internal/omdb"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestMovieService(repo *fakeMovieRepo, catalog *fakeCatalog) (MovieService, *cache.MovieCache) {
	movieCache := cache.NewMovieCache(time.Hour, 0)
	return NewMovieService(repo, catalog, movieCache, testLogger()), movieCache
}

func inceptionMeta() *omdb.Metadata {
	return &omdb.Metadata{
		IMDBID:     "tt1375666",
		Title:      "Inception",
		Director:   "Christopher Nolan",
		Genre:      "Action, Adventure, Sci-Fi",
		Year:       "2010",
		ImdbRating: "8.8",
		Plot:       "A thief who steals corporate secrets through dream-sharing technology.",
		Poster:     "https://img.example.com/inception.jpg",
		Runtime:    "148 min",
		Response:   "True",
	}
}

func TestResolve_FetchesAndPersistsOnFullMiss(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	catalog := newFakeCatalog(inceptionMeta())
	svc, _ := newTestMovieService(repo, catalog)

	movie, err := svc.Resolve(context.Background(), "tt1375666")
	require.NoError(t, err)

	assert.Equal(t, "Inception", movie.Title)
	assert.Equal(t, 2010, movie.ReleaseYear)
	assert.Equal(t, 8.8, movie.Rating)
	assert.Equal(t, "148 min", movie.Runtime)
	assert.Equal(t, 1, repo.count())
	assert.Equal(t, 1, catalog.callCount())
}

func TestResolve_SecondCallWithinTTLSkipsStore(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	catalog := newFakeCatalog(inceptionMeta())
	svc, _ := newTestMovieService(repo, catalog)

	_, err := svc.Resolve(context.Background(), "tt1375666")
	require.NoError(t, err)
	lookupsAfterFirst := repo.imdbLookups

	movie, err := svc.Resolve(context.Background(), "tt1375666")
	require.NoError(t, err)

	assert.Equal(t, "Inception", movie.Title)
	assert.Equal(t, lookupsAfterFirst, repo.imdbLookups, "cached resolution must not query the store")
	assert.Equal(t, 1, catalog.callCount())
}

func TestResolve_StoreHitPopulatesCache(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	require.NoError(t, repo.Create(context.Background(), &models.Movie{
		IMDBID: "tt0137523",
		Title:  "Fight Club",
	}))
	catalog := newFakeCatalog()
	svc, movieCache := newTestMovieService(repo, catalog)

	movie, err := svc.Resolve(context.Background(), "tt0137523")
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", movie.Title)
	assert.Equal(t, 0, catalog.callCount(), "store hit must not reach the catalog")

	_, found := movieCache.Get("tt0137523")
	assert.True(t, found)
}

func TestResolve_ExpiredCacheEntryFallsBackToStore(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	catalog := newFakeCatalog(inceptionMeta())
	movieCache := cache.NewMovieCache(30*time.Millisecond, 0)
	svc := NewMovieService(repo, catalog, movieCache, testLogger())

	_, err := svc.Resolve(context.Background(), "tt1375666")
	require.NoError(t, err)
	lookupsAfterFirst := repo.imdbLookups

	time.Sleep(60 * time.Millisecond)

	_, err = svc.Resolve(context.Background(), "tt1375666")
	require.NoError(t, err)
	assert.Greater(t, repo.imdbLookups, lookupsAfterFirst, "expired entry must re-read the store")
	assert.Equal(t, 1, catalog.callCount(), "persisted movie must not be re-fetched")
}

func TestResolve_MalformedNumericFieldsDefaultToZero(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	catalog := newFakeCatalog(&omdb.Metadata{
		IMDBID:     "tt0000001",
		Title:      "Broken Upstream",
		Year:       "N/A",
		ImdbRating: "N/A",
		Response:   "True",
	})
	svc, _ := newTestMovieService(repo, catalog)

	movie, err := svc.Resolve(context.Background(), "tt0000001")
	require.NoError(t, err)

	assert.Equal(t, 0, movie.ReleaseYear)
	assert.Equal(t, float64(0), movie.Rating)
	assert.Equal(t, 1, repo.count(), "record must still be persisted")
}

func TestResolve_SeriesYearUsesLeadingDigits(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	catalog := newFakeCatalog(&omdb.Metadata{
		IMDBID:     "tt0000002",
		Title:      "Some Series",
		Year:       "2010-2013",
		ImdbRating: "7.5",
		Response:   "True",
	})
	svc, _ := newTestMovieService(repo, catalog)

	movie, err := svc.Resolve(context.Background(), "tt0000002")
	require.NoError(t, err)
	assert.Equal(t, 2010, movie.ReleaseYear)
}

func TestResolve_NotFoundUpstream(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	catalog := newFakeCatalog()
	svc, _ := newTestMovieService(repo, catalog)

	_, err := svc.Resolve(context.Background(), "tt9999999")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, repo.count())
}

func TestResolve_UpstreamErrorPropagates(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	catalog := newFakeCatalog()
	catalog.err = fmt.Errorf("%w: connection refused", apperrors.ErrUpstream)
	svc, _ := newTestMovieService(repo, catalog)

	_, err := svc.Resolve(context.Background(), "tt1375666")
	require.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.Equal(t, 0, repo.count())
}

func TestResolve_EmptyIDFailsValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestMovieService(newFakeMovieRepo(), newFakeCatalog())

	_, err := svc.Resolve(context.Background(), "  ")
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestResolve_ConflictRecoversWithWinnersRecord(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	repo.createErr = fmt.Errorf("%w: movie with IMDB ID tt1375666", apperrors.ErrConflict)
	repo.winner = &models.Movie{IMDBID: "tt1375666", Title: "Inception (winner)"}
	catalog := newFakeCatalog(inceptionMeta())
	svc, _ := newTestMovieService(repo, catalog)

	movie, err := svc.Resolve(context.Background(), "tt1375666")
	require.NoError(t, err)

	assert.Equal(t, "Inception (winner)", movie.Title, "loser must re-read and return the winner's record")
	assert.Equal(t, 1, repo.count())
}

func TestResolve_ConcurrentCallsYieldOneRecord(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	catalog := newFakeCatalog(inceptionMeta())
	svc, _ := newTestMovieService(repo, catalog)

	const workers = 10
	results := make([]*models.Movie, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Resolve(context.Background(), "tt1375666")
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, repo.count(), "exactly one store record may exist")
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "tt1375666", results[i].IMDBID)
		assert.Equal(t, "Inception", results[i].Title)
	}
}

func TestResolve_CancelledCallerStillPersists(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	catalog := newFakeCatalog(inceptionMeta())
	svc, _ := newTestMovieService(repo, catalog)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // caller gave up before the lookup started

	movie, err := svc.Resolve(ctx, "tt1375666")
	require.NoError(t, err, "in-flight resolution must complete despite caller cancellation")
	assert.Equal(t, "Inception", movie.Title)
	assert.Equal(t, 1, repo.count())
}

func TestResolveByTitle_StoreHitIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	require.NoError(t, repo.Create(context.Background(), &models.Movie{
		IMDBID: "tt1375666",
		Title:  "Inception",
	}))
	catalog := newFakeCatalog()
	svc, _ := newTestMovieService(repo, catalog)

	movie, err := svc.ResolveByTitle(context.Background(), "iNCEPTION")
	require.NoError(t, err)
	assert.Equal(t, "Inception", movie.Title)
	assert.Equal(t, 0, catalog.callCount())
}

func TestResolveByTitle_FetchesAndPersists(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	catalog := newFakeCatalog(inceptionMeta())
	svc, movieCache := newTestMovieService(repo, catalog)

	movie, err := svc.ResolveByTitle(context.Background(), "Inception")
	require.NoError(t, err)
	assert.Equal(t, "tt1375666", movie.IMDBID)
	assert.Equal(t, 1, repo.count())

	_, found := movieCache.Get("tt1375666")
	assert.True(t, found, "resolution by title still populates the ID-keyed cache")
}

func TestUpdate_MergePatchKeepsOmittedFields(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	seed := &models.Movie{
		IMDBID:      "tt1375666",
		Title:       "Inception",
		Director:    "Christopher Nolan",
		ReleaseYear: 2010,
		Rating:      8.8,
	}
	require.NoError(t, repo.Create(context.Background(), seed))
	svc, _ := newTestMovieService(repo, newFakeCatalog())

	newRating := 9.0
	movie, err := svc.Update(context.Background(), seed.ID, &models.MoviePatch{Rating: &newRating})
	require.NoError(t, err)

	assert.Equal(t, 9.0, movie.Rating)
	assert.Equal(t, "Inception", movie.Title)
	assert.Equal(t, "Christopher Nolan", movie.Director)
	assert.Equal(t, 2010, movie.ReleaseYear)
}

func TestUpdate_EvictsCacheEntry(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	catalog := newFakeCatalog(inceptionMeta())
	svc, movieCache := newTestMovieService(repo, catalog)

	movie, err := svc.Resolve(context.Background(), "tt1375666")
	require.NoError(t, err)
	_, found := movieCache.Get("tt1375666")
	require.True(t, found)

	title := "Inception (Director's Cut)"
	_, err = svc.Update(context.Background(), movie.ID, &models.MoviePatch{Title: &title})
	require.NoError(t, err)

	_, found = movieCache.Get("tt1375666")
	assert.False(t, found, "update must drop the stale cache entry")
}

func TestUpdate_RejectsInvalidFields(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	seed := &models.Movie{IMDBID: "tt1375666", Title: "Inception"}
	require.NoError(t, repo.Create(context.Background(), seed))
	svc, _ := newTestMovieService(repo, newFakeCatalog())

	badYear := 1700
	_, err := svc.Update(context.Background(), seed.ID, &models.MoviePatch{ReleaseYear: &badYear})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	badRating := 11.0
	_, err = svc.Update(context.Background(), seed.ID, &models.MoviePatch{Rating: &badRating})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdate_MissingMovie(t *testing.T) {
	t.Parallel()

	svc, _ := newTestMovieService(newFakeMovieRepo(), newFakeCatalog())

	title := "Nope"
	_, err := svc.Update(context.Background(), 42, &models.MoviePatch{Title: &title})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDelete_EvictsCacheAndRemovesRecord(t *testing.T) {
	t.Parallel()

	repo := newFakeMovieRepo()
	catalog := newFakeCatalog(inceptionMeta())
	svc, movieCache := newTestMovieService(repo, catalog)

	movie, err := svc.Resolve(context.Background(), "tt1375666")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), movie.ID))
	assert.Equal(t, 0, repo.count())

	_, found := movieCache.Get("tt1375666")
	assert.False(t, found)

	err = svc.Delete(context.Background(), movie.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
