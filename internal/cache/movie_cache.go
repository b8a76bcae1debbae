// Package cache provides the short-lived movie memo that sits in front of the
// store. The store stays authoritative; the cache may be empty at any time.
package cache

import (
	"time"

	"moviehub-backend/internal/models"

	gocache "github.com/patrickmn/go-cache"
)

// MovieCache memoizes resolved movies keyed by IMDB ID with a fixed TTL.
// Expiry is lazy: an expired entry behaves like a miss on Get.
type MovieCache struct {
	entries *gocache.Cache
}

func NewMovieCache(ttl, cleanupInterval time.Duration) *MovieCache {
	return &MovieCache{
		entries: gocache.New(ttl, cleanupInterval),
	}
}

func (c *MovieCache) Get(imdbID string) (*models.Movie, bool) {
	value, found := c.entries.Get(imdbID)
	if !found {
		return nil, false
	}

	movie, ok := value.(*models.Movie)
	if !ok {
		return nil, false
	}
	return movie, true
}

// Set stores the movie under its IMDB ID and refreshes the TTL.
func (c *MovieCache) Set(imdbID string, movie *models.Movie) {
	c.entries.Set(imdbID, movie, gocache.DefaultExpiration)
}

func (c *MovieCache) Delete(imdbID string) {
	c.entries.Delete(imdbID)
}
