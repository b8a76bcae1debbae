// Package omdb implements the external catalog lookup against the OMDB API.
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"moviehub-backend/internal/apperrors"
	"moviehub-backend/internal/config"

	"github.com/sirupsen/logrus"
)

// Metadata is the raw OMDB payload for a single title. Year and ImdbRating
// come back as strings and may be malformed; parsing them is the caller's job.
type Metadata struct {
	IMDBID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Director   string `json:"Director"`
	Genre      string `json:"Genre"`
	Year       string `json:"Year"`
	ImdbRating string `json:"imdbRating"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	Runtime    string `json:"Runtime"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(cfg config.OMDBConfig, logger *logrus.Logger) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger,
	}
}

// ByID looks up a movie by its IMDB ID. A provider-side "not found" surfaces
// as apperrors.ErrNotFound; transport and HTTP failures wrap
// apperrors.ErrUpstream. No retries happen here.
func (c *Client) ByID(ctx context.Context, imdbID string) (*Metadata, error) {
	return c.lookup(ctx, url.Values{"i": {imdbID}})
}

// ByTitle looks up a movie by exact title.
func (c *Client) ByTitle(ctx context.Context, title string) (*Metadata, error) {
	return c.lookup(ctx, url.Values{"t": {title}})
}

func (c *Client) lookup(ctx context.Context, params url.Values) (*Metadata, error) {
	params.Set("apikey", c.apiKey)
	requestURL := fmt.Sprintf("%s/?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to reach OMDB: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Warn("OMDB returned non-OK status")
		return nil, fmt.Errorf("%w: OMDB returned status %d", apperrors.ErrUpstream, resp.StatusCode)
	}

	var meta Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("%w: failed to decode OMDB response: %v", apperrors.ErrUpstream, err)
	}

	// OMDB reports lookup misses inside a 200 response.
	if meta.Response == "False" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, meta.Error)
	}

	return &meta, nil
}
