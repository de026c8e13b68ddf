package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"faniverz-sync/internal/config"
)

// APIError is returned for any non-2xx TMDB response. The caller decides
// whether to retry or skip the item.
type APIError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("TMDB API returned status %d for %s: %s", e.StatusCode, e.Path, e.Body)
}

// Client is a typed read-only client for the TMDB API. It never touches the
// data store or the object store.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	pageDelay    time.Duration
	httpClient   *http.Client
}

func NewClient(cfg config.TMDBConfig) *Client {
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		imageBaseURL: cfg.ImageBaseURL,
		language:     cfg.Language,
		pageDelay:    cfg.PageDelay,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}
}

// DiscoverByYear returns every movie in the configured original language
// released in the given year, sorted by the API's ascending release-date
// order. Pagination is transparent: pages are fetched until total_pages is
// exhausted, with a polite delay between page fetches.
func (c *Client) DiscoverByYear(ctx context.Context, year int) ([]DiscoverResult, error) {
	var all []DiscoverResult

	page := 1
	totalPages := 1
	for page <= totalPages {
		path := fmt.Sprintf("/discover/movie?with_original_language=%s&primary_release_year=%d&sort_by=primary_release_date.asc&page=%d",
			url.QueryEscape(c.language), year, page)

		var resp DiscoverResponse
		if err := c.get(ctx, path, &resp); err != nil {
			return nil, err
		}

		all = append(all, resp.Results...)
		totalPages = resp.TotalPages

		page++
		if page <= totalPages {
			time.Sleep(c.pageDelay)
		}
	}

	return all, nil
}

// GetMovieDetail fetches full movie detail with credits and videos appended
// in a single request.
func (c *Client) GetMovieDetail(ctx context.Context, tmdbID int) (*MovieDetail, error) {
	var detail MovieDetail
	path := fmt.Sprintf("/movie/%d?append_to_response=credits,videos", tmdbID)
	if err := c.get(ctx, path, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetPersonDetail fetches a person record. Used by the birth-date backfill,
// not by the seed loop.
func (c *Client) GetPersonDetail(ctx context.Context, tmdbPersonID int) (*PersonDetail, error) {
	var detail PersonDetail
	path := fmt.Sprintf("/person/%d", tmdbPersonID)
	if err := c.get(ctx, path, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExtractTrailerURL returns the watch URL of the first YouTube-hosted
// trailer in the video list, or empty when there is none.
func ExtractTrailerURL(videos []Video) string {
	for _, v := range videos {
		if v.Type == "Trailer" && v.Site == "YouTube" {
			return "https://www.youtube.com/watch?v=" + v.Key
		}
	}
	return ""
}

func (c *Client) PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + "/w500" + path
}

func (c *Client) BackdropURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + "/w1280" + path
}

func (c *Client) ProfileURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + "/w185" + path
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	sep := "?"
	for _, r := range path {
		if r == '?' {
			sep = "&"
			break
		}
	}
	reqURL := fmt.Sprintf("%s%s%sapi_key=%s", c.baseURL, path, sep, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch from TMDB: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode TMDB response: %w", err)
	}
	return nil
}
