package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/mvx/internal/models"
)

// Popular returns a page of the popular movie feed, degrading to an empty
// page on failure.
func (c *Client) Popular(ctx context.Context, page int) models.MoviePage {
	if page < 1 {
		page = 1
	}
	return c.feed(ctx, fmt.Sprintf("/movies/popular?page=%d", page), page)
}

// Search returns a page of search results.
//
// An empty or whitespace-only query short-circuits to a neutral empty page
// without making a network call.
func (c *Client) Search(ctx context.Context, query string, page int) models.MoviePage {
	if page < 1 {
		page = 1
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return models.EmptyPage(page)
	}

	path := fmt.Sprintf("/movies/search?query=%s&page=%d", url.QueryEscape(query), page)
	return c.feed(ctx, path, page)
}

// Genres returns the genre catalog, degrading to an empty list on failure.
func (c *Client) Genres(ctx context.Context) []models.Genre {
	var genres []models.Genre
	if err := c.call(ctx, http.MethodGet, "/movies/genres", nil, &genres); err != nil {
		c.logger.Warn("genre catalog read degraded to empty result", "error", err)
		return []models.Genre{}
	}
	return genres
}

// MoviesByGenre returns the movie feed for a genre, degrading on failure.
func (c *Client) MoviesByGenre(ctx context.Context, genreID int) models.MoviePage {
	if genreID <= 0 {
		return models.EmptyPage(1)
	}
	return c.feed(ctx, fmt.Sprintf("/movies/genre/%d", genreID), 1)
}

// Details fetches the full record for a single movie.
//
// Unlike the feed reads, failures propagate: a missing movie is a
// navigational error the caller must surface.
func (c *Client) Details(ctx context.Context, movieID int) (*models.MovieDetail, error) {
	if movieID <= 0 {
		return nil, newError(KindValidation, 0, "movie id is required", nil)
	}

	var detail models.MovieDetail
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/movies/%d", movieID), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// RateMovie submits a rating between 1 and 10 for a movie.
func (c *Client) RateMovie(ctx context.Context, movieID, rating int) error {
	if movieID <= 0 {
		return newError(KindValidation, 0, "movie id is required", nil)
	}
	if rating < 1 || rating > 10 {
		return newError(KindValidation, 0, "rating must be between 1 and 10", nil)
	}

	// The backend takes the rating as a required query parameter, not a body.
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/movies/%d/rate?rating=%d", movieID, rating), nil, nil)
}
