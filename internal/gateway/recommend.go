package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/mvx/internal/models"
)

const defaultRecommendationLimit = 8

// Personalized returns recommendations for the authenticated user,
// degrading to an empty page on failure (including when anonymous).
func (c *Client) Personalized(ctx context.Context, limit int) models.MoviePage {
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}
	return c.feed(ctx, fmt.Sprintf("/recommendations/personalized?limit=%d", limit), 1)
}

// Similar returns movies similar to the given one, degrading on failure.
func (c *Client) Similar(ctx context.Context, movieID, limit int) models.MoviePage {
	if movieID <= 0 {
		return models.EmptyPage(1)
	}
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}
	return c.feed(ctx, fmt.Sprintf("/recommendations/similar/%d?limit=%d", movieID, limit), 1)
}

// RecommendationsByGenre returns recommendations within a genre, degrading on failure.
func (c *Client) RecommendationsByGenre(ctx context.Context, genreID, limit int) models.MoviePage {
	if genreID <= 0 {
		return models.EmptyPage(1)
	}
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}
	return c.feed(ctx, fmt.Sprintf("/recommendations/by-genre/%d?limit=%d", genreID, limit), 1)
}

// UpdatePreferences replaces the user's preferred genres.
// This is a state-changing write, so failures propagate.
func (c *Client) UpdatePreferences(ctx context.Context, genreIDs []int) error {
	if genreIDs == nil {
		genreIDs = []int{}
	}

	body := map[string][]int{"genre_ids": genreIDs}
	return c.call(ctx, http.MethodPost, "/recommendations/update-preferences", body, nil)
}
