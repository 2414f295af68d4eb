package gateway

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/desertthunder/mvx/internal/models"
)

// ToggleWatchlist flips a movie's membership in the user's watchlist.
// Requires an authenticated session; a backend 401/403 surfaces as unauthorized.
func (c *Client) ToggleWatchlist(ctx context.Context, movieID int) (*models.WatchlistStatus, error) {
	if movieID <= 0 {
		return nil, newError(KindValidation, 0, "movie id is required", nil)
	}

	body := map[string]int{"movie_id": movieID}

	var status models.WatchlistStatus
	if err := c.call(ctx, http.MethodPost, "/users/watch-list/toggle", body, &status); err != nil {
		return nil, err
	}
	if status.MovieID == 0 {
		status.MovieID = movieID
	}
	return &status, nil
}

// Watchlist fetches the user's watchlist.
// The backend wraps the list in a {"watchlist": [...]} envelope.
func (c *Client) Watchlist(ctx context.Context) ([]models.Movie, error) {
	var envelope struct {
		Watchlist []models.Movie `json:"watchlist"`
	}
	if err := c.call(ctx, http.MethodGet, "/users/watch-list", nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Watchlist == nil {
		return []models.Movie{}, nil
	}
	return envelope.Watchlist, nil
}

// ProfileUpdate carries the mutable profile fields.
// Zero-valued fields are omitted from the request.
type ProfileUpdate struct {
	Username   string `json:"username,omitempty"`
	Email      string `json:"email,omitempty"`
	AvatarPath string `json:"avatar_path,omitempty"`
}

// UpdateProfile modifies the authenticated user's profile with a JSON body.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error) {
	if update == (ProfileUpdate{}) {
		return nil, newError(KindValidation, 0, "no profile fields to update", nil)
	}

	var user models.User
	if err := c.call(ctx, http.MethodPut, "/users/profile", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UploadAvatar uploads a profile picture as multipart form data.
// Content-type negotiation is delegated to the multipart encoder so the
// boundary is set correctly.
func (c *Client) UploadAvatar(ctx context.Context, filename string, file io.Reader) (*models.User, error) {
	if filename == "" || file == nil {
		return nil, newError(KindValidation, 0, "avatar file is required", nil)
	}

	body, err := newMultipartBody(nil, "avatar", filename, file)
	if err != nil {
		return nil, newError(KindValidation, 0, "failed to encode avatar upload", err)
	}

	var user models.User
	if err := c.call(ctx, http.MethodPost, "/users/avatar", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChooseAvatar selects one of the stock avatars via a multipart profile update.
func (c *Client) ChooseAvatar(ctx context.Context, avatarPath string) (*models.User, error) {
	if avatarPath == "" {
		return nil, newError(KindValidation, 0, "avatar path is required", nil)
	}

	body, err := newMultipartBody(map[string]string{"avatar_path": avatarPath}, "", "", nil)
	if err != nil {
		return nil, newError(KindValidation, 0, "failed to encode avatar selection", err)
	}

	var user models.User
	if err := c.call(ctx, http.MethodPut, "/users/profile", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Avatars lists the stock avatars offered by the backend.
func (c *Client) Avatars(ctx context.Context) ([]models.Avatar, error) {
	var avatars []models.Avatar
	if err := c.call(ctx, http.MethodGet, "/users/avatars", nil, &avatars); err != nil {
		return nil, err
	}
	return avatars, nil
}

// WatchHistoryPage fetches a page of the user's watch history.
func (c *Client) WatchHistoryPage(ctx context.Context, page int) (models.MoviePage, error) {
	if page < 1 {
		page = 1
	}

	var raw struct {
		History []models.Movie `json:"history"`
	}
	if err := c.call(ctx, http.MethodGet, "/users/watch-history?page="+strconv.Itoa(page), nil, &raw); err != nil {
		return models.EmptyPage(page), err
	}

	result := models.EmptyPage(page)
	if raw.History != nil {
		result.Results = raw.History
	}
	result.TotalResults = len(raw.History)
	if len(raw.History) > 0 {
		result.TotalPages = 1
	}
	return result, nil
}
