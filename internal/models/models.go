// package models defines the data model for the movie catalog client
package models

import (
	"fmt"
	"strings"
	"time"
)

// Genre is immutable reference data sourced from the backend catalog.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is the lightweight shape returned in list responses (feeds, search results, watchlists).
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
}

// Year returns the release year, or an empty string when the release date is absent.
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// MovieDetail is the full shape returned for a single movie lookup.
type MovieDetail struct {
	Movie
	Genres  []Genre `json:"genres,omitempty"`
	Runtime int     `json:"runtime,omitempty"`
	Tagline string  `json:"tagline,omitempty"`
}

// MoviePage is a normalized page of movie results.
//
// The backend returns either a bare JSON array or a TMDb-style page object; the gateway folds both into this shape.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// EmptyPage returns a neutral result for degraded feed reads.
func EmptyPage(page int) MoviePage {
	if page < 1 {
		page = 1
	}
	return MoviePage{Page: page, Results: []Movie{}}
}

// User is the session's snapshot of the authenticated account.
//
// Owned by the session coordinator; consumers read copies and never mutate it directly.
type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	AvatarPath   string     `json:"avatar_path,omitempty"`
	Preferences  []Genre    `json:"preferences,omitempty"`
	RatedMovies  []Movie    `json:"rated_movies,omitempty"`
	WatchHistory []Movie    `json:"watch_history,omitempty"`
	Watchlist    []Movie    `json:"watchlist,omitempty"`
}

// InWatchlist reports whether the given movie ID is in the user's watchlist snapshot.
func (u *User) InWatchlist(movieID int) bool {
	if u == nil {
		return false
	}
	for _, m := range u.Watchlist {
		if m.ID == movieID {
			return true
		}
	}
	return false
}

// Validate checks that the user snapshot carries the fields the client relies on.
func (u *User) Validate() error {
	if u.ID == 0 {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}

// Avatar is a selectable profile picture offered by the backend.
type Avatar struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// WatchlistStatus is the backend's response to a watchlist toggle.
type WatchlistStatus struct {
	MovieID     int  `json:"movie_id"`
	InWatchlist bool `json:"in_watchlist"`
}
