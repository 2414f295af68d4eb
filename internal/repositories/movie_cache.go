package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
)

// MovieCacheRepository persists movie feeds for offline browsing.
//
// Rows are keyed by (feed, movie_id), so re-warming a feed replaces its
// previous snapshot row by row instead of duplicating it. The full movie
// record rides along as a JSON payload; the scalar columns exist for
// listing and sorting without decoding.
type MovieCacheRepository struct {
	db *sql.DB
}

// NewMovieCacheRepository creates a new MovieCacheRepository with the given database connection
func NewMovieCacheRepository(db *sql.DB) *MovieCacheRepository {
	return &MovieCacheRepository{db: db}
}

// PutMovies stores a batch of movies under a feed label inside one transaction.
func (r *MovieCacheRepository) PutMovies(feed string, movies []models.Movie) error {
	if feed == "" {
		return fmt.Errorf("feed label is required: %w", shared.ErrInvalidArgument)
	}
	if len(movies) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO cached_movies (id, feed, movie_id, title, poster_path, release_date, vote_average, payload, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (feed, movie_id) DO UPDATE SET
			title = excluded.title,
			poster_path = excluded.poster_path,
			release_date = excluded.release_date,
			vote_average = excluded.vote_average,
			payload = excluded.payload,
			cached_at = CURRENT_TIMESTAMP
	`

	for _, movie := range movies {
		payload, err := json.Marshal(movie)
		if err != nil {
			return fmt.Errorf("failed to encode movie %d: %w", movie.ID, err)
		}

		_, err = tx.Exec(query,
			shared.GenerateID(),
			feed,
			movie.ID,
			movie.Title,
			movie.PosterPath,
			movie.ReleaseDate,
			movie.VoteAverage,
			string(payload),
		)
		if err != nil {
			return fmt.Errorf("failed to cache movie %d: %w", movie.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit movie cache: %w", err)
	}
	return nil
}

// List returns the cached movies for a feed, best rated first.
func (r *MovieCacheRepository) List(feed string) ([]models.Movie, error) {
	rows, err := r.db.Query(
		"SELECT payload FROM cached_movies WHERE feed = ? ORDER BY vote_average DESC, movie_id ASC",
		feed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached movies: %w", err)
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan cached movie: %w", err)
		}

		var movie models.Movie
		if err := json.Unmarshal([]byte(payload), &movie); err != nil {
			return nil, fmt.Errorf("failed to decode cached movie: %w", err)
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cached movies: %w", err)
	}
	return movies, nil
}

// Feeds returns the distinct feed labels present in the cache.
func (r *MovieCacheRepository) Feeds() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT feed FROM cached_movies ORDER BY feed")
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer rows.Close()

	feeds := []string{}
	for rows.Next() {
		var feed string
		if err := rows.Scan(&feed); err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		feeds = append(feeds, feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feeds: %w", err)
	}
	return feeds, nil
}

// Clear drops every cached movie and genre.
func (r *MovieCacheRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM cached_movies"); err != nil {
		return fmt.Errorf("failed to clear movie cache: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM cached_genres"); err != nil {
		return fmt.Errorf("failed to clear genre cache: %w", err)
	}
	return nil
}

// PutGenres replaces the cached genre catalog.
func (r *MovieCacheRepository) PutGenres(genres []models.Genre) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cached_genres"); err != nil {
		return fmt.Errorf("failed to clear genre cache: %w", err)
	}

	for _, genre := range genres {
		_, err := tx.Exec(
			"INSERT INTO cached_genres (id, name, cached_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
			genre.ID, genre.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to cache genre %d: %w", genre.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit genre cache: %w", err)
	}
	return nil
}

// Genres returns the cached genre catalog.
func (r *MovieCacheRepository) Genres() ([]models.Genre, error) {
	rows, err := r.db.Query("SELECT id, name FROM cached_genres ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list cached genres: %w", err)
	}
	defer rows.Close()

	genres := []models.Genre{}
	for rows.Next() {
		var genre models.Genre
		if err := rows.Scan(&genre.ID, &genre.Name); err != nil {
			return nil, fmt.Errorf("failed to scan cached genre: %w", err)
		}
		genres = append(genres, genre)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cached genres: %w", err)
	}
	return genres, nil
}
