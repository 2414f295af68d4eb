package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// writeMoviePage prints a feed page as a numbered table.
func (r *Runner) writeMoviePage(title string, page models.MoviePage, asJSON bool) error {
	if asJSON {
		return r.writeJSON(page, true)
	}

	r.writePlainHeader(title)
	if len(page.Results) == 0 {
		return r.writePlain("No movies found.\n")
	}

	for i, movie := range page.Results {
		year := movie.Year()
		if year == "" {
			year = "----"
		}
		r.writePlain("%3d. [%d] %s (%s) %.1f/10\n", i+1, movie.ID, movie.Title, year, movie.VoteAverage)
	}

	if page.TotalPages > 1 {
		r.writePlain("\nPage %d of %d (%d movies total)\n", page.Page, page.TotalPages, page.TotalResults)
	}
	return nil
}

// MoviesPopular lists a page of the popular feed.
func (r *Runner) MoviesPopular(ctx context.Context, cmd *cli.Command) error {
	page := r.api.Popular(ctx, cmd.Int("page"))
	return r.writeMoviePage("Popular Movies", page, cmd.Bool("json"))
}

// MoviesSearch searches the catalog by title.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	page := r.api.Search(ctx, query, cmd.Int("page"))

	title := fmt.Sprintf("Search: %q", strings.TrimSpace(query))
	return r.writeMoviePage(title, page, cmd.Bool("json"))
}

// MoviesShow prints the full record for one movie.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")

	detail, err := r.api.Details(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch movie: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(detail, true)
	}

	r.writePlainHeader(detail.Title)
	if detail.Tagline != "" {
		r.writePlain("%s\n\n", detail.Tagline)
	}
	if year := detail.Year(); year != "" {
		r.writePlain("Released: %s\n", detail.ReleaseDate)
	}
	if detail.Runtime > 0 {
		r.writePlain("Runtime: %d min\n", detail.Runtime)
	}
	r.writePlain("Rating: %.1f/10 (%d votes)\n", detail.VoteAverage, detail.VoteCount)

	if len(detail.Genres) > 0 {
		names := make([]string, len(detail.Genres))
		for i, genre := range detail.Genres {
			names[i] = genre.Name
		}
		r.writePlain("Genres: %s\n", strings.Join(names, ", "))
	}

	if detail.Overview != "" {
		r.writePlain("\n%s\n", detail.Overview)
	}
	if detail.PosterPath != "" {
		r.writePlain("\nPoster: %s\n", r.api.ResolveImageURL(detail.PosterPath, ""))
	}
	return nil
}

// MoviesGenres lists the genre catalog, falling back to the local cache when
// the backend is unreachable.
func (r *Runner) MoviesGenres(ctx context.Context, cmd *cli.Command) error {
	genres := r.api.Genres(ctx)

	if len(genres) == 0 && r.cache != nil {
		cached, err := r.cache.Genres()
		if err == nil && len(cached) > 0 {
			r.logger.Info("backend unreachable, serving cached genres")
			genres = cached
		}
	}

	r.writePlainHeader("Genres")
	if len(genres) == 0 {
		return r.writePlain("No genres available.\n")
	}
	for _, genre := range genres {
		r.writePlain("%4d  %s\n", genre.ID, genre.Name)
	}
	return nil
}

// MoviesByGenre lists the feed for one genre.
func (r *Runner) MoviesByGenre(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if id <= 0 {
		return fmt.Errorf("%w: genre id", shared.ErrMissingArgument)
	}

	page := r.api.MoviesByGenre(ctx, id)
	return r.writeMoviePage(fmt.Sprintf("Genre %d", id), page, cmd.Bool("json"))
}

// MoviesRate submits a rating.
func (r *Runner) MoviesRate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	rating := cmd.Int("rating")

	if err := r.api.RateMovie(ctx, id, rating); err != nil {
		return r.authError(err, "rate movie")
	}

	r.sessions.RefreshUser(ctx)
	return r.writePlain("✓ Rated movie %d: %d/10\n", id, rating)
}

// MoviesOpen opens a movie's poster in the system browser.
func (r *Runner) MoviesOpen(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")

	detail, err := r.api.Details(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch movie: %w", err)
	}

	if detail.PosterPath == "" {
		return r.writePlain("Movie %d has no poster.\n", id)
	}

	url := r.api.ResolveImageURL(detail.PosterPath, cmd.String("size"))
	r.logger.Info("opening poster", "url", url)

	if err := shared.OpenBrowser(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return r.writePlain("✓ Opened %s\n", url)
}
