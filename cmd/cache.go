package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mvx/internal/shared"
	"github.com/desertthunder/mvx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CacheWarm fetches feeds into the local cache with live progress output.
func (r *Runner) CacheWarm(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: cache engine not initialized", shared.ErrServiceUnavailable)
	}

	opts := tasks.WarmOpts{
		Pages:         cmd.Int("pages"),
		NumWorkers:    cmd.Int("workers"),
		RateLimit:     cmd.Float("rate"),
		IncludeGenres: cmd.Bool("genres"),
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	result, err := r.engine.Warm(ctx, progress, opts)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("cache warm failed: %w", err)
	}

	r.writePlain("✓ Cached %d movies across %d feeds\n", result.TotalMovies, result.TotalFeeds)
	if result.TotalGenres > 0 {
		r.writePlain("  Genres: %d\n", result.TotalGenres)
	}
	if result.FailedFeeds > 0 {
		r.writePlain("  Failed feeds: %d\n", result.FailedFeeds)
		for _, feed := range result.Results {
			if !feed.Success {
				r.writePlain("    %s: %v\n", feed.Feed, feed.Error)
			}
		}
	}
	return nil
}

// CacheList shows cached feeds, or one feed's movies when named.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	feed := cmd.StringArg("feed")

	if feed == "" {
		feeds, err := r.cache.Feeds()
		if err != nil {
			return fmt.Errorf("failed to list cached feeds: %w", err)
		}

		r.writePlainHeader("Cached Feeds")
		if len(feeds) == 0 {
			return r.writePlain("Cache is empty. Run 'mvx cache warm' first.\n")
		}
		for _, name := range feeds {
			r.writePlain("  %s\n", name)
		}
		return nil
	}

	movies, err := r.cache.List(feed)
	if err != nil {
		return fmt.Errorf("failed to read cached feed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, true)
	}

	r.writePlainHeader(fmt.Sprintf("Cached: %s", feed))
	if len(movies) == 0 {
		return r.writePlain("No movies cached under %q.\n", feed)
	}
	for i, movie := range movies {
		r.writePlain("%3d. [%d] %s %.1f/10\n", i+1, movie.ID, movie.Title, movie.VoteAverage)
	}
	return nil
}

// CacheClear drops the entire cache.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return r.writePlain("✓ Cache cleared\n")
}
