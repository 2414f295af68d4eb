package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
	"golang.org/x/time/rate"
)

// Catalog is the slice of the gateway the cache engine reads from.
type Catalog interface {
	Popular(ctx context.Context, page int) models.MoviePage
	Genres(ctx context.Context) []models.Genre
	MoviesByGenre(ctx context.Context, genreID int) models.MoviePage
}

// CacheStore persists warmed feeds.
type CacheStore interface {
	PutMovies(feed string, movies []models.Movie) error
	PutGenres(genres []models.Genre) error
}

// WarmOpts contains configuration for a cache warm run.
type WarmOpts struct {
	Pages         int     // Popular feed pages to cache (default: 3)
	NumWorkers    int     // Concurrent workers (default: 4, max: 8)
	RateLimit     float64 // Requests per second (default: 5)
	IncludeGenres bool    // Also cache the genre catalog and one feed per genre
}

// FeedResult is the outcome of warming a single feed.
type FeedResult struct {
	Feed    string
	Count   int
	Success bool
	Error   error
}

// WarmResult summarizes a cache warm run.
type WarmResult struct {
	TotalFeeds  int
	TotalMovies int
	TotalGenres int
	FailedFeeds int
	Results     []FeedResult
}

// CacheEngine warms the offline movie cache from backend feeds.
type CacheEngine struct {
	catalog Catalog
	store   CacheStore
}

// NewCacheEngine creates a new CacheEngine with the provided catalog and store.
func NewCacheEngine(catalog Catalog, store CacheStore) *CacheEngine {
	return &CacheEngine{catalog: catalog, store: store}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *CacheEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// warmJob fetches one feed's movies.
type warmJob struct {
	feed  string
	fetch func(ctx context.Context) []models.Movie
}

// Warm caches the popular feed, and optionally the genre catalog plus one
// feed per genre, using a rate-limited worker pool.
//
// Feed reads already degrade to empty pages, so a run never aborts on a
// single bad feed; empty fetches are recorded as failures in the result.
func (e *CacheEngine) Warm(ctx context.Context, progress chan<- ProgressUpdate, opts WarmOpts) (*WarmResult, error) {
	if e.catalog == nil || e.store == nil {
		return nil, fmt.Errorf("%w: cache engine not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Pages <= 0 {
		opts.Pages = 3
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	result := &WarmResult{}

	var pending []warmJob
	for page := 1; page <= opts.Pages; page++ {
		p := page
		pending = append(pending, warmJob{
			feed: "popular",
			fetch: func(ctx context.Context) []models.Movie {
				return e.catalog.Popular(ctx, p).Results
			},
		})
	}

	if opts.IncludeGenres {
		e.sendProgress(progress, fetchingGenresUpdate())

		genres := e.catalog.Genres(ctx)
		if len(genres) > 0 {
			if err := e.store.PutGenres(genres); err != nil {
				return nil, fmt.Errorf("failed to cache genre catalog: %w", err)
			}
			result.TotalGenres = len(genres)
		}

		for _, genre := range genres {
			id := genre.ID
			pending = append(pending, warmJob{
				feed: fmt.Sprintf("genre:%d", id),
				fetch: func(ctx context.Context) []models.Movie {
					return e.catalog.MoviesByGenre(ctx, id).Results
				},
			})
		}
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan warmJob, len(pending))
	results := make(chan FeedResult, len(pending))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.warmWorker(ctx, &wg, limiter, jobs, results)
	}

	for _, job := range pending {
		jobs <- job
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		result.TotalFeeds++

		if res.Success {
			result.TotalMovies += res.Count
		} else {
			result.FailedFeeds++
		}

		e.sendProgress(progress, warmingFeedUpdate(completed, len(pending), res.Feed))
	}

	e.sendProgress(progress, warmCompleteUpdate(result.TotalMovies, result.TotalFeeds))
	return result, nil
}

// warmWorker drains the job channel, respecting the shared rate limiter.
func (e *CacheEngine) warmWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan warmJob,
	results chan<- FeedResult,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- FeedResult{Feed: job.feed, Error: fmt.Errorf("canceled: %w", err)}
			continue
		}

		movies := job.fetch(ctx)
		if len(movies) == 0 {
			results <- FeedResult{Feed: job.feed, Error: fmt.Errorf("%w: feed returned no movies", shared.ErrAPIRequest)}
			continue
		}

		if err := e.store.PutMovies(job.feed, movies); err != nil {
			results <- FeedResult{Feed: job.feed, Error: fmt.Errorf("failed to cache feed: %w", err)}
			continue
		}

		results <- FeedResult{Feed: job.feed, Count: len(movies), Success: true}
	}
}
