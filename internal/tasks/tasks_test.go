package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/desertthunder/mvx/internal/models"
)

// fakeCatalog serves scripted feeds.
type fakeCatalog struct {
	mu          sync.Mutex
	popular     map[int][]models.Movie
	genres      []models.Genre
	genreMovies map[int][]models.Movie
	calls       int
}

func (f *fakeCatalog) Popular(ctx context.Context, page int) models.MoviePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	page2 := models.EmptyPage(page)
	page2.Results = f.popular[page]
	return page2
}

func (f *fakeCatalog) Genres(ctx context.Context) []models.Genre {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.genres
}

func (f *fakeCatalog) MoviesByGenre(ctx context.Context, genreID int) models.MoviePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	page := models.EmptyPage(1)
	page.Results = f.genreMovies[genreID]
	return page
}

// fakeCacheStore records what was cached.
type fakeCacheStore struct {
	mu      sync.Mutex
	feeds   map[string][]models.Movie
	genres  []models.Genre
	failOn  string
	putErrs int
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{feeds: map[string][]models.Movie{}}
}

func (f *fakeCacheStore) PutMovies(feed string, movies []models.Movie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if feed == f.failOn && f.failOn != "" {
		f.putErrs++
		return errors.New("disk full")
	}
	f.feeds[feed] = movies
	return nil
}

func (f *fakeCacheStore) PutGenres(genres []models.Genre) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.genres = genres
	return nil
}

func movieBatch(start, n int) []models.Movie {
	movies := make([]models.Movie, n)
	for i := range movies {
		movies[i] = models.Movie{ID: start + i, Title: fmt.Sprintf("Movie %d", start+i)}
	}
	return movies
}

func TestCacheEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("Warms Popular Pages", func(t *testing.T) {
		catalog := &fakeCatalog{popular: map[int][]models.Movie{
			1: movieBatch(1, 20),
			2: movieBatch(21, 20),
			3: movieBatch(41, 10),
		}}
		store := newFakeCacheStore()
		engine := NewCacheEngine(catalog, store)

		result, err := engine.Warm(ctx, nil, WarmOpts{Pages: 3, RateLimit: 1000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.TotalFeeds != 3 {
			t.Errorf("expected 3 feeds, got %d", result.TotalFeeds)
		}
		if result.TotalMovies != 50 {
			t.Errorf("expected 50 movies, got %d", result.TotalMovies)
		}
		if result.FailedFeeds != 0 {
			t.Errorf("expected no failures, got %d", result.FailedFeeds)
		}
		if len(store.feeds["popular"]) == 0 {
			t.Error("expected popular feed cached")
		}
	})

	t.Run("Includes Genres", func(t *testing.T) {
		catalog := &fakeCatalog{
			popular: map[int][]models.Movie{1: movieBatch(1, 5)},
			genres:  []models.Genre{{ID: 28, Name: "Action"}, {ID: 18, Name: "Drama"}},
			genreMovies: map[int][]models.Movie{
				28: movieBatch(100, 4),
				18: movieBatch(200, 6),
			},
		}
		store := newFakeCacheStore()
		engine := NewCacheEngine(catalog, store)

		result, err := engine.Warm(ctx, nil, WarmOpts{Pages: 1, RateLimit: 1000, IncludeGenres: true})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.TotalGenres != 2 {
			t.Errorf("expected 2 genres cached, got %d", result.TotalGenres)
		}
		if result.TotalFeeds != 3 {
			t.Errorf("expected 3 feeds (popular + 2 genres), got %d", result.TotalFeeds)
		}
		if len(store.feeds["genre:28"]) != 4 || len(store.feeds["genre:18"]) != 6 {
			t.Errorf("expected genre feeds cached, got %v", store.feeds)
		}
		if len(store.genres) != 2 {
			t.Errorf("expected genre catalog cached, got %v", store.genres)
		}
	})

	t.Run("Empty Feed Recorded As Failure", func(t *testing.T) {
		catalog := &fakeCatalog{popular: map[int][]models.Movie{1: movieBatch(1, 5)}}
		store := newFakeCacheStore()
		engine := NewCacheEngine(catalog, store)

		result, err := engine.Warm(ctx, nil, WarmOpts{Pages: 2, RateLimit: 1000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.FailedFeeds != 1 {
			t.Errorf("expected 1 failed feed (empty page 2), got %d", result.FailedFeeds)
		}
		if result.TotalMovies != 5 {
			t.Errorf("expected 5 movies, got %d", result.TotalMovies)
		}
	})

	t.Run("Store Failure Recorded", func(t *testing.T) {
		catalog := &fakeCatalog{popular: map[int][]models.Movie{1: movieBatch(1, 5)}}
		store := newFakeCacheStore()
		store.failOn = "popular"
		engine := NewCacheEngine(catalog, store)

		result, err := engine.Warm(ctx, nil, WarmOpts{Pages: 1, RateLimit: 1000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.FailedFeeds != 1 {
			t.Errorf("expected 1 failed feed, got %d", result.FailedFeeds)
		}
		if result.Results[0].Success {
			t.Errorf("expected failure recorded, got %+v", result.Results[0])
		}
	})

	t.Run("Reports Progress", func(t *testing.T) {
		catalog := &fakeCatalog{popular: map[int][]models.Movie{
			1: movieBatch(1, 5),
			2: movieBatch(6, 5),
		}}
		engine := NewCacheEngine(catalog, newFakeCacheStore())

		progress := make(chan ProgressUpdate, 16)
		if _, err := engine.Warm(ctx, progress, WarmOpts{Pages: 2, RateLimit: 1000}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		var phases []Phase
		for update := range progress {
			phases = append(phases, update.Phase)
		}

		if len(phases) == 0 {
			t.Fatal("expected progress updates")
		}
		if phases[len(phases)-1] != WarmComplete {
			t.Errorf("expected final update to be completion, got %v", phases[len(phases)-1])
		}
	})

	t.Run("Nil Progress Channel", func(t *testing.T) {
		catalog := &fakeCatalog{popular: map[int][]models.Movie{1: movieBatch(1, 5)}}
		engine := NewCacheEngine(catalog, newFakeCacheStore())

		if _, err := engine.Warm(ctx, nil, WarmOpts{Pages: 1, RateLimit: 1000}); err != nil {
			t.Fatalf("expected no error with nil progress, got %v", err)
		}
	})

	t.Run("Uninitialized Engine", func(t *testing.T) {
		engine := NewCacheEngine(nil, nil)
		if _, err := engine.Warm(ctx, nil, WarmOpts{}); err == nil {
			t.Error("expected error for uninitialized engine")
		}
	})

	t.Run("Canceled Context", func(t *testing.T) {
		catalog := &fakeCatalog{popular: map[int][]models.Movie{1: movieBatch(1, 5)}}
		engine := NewCacheEngine(catalog, newFakeCacheStore())

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		result, err := engine.Warm(canceled, nil, WarmOpts{Pages: 1, RateLimit: 0.001})
		if err != nil {
			t.Fatalf("expected run to complete with recorded failures, got %v", err)
		}
		if result.FailedFeeds != 1 {
			t.Errorf("expected canceled feed recorded as failure, got %+v", result)
		}
	})
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		FetchGenres:  "fetch_genres",
		WarmFeed:     "warm_feed",
		WarmComplete: "warm_complete",
		Phase(99):    "",
	}
	for phase, want := range cases {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
