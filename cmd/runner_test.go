package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/mvx/internal/gateway"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/repositories"
	"github.com/desertthunder/mvx/internal/session"
	"github.com/desertthunder/mvx/internal/shared"
	tu "github.com/desertthunder/mvx/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			api := gateway.New(gateway.Options{})

			runner := NewRunner(RunnerOpts{
				Config: config,
				API:    api,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output == nil {
				t.Error("expected default output to be set")
			}
		})

		t.Run("engine requires api and cache", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{API: gateway.New(gateway.Options{})})
			if runner.engine != nil {
				t.Error("expected no engine without a cache store")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 7 {
			t.Errorf("expected 7 top-level commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for _, command := range commands {
			names[command.Name] = true
		}
		for _, want := range []string{"setup", "auth", "movies", "recs", "account", "cache", "browse"} {
			if !names[want] {
				t.Errorf("expected command %q to be registered", want)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("pretty output", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"id": 1}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "\"id\": 1") {
				t.Errorf("expected pretty JSON, got %q", output.String())
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writeJSON(map[string]int{"id": 1}, false); err == nil {
				t.Error("expected write error")
			}
		})

		t.Run("newline write failure", func(t *testing.T) {
			lw := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &lw})
			if err := runner.writeJSON(map[string]int{"id": 1}, false); err == nil {
				t.Error("expected newline write error")
			}
		})
	})

	t.Run("writeMoviePage", func(t *testing.T) {
		page := models.EmptyPage(1)
		page.Results = []models.Movie{
			{ID: 1, Title: "Heat", ReleaseDate: "1995-12-15", VoteAverage: 8.3},
		}
		page.TotalPages = 4
		page.TotalResults = 80

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeMoviePage("Popular", page, false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		rendered := output.String()
		if !strings.Contains(rendered, "Heat (1995) 8.3/10") {
			t.Errorf("expected movie line, got:\n%s", rendered)
		}
		if !strings.Contains(rendered, "Page 1 of 4") {
			t.Errorf("expected pagination footer, got:\n%s", rendered)
		}
	})
}

// newTestRunner wires a runner against a scripted backend and an in-memory store.
func newTestRunner(t *testing.T, handler http.Handler) (*Runner, *bytes.Buffer) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	tokens := repositories.NewTokenRepository(db)
	cache := repositories.NewMovieCacheRepository(db)
	api := gateway.New(gateway.Options{BaseURL: server.URL, Tokens: tokens})
	sessions := session.New(api, tokens, nil)

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		API:      api,
		Sessions: sessions,
		DB:       db,
		Tokens:   tokens,
		Cache:    cache,
		Output:   output,
	})
	return runner, output
}

func TestAuthStatusAction(t *testing.T) {
	runner, output := newTestRunner(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	cmd := authCommand(runner)
	var status func() error
	for _, sub := range cmd.Commands {
		if sub.Name == "status" {
			sub := sub
			status = func() error { return sub.Action(context.Background(), sub) }
		}
	}
	if status == nil {
		t.Fatal("status command not registered")
	}

	if err := status(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(output.String(), "anonymous") {
		t.Errorf("expected anonymous session report, got %q", output.String())
	}

	if err := runner.tokens.Save("tok"); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}
	output.Reset()

	if err := status(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(output.String(), "token stored") {
		t.Errorf("expected stored token report, got %q", output.String())
	}
}

func TestUnauthorizedResponseInvalidatesSession(t *testing.T) {
	runner, _ := newTestRunner(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/me":
			w.Write([]byte(`{"id": 4, "username": "ada"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Could not validate credentials"}`))
		}
	}))

	if err := runner.tokens.Save("stale"); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}
	if snapshot := runner.sessions.Initialize(context.Background()); !snapshot.IsAuthenticated() {
		t.Fatalf("expected authenticated session, got %v", snapshot.State)
	}

	root := &cli.Command{Name: "mvx", Commands: runner.register()}
	err := root.Run(context.Background(), []string{"mvx", "account", "toggle", "12"})
	if !errors.Is(err, shared.ErrTokenExpired) {
		t.Fatalf("expected expired-session error, got %v", err)
	}

	if state := runner.sessions.Snapshot().State; state != session.Anonymous {
		t.Errorf("expected session downgraded to anonymous, got %v", state)
	}

	token, loadErr := runner.tokens.Load()
	if loadErr != nil {
		t.Fatalf("failed to read token store: %v", loadErr)
	}
	if token != "" {
		t.Errorf("expected stale token purged, got %q", token)
	}
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	runner, _ := newTestRunner(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Not authenticated"}`))
	}))

	_, err := runner.api.ToggleWatchlist(context.Background(), 12)
	if wrapped := runner.authError(err, "update watchlist"); !errors.Is(wrapped, shared.ErrNotAuthenticated) {
		t.Errorf("expected not-authenticated error for anonymous caller, got %v", wrapped)
	}
}

func TestAccountWatchlistExport(t *testing.T) {
	runner, output := newTestRunner(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/watch-list" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"watchlist": [{"id": 3, "title": "Arrival", "vote_average": 7.9}]}`))
	}))

	if err := runner.tokens.Save("tok"); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}

	movies, err := runner.api.Watchlist(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("expected one movie, got %d", len(movies))
	}

	runner.writePlainHeader("Watchlist")
	for i, movie := range movies {
		runner.writePlain("%3d. [%d] %s %.1f/10\n", i+1, movie.ID, movie.Title, movie.VoteAverage)
	}

	if !strings.Contains(output.String(), "Arrival") {
		t.Errorf("expected watchlist output, got %q", output.String())
	}
}
