package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestCatalog(t *testing.T) {
	t.Run("Popular", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/movies/popular" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("page") != "2" {
				t.Errorf("expected page=2, got %s", r.URL.Query().Get("page"))
			}
			w.Write([]byte(`{"page": 2, "results": [{"id": 1, "title": "Dune"}], "total_pages": 5, "total_results": 100}`))
		}))
		defer server.Close()

		client := New(Options{BaseURL: server.URL})
		page := client.Popular(context.Background(), 2)

		if len(page.Results) != 1 || page.Results[0].Title != "Dune" {
			t.Errorf("unexpected results: %+v", page.Results)
		}
	})

	t.Run("Popular Clamps Page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") != "1" {
				t.Errorf("expected page clamped to 1, got %s", r.URL.Query().Get("page"))
			}
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := New(Options{BaseURL: server.URL})
		client.Popular(context.Background(), -3)
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("Blank Query Skips Network", func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Write([]byte(`[]`))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL})
			page := client.Search(context.Background(), "   ", 1)

			if calls.Load() != 0 {
				t.Error("expected no network call for blank query")
			}
			if len(page.Results) != 0 || page.Page != 1 {
				t.Errorf("expected neutral empty page, got %+v", page)
			}
		})

		t.Run("Escapes Query", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("query") != "blade runner" {
					t.Errorf("unexpected query %q", r.URL.Query().Get("query"))
				}
				w.Write([]byte(`[{"id": 2, "title": "Blade Runner"}]`))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL})
			page := client.Search(context.Background(), "blade runner", 1)

			if len(page.Results) != 1 {
				t.Errorf("expected one result, got %+v", page.Results)
			}
		})
	})

	t.Run("Genres", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"id": 28, "name": "Action"}, {"id": 18, "name": "Drama"}]`))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL})
			genres := client.Genres(context.Background())

			if len(genres) != 2 || genres[0].Name != "Action" {
				t.Errorf("unexpected genres: %+v", genres)
			}
		})

		t.Run("Degrades To Empty", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL})
			genres := client.Genres(context.Background())

			if genres == nil || len(genres) != 0 {
				t.Errorf("expected empty non-nil slice, got %+v", genres)
			}
		})
	})

	t.Run("Details", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/movies/42" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Write([]byte(`{"id": 42, "title": "Whiplash", "runtime": 106, "genres": [{"id": 18, "name": "Drama"}]}`))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL})
			detail, err := client.Details(context.Background(), 42)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if detail.Runtime != 106 || len(detail.Genres) != 1 {
				t.Errorf("unexpected detail: %+v", detail)
			}
		})

		t.Run("Not Found Propagates", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"detail": "Movie not found"}`))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL})
			_, err := client.Details(context.Background(), 9999)
			if err == nil {
				t.Fatal("expected error for missing movie")
			}
			if kind, ok := KindOf(err); !ok || kind != KindHTTP {
				t.Errorf("expected http kind, got %v", err)
			}
		})

		t.Run("Invalid ID", func(t *testing.T) {
			client := New(Options{})
			if _, err := client.Details(context.Background(), 0); !IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	})

	t.Run("RateMovie", func(t *testing.T) {
		t.Run("Bounds", func(t *testing.T) {
			client := New(Options{})
			if err := client.RateMovie(context.Background(), 1, 0); !IsValidation(err) {
				t.Errorf("expected validation error for rating 0, got %v", err)
			}
			if err := client.RateMovie(context.Background(), 1, 11); !IsValidation(err) {
				t.Errorf("expected validation error for rating 11, got %v", err)
			}
		})

		t.Run("Submits Rating As Query Parameter", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/movies/7/rate" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if r.URL.Query().Get("rating") != "9" {
					t.Errorf("expected rating=9 query parameter, got %q", r.URL.Query().Get("rating"))
				}
				if r.ContentLength > 0 {
					t.Errorf("expected empty body, got %d bytes", r.ContentLength)
				}
				w.Write([]byte(`{"message": "Rating saved"}`))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL, Tokens: StaticToken("tok")})
			if err := client.RateMovie(context.Background(), 7, 9); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Requires Auth", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail": "Not authenticated"}`))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL})
			if err := client.RateMovie(context.Background(), 7, 9); !IsUnauthorized(err) {
				t.Errorf("expected unauthorized error, got %v", err)
			}
		})
	})
}
