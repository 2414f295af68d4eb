package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/mvx/internal/shared"
	itesting "github.com/desertthunder/mvx/internal/testing"
)

func TestClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			client := New(Options{})
			if client.baseURL != defaultBaseURL {
				t.Errorf("expected default base URL, got %s", client.baseURL)
			}
			if client.httpClient == nil || client.httpClient.Timeout != defaultTimeout {
				t.Error("expected default http client with a timeout")
			}
			if client.limiter != nil {
				t.Error("expected throttling disabled by default")
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			client := New(Options{BaseURL: "http://api.example.com/"})
			if client.baseURL != "http://api.example.com" {
				t.Errorf("expected trimmed base URL, got %s", client.baseURL)
			}
		})

		t.Run("Rate Limit Enabled", func(t *testing.T) {
			client := New(Options{RateLimit: 5})
			if client.limiter == nil {
				t.Error("expected limiter to be configured")
			}
		})
	})

	t.Run("Call", func(t *testing.T) {
		t.Run("Attaches Bearer Token", func(t *testing.T) {
			var gotAuth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL, Tokens: StaticToken("abc123")})
			if err := client.call(context.Background(), http.MethodGet, "/ping", nil, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if gotAuth != "Bearer abc123" {
				t.Errorf("expected bearer header, got %q", gotAuth)
			}
		})

		t.Run("No Token No Header", func(t *testing.T) {
			var gotAuth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL, Tokens: StaticToken("")})
			if err := client.call(context.Background(), http.MethodGet, "/ping", nil, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if gotAuth != "" {
				t.Errorf("expected no authorization header, got %q", gotAuth)
			}
		})

		t.Run("JSON Body Content Type", func(t *testing.T) {
			var gotContentType string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotContentType = r.Header.Get("Content-Type")
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL})
			body := map[string]int{"movie_id": 42}
			if err := client.call(context.Background(), http.MethodPost, "/x", body, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if gotContentType != "application/json" {
				t.Errorf("expected json content type, got %q", gotContentType)
			}
		})

		t.Run("Network Failure", func(t *testing.T) {
			httpClient := &http.Client{
				Transport: itesting.NewMockRoundTripper(nil, errors.New("connection refused")),
			}
			client := New(Options{BaseURL: "http://unreachable.invalid", HTTPClient: httpClient})

			err := client.call(context.Background(), http.MethodGet, "/x", nil, nil)
			if kind, ok := KindOf(err); !ok || kind != KindNetwork {
				t.Errorf("expected network kind, got %v", err)
			}
		})

		t.Run("Read Failure", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &itesting.FCloser{}}
			httpClient := &http.Client{Transport: itesting.NewMockRoundTripper(resp, nil)}
			client := New(Options{BaseURL: "http://api.invalid", HTTPClient: httpClient})

			err := client.call(context.Background(), http.MethodGet, "/x", nil, nil)
			if kind, ok := KindOf(err); !ok || kind != KindNetwork {
				t.Errorf("expected network kind, got %v", err)
			}
		})

		t.Run("Unauthorized Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail": "Not authenticated"}`))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL})
			err := client.call(context.Background(), http.MethodGet, "/x", nil, nil)

			if !IsUnauthorized(err) {
				t.Errorf("expected unauthorized error, got %v", err)
			}

			var gerr *Error
			if !errors.As(err, &gerr) {
				t.Fatal("expected a gateway error")
			}
			if gerr.Message != "Not authenticated" {
				t.Errorf("expected detail message, got %q", gerr.Message)
			}
		})

		t.Run("Decode Failure", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL})
			var out map[string]any
			err := client.call(context.Background(), http.MethodGet, "/x", nil, &out)

			if kind, ok := KindOf(err); !ok || kind != KindDecode {
				t.Errorf("expected decode kind, got %v", err)
			}
		})

		t.Run("Timeout Surfaces As Network", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(300 * time.Millisecond)
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			httpClient := &http.Client{Timeout: 20 * time.Millisecond}
			client := New(Options{BaseURL: server.URL, HTTPClient: httpClient})

			err := client.call(context.Background(), http.MethodGet, "/x", nil, nil)
			if kind, ok := KindOf(err); !ok || kind != KindNetwork {
				t.Fatalf("expected network kind, got %v", err)
			}
			if !errors.Is(err, shared.ErrTimeout) {
				t.Errorf("expected timeout sentinel in chain, got %v", err)
			}
		})

		t.Run("Canceled While Throttled", func(t *testing.T) {
			client := New(Options{BaseURL: "http://api.invalid", RateLimit: 0.001})
			client.limiter.Allow()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := client.call(ctx, http.MethodGet, "/x", nil, nil)
			if kind, ok := KindOf(err); !ok || kind != KindNetwork {
				t.Errorf("expected network kind, got %v", err)
			}
		})
	})

	t.Run("DecodePage", func(t *testing.T) {
		t.Run("Bare Array", func(t *testing.T) {
			page, err := decodePage([]byte(`[{"id": 1, "title": "Heat"}]`), 3)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if page.Page != 3 {
				t.Errorf("expected page 3, got %d", page.Page)
			}
			if len(page.Results) != 1 || page.Results[0].Title != "Heat" {
				t.Errorf("unexpected results: %+v", page.Results)
			}
			if page.TotalResults != 1 {
				t.Errorf("expected 1 total result, got %d", page.TotalResults)
			}
		})

		t.Run("Page Object", func(t *testing.T) {
			raw := `{"page": 2, "results": [{"id": 7, "title": "Alien"}], "total_pages": 10, "total_results": 200}`
			page, err := decodePage([]byte(raw), 2)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if page.TotalPages != 10 || page.TotalResults != 200 {
				t.Errorf("unexpected totals: %+v", page)
			}
		})

		t.Run("Empty Body", func(t *testing.T) {
			page, err := decodePage(nil, 1)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(page.Results) != 0 {
				t.Errorf("expected empty results, got %+v", page.Results)
			}
		})

		t.Run("Page Object Without Page Number", func(t *testing.T) {
			page, err := decodePage([]byte(`{"results": []}`), 4)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if page.Page != 4 {
				t.Errorf("expected fallback page 4, got %d", page.Page)
			}
			if page.Results == nil {
				t.Error("expected non-nil results slice")
			}
		})

		t.Run("Malformed Array", func(t *testing.T) {
			if _, err := decodePage([]byte(`[{"id": "oops"`), 1); err == nil {
				t.Error("expected error for malformed array")
			}
		})
	})

	t.Run("Feed Degrades", func(t *testing.T) {
		t.Run("On Server Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL})
			page := client.feed(context.Background(), "/movies/popular", 2)

			if page.Page != 2 {
				t.Errorf("expected requested page number preserved, got %d", page.Page)
			}
			if len(page.Results) != 0 {
				t.Errorf("expected empty results, got %+v", page.Results)
			}
		})

		t.Run("On Malformed Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"results": "not a list"}`))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL})
			page := client.feed(context.Background(), "/movies/popular", 1)

			if len(page.Results) != 0 {
				t.Errorf("expected empty results, got %+v", page.Results)
			}
		})
	})
}

func TestMultipartBody(t *testing.T) {
	t.Run("Fields And File", func(t *testing.T) {
		body, err := newMultipartBody(map[string]string{"avatar_path": "a.png"}, "avatar", "pic.png", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if body.contentType == "" {
			t.Error("expected boundary-bearing content type")
		}
		if body.buf.Len() == 0 {
			t.Error("expected encoded payload")
		}
	})
}
