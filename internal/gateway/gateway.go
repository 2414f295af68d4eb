// Request gateway for the movie catalog backend.
//
// Every page-level command talks to the backend through [Client]; nothing else
// in the application issues HTTP calls directly.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 30 * time.Second
)

// TokenSource exposes the currently held bearer token.
//
// The gateway reads the token at call time and never stores or mutates it;
// the session layer owns the token's lifecycle.
type TokenSource interface {
	Token() (string, bool)
}

// StaticToken is a fixed TokenSource, mainly useful in tests and one-off scripts.
type StaticToken string

func (s StaticToken) Token() (string, bool) {
	return string(s), s != ""
}

// Client is the single chokepoint for all backend I/O.
//
// It is stateless apart from reading the current token through its
// [TokenSource] when building a request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       *oauth2.Config
	tokens     TokenSource
	images     imageConfig
	limiter    *rate.Limiter
	logger     *log.Logger
}

// Options configures a [Client].
type Options struct {
	BaseURL          string
	HTTPClient       *http.Client
	Tokens           TokenSource
	ImageBaseURL     string
	ImageDefaultSize string
	ImagePlaceholder string
	RateLimit        float64 // requests per second; 0 disables client-side throttling
	Logger           *log.Logger
}

// New creates a gateway client for the catalog backend.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		// Timeouts are the transport's responsibility; a stalled backend must
		// surface as a Network error rather than hang the caller.
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	auth := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  strings.TrimSuffix(opts.BaseURL, "/") + "/auth/login",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		auth:       auth,
		tokens:     opts.Tokens,
		images:     newImageConfig(opts.ImageBaseURL, opts.ImageDefaultSize, opts.ImagePlaceholder),
		limiter:    limiter,
		logger:     opts.Logger,
	}
}

// multipartBody carries an encoded multipart payload and its boundary-bearing content type.
type multipartBody struct {
	buf         *bytes.Buffer
	contentType string
}

// newMultipartBody encodes form fields plus an optional file part.
func newMultipartBody(fields map[string]string, fileField, fileName string, file io.Reader) (*multipartBody, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	if file != nil {
		part, err := writer.CreateFormFile(fileField, fileName)
		if err != nil {
			return nil, fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("failed to copy file contents: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return &multipartBody{buf: buf, contentType: writer.FormDataContentType()}, nil
}

// call performs an HTTP request against the backend and normalizes every
// failure into a gateway [Error].
//
// The body is serialized as JSON unless it is [url.Values] (form-urlencoded)
// or a multipart payload, in which case the content type is delegated to the
// encoder so boundaries are set correctly. A held token is always attached.
func (c *Client) call(ctx context.Context, method, path string, body any, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return newError(KindNetwork, 0, "request canceled while throttled", err)
		}
	}

	var reader io.Reader
	contentType := "application/json"

	switch b := body.(type) {
	case nil:
	case url.Values:
		reader = strings.NewReader(b.Encode())
		contentType = "application/x-www-form-urlencoded"
	case *multipartBody:
		reader = b.buf
		contentType = b.contentType
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return newError(KindValidation, 0, "failed to encode request body", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return newError(KindValidation, 0, "failed to create request", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return newError(KindNetwork, 0, "request timed out", fmt.Errorf("%w: %v", shared.ErrTimeout, err))
		}
		return newError(KindNetwork, 0, "request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return newError(KindNetwork, resp.StatusCode, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return newError(KindDecode, resp.StatusCode, "failed to decode response", err)
		}
	}

	return nil
}

// feed performs a best-effort GET for a movie feed, degrading to an empty
// page on any failure so a partial page is still renderable.
func (c *Client) feed(ctx context.Context, path string, page int) models.MoviePage {
	var raw json.RawMessage
	if err := c.call(ctx, http.MethodGet, path, nil, &raw); err != nil {
		c.logger.Warn("feed read degraded to empty result", "path", path, "error", err)
		return models.EmptyPage(page)
	}

	result, err := decodePage(raw, page)
	if err != nil {
		c.logger.Warn("feed response malformed, degrading", "path", path, "error", err)
		return models.EmptyPage(page)
	}
	return result
}

// decodePage folds both backend feed shapes into a [models.MoviePage]:
// a bare JSON array of movies, or a TMDb-style page object.
func decodePage(raw json.RawMessage, page int) (models.MoviePage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return models.EmptyPage(page), nil
	}

	if trimmed[0] == '[' {
		var movies []models.Movie
		if err := json.Unmarshal(trimmed, &movies); err != nil {
			return models.MoviePage{}, fmt.Errorf("failed to decode movie list: %w", err)
		}
		result := models.EmptyPage(page)
		result.Results = movies
		result.TotalResults = len(movies)
		if len(movies) > 0 {
			result.TotalPages = 1
		}
		return result, nil
	}

	var result models.MoviePage
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return models.MoviePage{}, fmt.Errorf("failed to decode movie page: %w", err)
	}
	if result.Page == 0 {
		result.Page = page
	}
	if result.Results == nil {
		result.Results = []models.Movie{}
	}
	return result, nil
}
