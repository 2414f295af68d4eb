package gateway

import "strings"

const (
	defaultImageBaseURL = "https://image.tmdb.org/t/p"
	defaultImageSize    = "w500"
	defaultPlaceholder  = "assets/images/placeholder.jpg"
)

// imageConfig resolves poster and backdrop paths against the image CDN.
type imageConfig struct {
	baseURL     string
	defaultSize string
	placeholder string
}

func newImageConfig(baseURL, defaultSize, placeholder string) imageConfig {
	if baseURL == "" {
		baseURL = defaultImageBaseURL
	}
	if defaultSize == "" {
		defaultSize = defaultImageSize
	}
	if placeholder == "" {
		placeholder = defaultPlaceholder
	}
	return imageConfig{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		defaultSize: defaultSize,
		placeholder: placeholder,
	}
}

// ResolveImageURL maps a backend image path to a renderable URL.
//
// An absent path always resolves to the placeholder, regardless of the
// requested size. An empty size falls back to the configured default.
func (c *Client) ResolveImageURL(path, size string) string {
	if path == "" {
		return c.images.placeholder
	}
	if size == "" {
		size = c.images.defaultSize
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.images.baseURL + "/" + size + path
}
