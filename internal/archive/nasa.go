// Package archive looks up representative photographs in the NASA Image and
// Video Library.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ali-sdg/cosmos-walker/internal/logging"
	"github.com/ali-sdg/cosmos-walker/internal/version"
)

const (
	// DefaultSearchURL is the image library search endpoint.
	DefaultSearchURL = "https://images-api.nasa.gov/search"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 15 * time.Second

	// querySuffix narrows results to astronomical imagery.
	querySuffix = " space astronomy"

	unknownDate = "Unknown"
)

// ImageRecord describes one archive photograph.
type ImageRecord struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Finder looks up an image for a query. A nil record means no image, whether
// because nothing matched or because the lookup failed.
type Finder interface {
	FindImage(ctx context.Context, query string) *ImageRecord
}

// NASAClient searches the NASA image library.
type NASAClient struct {
	client  *http.Client
	url     string
	timeout time.Duration
	log     *logging.Logger
}

// Option configures a NASAClient.
type Option func(*NASAClient)

// WithURL sets a custom search endpoint.
func WithURL(u string) Option {
	return func(c *NASAClient) {
		c.url = u
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *NASAClient) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *NASAClient) {
		c.client = client
	}
}

// WithLogger sets the logger for failed lookups.
func WithLogger(l *logging.Logger) Option {
	return func(c *NASAClient) {
		c.log = l
	}
}

// NewNASAClient creates an image library client.
func NewNASAClient(opts ...Option) *NASAClient {
	c := &NASAClient{
		url:     DefaultSearchURL,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{
			Timeout: c.timeout,
		}
	}
	if c.log == nil {
		c.log = logging.Discard()
	}

	return c
}

type searchResponse struct {
	Collection struct {
		Items []struct {
			Data []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				DateCreated string `json:"date_created"`
			} `json:"data"`
			Links []struct {
				Href   string `json:"href"`
				Render string `json:"render"`
			} `json:"links"`
		} `json:"items"`
	} `json:"collection"`
}

// FindImage implements Finder. Only the first search hit is considered.
func (c *NASAClient) FindImage(ctx context.Context, query string) *ImageRecord {
	rec, err := c.search(ctx, query)
	if err != nil {
		c.log.Warn("image lookup for %q failed: %v", query, err)
		return nil
	}
	return rec
}

func (c *NASAClient) search(ctx context.Context, query string) (*ImageRecord, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	q := u.Query()
	q.Set("q", query+querySuffix)
	q.Set("media_type", "image")
	q.Set("page", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search images: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	items := parsed.Collection.Items
	if len(items) == 0 {
		return nil, nil
	}
	item := items[0]
	if len(item.Data) == 0 {
		return nil, nil
	}

	href := ""
	for _, l := range item.Links {
		if strings.HasSuffix(l.Href, ".jpg") || l.Render == "image" {
			href = l.Href
			break
		}
	}
	if href == "" {
		return nil, nil
	}

	meta := item.Data[0]
	return &ImageRecord{
		Title:       meta.Title,
		URL:         href,
		Date:        shortDate(meta.DateCreated),
		Description: meta.Description,
	}, nil
}

func shortDate(s string) string {
	if s == "" {
		return unknownDate
	}
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
