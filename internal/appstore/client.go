package appstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/appsift/appstore-gateway/pkg/logger"
)

const (
	defaultITunesURL = "https://itunes.apple.com"
	defaultAmpURL    = "https://amp-api.apps.apple.com"
	defaultWebURL    = "https://apps.apple.com"

	defaultCountry = "us"

	// Store responses are small; this bound just keeps a misbehaving
	// endpoint from exhausting memory.
	maxResponseBytes = 8 << 20
)

// Config configures the catalog client.
type Config struct {
	Country string
	Timeout time.Duration

	// Transport overrides the HTTP transport, used by tests.
	Transport http.RoundTripper

	// Endpoint overrides, used by tests and proxies.
	ITunesURL string
	AmpURL    string
	WebURL    string

	Logger *logger.Logger
}

// Client implements Catalog against Apple's public store endpoints.
type Client struct {
	httpClient *http.Client
	itunesURL  string
	ampURL     string
	webURL     string
	country    string
	log        *logger.Logger
}

// New creates a catalog client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.Transport != nil {
		httpClient.Transport = cfg.Transport
	}

	country := strings.ToLower(strings.TrimSpace(cfg.Country))
	if country == "" {
		country = defaultCountry
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("appstore")
	}

	return &Client{
		httpClient: httpClient,
		itunesURL:  urlOr(cfg.ITunesURL, defaultITunesURL),
		ampURL:     urlOr(cfg.AmpURL, defaultAmpURL),
		webURL:     urlOr(cfg.WebURL, defaultWebURL),
		country:    country,
		log:        log,
	}
}

func urlOr(value, fallback string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if value == "" {
		return fallback
	}
	return value
}

// countryOr normalizes a per-request country, falling back to the
// client default.
func (c *Client) countryOr(country string) string {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		return c.country
	}
	return country
}

// get performs a GET and returns the body and status. The error is
// non-nil only for transport or read failures; callers interpret the
// status themselves because not-found wording differs per operation.
func (c *Client) get(ctx context.Context, rawURL string, header http.Header) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	c.log.WithFields(map[string]interface{}{
		"url":    rawURL,
		"status": resp.StatusCode,
	}).Debug("store request")

	return body, resp.StatusCode, nil
}

// storeFronts maps country codes to Apple storefront IDs for endpoints
// that select the store via header instead of path.
var storeFronts = map[string]string{
	"us": "143441",
	"gb": "143444",
	"ca": "143455",
	"au": "143460",
	"de": "143443",
	"fr": "143442",
	"it": "143450",
	"es": "143454",
	"nl": "143452",
	"br": "143503",
	"jp": "143462",
	"kr": "143466",
	"cn": "143465",
	"in": "143467",
	"mx": "143468",
	"ru": "143469",
}

func storeFront(country string) string {
	if id, ok := storeFronts[country]; ok {
		return id
	}
	return storeFronts[defaultCountry]
}
