package remoteconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
)

var _ port.ConfigFetcher = (*Client)(nil)

const (
	DefaultBaseURL      = "https://cdn.findologic.com"
	DefaultPathTemplate = "/config/{shopkey}/config.json"

	shopKeyPlaceholder = "{shopkey}"
	defaultTimeout     = 5 * time.Second
)

// Client fetches the published service config of a shop from the CDN.
type Client struct {
	baseURL      string
	pathTemplate string
	httpClient   *http.Client
}

func NewClient(baseURL, pathTemplate string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pathTemplate == "" {
		pathTemplate = DefaultPathTemplate
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		pathTemplate: pathTemplate,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) configURL(shopKey string) string {
	path := strings.ReplaceAll(c.pathTemplate, shopKeyPlaceholder, url.PathEscape(shopKey))
	return c.baseURL + path
}

func (c *Client) FetchConfig(ctx context.Context, shopKey string) (domain.RemoteConfigPayload, error) {
	const op = "Client.FetchConfig"

	u := c.configURL(shopKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.RemoteConfigPayload{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RemoteConfigPayload{}, fmt.Errorf(
			"%s: %w", op, &domain.RemoteFetchError{URL: u, Err: err},
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.RemoteConfigPayload{}, fmt.Errorf(
			"%s: %w", op, &domain.RemoteFetchError{URL: u, StatusCode: resp.StatusCode},
		)
	}

	var payload domain.RemoteConfigPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.RemoteConfigPayload{}, fmt.Errorf(
			"%s: %w", op, &domain.RemoteFetchError{URL: u, StatusCode: resp.StatusCode, Err: err},
		)
	}
	return payload, nil
}
