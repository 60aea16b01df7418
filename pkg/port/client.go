// Package port provides a client of Port's REST API and the entities port-kics upserts.
// This package handles the exchange of a client id and secret for an access token,
// attaches the token to API requests through an OAuth2 transport, and upserts entities
// with merge semantics so that related entities don't need to be created in order.
package port

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the base URL of Port's API.
const DefaultBaseURL = "https://api.getport.io/v1"

// ClientConfig holds the settings of a Client.
// HTTPClient is used both for the token request and as the base of authenticated requests.
// If it's nil, http.DefaultClient is used.
type ClientConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

// Client is a client of Port's entity API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

// New creates a Client.
// The access token is requested lazily and reused for the lifetime of the Client.
//
// Parameters:
//   - ctx: context used for token requests
//   - cfg: client configuration
//
// Returns a configured Client.
func New(ctx context.Context, cfg *ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	ts := oauth2.ReuseTokenSource(nil, &tokenSource{
		ctx:          ctx,
		httpClient:   hc,
		tokenURL:     baseURL + "/auth/access_token",
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	})
	return &Client{
		baseURL:     baseURL,
		httpClient:  oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, hc), ts),
		tokenSource: ts,
	}
}

// Authenticate gets an access token.
// Requests issued after a successful call reuse the token.
func (c *Client) Authenticate() error {
	if _, err := c.tokenSource.Token(); err != nil {
		return fmt.Errorf("get an access token: %w", err)
	}
	return nil
}

// APIError is returned when Port's API responds with a non-2xx status code.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status code %d: %s", e.StatusCode, e.Body)
}

// UpsertEntity creates or updates an entity of the blueprint entity.Blueprint.
// Properties are merged into the existing entity, and missing related entities are created.
func (c *Client) UpsertEntity(ctx context.Context, entity *Entity) error {
	b, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal an entity as JSON: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.upsertURL(entity.Blueprint), bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create a request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send a request: %w", err)
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return err
	}
	return nil
}

func (c *Client) upsertURL(blueprint string) string {
	q := url.Values{}
	q.Set("upsert", "true")
	q.Set("merge", "true")
	q.Set("create_missing_related_entities", "true")
	return c.baseURL + "/blueprints/" + url.PathEscape(blueprint) + "/entities?" + q.Encode()
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read a response body (status code %d): %w", resp.StatusCode, err)
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
