package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/deletion"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/httputil"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/openapi"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
)

// Deleting a large collection runs for as long as the server needs
const clientTimeout = 10 * time.Minute

// APIError is a non-2xx reply from the server
type APIError struct {
	StatusCode int
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	if id := e.Details["request_id"]; id != "" {
		return fmt.Sprintf("server returned %d: %s (request id %s)", e.StatusCode, e.Message, id)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the administration API. Requests carry the bearer token
// through an oauth2 transport.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. An empty token sends anonymous
// requests.
func NewClient(ctx context.Context, baseURL, token string) *Client {
	httpClient := &http.Client{Timeout: clientTimeout}
	if token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
		httpClient.Timeout = clientTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// DeleteCollection asks the server to run the cascading deletion of slug
func (c *Client) DeleteCollection(ctx context.Context, slug string) (*deletion.Result, error) {
	var resp struct {
		Status string           `json:"status"`
		Data   *deletion.Result `json:"data"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/collections/"+url.PathEscape(slug), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("server returned no deletion result")
	}
	return resp.Data, nil
}

// ListCollections returns every registered schema
func (c *Client) ListCollections(ctx context.Context) ([]*schema.CollectionConfig, error) {
	var resp struct {
		Collections []*schema.CollectionConfig `json:"collections"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/collections", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Collections, nil
}

// CreateCollection registers cfg and returns the stored record
func (c *Client) CreateCollection(ctx context.Context, cfg *schema.CollectionConfig) (*schema.CollectionConfig, error) {
	var created schema.CollectionConfig
	if err := c.do(ctx, http.MethodPost, "/api/collections", cfg, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// OpenAPI downloads the generated document in format
func (c *Client) OpenAPI(ctx context.Context, format openapi.Format) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/openapi."+string(format), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch openapi document: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, decodeError(res)
	}
	return io.ReadAll(res.Body)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return decodeError(res)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(res *http.Response) error {
	apiErr := &APIError{StatusCode: res.StatusCode, Message: http.StatusText(res.StatusCode)}
	var body httputil.ErrorResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
	}
	return apiErr
}
