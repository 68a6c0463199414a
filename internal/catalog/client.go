package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/httpclient"
)

// ServiceName labels the backend in errors and breaker metrics.
const ServiceName = "catalog-backend"

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the catalog REST API on behalf of an admin. Every call
// forwards the admin's bearer token when one is given.
type Client struct {
	doer    HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewClient returns a configuration error when baseURL is empty, so no
// request is ever attempted against an unset backend.
func NewClient(doer HTTPDoer, baseURL string, logger *slog.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, apperrors.Configuration("API base URL is not set. Please configure API_BASE_URL in your environment.")
	}
	return &Client{doer: doer, baseURL: baseURL, logger: logger}, nil
}

type listEnvelope struct {
	Data []map[string]any `json:"data"`
}

type itemEnvelope struct {
	Data map[string]any `json:"data"`
}

// FetchOptions loads one filter definition's option list.
func (c *Client) FetchOptions(ctx context.Context, token string, def domain.FilterDefinition) ([]domain.Option, error) {
	var env listEnvelope
	if err := c.call(ctx, http.MethodGet, def.APIPath, token, nil, "", &env); err != nil {
		return nil, err
	}
	return domain.DecodeOptions(env.Data, def.ParentField), nil
}

// ListProducts returns one page of raw product records.
func (c *Client) ListProducts(ctx context.Context, token string, page, limit int) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var env listEnvelope
	if err := c.call(ctx, http.MethodGet, "/api/newproduct/view?"+q.Encode(), token, nil, "", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// GetProduct loads one raw product record.
func (c *Client) GetProduct(ctx context.Context, token, id string) (map[string]any, error) {
	var env itemEnvelope
	if err := c.call(ctx, http.MethodGet, "/api/newproduct/view/"+url.PathEscape(id), token, nil, "", &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, apperrors.NotFound("product", id)
	}
	return env.Data, nil
}

// ProductsByGroupCode lists products sharing a group code.
func (c *Client) ProductsByGroupCode(ctx context.Context, token, groupCodeID string) ([]map[string]any, error) {
	var env listEnvelope
	if err := c.call(ctx, http.MethodGet, "/api/newproduct/groupcode/"+url.PathEscape(groupCodeID), token, nil, "", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateProduct posts an assembled multipart payload.
func (c *Client) CreateProduct(ctx context.Context, token, contentType string, body []byte) (map[string]any, error) {
	var env itemEnvelope
	if err := c.call(ctx, http.MethodPost, "/api/newproduct/add", token, body, contentType, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// UpdateProduct patches an existing product with an assembled multipart payload.
func (c *Client) UpdateProduct(ctx context.Context, token, id, contentType string, body []byte) (map[string]any, error) {
	var env itemEnvelope
	if err := c.call(ctx, http.MethodPatch, "/api/newproduct/update/"+url.PathEscape(id), token, body, contentType, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.call(ctx, http.MethodDelete, "/api/newproduct/delete/"+url.PathEscape(id), token, nil, "", nil)
}

// Ping checks that the backend answers at all. Any response below 500
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("ping %s: %w", ServiceName, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("ping %s: status %d", ServiceName, resp.StatusCode)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path, token string, body []byte, contentType string, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	httpclient.SetBearer(req, token)

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, stripQuery(path), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, ServiceName)
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s response: %w", stripQuery(path), err)
	}
	return nil
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
