package remote

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

	"github.com/vbonduro/toyinv/internal/domain"
	"github.com/vbonduro/toyinv/internal/gateway"
)

const maxResponseSize = 10 * 1024 * 1024

// Client talks to a toy collection over HTTP using the gateway envelope.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) List(ctx context.Context) ([]*domain.Toy, error) {
	var toys []*domain.Toy
	if err := c.do(ctx, http.MethodGet, "/api/toys", nil, &toys); err != nil {
		return nil, fmt.Errorf("failed to list toys: %w", err)
	}
	if toys == nil {
		toys = []*domain.Toy{}
	}
	return toys, nil
}

func (c *Client) Create(ctx context.Context, fields domain.ToyFields) (*domain.Toy, error) {
	var toy domain.Toy
	if err := c.do(ctx, http.MethodPost, "/api/toys", fields, &toy); err != nil {
		return nil, fmt.Errorf("failed to create toy: %w", err)
	}
	return &toy, nil
}

func (c *Client) Update(ctx context.Context, id string, fields domain.ToyFields) (*domain.Toy, error) {
	var toy domain.Toy
	if err := c.do(ctx, http.MethodPatch, "/api/toys/"+url.PathEscape(id), fields, &toy); err != nil {
		return nil, fmt.Errorf("failed to update toy %s: %w", id, err)
	}
	return &toy, nil
}

// do sends body as JSON and decodes the envelope's data into out. A
// success=false envelope is reported as gateway.ErrRejected regardless of the
// HTTP status.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call collection: %w", err)
	}
	defer resp.Body.Close()

	var env gateway.Envelope[json.RawMessage]
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&env); err != nil {
		return fmt.Errorf("collection returned status %d: failed to decode response: %w", resp.StatusCode, err)
	}
	if !env.Success {
		if env.Error == "" {
			env.Error = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: %s", gateway.ErrRejected, env.Error)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("collection returned status %d", resp.StatusCode)
	}
	if len(env.Data) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}
