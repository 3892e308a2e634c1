// Package backend talks to an external CMS REST backend. Tables use it as
// their row source when the admin panel runs in front of a remote API instead
// of its own database.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

// Client wraps the list and delete endpoints of the REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client. A zero timeout uses 10 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ping checks if the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: ping: %w", httpx.ErrUnavailable)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("backend: health returned status %d: %w", resp.StatusCode, httpx.ErrUnavailable)
	}
	return nil
}

// List fetches one page of resource. The query is forwarded verbatim as the
// backend's list parameters.
func (c *Client) List(ctx context.Context, resource string, q tablestate.ListQuery, dest any) error {
	endpoint := c.baseURL + "/" + strings.Trim(resource, "/")
	if encoded := q.Values().Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: list %s: %v: %w", resource, err, httpx.ErrUnavailable)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("backend: list %s: %w", resource, err)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("backend: decode %s: %w", resource, err)
	}
	return nil
}

// Delete removes one record of resource.
func (c *Client) Delete(ctx context.Context, resource string, id int64) error {
	endpoint := c.baseURL + "/" + strings.Trim(resource, "/") + "/" + strconv.FormatInt(id, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: delete %s/%d: %v: %w", resource, id, err, httpx.ErrUnavailable)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("backend: delete %s/%d: %w", resource, id, err)
	}
	return nil
}

// Get loads one record of resource into dest.
func (c *Client) Get(ctx context.Context, resource string, id int64, dest any) error {
	return c.Send(ctx, http.MethodGet, strings.Trim(resource, "/")+"/"+strconv.FormatInt(id, 10), nil, dest)
}

// Send issues a JSON request against path and decodes the response into dest
// when dest is not nil.
func (c *Client) Send(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: encode %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %v: %w", method, path, err, httpx.ErrUnavailable)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("backend: decode %s: %w", path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	var problem httpx.ProblemDetail
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(body, &problem)
	detail := problem.Detail
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", detail, httpx.ErrNotFound)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s: %w", detail, httpx.ErrDuplicate)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w", detail, httpx.ErrValidation)
	case resp.StatusCode >= 500:
		return fmt.Errorf("status %d: %w", resp.StatusCode, httpx.ErrUnavailable)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail)
	}
}
