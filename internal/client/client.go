package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"github.com/openreal2sim/review-dashboard/pkg/requestid"
)

// Client talks to the review API server. It implements metadata.Remote.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ErrStatus is returned when the server answers with an unexpected status code.
type ErrStatus struct {
	StatusCode int
	Message    string
}

func (e *ErrStatus) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Message)
}

func (c *Client) Fetch(ctx context.Context) (v1alpha1.MetadataDocument, error) {
	doc := v1alpha1.MetadataDocument{}
	if err := c.do(ctx, http.MethodGet, "/api/v1/metadata", nil, nil, http.StatusOK, &doc); err != nil {
		return nil, fmt.Errorf("failed to fetch the metadata: %w", err)
	}
	return doc, nil
}

func (c *Client) Get(ctx context.Context, name string) (*v1alpha1.Reconstruction, error) {
	rec := v1alpha1.Reconstruction{}
	if err := c.do(ctx, http.MethodGet, reconstructionPath(name), nil, nil, http.StatusOK, &rec); err != nil {
		return nil, fmt.Errorf("failed to get reconstruction %q: %w", name, err)
	}
	return &rec, nil
}

// ListFilter narrows List. Empty fields match everything.
type ListFilter struct {
	Author string
	Week   string
	Status string
	Pose   string
}

func (f ListFilter) query() url.Values {
	q := url.Values{}
	for k, v := range map[string]string{"author": f.Author, "week": f.Week, "status": f.Status, "pose": f.Pose} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func (c *Client) List(ctx context.Context, filter ListFilter) (v1alpha1.ReconstructionList, error) {
	var reply struct {
		Items v1alpha1.ReconstructionList `json:"items"`
		Total int                         `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/reconstructions", filter.query(), nil, http.StatusOK, &reply); err != nil {
		return nil, fmt.Errorf("failed to list reconstructions: %w", err)
	}
	return reply.Items, nil
}

func (c *Client) Set(ctx context.Context, rec v1alpha1.Reconstruction) error {
	if err := c.do(ctx, http.MethodPut, reconstructionPath(rec.Name), nil, rec, http.StatusOK, nil); err != nil {
		return fmt.Errorf("failed to set reconstruction %q: %w", rec.Name, err)
	}
	return nil
}

func (c *Client) SetMany(ctx context.Context, recs v1alpha1.ReconstructionList) error {
	if err := c.do(ctx, http.MethodPatch, "/api/v1/reconstructions", nil, recs, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("failed to set %d reconstructions: %w", len(recs), err)
	}
	return nil
}

func (c *Client) Remove(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodDelete, reconstructionPath(name), nil, nil, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("failed to remove reconstruction %q: %w", name, err)
	}
	return nil
}

func (c *Client) Stats(ctx context.Context, week, author string) (v1alpha1.Stats, error) {
	q := url.Values{}
	if week != "" {
		q.Set("week", week)
	}
	if author != "" {
		q.Set("author", author)
	}

	stats := v1alpha1.Stats{}
	if err := c.do(ctx, http.MethodGet, "/api/v1/stats", q, nil, http.StatusOK, &stats); err != nil {
		return v1alpha1.Stats{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}

// Export downloads the simulation archive of name into dst and returns the number of bytes copied.
// A truncated archive is not detected here, the caller checks the gzip trailer.
func (c *Client) Export(ctx context.Context, name string, dst io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/export", url.Values{"video": []string{name}}, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to export %q: %w", name, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("failed to export %q: %w", name, statusError(resp))
	}

	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to download %q: %w", name, err)
	}
	return n, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, expected int, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != expected {
		return statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	id := requestid.FromContext(ctx)
	if id == "" {
		id = requestid.Generate()
	}
	req.Header.Set(requestid.HeaderName, id)

	return req, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr v1alpha1.Error
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		message = apiErr.Message
	}
	return &ErrStatus{StatusCode: resp.StatusCode, Message: message}
}

func reconstructionPath(name string) string {
	return "/api/v1/reconstructions/" + url.PathEscape(name)
}

// IsNotFound reports whether err carries a 404 from the server.
func IsNotFound(err error) bool {
	var status *ErrStatus
	return errors.As(err, &status) && status.StatusCode == http.StatusNotFound
}
