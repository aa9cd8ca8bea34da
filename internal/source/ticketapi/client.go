package ticketapi

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

	"github.com/Madmaxim22/HelpDesk/internal/model"
)

// Logical operation names, sent as the "method" query parameter.
const (
	OpAllTickets   = "allTickets"
	OpTicketByID   = "ticketById"
	OpCreateTicket = "createTicket"
	OpUpdateByID   = "updateById"
	OpDeleteByID   = "deleteById"
)

// maxErrorBody caps how much of a failed response is kept in a RemoteError.
const maxErrorBody = 512

// Client is a thin HTTP client for the ticket service. Every call issues
// exactly one request; there are no retries and nothing is cached.
type Client struct {
	baseURL      string
	token        string
	deleteMethod string
	timeout      time.Duration
	httpClient   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithToken sends token as a Bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithDeleteMethod selects the HTTP verb used for deleteById.
// The service contract uses GET; DELETE is accepted by services that prefer it.
func WithDeleteMethod(method string) Option {
	return func(c *Client) {
		if method != "" {
			c.deleteMethod = strings.ToUpper(method)
		}
	}
}

// WithHTTPClient sends requests through hc. The client is copied; a
// timeout set with WithTimeout applies to the copy only.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.httpClient = &cp
		}
	}
}

// NewClient creates a client for the service rooted at baseURL
// (e.g., http://localhost:7070).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		deleteMethod: http.MethodGet,
		timeout:      30 * time.Second,
		httpClient:   &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}
	return c
}

// ListAll returns every ticket in the order the service lists them.
func (c *Client) ListAll(ctx context.Context) ([]model.Record, error) {
	var records []model.Record
	if _, err := c.do(ctx, http.MethodGet, OpAllTickets, "", nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}

// GetByID returns a single ticket. A missing ticket surfaces as a
// RemoteError like any other failure.
func (c *Client) GetByID(ctx context.Context, id string) (model.Record, error) {
	var record model.Record
	_, err := c.do(ctx, http.MethodGet, OpTicketByID, id, nil, &record)
	return record, err
}

// Create persists a new ticket. The service assigns the id and creation
// time, so neither is sent.
func (c *Client) Create(ctx context.Context, t model.Transport) (model.Record, error) {
	body := struct {
		Name        string `json:"name"`
		Status      bool   `json:"status"`
		Description string `json:"description"`
	}{
		Name:        t.Name,
		Status:      t.Status,
		Description: t.Description,
	}

	var record model.Record
	_, err := c.do(ctx, http.MethodPost, OpCreateTicket, "", body, &record)
	return record, err
}

// Update replaces the fields of the ticket at id.
func (c *Client) Update(ctx context.Context, id string, t model.Transport) (model.Record, error) {
	var record model.Record
	_, err := c.do(ctx, http.MethodPost, OpUpdateByID, id, t, &record)
	return record, err
}

// DeleteByID removes the ticket at id. A 204 or empty body is a successful
// empty result and yields a nil payload.
func (c *Client) DeleteByID(ctx context.Context, id string) (json.RawMessage, error) {
	var payload json.RawMessage
	status, err := c.do(ctx, c.deleteMethod, OpDeleteByID, id, nil, &payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || len(payload) == 0 {
		return nil, nil
	}
	return payload, nil
}

// endpoint builds the request URL for op, adding id when non-empty.
func (c *Client) endpoint(op, id string) string {
	q := url.Values{}
	q.Set("method", op)
	if id != "" {
		q.Set("id", id)
	}
	return c.baseURL + "?" + q.Encode()
}

// do builds and sends a single request, translating every failure into a
// RemoteError. It returns the response status on success.
func (c *Client) do(
	ctx context.Context,
	method string,
	op string,
	id string,
	body interface{},
	result interface{},
) (int, error) {
	fail := func(status int, respBody string, err error) error {
		return &RemoteError{
			Op:         op,
			Method:     method,
			StatusCode: status,
			Body:       respBody,
			Err:        err,
		}
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fail(0, "", fmt.Errorf("marshaling request body: %w", err))
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(op, id), bodyReader)
	if err != nil {
		return 0, fail(0, "", fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fail(0, "", fmt.Errorf("executing request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fail(resp.StatusCode, "", fmt.Errorf("reading response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := strings.TrimSpace(string(respBody))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return 0, fail(resp.StatusCode, text, nil)
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return resp.StatusCode, nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return 0, fail(resp.StatusCode, "", fmt.Errorf("unmarshaling response: %w", err))
	}

	return resp.StatusCode, nil
}
