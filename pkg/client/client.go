// Package client is the data-access layer for the student management API.
// Every operation is a single request/response; the cross-cutting concerns
// (bearer-token injection, per-resource loading flags, user-facing error
// notification) are explicit wrappers inside do, not hidden hooks.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

type Student struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Input is the write-request payload for Create and Update.
type Input struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// APIError carries the HTTP status and the human-readable message derived
// from it. Status 0 means the request never reached the server.
type APIError struct {
	Status      int
	Message     string
	FieldErrors map[string]string
}

func (e *APIError) Error() string {
	return e.Message
}

// Notifier receives one user-facing message per failed operation.
type Notifier func(message string)

type Client struct {
	baseURL    string
	httpClient *http.Client
	loading    *LoadingTracker
	notify     Notifier

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithNotifier sets the callback invoked with the user-facing message of
// every failure. The default discards messages.
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notify = n }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		loading: NewLoadingTracker(),
		notify:  func(string) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken stores the auth token attached to subsequent requests.
// An empty token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Loading exposes the per-resource loading flags for UI spinners.
func (c *Client) Loading() *LoadingTracker {
	return c.loading
}

func (c *Client) ListAll(ctx context.Context) ([]Student, error) {
	var students []Student
	if err := c.do(ctx, http.MethodGet, "/api/students", "students", nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (c *Client) GetOne(ctx context.Context, id int) (*Student, error) {
	var s Student
	key := fmt.Sprintf("students/%d", id)
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/students/%d", id), key, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) ListByDepartment(ctx context.Context, department string) ([]Student, error) {
	var students []Student
	path := "/api/students/department/" + url.PathEscape(department)
	if err := c.do(ctx, http.MethodGet, path, "students", nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (c *Client) Create(ctx context.Context, input Input) (*Student, error) {
	var s Student
	if err := c.do(ctx, http.MethodPost, "/api/students", "students", &input, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Update(ctx context.Context, id int, input Input) (*Student, error) {
	var s Student
	key := fmt.Sprintf("students/%d", id)
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/students/%d", id), key, &input, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Delete(ctx context.Context, id int) error {
	key := fmt.Sprintf("students/%d", id)
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/students/%d", id), key, nil, nil)
}

// errorEnvelope mirrors the server's error body.
type errorEnvelope struct {
	Status      int               `json:"status"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors"`
}

// do runs one request with the loading flag held for the duration of the
// call, on both the success and the failure path.
func (c *Client) do(ctx context.Context, method, path, loadingKey string, body, out interface{}) error {
	c.loading.begin(loadingKey)
	defer c.loading.end(loadingKey)

	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := &APIError{Message: "Cannot reach the server. Check your connection and try again."}
		c.notify(apiErr.Message)
		return apiErr
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	var envelope errorEnvelope
	_ = json.NewDecoder(resp.Body).Decode(&envelope)

	apiErr := &APIError{
		Status:      resp.StatusCode,
		Message:     messageForStatus(resp.StatusCode, envelope),
		FieldErrors: envelope.FieldErrors,
	}
	c.notify(apiErr.Message)
	return apiErr
}

// messageForStatus derives the single user-facing message per failure class.
func messageForStatus(status int, envelope errorEnvelope) string {
	switch {
	case status == http.StatusNotFound:
		if envelope.Message != "" {
			return envelope.Message
		}
		return "The requested student was not found"
	case status == http.StatusConflict:
		if envelope.Message != "" {
			return envelope.Message
		}
		return "A student with this email already exists"
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		if len(envelope.FieldErrors) > 0 {
			return "Validation failed: " + fieldSummary(envelope.FieldErrors)
		}
		if envelope.Message != "" {
			return envelope.Message
		}
		return "The request was invalid"
	case status >= 500:
		return "The server encountered an error. Please try again later."
	default:
		if envelope.Message != "" {
			return envelope.Message
		}
		return fmt.Sprintf("Request failed with status %d", status)
	}
}

func fieldSummary(fieldErrors map[string]string) string {
	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+fieldErrors[field])
	}
	return strings.Join(parts, "; ")
}
