// Package api implements the client for the account HTTP service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
)

const defaultBaseURL = "http://localhost:8080"

// baseURLEnv overrides the service base URL when set.
const baseURLEnv = "MAXXACCT_API_BASE"

var (
	// ErrNotFound is returned when the service reports no matching user.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned when the service rejects a duplicate email.
	ErrConflict = errors.New("email already registered")
)

// StatusError reports an unexpected HTTP status, carrying the response
// body when the server sent a short text one.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("unexpected status %d", e.Status)
}

// Config holds connection settings for the account service.
type Config struct {
	BaseURL string
}

// BaseURLFromEnv returns the configured service base URL, falling back
// to the default local endpoint.
func BaseURLFromEnv() string {
	if v := os.Getenv(baseURLEnv); v != "" {
		return v
	}
	return defaultBaseURL
}

// Record is the user representation returned by the service. Values are
// taken verbatim; fields absent from a response decode to "".
type Record struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

// Client communicates with the account service.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// NewClient creates an account service client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    http.DefaultClient,
		log:     slog.Default(),
	}
}

// Lookup finds the user matching firstName and email.
func (c *Client) Lookup(ctx context.Context, firstName, email string) (Record, error) {
	q := url.Values{
		"firstName": {firstName},
		"email":     {email},
	}

	status, body, err := c.do(ctx, http.MethodGet, "/api/users/search?"+q.Encode(), nil)
	if err != nil {
		return Record{}, fmt.Errorf("lookup user: %w", err)
	}

	switch {
	case status == http.StatusNotFound:
		return Record{}, fmt.Errorf("lookup user: %w", ErrNotFound)
	case ok2xx(status):
		rec, err := decodeRecord(body)
		if err != nil {
			return Record{}, fmt.Errorf("lookup user: %w", err)
		}
		return rec, nil
	default:
		return Record{}, fmt.Errorf("lookup user: %w", statusError(status, body))
	}
}

// Create registers a new user.
func (c *Client) Create(ctx context.Context, firstName, lastName, email string) error {
	payload := recordPayload{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	}

	status, body, err := c.do(ctx, http.MethodPost, "/api/users", payload)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	switch {
	case status == http.StatusConflict:
		return fmt.Errorf("create user: %w", ErrConflict)
	case ok2xx(status):
		return nil
	default:
		return fmt.Errorf("create user: %w", statusError(status, body))
	}
}

// Get fetches the user record for id.
func (c *Client) Get(ctx context.Context, id string) (Record, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil)
	if err != nil {
		return Record{}, fmt.Errorf("get user: %w", err)
	}

	switch {
	case status == http.StatusNotFound:
		return Record{}, fmt.Errorf("get user: %w", ErrNotFound)
	case ok2xx(status):
		rec, err := decodeRecord(body)
		if err != nil {
			return Record{}, fmt.Errorf("get user: %w", err)
		}
		return rec, nil
	default:
		return Record{}, fmt.Errorf("get user: %w", statusError(status, body))
	}
}

// Update replaces the mutable fields of the user record for id.
func (c *Client) Update(ctx context.Context, id, firstName, lastName, email string) error {
	payload := recordPayload{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	}

	status, body, err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id), payload)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("update user: %w", ErrNotFound)
	case ok2xx(status):
		return nil
	default:
		return fmt.Errorf("update user: %w", statusError(status, body))
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var rd io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Debug("account api",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
	)

	return resp.StatusCode, body, nil
}

func ok2xx(status int) bool {
	return status >= 200 && status < 300
}

// bodyLimit caps how much of an error response is carried in a StatusError.
const bodyLimit = 200

func statusError(status int, body []byte) error {
	text := strings.TrimSpace(string(body))
	if len(text) > bodyLimit {
		text = text[:bodyLimit]
	}
	return &StatusError{Status: status, Body: text}
}

// recordPayload is the request body for create and update calls.
type recordPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// wireID tolerates both string and numeric id fields on the wire.
type wireID string

func (w *wireID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*w = wireID(v)
		return nil
	}
	if s == "null" {
		*w = ""
		return nil
	}
	*w = wireID(s)
	return nil
}

type wireRecord struct {
	ID        wireID `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func decodeRecord(body []byte) (Record, error) {
	var w wireRecord
	if err := json.Unmarshal(body, &w); err != nil {
		return Record{}, fmt.Errorf("parse response: %w", err)
	}
	return Record{
		ID:        string(w.ID),
		FirstName: w.FirstName,
		LastName:  w.LastName,
		Email:     w.Email,
	}, nil
}
