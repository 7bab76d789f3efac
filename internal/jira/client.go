// Package jira is a small client for the Jira Server REST API (v2) covering
// what a deployment needs: reading an issue, commenting on it and moving it
// through a workflow transition. Requests use HTTP basic authentication.
package jira

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
)

// DefaultTimeout bounds every request when Config.Timeout is zero
const DefaultTimeout = 30 * time.Second

// issueFields is the field list requested for GetIssue
const issueFields = "summary,issuetype,status,resolution"

// Config holds the connection settings for a Client
type Config struct {
	// URL is the base URL of the Jira instance, e.g. https://jira.example.com
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

// Validate checks that the config can produce a working client
func (c Config) Validate() error {
	if c.URL == "" {
		return ErrConfigURLRequired
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrConfigURLInvalid
	}
	if c.Username == "" || c.Password == "" {
		return ErrConfigBasicAuth
	}
	return nil
}

// Client provides access to the Jira REST API
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Jira client. No request is made; call Myself to
// verify the credentials.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		cfg:        cfg,
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Myself returns the authenticated user
func (c *Client) Myself(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/myself", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetIssue retrieves an issue by key, including its type and status
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	if key == "" {
		return nil, ErrIssueKeyRequired
	}

	query := url.Values{"fields": {issueFields}}
	var issue Issue
	if err := c.do(ctx, http.MethodGet, issuePath(key, ""), query, nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// AddComment adds a plain-text comment to an issue
func (c *Client) AddComment(ctx context.Context, key, body string) (*Comment, error) {
	if key == "" {
		return nil, ErrIssueKeyRequired
	}

	var comment Comment
	if err := c.do(ctx, http.MethodPost, issuePath(key, "/comment"), nil, &AddCommentRequest{Body: body}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListTransitions gets the transitions currently available for an issue
func (c *Client) ListTransitions(ctx context.Context, key string) ([]Transition, error) {
	if key == "" {
		return nil, ErrIssueKeyRequired
	}

	var result TransitionsResponse
	if err := c.do(ctx, http.MethodGet, issuePath(key, "/transitions"), nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Transitions, nil
}

// ExecuteTransition performs a transition on an issue. A non-empty resolution
// is sent as the resolution field of the transition screen.
func (c *Client) ExecuteTransition(ctx context.Context, key, transitionID, resolution string) error {
	if key == "" {
		return ErrIssueKeyRequired
	}
	if transitionID == "" {
		return ErrTransitionIDRequired
	}

	body := &TransitionRequest{Transition: TransitionRef{ID: transitionID}}
	if resolution != "" {
		body.Fields = map[string]any{
			"resolution": Resolution{Name: resolution},
		}
	}

	return c.do(ctx, http.MethodPost, issuePath(key, "/transitions"), nil, body, nil)
}

func issuePath(key, suffix string) string {
	return "/issue/" + url.PathEscape(key) + suffix
}

// do sends one request under /rest/api/2 and decodes a JSON answer into out (if non-nil)
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, endpoint, query, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp, endpoint)
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// newRequest creates an authenticated JSON request
func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body any) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + "/rest/api/2" + endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	return req, nil
}
