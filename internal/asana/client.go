// Package asana is a minimal client for the Asana REST API, covering the
// four task operations the sync pipeline needs. No pagination, no retries.
package asana

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

// DefaultBaseURL is the public Asana API endpoint.
const DefaultBaseURL = "https://app.asana.com/api/1.0"

// Client talks to the Asana REST API with a bearer token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates an Asana API client. An empty baseURL selects the
// public endpoint; timeout bounds each outbound call.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetTask fetches a task by gid. Any non-200 status is an error carrying
// the status code; the read path fails loud.
func (c *Client) GetTask(ctx context.Context, taskGID string) (*Task, error) {
	u := fmt.Sprintf("%s/tasks/%s?opt_fields=%s", c.baseURL, taskGID,
		url.QueryEscape("gid,name,completed,custom_fields.name,custom_fields.text_value,memberships.project,memberships.section"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch task %s: %w", taskGID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received bad status code %d from asana for task %s", resp.StatusCode, taskGID)
	}

	var envelope taskEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", taskGID, err)
	}
	return &envelope.Data, nil
}

// SetCustomField writes a single custom field value on a task.
// Returns the HTTP status for the caller to log; only transport failures
// are errors.
func (c *Client) SetCustomField(ctx context.Context, taskGID, fieldGID, value string) (int, error) {
	payload := map[string]any{
		"data": map[string]any{
			"custom_fields": map[string]string{fieldGID: value},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode custom field update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/tasks/"+taskGID, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	return c.fireAndForget(req)
}

// AddToSection relocates a task within projectGID to sectionGID.
// Asana semantics make this idempotent: adding a task already in the
// project simply moves it. insert_after stays "null", so the position
// within the section is unspecified.
func (c *Client) AddToSection(ctx context.Context, taskGID, projectGID, sectionGID string) (int, error) {
	form := url.Values{}
	form.Set("project", projectGID)
	form.Set("section", sectionGID)
	form.Set("insert_after", "null")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/tasks/"+taskGID+"/addProject", strings.NewReader(form.Encode()))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.fireAndForget(req)
}

// MarkCompleted sets completed=true on a task.
func (c *Client) MarkCompleted(ctx context.Context, taskGID string) (int, error) {
	form := url.Values{}
	form.Set("completed", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/tasks/"+taskGID, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.fireAndForget(req)
}

// fireAndForget executes a write call and reports the status without
// judging it. Drains the body so the connection can be reused.
func (c *Client) fireAndForget(req *http.Request) (int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
