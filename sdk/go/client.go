package leadlinesdk

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

// Client is a minimal Leadline HTTP API client.
type Client struct {
	BaseURL     string
	APIKey      string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Project represents the API project model.
type Project struct {
	ID               string                `json:"id"`
	SiteName         string                `json:"site_name"`
	ConstructionType string                `json:"construction_type"`
	BuildingType     string                `json:"building_type"`
	Address          string                `json:"address"`
	Units            string                `json:"units"`
	CustomerType     string                `json:"customer_type"`
	Contact          string                `json:"contact"`
	ContactName      string                `json:"contact_name"`
	Source           string                `json:"source"`
	Inquiry          string                `json:"inquiry"`
	Status           string                `json:"status"`
	AssignedTo       *string               `json:"assigned_to,omitempty"`
	Checklist        map[string]bool       `json:"checklist"`
	TaskDetails      map[string]TaskDetail `json:"task_details"`
	CancelReason     string                `json:"cancel_reason,omitempty"`
	CreatedAt        string                `json:"created_at"`
	AssignedAt       *string               `json:"assigned_at,omitempty"`
	CompletedAt      *string               `json:"completed_at,omitempty"`
	CancelledAt      *string               `json:"cancelled_at,omitempty"`
}

// TaskDetail is the evidence attached to a checklist task.
type TaskDetail struct {
	Photos     []string `json:"photos"`
	PTFileName string   `json:"pt_file_name,omitempty"`
	Memo       string   `json:"memo,omitempty"`
}

// Event represents a log entry.
type Event struct {
	ID        int64          `json:"id"`
	TS        string         `json:"ts"`
	Type      string         `json:"type"`
	ProjectID string         `json:"project_id,omitempty"`
	ActorID   string         `json:"actor_id"`
	Payload   map[string]any `json:"payload"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// PostWebhookMessage submits a raw messenger message as if delivered by the
// outgoing webhook. The returned project is in status new.
func (c *Client) PostWebhookMessage(ctx context.Context, token, text string) (Project, error) {
	body := map[string]any{
		"token": token,
		"text":  text,
	}
	var resp Project
	err := c.do(ctx, http.MethodPost, "v0/webhooks/jandi", body, &resp)
	return resp, err
}

// ListProjects returns projects, optionally filtered by status and assignee.
func (c *Client) ListProjects(ctx context.Context, status, assignedTo string) ([]Project, error) {
	endpoint := "v0/projects"
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if assignedTo != "" {
		q.Set("assigned_to", assignedTo)
	}
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp []Project
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// GetProject fetches a project by id.
func (c *Client) GetProject(ctx context.Context, id string) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodGet, c.projectPath(id, ""), nil, &resp)
	return resp, err
}

// Assign assigns a project to an employee.
func (c *Client) Assign(ctx context.Context, projectID, employeeID string) (Project, error) {
	body := map[string]any{"employee_id": employeeID}
	var resp Project
	err := c.do(ctx, http.MethodPost, c.projectPath(projectID, "assign"), body, &resp)
	return resp, err
}

// UpdateChecklist replaces the project checklist.
func (c *Client) UpdateChecklist(ctx context.Context, projectID string, checklist map[string]bool) (Project, error) {
	body := map[string]any{"checklist": checklist}
	var resp Project
	err := c.do(ctx, http.MethodPatch, c.projectPath(projectID, "checklist"), body, &resp)
	return resp, err
}

// Complete marks a project completed, optionally with a final checklist.
func (c *Client) Complete(ctx context.Context, projectID string, checklist map[string]bool) (Project, error) {
	body := map[string]any{}
	if checklist != nil {
		body["checklist"] = checklist
	}
	var resp Project
	err := c.do(ctx, http.MethodPost, c.projectPath(projectID, "complete"), body, &resp)
	return resp, err
}

// Cancel cancels a project with a reason.
func (c *Client) Cancel(ctx context.Context, projectID, reason string) (Project, error) {
	body := map[string]any{"reason": reason}
	var resp Project
	err := c.do(ctx, http.MethodPost, c.projectPath(projectID, "cancel"), body, &resp)
	return resp, err
}

// SaveTaskDetail stores evidence for a checklist task.
func (c *Client) SaveTaskDetail(ctx context.Context, projectID, taskID string, detail TaskDetail) (Project, error) {
	var resp Project
	endpoint := c.projectPath(projectID, "tasks/"+url.PathEscape(taskID))
	err := c.do(ctx, http.MethodPut, endpoint, detail, &resp)
	return resp, err
}

// EmployeeProjects returns projects assigned to one employee. With all set,
// terminal projects are included.
func (c *Client) EmployeeProjects(ctx context.Context, employeeID string, all bool) ([]Project, error) {
	endpoint := fmt.Sprintf("v0/employees/%s/projects", url.PathEscape(employeeID))
	if all {
		endpoint += "?all=true"
	}
	var resp []Project
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// Events returns recent events.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	endpoint := "v0/events"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp []Event
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.APIKey != "":
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) projectPath(projectID, p string) string {
	endpoint := fmt.Sprintf("v0/projects/%s", url.PathEscape(projectID))
	if p != "" {
		endpoint += "/" + strings.TrimLeft(p, "/")
	}
	return endpoint
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
