package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/squarehq/square/pkg/domain"
)

// requestTimeout is the single ceiling wait for every outbound request.
const requestTimeout = 10 * time.Second

// TokenSource supplies the current bearer token, or "" when the session is
// anonymous. Looked up per request so a login mid-session takes effect
// without rebuilding the client.
type TokenSource func() string

// Envelope is the uniform Square API response body.
type Envelope struct {
	Status        StatusCode      `json:"status"`
	Message       string          `json:"message"`
	Data          json.RawMessage `json:"data"`
	TransactionID string          `json:"transaction_id"`
}

// StatusCode tolerates the API returning status as either a number or a
// string.
type StatusCode string

func (s *StatusCode) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = StatusCode(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = StatusCode(n.String())
	return nil
}

// Client is the Square API client.
type Client struct {
	baseURL        string
	tokens         TokenSource
	httpClient     *http.Client
	txnID          string
	logger         *zap.Logger
	onUnauthorized func()
}

// New creates a new API client. tokens may be nil for an always-anonymous
// client. The transactionid header value is generated once per instance.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		txnID:  newTransactionID(time.Now()),
		logger: zap.NewNop(),
	}
}

// SetLogger attaches a request logger. The client never writes to stdout.
func (c *Client) SetLogger(l *zap.Logger) {
	if l != nil {
		c.logger = l
	}
}

// OnUnauthorized registers the single global session-invalidation hook. It
// runs after the best-effort remote logout whenever any request gets a 401.
// Individual call sites must not duplicate this handling.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// TransactionID returns the per-instance transactionid header value.
func (c *Client) TransactionID() string {
	return c.txnID
}

// --- Auth ---

// LoginRequest is the credentials payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.post(ctx, "/api/auth/login", LoginRequest{Email: email, Password: password}, &out); err != nil {
		return "", fmt.Errorf("client.Login: %w", err)
	}
	return out.AccessToken, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.post(ctx, "/api/auth/register", req, nil); err != nil {
		return fmt.Errorf("client.Register: %w", err)
	}
	return nil
}

// Logout invalidates the session server-side. Best effort: callers clear
// local state regardless of the result.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil, true); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// UserProfile fetches a user's profile by id.
func (c *Client) UserProfile(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/api/users/"+url.PathEscape(id), &u); err != nil {
		return nil, fmt.Errorf("client.UserProfile: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users, for assignment and membership pickers.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.get(ctx, "/api/users", &users); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	return users, nil
}

// --- Projects ---

// CreateProjectRequest is the payload for creating a project.
type CreateProjectRequest struct {
	Title string `json:"title"`
}

// UpdateProjectRequest renames a project and replaces its membership set.
type UpdateProjectRequest struct {
	ProjectID  string   `json:"projectId"`
	Title      string   `json:"title"`
	NewMembers []string `json:"newMembers"`
}

// ListProjects lists or searches projects.
func (c *Client) ListProjects(ctx context.Context, search string, page, limit int) ([]domain.Project, error) {
	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var projects []domain.Project
	if err := c.get(ctx, "/api/projects?"+params.Encode(), &projects); err != nil {
		return nil, fmt.Errorf("client.ListProjects: %w", err)
	}
	return projects, nil
}

// CreateProject creates a new project owned by the caller.
func (c *Client) CreateProject(ctx context.Context, title string) error {
	if err := c.post(ctx, "/api/projects", CreateProjectRequest{Title: title}, nil); err != nil {
		return fmt.Errorf("client.CreateProject: %w", err)
	}
	return nil
}

// UpdateProject renames a project and updates its membership.
func (c *Client) UpdateProject(ctx context.Context, req UpdateProjectRequest) error {
	if err := c.doRequest(ctx, http.MethodPut, "/api/projects", req, nil, false); err != nil {
		return fmt.Errorf("client.UpdateProject: %w", err)
	}
	return nil
}

// DeleteProject deletes a project by id.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, nil, false); err != nil {
		return fmt.Errorf("client.DeleteProject: %w", err)
	}
	return nil
}

// GetProject fetches one project with its tasks and memberships.
func (c *Client) GetProject(ctx context.Context, id string) (*domain.ProjectDetail, error) {
	var detail domain.ProjectDetail
	if err := c.get(ctx, "/api/projects/"+url.PathEscape(id), &detail); err != nil {
		return nil, fmt.Errorf("client.GetProject: %w", err)
	}
	return &detail, nil
}

// ListMembers returns the members of a project.
func (c *Client) ListMembers(ctx context.Context, projectID string) ([]domain.User, error) {
	var members []domain.User
	if err := c.get(ctx, "/api/projects/members/"+url.PathEscape(projectID), &members); err != nil {
		return nil, fmt.Errorf("client.ListMembers: %w", err)
	}
	return members, nil
}

// --- Tasks ---

// NewTask is one task in a create request.
type NewTask struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      domain.Status `json:"status"`
	AssigneeID  string        `json:"assigneeId"`
}

// CreateTasksRequest is the payload for creating one or more tasks.
type CreateTasksRequest struct {
	ProjectID string    `json:"projectId"`
	Tasks     []NewTask `json:"tasks"`
}

// UpdateTaskRequest moves a task to a new status column.
type UpdateTaskRequest struct {
	ProjectID string        `json:"projectId"`
	TaskID    string        `json:"taskId"`
	Status    domain.Status `json:"status"`
}

// CreateTasks creates tasks in a project.
func (c *Client) CreateTasks(ctx context.Context, req CreateTasksRequest) error {
	if err := c.post(ctx, "/api/task", req, nil); err != nil {
		return fmt.Errorf("client.CreateTasks: %w", err)
	}
	return nil
}

// UpdateTaskStatus persists a task's new status column.
func (c *Client) UpdateTaskStatus(ctx context.Context, projectID, taskID string, status domain.Status) error {
	req := UpdateTaskRequest{ProjectID: projectID, TaskID: taskID, Status: status}
	if err := c.doRequest(ctx, http.MethodPatch, "/api/task", req, nil, false); err != nil {
		return fmt.Errorf("client.UpdateTaskStatus: %w", err)
	}
	return nil
}

// --- Transport ---

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out, false)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out, false)
}

// doRequest sends one request and decodes the envelope. skipUnauthorized
// suppresses the 401 hook so the logout notification itself can never
// re-enter the hook.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any, skipUnauthorized bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Transactionid", c.txnID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max body
	if err != nil {
		return &NetworkError{Err: err}
	}

	var env Envelope
	envErr := json.Unmarshal(respBody, &env)

	c.logger.Info("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("transaction_id", c.txnID))

	if resp.StatusCode >= 400 {
		msg := env.Message
		if envErr != nil || msg == "" {
			msg = string(respBody)
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: msg}
		if resp.StatusCode == http.StatusUnauthorized && !skipUnauthorized {
			c.handleUnauthorized(ctx)
		}
		return apiErr
	}

	if out != nil {
		if envErr != nil {
			return fmt.Errorf("decode envelope: %w", envErr)
		}
		if len(env.Data) > 0 && string(env.Data) != "null" {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return fmt.Errorf("decode response data: %w", err)
			}
		}
	}
	return nil
}

// handleUnauthorized runs the global session-invalidation path: a best-effort
// remote logout, then the registered hook. Fires once per 401 response.
func (c *Client) handleUnauthorized(ctx context.Context) {
	if err := c.Logout(ctx); err != nil {
		c.logger.Warn("logout notification failed", zap.Error(err))
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}
