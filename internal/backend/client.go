package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"parley/internal/config"
	"parley/internal/types"
)

const principalHeader = "X-Parley-Principal"

// Client is the typed RPC boundary to the backend. Every method is one
// asynchronous call that may fail independently; no causality is assumed
// across calls.
type Client struct {
	baseURL   string
	tokenPath string
	token     string
	principal string
	http      *http.Client
}

func New(principal string) (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	tokenPath, err := config.TokenPath()
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   cfg.BackendBaseURL(),
		tokenPath: tokenPath,
		principal: strings.TrimSpace(principal),
		http: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
	}
	_ = c.loadToken()
	return c, nil
}

func NewWithBaseURL(baseURL, token, principal string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		principal: strings.TrimSpace(principal),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Principal() string {
	return c.principal
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ShutdownDaemon(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/shutdown", nil, true, nil)
}

func (c *Client) GetCallerUserProfile(ctx context.Context) (*types.UserProfile, error) {
	var resp ProfileResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/profile", nil, true, &resp); err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

func (c *Client) SaveCallerUserProfile(ctx context.Context, profile types.UserProfile) error {
	return c.doJSON(ctx, http.MethodPut, "/v1/profile", profile, true, nil)
}

func (c *Client) GetCallerUserRole(ctx context.Context) (types.UserRole, error) {
	var resp RoleResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/role", nil, true, &resp); err != nil {
		return "", err
	}
	return resp.Role, nil
}

func (c *Client) IsCallerAdmin(ctx context.Context) (bool, error) {
	var resp AdminResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/role/admin", nil, true, &resp); err != nil {
		return false, err
	}
	return resp.Admin, nil
}

func (c *Client) AssignRole(ctx context.Context, principal string, role types.UserRole) error {
	req := AssignRoleRequest{Principal: strings.TrimSpace(principal), Role: role}
	return c.doJSON(ctx, http.MethodPost, "/v1/roles", req, true, nil)
}

// ListUsers returns the user directory. A backend without the directory
// endpoint yields an empty list rather than an error.
func (c *Client) ListUsers(ctx context.Context) ([]types.ChatUser, error) {
	var resp UsersResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/users", nil, true, &resp); err != nil {
		if isMissingEndpoint(err) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Users, nil
}

// ListConversations returns the caller's conversation projections. A backend
// without messaging yields an empty list rather than an error.
func (c *Client) ListConversations(ctx context.Context) ([]types.Conversation, error) {
	var resp ConversationsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/conversations", nil, true, &resp); err != nil {
		if isMissingEndpoint(err) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Conversations, nil
}

// GetConversation returns the ordered messages exchanged with peer, in
// server order. A backend without messaging yields an empty list.
func (c *Client) GetConversation(ctx context.Context, peer string) ([]types.Message, error) {
	peer = strings.TrimSpace(peer)
	if peer == "" {
		return nil, errors.New("peer is required")
	}
	var resp MessagesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/conversations/"+url.PathEscape(peer), nil, true, &resp); err != nil {
		if isMissingEndpoint(err) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Messages, nil
}

func (c *Client) MarkConversationRead(ctx context.Context, peer string) error {
	peer = strings.TrimSpace(peer)
	if peer == "" {
		return errors.New("peer is required")
	}
	err := c.doJSON(ctx, http.MethodPost, "/v1/conversations/"+url.PathEscape(peer)+"/read", nil, true, nil)
	if isMissingEndpoint(err) {
		return nil
	}
	return err
}

func (c *Client) SendMessage(ctx context.Context, recipient, content string) (*types.Message, error) {
	req := SendMessageRequest{Recipient: strings.TrimSpace(recipient), Content: content}
	var msg types.Message
	if err := c.doJSON(ctx, http.MethodPost, "/v1/messages", req, true, &msg); err != nil {
		if isMissingEndpoint(err) {
			return nil, &Error{Kind: KindNotReady, Msg: "messaging is not available on this backend"}
		}
		return nil, err
	}
	return &msg, nil
}

func (c *Client) GetProjects(ctx context.Context) ([]types.Project, error) {
	var resp ProjectsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/projects", nil, true, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

func (c *Client) GetProject(ctx context.Context, id uint64) (*types.Project, error) {
	var project types.Project
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/v1/projects/%d", id), nil, true, &project)
	if err != nil {
		if apiErr := asAPIError(err); apiErr != nil && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (c *Client) CreateProject(ctx context.Context, name string) (*types.Project, error) {
	var project types.Project
	req := CreateProjectRequest{Name: strings.TrimSpace(name)}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/projects", req, true, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, project types.Project) error {
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/v1/projects/%d", project.ID), project, true, nil)
}

func (c *Client) DeleteProject(ctx context.Context, id uint64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/v1/projects/%d", id), nil, true, nil)
}

func (c *Client) AddWorkflow(ctx context.Context, projectID uint64, name string) (*types.Workflow, error) {
	var workflow types.Workflow
	req := AddWorkflowRequest{Name: strings.TrimSpace(name)}
	path := fmt.Sprintf("/v1/projects/%d/workflows", projectID)
	if err := c.doJSON(ctx, http.MethodPost, path, req, true, &workflow); err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (c *Client) AddTask(ctx context.Context, projectID, workflowID uint64, description string) (*types.Task, error) {
	var task types.Task
	req := AddTaskRequest{Description: strings.TrimSpace(description)}
	path := fmt.Sprintf("/v1/projects/%d/workflows/%d/tasks", projectID, workflowID)
	if err := c.doJSON(ctx, http.MethodPost, path, req, true, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, requireAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requireAuth {
		if err := c.ensureToken(); err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		if c.principal != "" {
			req.Header.Set(principalHeader, c.principal)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) ensureToken() error {
	if strings.TrimSpace(c.token) == "" {
		if err := c.loadToken(); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.token) == "" {
		return errors.New("token not found; is the backend daemon running?")
	}
	return nil
}

func (c *Client) loadToken() error {
	if c.tokenPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.token = ""
			return nil
		}
		return err
	}
	c.token = strings.TrimSpace(string(data))
	return nil
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error string `json:"error"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}

// isMissingEndpoint reports whether the backend lacks the requested
// operation entirely, which this client treats as an interface gap rather
// than a failure. Status code is the whole signal: a bare-mux backend 404s
// with a plain-text body, not our JSON error shape.
func isMissingEndpoint(err error) bool {
	apiErr := asAPIError(err)
	return apiErr != nil && apiErr.StatusCode == http.StatusNotFound
}
