// Package apiclient is the HTTP/JSON client for the project-data API.
package apiclient

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
	"strings"
	"time"

	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"
	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/workspace"
)

// maxErrorBody bounds how much of an error response is read for its detail.
const maxErrorBody = 64 << 10

// Client implements workspace.ProjectAPI over HTTP. Every failure is a *domain.RemoteError.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the API at baseURL, authenticating with a bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ workspace.ProjectAPI = (*Client)(nil)

// GetProjectWithContent fetches the full project snapshot
func (c *Client) GetProjectWithContent(ctx context.Context, projectID string) (*workspace.Snapshot, error) {
	var snap workspace.Snapshot
	if err := c.do(ctx, "get project", http.MethodGet, "/api/projects/"+url.PathEscape(projectID), nil, &snap); err != nil {
		return nil, err
	}
	if snap.ID == "" {
		return nil, &domain.RemoteError{Op: "get project", Err: errors.New("response is missing the project id")}
	}
	if snap.ID != projectID {
		return nil, &domain.RemoteError{Op: "get project", Err: fmt.Errorf("response is for project %q", snap.ID)}
	}
	return &snap, nil
}

// CreateCode creates a code
func (c *Client) CreateCode(ctx context.Context, req *codingSvc.CreateCodeRequest) (*coding.Code, error) {
	var code coding.Code
	if err := c.do(ctx, "create code", http.MethodPost, "/api/codes", req, &code); err != nil {
		return nil, err
	}
	return &code, nil
}

// AssignCode persists an assignment
func (c *Client) AssignCode(ctx context.Context, req *codingSvc.AssignCodeRequest) (*coding.AssignCodeResult, error) {
	var result coding.AssignCodeResult
	if err := c.do(ctx, "assign code", http.MethodPost, "/api/code-assignments/assign", req, &result); err != nil {
		return nil, err
	}
	if result.CodeAssignment.ID == "" || result.Code.ID == "" {
		return nil, &domain.RemoteError{Op: "assign code", Err: errors.New("response is missing the assignment or code id")}
	}
	return &result, nil
}

// DeleteAssignment deletes an assignment
func (c *Client) DeleteAssignment(ctx context.Context, assignmentID string) error {
	return c.do(ctx, "delete assignment", http.MethodDelete, "/api/code-assignments/"+url.PathEscape(assignmentID), nil, nil)
}

// UpdateAssignmentNote changes an assignment's note
func (c *Client) UpdateAssignmentNote(ctx context.Context, assignmentID, note string) (*coding.CodeAssignment, error) {
	var assignment coding.CodeAssignment
	body := codingSvc.UpdateAssignmentRequest{Note: note}
	if err := c.do(ctx, "update note", http.MethodPatch, "/api/code-assignments/"+url.PathEscape(assignmentID), body, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// UpdateProject replaces title and description
func (c *Client) UpdateProject(ctx context.Context, projectID string, req *codingSvc.UpdateProjectRequest) (*coding.Project, error) {
	var project coding.Project
	if err := c.do(ctx, "update project", http.MethodPut, "/api/projects/"+url.PathEscape(projectID), req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// AddCollaborator grants an email access; the new list arrives with the next refresh
func (c *Client) AddCollaborator(ctx context.Context, projectID, email string) error {
	body := codingSvc.CollaboratorRequest{Email: email}
	return c.do(ctx, "add collaborator", http.MethodPost, "/api/projects/"+url.PathEscape(projectID)+"/collaborators", body, nil)
}

// RemoveCollaborator revokes an email's access
func (c *Client) RemoveCollaborator(ctx context.Context, projectID, email string) error {
	path := "/api/projects/" + url.PathEscape(projectID) + "/collaborators/" + url.PathEscape(email)
	return c.do(ctx, "remove collaborator", http.MethodDelete, path, nil, nil)
}

// SaveResearchDetails replaces research questions and objectives
func (c *Client) SaveResearchDetails(ctx context.Context, projectID string, req *codingSvc.ResearchDetailsRequest) error {
	return c.do(ctx, "save research details", http.MethodPut, "/api/projects/"+url.PathEscape(projectID)+"/research-details", req, nil)
}

// CreateAnnotation creates a comment
func (c *Client) CreateAnnotation(ctx context.Context, req *codingSvc.CreateAnnotationRequest) (*coding.Annotation, error) {
	var annotation coding.Annotation
	if err := c.do(ctx, "create annotation", http.MethodPost, "/api/annotations", req, &annotation); err != nil {
		return nil, err
	}
	return &annotation, nil
}

// DeleteAnnotation deletes a comment
func (c *Client) DeleteAnnotation(ctx context.Context, annotationID string) error {
	return c.do(ctx, "delete annotation", http.MethodDelete, "/api/annotations/"+url.PathEscape(annotationID), nil, nil)
}

// CreateTheme creates a theme
func (c *Client) CreateTheme(ctx context.Context, req *codingSvc.CreateThemeRequest) (*coding.Theme, error) {
	var theme coding.Theme
	if err := c.do(ctx, "create theme", http.MethodPost, "/api/themes", req, &theme); err != nil {
		return nil, err
	}
	return &theme, nil
}

// SetCodeTheme files a code under a theme; nil clears it
func (c *Client) SetCodeTheme(ctx context.Context, codeID string, themeID *string) (*coding.Code, error) {
	var code coding.Code
	path := "/api/codes/" + url.PathEscape(codeID) + "/theme"
	if err := c.do(ctx, "set code theme", http.MethodPut, path, &codingSvc.SetCodeThemeRequest{ThemeID: themeID}, &code); err != nil {
		return nil, err
	}
	return &code, nil
}

// MergeCodesToDefault moves codes into the caller's default codebook
func (c *Client) MergeCodesToDefault(ctx context.Context, projectID string, codeIDs []string) (*coding.MergeResult, error) {
	var result coding.MergeResult
	path := "/api/projects/" + url.PathEscape(projectID) + "/codebooks/merge-to-default"
	if err := c.do(ctx, "merge codes", http.MethodPost, path, &codingSvc.MergeCodesRequest{CodeIDs: codeIDs}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do sends one request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &domain.RemoteError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &domain.RemoteError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.RemoteError{Op: op, StatusCode: resp.StatusCode, Detail: problemDetail(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.RemoteError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// problemDetail extracts the detail of an RFC 7807 body, falling back to the raw text.
func problemDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &problem) == nil {
		if problem.Detail != "" {
			return problem.Detail
		}
		if problem.Title != "" {
			return problem.Title
		}
	}
	return strings.TrimSpace(string(raw))
}
