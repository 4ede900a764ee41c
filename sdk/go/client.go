package boardspacesdk

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

// Client is a minimal Boardspace public API client.
type Client struct {
	BaseURL       string
	WorkspaceSlug string
	ProjectID     string
	BearerToken   string
	HTTPClient    *http.Client
	Timeout       time.Duration
}

// New creates a client with sane defaults.
func New(baseURL, workspaceSlug, projectID string) *Client {
	return &Client{
		BaseURL:       baseURL,
		WorkspaceSlug: workspaceSlug,
		ProjectID:     projectID,
		Timeout:       10 * time.Second,
	}
}

// Issue represents the API issue model (partial).
type Issue struct {
	ID              string   `json:"id"`
	ProjectID       string   `json:"project_id"`
	StateID         *string  `json:"state_id,omitempty"`
	Name            string   `json:"name"`
	Priority        string   `json:"priority"`
	SequenceID      int64    `json:"sequence_id"`
	TargetDate      *string  `json:"target_date,omitempty"`
	AssigneeIDs     []string `json:"assignee_ids,omitempty"`
	LabelIDs        []string `json:"label_ids,omitempty"`
	LinkCount       int64    `json:"link_count"`
	AttachmentCount int64    `json:"attachment_count"`
	SubIssueCount   int64    `json:"sub_issues_count"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type Comment struct {
	ID          string `json:"id"`
	IssueID     string `json:"issue_id"`
	ActorID     string `json:"actor_id"`
	CommentHTML string `json:"comment_html"`
	Access      string `json:"access"`
	IsMember    bool   `json:"is_member"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type Reaction struct {
	ID       string `json:"id"`
	ActorID  string `json:"actor_id"`
	Reaction string `json:"reaction"`
}

type Vote struct {
	ID      string `json:"id"`
	IssueID string `json:"issue_id"`
	ActorID string `json:"actor_id"`
	Vote    int    `json:"vote"`
}

// IssuePage is the flat listing response.
type IssuePage struct {
	Results    []Issue `json:"results"`
	NextCursor string  `json:"next_cursor"`
	TotalCount int     `json:"total_count"`
}

// IssueGroup is one group of the grouped listing response.
type IssueGroup struct {
	Results    []Issue `json:"results"`
	Count      int     `json:"count"`
	NextCursor string  `json:"next_cursor"`
}

type GroupedIssuePage struct {
	Groups map[string]IssueGroup `json:"groups"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// ListIssues fetches one page of the public issue listing. Query is
// passed through verbatim (e.g. "priority=high&order_by=-created_at").
func (c *Client) ListIssues(ctx context.Context, query string) (IssuePage, error) {
	endpoint := c.projectPath("issues")
	if query != "" {
		endpoint += "?" + query
	}
	var resp IssuePage
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// ListIssuesGrouped fetches the grouped form of the listing.
func (c *Client) ListIssuesGrouped(ctx context.Context, groupBy, query string) (GroupedIssuePage, error) {
	endpoint := c.projectPath("issues") + "?group_by=" + url.QueryEscape(groupBy)
	if query != "" {
		endpoint += "&" + query
	}
	var resp GroupedIssuePage
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) GetIssue(ctx context.Context, issueID string) (Issue, error) {
	var resp Issue
	err := c.do(ctx, http.MethodGet, c.issuePath(issueID, ""), nil, &resp)
	return resp, err
}

func (c *Client) ListComments(ctx context.Context, issueID string) ([]Comment, error) {
	var resp []Comment
	err := c.do(ctx, http.MethodGet, c.issuePath(issueID, "comments"), nil, &resp)
	return resp, err
}

func (c *Client) CreateComment(ctx context.Context, issueID, commentHTML string) (Comment, error) {
	var resp Comment
	err := c.do(ctx, http.MethodPost, c.issuePath(issueID, "comments"), map[string]any{"comment_html": commentHTML}, &resp)
	return resp, err
}

func (c *Client) UpdateComment(ctx context.Context, issueID, commentID, commentHTML string) (Comment, error) {
	var resp Comment
	err := c.do(ctx, http.MethodPatch, c.issuePath(issueID, "comments/"+url.PathEscape(commentID)), map[string]any{"comment_html": commentHTML}, &resp)
	return resp, err
}

func (c *Client) DeleteComment(ctx context.Context, issueID, commentID string) error {
	return c.do(ctx, http.MethodDelete, c.issuePath(issueID, "comments/"+url.PathEscape(commentID)), nil, nil)
}

func (c *Client) ReactToIssue(ctx context.Context, issueID, reaction string) (Reaction, error) {
	var resp Reaction
	err := c.do(ctx, http.MethodPost, c.issuePath(issueID, "reactions"), map[string]any{"reaction": reaction}, &resp)
	return resp, err
}

func (c *Client) UnreactToIssue(ctx context.Context, issueID, reaction string) error {
	return c.do(ctx, http.MethodDelete, c.issuePath(issueID, "reactions/"+url.PathEscape(reaction)), nil, nil)
}

func (c *Client) ReactToComment(ctx context.Context, commentID, reaction string) (Reaction, error) {
	var resp Reaction
	err := c.do(ctx, http.MethodPost, c.projectPath("comments/"+url.PathEscape(commentID)+"/reactions"), map[string]any{"reaction": reaction}, &resp)
	return resp, err
}

func (c *Client) UnreactToComment(ctx context.Context, commentID, reaction string) error {
	return c.do(ctx, http.MethodDelete, c.projectPath("comments/"+url.PathEscape(commentID)+"/reactions/"+url.PathEscape(reaction)), nil, nil)
}

func (c *Client) Vote(ctx context.Context, issueID string, vote int) (Vote, error) {
	var resp Vote
	err := c.do(ctx, http.MethodPost, c.issuePath(issueID, "votes"), map[string]any{"vote": vote}, &resp)
	return resp, err
}

func (c *Client) RetractVote(ctx context.Context, issueID string) error {
	return c.do(ctx, http.MethodDelete, c.issuePath(issueID, "votes"), nil, nil)
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
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
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

func (c *Client) projectPath(p string) string {
	slug := url.PathEscape(c.WorkspaceSlug)
	project := url.PathEscape(c.ProjectID)
	return fmt.Sprintf("v1/workspaces/%s/projects/%s/%s", slug, project, strings.TrimLeft(p, "/"))
}

func (c *Client) issuePath(issueID, sub string) string {
	p := "issues/" + url.PathEscape(issueID)
	if sub != "" {
		p += "/" + strings.TrimLeft(sub, "/")
	}
	return c.projectPath(p)
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
