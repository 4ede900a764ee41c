package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"boardspace/internal/domain"
	"boardspace/internal/engine"
	"boardspace/internal/repo"
)

type issueListInput struct {
	WorkspaceSlug string `path:"workspace_slug"`
	ProjectID     string `path:"project_id"`
	States        string `query:"state" doc:"Comma-separated state ids"`
	Priorities    string `query:"priority" doc:"Comma-separated priorities"`
	Labels        string `query:"labels" doc:"Comma-separated label ids"`
	Assignees     string `query:"assignees" doc:"Comma-separated member ids"`
	CreatedBy     string `query:"created_by" doc:"Comma-separated member ids"`
	CreatedAfter  string `query:"created_at_after"`
	CreatedBefore string `query:"created_at_before"`
	OrderBy       string `query:"order_by" doc:"Field name, '-' prefix for descending"`
	GroupBy       string `query:"group_by" enum:",state,priority,assignee,label"`
	Cursor        string `query:"cursor"`
	PerPage       int    `query:"per_page"`
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (in *issueListInput) query() engine.IssueQuery {
	return engine.IssueQuery{
		Filters: repo.IssueFilters{
			States:        splitParam(in.States),
			Priorities:    splitParam(in.Priorities),
			Labels:        splitParam(in.Labels),
			Assignees:     splitParam(in.Assignees),
			CreatedBy:     splitParam(in.CreatedBy),
			CreatedAfter:  in.CreatedAfter,
			CreatedBefore: in.CreatedBefore,
		},
		OrderBy: in.OrderBy,
		GroupBy: in.GroupBy,
		Cursor:  in.Cursor,
		PerPage: in.PerPage,
	}
}

func registerIssues(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-public-issues",
		Method:      http.MethodGet,
		Path:        "/workspaces/{workspace_slug}/projects/{project_id}/issues",
		Summary:     "List public issues",
		Description: "Filtered, ordered, optionally grouped listing of a published project's issues.",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *issueListInput) (*struct {
		Body map[string]any `json:"body"`
	}, error) {
		q := input.query()
		if q.GroupBy != "" {
			page, err := e.GroupedPublicIssues(ctx, input.WorkspaceSlug, input.ProjectID, q)
			if err != nil {
				return nil, handleError(err)
			}
			resp := groupedIssueListResponse(page)
			return &struct {
				Body map[string]any `json:"body"`
			}{Body: map[string]any{"groups": resp.Groups}}, nil
		}
		page, err := e.ListPublicIssues(ctx, input.WorkspaceSlug, input.ProjectID, q)
		if err != nil {
			return nil, handleError(err)
		}
		resp := issueListResponse(page)
		return &struct {
			Body map[string]any `json:"body"`
		}{Body: map[string]any{
			"results":     resp.Results,
			"next_cursor": resp.NextCursor,
			"total_count": resp.TotalCount,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-public-issue",
		Method:      http.MethodGet,
		Path:        "/workspaces/{workspace_slug}/projects/{project_id}/issues/{issue_id}",
		Summary:     "Get public issue",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		WorkspaceSlug string `path:"workspace_slug"`
		ProjectID     string `path:"project_id"`
		IssueID       string `path:"issue_id"`
	}) (*struct {
		Body domain.Issue `json:"body"`
	}, error) {
		it, err := e.GetPublicIssue(ctx, input.WorkspaceSlug, input.ProjectID, input.IssueID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Issue `json:"body"`
		}{Body: it}, nil
	})
}
