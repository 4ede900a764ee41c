package engine

import (
	"context"
	"errors"
	"strconv"

	"boardspace/internal/domain"
	"boardspace/internal/repo"
)

// IssueQuery carries the parsed listing parameters. GroupBy empty means
// a flat page.
type IssueQuery struct {
	Filters repo.IssueFilters
	OrderBy string
	GroupBy string
	Cursor  string
	PerPage int
}

type IssuePage struct {
	Results    []domain.Issue
	NextCursor string
	TotalCount int
}

type IssueGroup struct {
	Results    []domain.Issue
	Count      int
	NextCursor string
}

type GroupedIssuePage struct {
	Groups map[string]IssueGroup
}

func (e Engine) pageSize(requested int) int {
	def, max := 20, 100
	if e.Config != nil {
		def = e.Config.Pagination.DefaultPageSize
		max = e.Config.Pagination.MaxPageSize
	}
	if requested <= 0 {
		return def
	}
	if requested > max {
		return max
	}
	return requested
}

func parseCursor(cursor string) int {
	if cursor == "" {
		return 0
	}
	n, err := strconv.Atoi(cursor)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func nextCursor(offset, limit, returned int) string {
	if returned < limit {
		return ""
	}
	return strconv.Itoa(offset + limit)
}

// ListPublicIssues serves the public listing of a published project.
// Unlike the sub-resource lists, an unpublished project here is a hard
// ErrNotPublished, not an empty page.
func (e Engine) ListPublicIssues(ctx context.Context, workspaceSlug, projectID string, q IssueQuery) (IssuePage, error) {
	if _, err := e.board(ctx, workspaceSlug, projectID); err != nil {
		return IssuePage{}, err
	}
	limit := e.pageSize(q.PerPage)
	offset := parseCursor(q.Cursor)
	results, total, err := e.Repo.ListPublicIssues(ctx, workspaceSlug, projectID, q.Filters, q.OrderBy, limit, offset)
	if err != nil {
		return IssuePage{}, err
	}
	if results == nil {
		results = []domain.Issue{}
	}
	return IssuePage{
		Results:    results,
		NextCursor: nextCursor(offset, limit, len(results)),
		TotalCount: total,
	}, nil
}

// GroupedPublicIssues serves the grouped form of the listing for a
// closed set of groupable fields.
func (e Engine) GroupedPublicIssues(ctx context.Context, workspaceSlug, projectID string, q IssueQuery) (GroupedIssuePage, error) {
	if !repo.IsGroupableField(q.GroupBy) {
		return GroupedIssuePage{}, ValidationError{Msg: "group_by must be one of state, priority, assignee, label"}
	}
	if _, err := e.board(ctx, workspaceSlug, projectID); err != nil {
		return GroupedIssuePage{}, err
	}
	limit := e.pageSize(q.PerPage)
	offset := parseCursor(q.Cursor)
	pages, err := e.Repo.GroupedPublicIssues(ctx, workspaceSlug, projectID, q.Filters, q.GroupBy, q.OrderBy, limit, offset)
	if err != nil {
		return GroupedIssuePage{}, err
	}
	out := GroupedIssuePage{Groups: map[string]IssueGroup{}}
	for _, p := range pages {
		results := p.Results
		if results == nil {
			results = []domain.Issue{}
		}
		out.Groups[p.Key] = IssueGroup{
			Results:    results,
			Count:      p.Count,
			NextCursor: nextCursor(offset, limit, len(results)),
		}
	}
	return out, nil
}

// GetPublicIssue retrieves one issue of a published project.
func (e Engine) GetPublicIssue(ctx context.Context, workspaceSlug, projectID, issueID string) (domain.Issue, error) {
	if _, err := e.board(ctx, workspaceSlug, projectID); err != nil {
		return domain.Issue{}, err
	}
	it, err := e.Repo.GetPublicIssue(ctx, workspaceSlug, projectID, issueID)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Issue{}, repo.ErrNotFound
	}
	return it, err
}
