package server

import (
	"boardspace/internal/domain"
	"boardspace/internal/engine"
)

type CreateCommentRequest struct {
	CommentHTML string `json:"comment_html" example:"<p>Looks good to me</p>"`
}

type UpdateCommentRequest struct {
	CommentHTML string `json:"comment_html"`
}

type CreateReactionRequest struct {
	Reaction string `json:"reaction" example:"128077"`
}

type CastVoteRequest struct {
	Vote int `json:"vote,omitempty" enum:"-1,0,1" doc:"Vote value; omitted defaults to 1"`
}

type IssueListResponse struct {
	Results    []domain.Issue `json:"results"`
	NextCursor string         `json:"next_cursor,omitempty"`
	TotalCount int            `json:"total_count"`
}

type IssueGroupResponse struct {
	Results    []domain.Issue `json:"results"`
	Count      int            `json:"count"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type GroupedIssueListResponse struct {
	Groups map[string]IssueGroupResponse `json:"groups"`
}

func issueListResponse(p engine.IssuePage) IssueListResponse {
	return IssueListResponse{
		Results:    p.Results,
		NextCursor: p.NextCursor,
		TotalCount: p.TotalCount,
	}
}

func groupedIssueListResponse(p engine.GroupedIssuePage) GroupedIssueListResponse {
	out := GroupedIssueListResponse{Groups: map[string]IssueGroupResponse{}}
	for key, g := range p.Groups {
		out.Groups[key] = IssueGroupResponse{
			Results:    g.Results,
			Count:      g.Count,
			NextCursor: g.NextCursor,
		}
	}
	return out
}
