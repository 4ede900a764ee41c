package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"boardspace/internal/domain"
	"boardspace/internal/engine"
)

type IssuePath struct {
	WorkspaceSlug string `path:"workspace_slug"`
	ProjectID     string `path:"project_id"`
	IssueID       string `path:"issue_id"`
}

type CommentPath struct {
	WorkspaceSlug string `path:"workspace_slug"`
	ProjectID     string `path:"project_id"`
	IssueID       string `path:"issue_id"`
	CommentID     string `path:"comment_id"`
}

func registerComments(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-issue-comments",
		Method:      http.MethodGet,
		Path:        "/workspaces/{workspace_slug}/projects/{project_id}/issues/{issue_id}/comments",
		Summary:     "List issue comments",
		Description: "Public comments on an issue, oldest first, each annotated with whether the caller is a project member. Empty when the project is not published or comments are disabled.",
	}, func(ctx context.Context, input *IssuePath) (*struct {
		Body []domain.Comment `json:"body"`
	}, error) {
		viewer, _ := principalFromContext(ctx)
		comments, err := e.ListComments(ctx, input.WorkspaceSlug, input.ProjectID, input.IssueID, viewer.ActorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Comment `json:"body"`
		}{Body: comments}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-issue-comment",
		Method:        http.MethodPost,
		Path:          "/workspaces/{workspace_slug}/projects/{project_id}/issues/{issue_id}/comments",
		Summary:       "Create issue comment",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		IssuePath
		Body CreateCommentRequest `json:"body"`
	}) (*struct {
		Body domain.Comment `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		c, err := e.CreateComment(ctx, input.WorkspaceSlug, input.ProjectID, input.IssueID, actorID, input.Body.CommentHTML)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Comment `json:"body"`
		}{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-issue-comment",
		Method:      http.MethodPatch,
		Path:        "/workspaces/{workspace_slug}/projects/{project_id}/issues/{issue_id}/comments/{comment_id}",
		Summary:     "Update issue comment",
		Description: "Only the comment's author may update it; anyone else's comment reads as not found.",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		CommentPath
		Body UpdateCommentRequest `json:"body"`
	}) (*struct {
		Body domain.Comment `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		c, err := e.UpdateComment(ctx, input.WorkspaceSlug, input.ProjectID, input.IssueID, input.CommentID, actorID, input.Body.CommentHTML, bodyBytes(ctx))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Comment `json:"body"`
		}{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-issue-comment",
		Method:        http.MethodDelete,
		Path:          "/workspaces/{workspace_slug}/projects/{project_id}/issues/{issue_id}/comments/{comment_id}",
		Summary:       "Delete issue comment",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *CommentPath) (*struct{}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.DeleteComment(ctx, input.WorkspaceSlug, input.ProjectID, input.IssueID, input.CommentID, actorID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerIssueReactions(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-issue-reactions",
		Method:      http.MethodGet,
		Path:        "/workspaces/{workspace_slug}/projects/{project_id}/issues/{issue_id}/reactions",
		Summary:     "List issue reactions",
	}, func(ctx context.Context, input *IssuePath) (*struct {
		Body []domain.IssueReaction `json:"body"`
	}, error) {
		res, err := e.ListIssueReactions(ctx, input.WorkspaceSlug, input.ProjectID, input.IssueID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.IssueReaction `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-issue-reaction",
		Method:        http.MethodPost,
		Path:          "/workspaces/{workspace_slug}/projects/{project_id}/issues/{issue_id}/reactions",
		Summary:       "React to issue",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		IssuePath
		Body CreateReactionRequest `json:"body"`
	}) (*struct {
		Body domain.IssueReaction `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		x, err := e.CreateIssueReaction(ctx, input.WorkspaceSlug, input.ProjectID, input.IssueID, actorID, input.Body.Reaction)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.IssueReaction `json:"body"`
		}{Body: x}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-issue-reaction",
		Method:        http.MethodDelete,
		Path:          "/workspaces/{workspace_slug}/projects/{project_id}/issues/{issue_id}/reactions/{reaction_code}",
		Summary:       "Remove issue reaction",
		Description:   "Removes the caller's reaction with the given code.",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		IssuePath
		ReactionCode string `path:"reaction_code"`
	}) (*struct{}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.DeleteIssueReaction(ctx, input.WorkspaceSlug, input.ProjectID, input.IssueID, input.ReactionCode, actorID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerCommentReactions(api huma.API, e engine.Engine) {
	type CommentReactionPath struct {
		WorkspaceSlug string `path:"workspace_slug"`
		ProjectID     string `path:"project_id"`
		CommentID     string `path:"comment_id"`
	}

	huma.Register(api, huma.Operation{
		OperationID: "list-comment-reactions",
		Method:      http.MethodGet,
		Path:        "/workspaces/{workspace_slug}/projects/{project_id}/comments/{comment_id}/reactions",
		Summary:     "List comment reactions",
	}, func(ctx context.Context, input *CommentReactionPath) (*struct {
		Body []domain.CommentReaction `json:"body"`
	}, error) {
		res, err := e.ListCommentReactions(ctx, input.WorkspaceSlug, input.ProjectID, input.CommentID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.CommentReaction `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-comment-reaction",
		Method:        http.MethodPost,
		Path:          "/workspaces/{workspace_slug}/projects/{project_id}/comments/{comment_id}/reactions",
		Summary:       "React to comment",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		CommentReactionPath
		Body CreateReactionRequest `json:"body"`
	}) (*struct {
		Body domain.CommentReaction `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		x, err := e.CreateCommentReaction(ctx, input.WorkspaceSlug, input.ProjectID, input.CommentID, actorID, input.Body.Reaction)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.CommentReaction `json:"body"`
		}{Body: x}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-comment-reaction",
		Method:        http.MethodDelete,
		Path:          "/workspaces/{workspace_slug}/projects/{project_id}/comments/{comment_id}/reactions/{reaction_code}",
		Summary:       "Remove comment reaction",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		CommentReactionPath
		ReactionCode string `path:"reaction_code"`
	}) (*struct{}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.DeleteCommentReaction(ctx, input.WorkspaceSlug, input.ProjectID, input.CommentID, input.ReactionCode, actorID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerVotes(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-issue-votes",
		Method:      http.MethodGet,
		Path:        "/workspaces/{workspace_slug}/projects/{project_id}/issues/{issue_id}/votes",
		Summary:     "List issue votes",
	}, func(ctx context.Context, input *IssuePath) (*struct {
		Body []domain.IssueVote `json:"body"`
	}, error) {
		res, err := e.ListIssueVotes(ctx, input.WorkspaceSlug, input.ProjectID, input.IssueID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.IssueVote `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "cast-issue-vote",
		Method:        http.MethodPost,
		Path:          "/workspaces/{workspace_slug}/projects/{project_id}/issues/{issue_id}/votes",
		Summary:       "Cast issue vote",
		Description:   "Casting again replaces the caller's existing vote instead of adding a second one.",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		IssuePath
		Body CastVoteRequest `json:"body"`
	}) (*struct {
		Body domain.IssueVote `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		v, err := e.CastIssueVote(ctx, input.WorkspaceSlug, input.ProjectID, input.IssueID, actorID, input.Body.Vote)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.IssueVote `json:"body"`
		}{Body: v}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "retract-issue-vote",
		Method:        http.MethodDelete,
		Path:          "/workspaces/{workspace_slug}/projects/{project_id}/issues/{issue_id}/votes",
		Summary:       "Retract issue vote",
		Description:   "Removes the caller's vote on the issue.",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *IssuePath) (*struct{}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.RetractIssueVote(ctx, input.WorkspaceSlug, input.ProjectID, input.IssueID, actorID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}
