package engine

import (
	"context"
	"errors"
	"strings"

	"boardspace/internal/domain"
	"boardspace/internal/repo"
)

// ListComments returns the EXTERNAL comments of an issue on a published
// board, each annotated with whether the viewer is an active project
// member. An anonymous viewer passes the empty string. An unpublished
// project or a board with comments switched off yields an empty list,
// not an error.
func (e Engine) ListComments(ctx context.Context, workspaceSlug, projectID, issueID, viewerID string) ([]domain.Comment, error) {
	b, err := e.board(ctx, workspaceSlug, projectID)
	if errors.Is(err, ErrNotPublished) {
		return []domain.Comment{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !b.CommentsEnabled {
		return []domain.Comment{}, nil
	}
	comments, err := e.Repo.ListExternalComments(ctx, projectID, issueID, viewerID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

func (e Engine) CreateComment(ctx context.Context, workspaceSlug, projectID, issueID, actorID, commentHTML string) (domain.Comment, error) {
	b, err := e.requireCapability(ctx, workspaceSlug, projectID, "comments")
	if err != nil {
		return domain.Comment{}, err
	}
	if strings.TrimSpace(commentHTML) == "" {
		return domain.Comment{}, ValidationError{Msg: "comment_html is required"}
	}
	ok, err := e.Repo.IssueExists(ctx, projectID, issueID)
	if err != nil {
		return domain.Comment{}, err
	}
	if !ok {
		return domain.Comment{}, repo.ErrNotFound
	}
	now := e.nowRFC3339()
	c := domain.Comment{
		ID:          newRowID(),
		WorkspaceID: b.WorkspaceID,
		ProjectID:   projectID,
		IssueID:     issueID,
		ActorID:     actorID,
		CommentHTML: commentHTML,
		Access:      domain.AccessExternal,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.Repo.InsertComment(ctx, c); err != nil {
		return domain.Comment{}, err
	}
	if err := e.registerVisitor(ctx, projectID, actorID); err != nil {
		return domain.Comment{}, err
	}
	created, err := e.Repo.GetComment(ctx, projectID, issueID, c.ID, actorID)
	if err != nil {
		return domain.Comment{}, err
	}
	e.emit("comment.activity.created", actorID, projectID, &issueID, created, nil)
	return created, nil
}

// UpdateComment changes the body of the caller's own comment. A comment
// authored by someone else reports NotFound, never Forbidden.
func (e Engine) UpdateComment(ctx context.Context, workspaceSlug, projectID, issueID, commentID, actorID, commentHTML string, rawBody []byte) (domain.Comment, error) {
	if _, err := e.requireCapability(ctx, workspaceSlug, projectID, "comments"); err != nil {
		return domain.Comment{}, err
	}
	if strings.TrimSpace(commentHTML) == "" {
		return domain.Comment{}, ValidationError{Msg: "comment_html is required"}
	}
	prior, err := e.Repo.GetCommentOwned(ctx, projectID, issueID, commentID, actorID)
	if err != nil {
		return domain.Comment{}, err
	}
	if err := e.Repo.UpdateCommentHTML(ctx, commentID, commentHTML, e.nowRFC3339()); err != nil {
		return domain.Comment{}, err
	}
	updated, err := e.Repo.GetComment(ctx, projectID, issueID, commentID, actorID)
	if err != nil {
		return domain.Comment{}, err
	}
	e.emitRaw("comment.activity.updated", actorID, projectID, &issueID, rawBody, prior)
	return updated, nil
}

func (e Engine) DeleteComment(ctx context.Context, workspaceSlug, projectID, issueID, commentID, actorID string) error {
	if _, err := e.requireCapability(ctx, workspaceSlug, projectID, "comments"); err != nil {
		return err
	}
	prior, err := e.Repo.GetCommentOwned(ctx, projectID, issueID, commentID, actorID)
	if err != nil {
		return err
	}
	if err := e.Repo.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	e.emit("comment.activity.deleted", actorID, projectID, &issueID,
		map[string]any{"comment_id": commentID}, prior)
	return nil
}
