package engine

import (
	"context"
	"errors"

	"boardspace/internal/domain"
	"boardspace/internal/repo"
)

func validReactionCode(code string) bool {
	return code != "" && len(code) <= 20
}

func (e Engine) ListIssueReactions(ctx context.Context, workspaceSlug, projectID, issueID string) ([]domain.IssueReaction, error) {
	b, err := e.board(ctx, workspaceSlug, projectID)
	if errors.Is(err, ErrNotPublished) {
		return []domain.IssueReaction{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !b.ReactionsEnabled {
		return []domain.IssueReaction{}, nil
	}
	res, err := e.Repo.ListIssueReactions(ctx, projectID, issueID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []domain.IssueReaction{}
	}
	return res, nil
}

func (e Engine) CreateIssueReaction(ctx context.Context, workspaceSlug, projectID, issueID, actorID, code string) (domain.IssueReaction, error) {
	b, err := e.requireCapability(ctx, workspaceSlug, projectID, "reactions")
	if err != nil {
		return domain.IssueReaction{}, err
	}
	if !validReactionCode(code) {
		return domain.IssueReaction{}, ValidationError{Msg: "reaction is required"}
	}
	ok, err := e.Repo.IssueExists(ctx, projectID, issueID)
	if err != nil {
		return domain.IssueReaction{}, err
	}
	if !ok {
		return domain.IssueReaction{}, repo.ErrNotFound
	}
	// repeat create of the same (issue, actor, code) returns the
	// existing row instead of tripping the unique index
	existing, err := e.Repo.GetIssueReactionByCode(ctx, projectID, issueID, code, actorID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return domain.IssueReaction{}, err
	}
	x := domain.IssueReaction{
		ID:          newRowID(),
		WorkspaceID: b.WorkspaceID,
		ProjectID:   projectID,
		IssueID:     issueID,
		ActorID:     actorID,
		Reaction:    code,
		CreatedAt:   e.nowRFC3339(),
	}
	if err := e.Repo.InsertIssueReaction(ctx, x); err != nil {
		return domain.IssueReaction{}, err
	}
	if err := e.registerVisitor(ctx, projectID, actorID); err != nil {
		return domain.IssueReaction{}, err
	}
	e.emit("issue_reaction.activity.created", actorID, projectID, &issueID,
		map[string]any{"reaction": code}, nil)
	return x, nil
}

// DeleteIssueReaction removes the caller's own reaction, addressed by
// its emoji code rather than a row id.
func (e Engine) DeleteIssueReaction(ctx context.Context, workspaceSlug, projectID, issueID, code, actorID string) error {
	if _, err := e.requireCapability(ctx, workspaceSlug, projectID, "reactions"); err != nil {
		return err
	}
	prior, err := e.Repo.GetIssueReactionByCode(ctx, projectID, issueID, code, actorID)
	if err != nil {
		return err
	}
	if err := e.Repo.DeleteIssueReaction(ctx, prior.ID); err != nil {
		return err
	}
	e.emit("issue_reaction.activity.deleted", actorID, projectID, &issueID,
		nil, map[string]any{"reaction": prior.Reaction, "identifier": prior.ID})
	return nil
}

func (e Engine) ListCommentReactions(ctx context.Context, workspaceSlug, projectID, commentID string) ([]domain.CommentReaction, error) {
	b, err := e.board(ctx, workspaceSlug, projectID)
	if errors.Is(err, ErrNotPublished) {
		return []domain.CommentReaction{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !b.ReactionsEnabled {
		return []domain.CommentReaction{}, nil
	}
	res, err := e.Repo.ListCommentReactions(ctx, projectID, commentID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []domain.CommentReaction{}
	}
	return res, nil
}

func (e Engine) CreateCommentReaction(ctx context.Context, workspaceSlug, projectID, commentID, actorID, code string) (domain.CommentReaction, error) {
	b, err := e.requireCapability(ctx, workspaceSlug, projectID, "reactions")
	if err != nil {
		return domain.CommentReaction{}, err
	}
	if !validReactionCode(code) {
		return domain.CommentReaction{}, ValidationError{Msg: "reaction is required"}
	}
	comment, err := e.Repo.GetCommentByID(ctx, projectID, commentID, actorID)
	if err != nil {
		return domain.CommentReaction{}, err
	}
	existing, err := e.Repo.GetCommentReactionByCode(ctx, projectID, commentID, code, actorID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return domain.CommentReaction{}, err
	}
	x := domain.CommentReaction{
		ID:          newRowID(),
		WorkspaceID: b.WorkspaceID,
		ProjectID:   projectID,
		CommentID:   commentID,
		ActorID:     actorID,
		Reaction:    code,
		CreatedAt:   e.nowRFC3339(),
	}
	if err := e.Repo.InsertCommentReaction(ctx, x); err != nil {
		return domain.CommentReaction{}, err
	}
	if err := e.registerVisitor(ctx, projectID, actorID); err != nil {
		return domain.CommentReaction{}, err
	}
	e.emit("comment_reaction.activity.created", actorID, projectID, &comment.IssueID,
		map[string]any{"reaction": code, "comment_id": commentID}, nil)
	return x, nil
}

func (e Engine) DeleteCommentReaction(ctx context.Context, workspaceSlug, projectID, commentID, code, actorID string) error {
	if _, err := e.requireCapability(ctx, workspaceSlug, projectID, "reactions"); err != nil {
		return err
	}
	prior, err := e.Repo.GetCommentReactionByCode(ctx, projectID, commentID, code, actorID)
	if err != nil {
		return err
	}
	if err := e.Repo.DeleteCommentReaction(ctx, prior.ID); err != nil {
		return err
	}
	e.emit("comment_reaction.activity.deleted", actorID, projectID, nil,
		nil, map[string]any{"reaction": prior.Reaction, "identifier": prior.ID, "comment_id": commentID})
	return nil
}
