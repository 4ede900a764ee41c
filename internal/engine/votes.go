package engine

import (
	"context"
	"errors"
	"strconv"

	"boardspace/internal/domain"
	"boardspace/internal/repo"
)

func (e Engine) ListIssueVotes(ctx context.Context, workspaceSlug, projectID, issueID string) ([]domain.IssueVote, error) {
	b, err := e.board(ctx, workspaceSlug, projectID)
	if errors.Is(err, ErrNotPublished) {
		return []domain.IssueVote{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !b.VotesEnabled {
		return []domain.IssueVote{}, nil
	}
	res, err := e.Repo.ListIssueVotes(ctx, projectID, issueID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []domain.IssueVote{}
	}
	return res, nil
}

// CastIssueVote records or replaces the caller's vote on an issue. An
// actor holds one vote per issue; voting again changes the value in
// place and still reports success.
func (e Engine) CastIssueVote(ctx context.Context, workspaceSlug, projectID, issueID, actorID string, vote int) (domain.IssueVote, error) {
	b, err := e.requireCapability(ctx, workspaceSlug, projectID, "votes")
	if err != nil {
		return domain.IssueVote{}, err
	}
	if vote == 0 {
		vote = 1
	}
	if vote != -1 && vote != 1 {
		return domain.IssueVote{}, ValidationError{Msg: "vote must be -1 or 1"}
	}
	ok, err := e.Repo.IssueExists(ctx, projectID, issueID)
	if err != nil {
		return domain.IssueVote{}, err
	}
	if !ok {
		return domain.IssueVote{}, repo.ErrNotFound
	}
	now := e.nowRFC3339()
	v, err := e.Repo.UpsertIssueVote(ctx, domain.IssueVote{
		ID:          newRowID(),
		WorkspaceID: b.WorkspaceID,
		ProjectID:   projectID,
		IssueID:     issueID,
		ActorID:     actorID,
		Vote:        vote,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.IssueVote{}, err
	}
	if err := e.registerVisitor(ctx, projectID, actorID); err != nil {
		return domain.IssueVote{}, err
	}
	e.emit("issue_vote.activity.created", actorID, projectID, &issueID,
		map[string]any{"vote": vote}, nil)
	return v, nil
}

// RetractIssueVote removes the caller's vote, addressed by (issue,
// actor) rather than a row id.
func (e Engine) RetractIssueVote(ctx context.Context, workspaceSlug, projectID, issueID, actorID string) error {
	if _, err := e.requireCapability(ctx, workspaceSlug, projectID, "votes"); err != nil {
		return err
	}
	prior, err := e.Repo.GetIssueVote(ctx, projectID, issueID, actorID)
	if err != nil {
		return err
	}
	if err := e.Repo.DeleteIssueVote(ctx, prior.ID); err != nil {
		return err
	}
	e.emit("issue_vote.activity.deleted", actorID, projectID, &issueID,
		nil, map[string]any{"vote": strconv.Itoa(prior.Vote), "identifier": prior.ID})
	return nil
}
