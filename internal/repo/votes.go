package repo

import (
	"context"
	"database/sql"

	"boardspace/internal/domain"
)

func (r Repo) ListIssueVotes(ctx context.Context, projectID, issueID string) ([]domain.IssueVote, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,workspace_id,project_id,issue_id,actor_id,vote,created_at,updated_at
FROM issue_votes WHERE project_id=? AND issue_id=? ORDER BY created_at DESC`, projectID, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.IssueVote
	for rows.Next() {
		var v domain.IssueVote
		if err := rows.Scan(&v.ID, &v.WorkspaceID, &v.ProjectID, &v.IssueID, &v.ActorID, &v.Vote, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

// UpsertIssueVote stores the actor's vote on an issue. An actor holds
// at most one vote row per issue; a repeat vote replaces the value in
// place.
func (r Repo) UpsertIssueVote(ctx context.Context, v domain.IssueVote) (domain.IssueVote, error) {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO issue_votes(id,workspace_id,project_id,issue_id,actor_id,vote,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?)
ON CONFLICT(issue_id,actor_id) DO UPDATE SET vote=excluded.vote, updated_at=excluded.updated_at`,
		v.ID, v.WorkspaceID, v.ProjectID, v.IssueID, v.ActorID, v.Vote, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return domain.IssueVote{}, err
	}
	return r.GetIssueVote(ctx, v.ProjectID, v.IssueID, v.ActorID)
}

func (r Repo) GetIssueVote(ctx context.Context, projectID, issueID, actorID string) (domain.IssueVote, error) {
	var v domain.IssueVote
	err := r.DB.QueryRowContext(ctx, `SELECT id,workspace_id,project_id,issue_id,actor_id,vote,created_at,updated_at
FROM issue_votes WHERE project_id=? AND issue_id=? AND actor_id=?`, projectID, issueID, actorID).
		Scan(&v.ID, &v.WorkspaceID, &v.ProjectID, &v.IssueID, &v.ActorID, &v.Vote, &v.CreatedAt, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return v, ErrNotFound
	}
	return v, err
}

func (r Repo) DeleteIssueVote(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM issue_votes WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
