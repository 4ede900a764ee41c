package repo

import (
	"context"
	"database/sql"

	"boardspace/internal/domain"
)

func (r Repo) ListIssueReactions(ctx context.Context, projectID, issueID string) ([]domain.IssueReaction, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,workspace_id,project_id,issue_id,actor_id,reaction,created_at
FROM issue_reactions WHERE project_id=? AND issue_id=? ORDER BY created_at DESC`, projectID, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.IssueReaction
	for rows.Next() {
		var x domain.IssueReaction
		if err := rows.Scan(&x.ID, &x.WorkspaceID, &x.ProjectID, &x.IssueID, &x.ActorID, &x.Reaction, &x.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, x)
	}
	return res, rows.Err()
}

func (r Repo) InsertIssueReaction(ctx context.Context, x domain.IssueReaction) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO issue_reactions(id,workspace_id,project_id,issue_id,actor_id,reaction,created_at)
VALUES (?,?,?,?,?,?,?)`, x.ID, x.WorkspaceID, x.ProjectID, x.IssueID, x.ActorID, x.Reaction, x.CreatedAt)
	return err
}

// GetIssueReactionByCode addresses a reaction by its natural key:
// issue, emoji code and the calling actor.
func (r Repo) GetIssueReactionByCode(ctx context.Context, projectID, issueID, code, actorID string) (domain.IssueReaction, error) {
	var x domain.IssueReaction
	err := r.DB.QueryRowContext(ctx, `SELECT id,workspace_id,project_id,issue_id,actor_id,reaction,created_at
FROM issue_reactions WHERE project_id=? AND issue_id=? AND reaction=? AND actor_id=?`,
		projectID, issueID, code, actorID).
		Scan(&x.ID, &x.WorkspaceID, &x.ProjectID, &x.IssueID, &x.ActorID, &x.Reaction, &x.CreatedAt)
	if err == sql.ErrNoRows {
		return x, ErrNotFound
	}
	return x, err
}

func (r Repo) DeleteIssueReaction(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM issue_reactions WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) ListCommentReactions(ctx context.Context, projectID, commentID string) ([]domain.CommentReaction, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,workspace_id,project_id,comment_id,actor_id,reaction,created_at
FROM comment_reactions WHERE project_id=? AND comment_id=? ORDER BY created_at DESC`, projectID, commentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.CommentReaction
	for rows.Next() {
		var x domain.CommentReaction
		if err := rows.Scan(&x.ID, &x.WorkspaceID, &x.ProjectID, &x.CommentID, &x.ActorID, &x.Reaction, &x.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, x)
	}
	return res, rows.Err()
}

func (r Repo) InsertCommentReaction(ctx context.Context, x domain.CommentReaction) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO comment_reactions(id,workspace_id,project_id,comment_id,actor_id,reaction,created_at)
VALUES (?,?,?,?,?,?,?)`, x.ID, x.WorkspaceID, x.ProjectID, x.CommentID, x.ActorID, x.Reaction, x.CreatedAt)
	return err
}

func (r Repo) GetCommentReactionByCode(ctx context.Context, projectID, commentID, code, actorID string) (domain.CommentReaction, error) {
	var x domain.CommentReaction
	err := r.DB.QueryRowContext(ctx, `SELECT id,workspace_id,project_id,comment_id,actor_id,reaction,created_at
FROM comment_reactions WHERE project_id=? AND comment_id=? AND reaction=? AND actor_id=?`,
		projectID, commentID, code, actorID).
		Scan(&x.ID, &x.WorkspaceID, &x.ProjectID, &x.CommentID, &x.ActorID, &x.Reaction, &x.CreatedAt)
	if err == sql.ErrNoRows {
		return x, ErrNotFound
	}
	return x, err
}

func (r Repo) DeleteCommentReaction(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM comment_reactions WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
