package repo

import (
	"context"
	"database/sql"

	"boardspace/internal/domain"
)

func scanComment(row interface{ Scan(...any) error }) (domain.Comment, error) {
	var c domain.Comment
	var isMember int
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.ProjectID, &c.IssueID, &c.ActorID, &c.CommentHTML, &c.Access, &c.CreatedAt, &c.UpdatedAt, &isMember)
	if err != nil {
		return c, err
	}
	c.IsMember = isMember != 0
	return c, nil
}

// The trailing column reports whether the viewer passed as the first
// query argument is an active member of the comment's project. An
// anonymous viewer is the empty string and never matches.
const commentColumns = `c.id,c.workspace_id,c.project_id,c.issue_id,c.actor_id,c.comment_html,c.access,c.created_at,c.updated_at,
(SELECT EXISTS(SELECT 1 FROM project_members m WHERE m.project_id=c.project_id AND m.member_id=? AND m.is_active=1))`

// ListExternalComments returns the public comments of an issue, oldest
// first.
func (r Repo) ListExternalComments(ctx context.Context, projectID, issueID, viewerID string) ([]domain.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+commentColumns+`
FROM issue_comments c WHERE c.project_id=? AND c.issue_id=? AND c.access=? ORDER BY c.created_at ASC`,
		viewerID, projectID, issueID, domain.AccessExternal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r Repo) GetComment(ctx context.Context, projectID, issueID, commentID, viewerID string) (domain.Comment, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+commentColumns+`
FROM issue_comments c WHERE c.id=? AND c.project_id=? AND c.issue_id=?`, viewerID, commentID, projectID, issueID)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

func (r Repo) GetCommentByID(ctx context.Context, projectID, commentID, viewerID string) (domain.Comment, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+commentColumns+`
FROM issue_comments c WHERE c.id=? AND c.project_id=?`, viewerID, commentID, projectID)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

// GetCommentOwned looks up a comment through an ownership filter: a
// comment authored by someone else is indistinguishable from a missing
// one.
func (r Repo) GetCommentOwned(ctx context.Context, projectID, issueID, commentID, actorID string) (domain.Comment, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+commentColumns+`
FROM issue_comments c WHERE c.id=? AND c.project_id=? AND c.issue_id=? AND c.actor_id=?`,
		actorID, commentID, projectID, issueID, actorID)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

func (r Repo) InsertComment(ctx context.Context, c domain.Comment) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO issue_comments(id,workspace_id,project_id,issue_id,actor_id,comment_html,access,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?)`,
		c.ID, c.WorkspaceID, c.ProjectID, c.IssueID, c.ActorID, c.CommentHTML, c.Access, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r Repo) UpdateCommentHTML(ctx context.Context, commentID, commentHTML, updatedAt string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE issue_comments SET comment_html=?, updated_at=? WHERE id=?`,
		commentHTML, updatedAt, commentID)
	return err
}

func (r Repo) DeleteComment(ctx context.Context, commentID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM issue_comments WHERE id=?`, commentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
