package repo

import (
	"context"
	"database/sql"
	"errors"

	"boardspace/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil {
		return nil
	}
	if *v == "" {
		return nil
	}
	return *v
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (r Repo) InsertWorkspace(ctx context.Context, w domain.Workspace) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO workspaces(id,slug,name,created_at) VALUES (?,?,?,?)`,
		w.ID, w.Slug, w.Name, w.CreatedAt)
	return err
}

func (r Repo) GetWorkspaceBySlug(ctx context.Context, slug string) (domain.Workspace, error) {
	var w domain.Workspace
	err := r.DB.QueryRowContext(ctx, `SELECT id,slug,name,created_at FROM workspaces WHERE slug=?`, slug).
		Scan(&w.ID, &w.Slug, &w.Name, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return w, ErrNotFound
	}
	return w, err
}

func (r Repo) InsertProject(ctx context.Context, p domain.Project) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO projects(id,workspace_id,name,created_at) VALUES (?,?,?,?)`,
		p.ID, p.WorkspaceID, p.Name, p.CreatedAt)
	return err
}

func (r Repo) GetProject(ctx context.Context, id string) (domain.Project, error) {
	var p domain.Project
	err := r.DB.QueryRowContext(ctx, `SELECT id,workspace_id,name,created_at FROM projects WHERE id=?`, id).
		Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	return p, err
}

func (r Repo) InsertState(ctx context.Context, s domain.State) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO states(id,project_id,name,grouping) VALUES (?,?,?,?)`,
		s.ID, s.ProjectID, s.Name, s.Grouping)
	return err
}

func (r Repo) InsertLabel(ctx context.Context, id, projectID, name string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO labels(id,project_id,name) VALUES (?,?,?)`, id, projectID, name)
	return err
}

// GetDeployBoard resolves the published-board configuration for a
// (workspace slug, project) pair. ErrNotFound means the project is not
// published at all.
func (r Repo) GetDeployBoard(ctx context.Context, workspaceSlug, projectID string) (domain.DeployBoard, error) {
	var b domain.DeployBoard
	var comments, reactions, votes int
	err := r.DB.QueryRowContext(ctx, `SELECT b.id,b.workspace_id,w.slug,b.project_id,b.comments_enabled,b.reactions_enabled,b.votes_enabled,b.created_at
FROM deploy_boards b JOIN workspaces w ON w.id=b.workspace_id
WHERE w.slug=? AND b.project_id=?`, workspaceSlug, projectID).
		Scan(&b.ID, &b.WorkspaceID, &b.WorkspaceSlug, &b.ProjectID, &comments, &reactions, &votes, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return b, ErrNotFound
	}
	if err != nil {
		return b, err
	}
	b.CommentsEnabled = comments != 0
	b.ReactionsEnabled = reactions != 0
	b.VotesEnabled = votes != 0
	return b, nil
}

func (r Repo) UpsertDeployBoard(ctx context.Context, b domain.DeployBoard) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO deploy_boards(id,workspace_id,project_id,comments_enabled,reactions_enabled,votes_enabled,created_at)
VALUES (?,?,?,?,?,?,?)
ON CONFLICT(workspace_id,project_id) DO UPDATE SET comments_enabled=excluded.comments_enabled, reactions_enabled=excluded.reactions_enabled, votes_enabled=excluded.votes_enabled`,
		b.ID, b.WorkspaceID, b.ProjectID, boolToInt(b.CommentsEnabled), boolToInt(b.ReactionsEnabled), boolToInt(b.VotesEnabled), b.CreatedAt)
	return err
}

func (r Repo) DeleteDeployBoard(ctx context.Context, workspaceID, projectID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM deploy_boards WHERE workspace_id=? AND project_id=?`, workspaceID, projectID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) ListDeployBoards(ctx context.Context) ([]domain.DeployBoard, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT b.id,b.workspace_id,w.slug,b.project_id,b.comments_enabled,b.reactions_enabled,b.votes_enabled,b.created_at
FROM deploy_boards b JOIN workspaces w ON w.id=b.workspace_id ORDER BY b.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.DeployBoard
	for rows.Next() {
		var b domain.DeployBoard
		var comments, reactions, votes int
		if err := rows.Scan(&b.ID, &b.WorkspaceID, &b.WorkspaceSlug, &b.ProjectID, &comments, &reactions, &votes, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.CommentsEnabled = comments != 0
		b.ReactionsEnabled = reactions != 0
		b.VotesEnabled = votes != 0
		res = append(res, b)
	}
	return res, rows.Err()
}

// IsActiveMember reports whether the actor is an active formal project
// member.
func (r Repo) IsActiveMember(ctx context.Context, projectID, actorID string) (bool, error) {
	if actorID == "" {
		return false, nil
	}
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM project_members WHERE project_id=? AND member_id=? AND is_active=1`, projectID, actorID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r Repo) InsertProjectMember(ctx context.Context, m domain.ProjectMember) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO project_members(project_id,member_id,is_active,created_at) VALUES (?,?,?,?)`,
		m.ProjectID, m.MemberID, boolToInt(m.IsActive), m.CreatedAt)
	return err
}

// EnsurePublicMember records the identity as a public participant of
// the project. Safe under concurrent duplicate calls.
func (r Repo) EnsurePublicMember(ctx context.Context, projectID, memberID, now string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT OR IGNORE INTO project_public_members(project_id,member_id,created_at) VALUES (?,?,?)`,
		projectID, memberID, now)
	return err
}

func (r Repo) CountPublicMembers(ctx context.Context, projectID, memberID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM project_public_members WHERE project_id=? AND member_id=?`, projectID, memberID).Scan(&n)
	return n, err
}
