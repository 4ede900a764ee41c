package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"boardspace/internal/domain"
	"boardspace/internal/repo"
)

// PublishBoard creates or updates the deploy board of a project,
// making it publicly reachable with the given capability flags.
func (e Engine) PublishBoard(ctx context.Context, workspaceSlug, projectID string, comments, reactions, votes bool) (domain.DeployBoard, error) {
	w, err := e.Repo.GetWorkspaceBySlug(ctx, workspaceSlug)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.DeployBoard{}, fmt.Errorf("workspace %s not found", workspaceSlug)
	}
	if err != nil {
		return domain.DeployBoard{}, err
	}
	p, err := e.Repo.GetProject(ctx, projectID)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.DeployBoard{}, fmt.Errorf("project %s not found", projectID)
	}
	if err != nil {
		return domain.DeployBoard{}, err
	}
	if p.WorkspaceID != w.ID {
		return domain.DeployBoard{}, fmt.Errorf("project %s does not belong to workspace %s", projectID, workspaceSlug)
	}
	b := domain.DeployBoard{
		ID:               uuid.NewString(),
		WorkspaceID:      w.ID,
		WorkspaceSlug:    w.Slug,
		ProjectID:        projectID,
		CommentsEnabled:  comments,
		ReactionsEnabled: reactions,
		VotesEnabled:     votes,
		CreatedAt:        e.nowRFC3339(),
	}
	if err := e.Repo.UpsertDeployBoard(ctx, b); err != nil {
		return domain.DeployBoard{}, err
	}
	return e.Repo.GetDeployBoard(ctx, workspaceSlug, projectID)
}

// UnpublishBoard removes the deploy board; the project disappears from
// the public surface at once.
func (e Engine) UnpublishBoard(ctx context.Context, workspaceSlug, projectID string) error {
	w, err := e.Repo.GetWorkspaceBySlug(ctx, workspaceSlug)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("workspace %s not found", workspaceSlug)
	}
	if err != nil {
		return err
	}
	err = e.Repo.DeleteDeployBoard(ctx, w.ID, projectID)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("project %s is not published", projectID)
	}
	return err
}

func (e Engine) ListBoards(ctx context.Context) ([]domain.DeployBoard, error) {
	return e.Repo.ListDeployBoards(ctx)
}
