package engine

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	"boardspace/internal/activity"
	"boardspace/internal/config"
	"boardspace/internal/domain"
	"boardspace/internal/repo"
)

// ErrNotPublished means no deploy board exists for the (workspace,
// project) pair; the project is invisible to the public surface.
var ErrNotPublished = errors.New("project is not published")

// CapabilityError reports a board that exists but has the requested
// capability switched off by the project admins.
type CapabilityError struct {
	Capability string
}

func (e CapabilityError) Error() string {
	return fmt.Sprintf("%s are disabled for this project", e.Capability)
}

// ValidationError reports a request rejected before touching storage.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

type Engine struct {
	DB       *sql.DB
	Repo     repo.Repo
	Activity *activity.Dispatcher
	Config   *config.Config
	Now      func() time.Time
}

func New(db *sql.DB, cfg *config.Config, dispatcher *activity.Dispatcher) Engine {
	return Engine{
		DB:       db,
		Repo:     repo.Repo{DB: db},
		Activity: dispatcher,
		Config:   cfg,
		Now:      time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) nowRFC3339() string {
	return e.now().UTC().Format(time.RFC3339)
}

func newRowID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// board resolves the deploy board for the pair. Missing board maps to
// ErrNotPublished; callers on the read path translate that into an
// empty result instead.
func (e Engine) board(ctx context.Context, workspaceSlug, projectID string) (domain.DeployBoard, error) {
	b, err := e.Repo.GetDeployBoard(ctx, workspaceSlug, projectID)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.DeployBoard{}, ErrNotPublished
	}
	return b, err
}

// requireCapability is the write-path gate. It re-resolves the board on
// every call so a capability flipped off between two requests takes
// effect immediately.
func (e Engine) requireCapability(ctx context.Context, workspaceSlug, projectID, capability string) (domain.DeployBoard, error) {
	b, err := e.board(ctx, workspaceSlug, projectID)
	if errors.Is(err, ErrNotPublished) {
		return b, CapabilityError{Capability: capability}
	}
	if err != nil {
		return b, err
	}
	enabled := false
	switch capability {
	case "comments":
		enabled = b.CommentsEnabled
	case "reactions":
		enabled = b.ReactionsEnabled
	case "votes":
		enabled = b.VotesEnabled
	}
	if !enabled {
		return b, CapabilityError{Capability: capability}
	}
	return b, nil
}

// registerVisitor records the actor as a public participant of the
// project unless they already are a formal member. Runs after every
// successful public create; edits and removals of an actor's own rows
// never register anyone.
func (e Engine) registerVisitor(ctx context.Context, projectID, actorID string) error {
	member, err := e.Repo.IsActiveMember(ctx, projectID, actorID)
	if err != nil {
		return err
	}
	if member {
		return nil
	}
	return e.Repo.EnsurePublicMember(ctx, projectID, actorID, e.nowRFC3339())
}

// emit hands an activity record to the dispatcher. Runs after the
// mutation committed; a full queue drops the event rather than failing
// the request.
func (e Engine) emit(evtType, actorID, projectID string, issueID *string, requestedData, currentInstance any) {
	if e.Activity == nil {
		return
	}
	evt := activity.Event{
		Type:      evtType,
		ActorID:   actorID,
		IssueID:   issueID,
		ProjectID: projectID,
		Epoch:     e.now().Unix(),
	}
	if requestedData != nil {
		raw, err := json.Marshal(requestedData)
		if err != nil {
			log.Printf("activity: marshal requested_data for %s: %v", evtType, err)
		} else {
			s := string(raw)
			evt.RequestedData = &s
		}
	}
	if currentInstance != nil {
		raw, err := json.Marshal(currentInstance)
		if err != nil {
			log.Printf("activity: marshal current_instance for %s: %v", evtType, err)
		} else {
			s := string(raw)
			evt.CurrentInstance = &s
		}
	}
	e.Activity.Emit(evt)
}

// emitRaw is emit with requested_data carried as the verbatim request
// body instead of a re-marshaled value.
func (e Engine) emitRaw(evtType, actorID, projectID string, issueID *string, rawBody []byte, currentInstance any) {
	if e.Activity == nil {
		return
	}
	evt := activity.Event{
		Type:      evtType,
		ActorID:   actorID,
		IssueID:   issueID,
		ProjectID: projectID,
		Epoch:     e.now().Unix(),
	}
	if len(rawBody) > 0 {
		s := string(rawBody)
		evt.RequestedData = &s
	}
	if currentInstance != nil {
		raw, err := json.Marshal(currentInstance)
		if err != nil {
			log.Printf("activity: marshal current_instance for %s: %v", evtType, err)
		} else {
			s := string(raw)
			evt.CurrentInstance = &s
		}
	}
	e.Activity.Emit(evt)
}
