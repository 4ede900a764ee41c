package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"boardspace/internal/activity"
	"boardspace/internal/config"
	"boardspace/internal/db"
	"boardspace/internal/domain"
	"boardspace/internal/engine"
	"boardspace/internal/migrate"
	"boardspace/internal/repo"
)

type testEnv struct {
	Engine     engine.Engine
	Dispatcher *activity.Dispatcher
	Ctx        context.Context
	Workspace  domain.Workspace
	Project    domain.Project
	State      domain.State
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	dispatcher := activity.NewDispatcher(64, activity.StoreSink{DB: conn})
	t.Cleanup(dispatcher.Close)
	eng := engine.New(conn, config.Default(), dispatcher)
	eng.Now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	w := domain.Workspace{ID: uuid.NewString(), Slug: "acme", Name: "Acme", CreatedAt: "2026-02-01T00:00:00Z"}
	if err := eng.Repo.InsertWorkspace(ctx, w); err != nil {
		t.Fatalf("insert workspace: %v", err)
	}
	p := domain.Project{ID: uuid.NewString(), WorkspaceID: w.ID, Name: "Rocket", CreatedAt: w.CreatedAt}
	if err := eng.Repo.InsertProject(ctx, p); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	s := domain.State{ID: uuid.NewString(), ProjectID: p.ID, Name: "Backlog", Grouping: "backlog"}
	if err := eng.Repo.InsertState(ctx, s); err != nil {
		t.Fatalf("insert state: %v", err)
	}
	return testEnv{Engine: eng, Dispatcher: dispatcher, Ctx: ctx, Workspace: w, Project: p, State: s}
}

func (env testEnv) publish(t *testing.T, comments, reactions, votes bool) {
	t.Helper()
	if _, err := env.Engine.PublishBoard(env.Ctx, env.Workspace.Slug, env.Project.ID, comments, reactions, votes); err != nil {
		t.Fatalf("publish board: %v", err)
	}
}

func (env testEnv) addIssue(t *testing.T, name string, draft bool, archivedAt *string) domain.Issue {
	t.Helper()
	it := domain.Issue{
		ID:          uuid.NewString(),
		WorkspaceID: env.Workspace.ID,
		ProjectID:   env.Project.ID,
		StateID:     &env.State.ID,
		Name:        name,
		Priority:    "medium",
		SequenceID:  1,
		IsDraft:     draft,
		ArchivedAt:  archivedAt,
		CreatedBy:   "seed",
		CreatedAt:   "2026-02-01T00:00:00Z",
		UpdatedAt:   "2026-02-01T00:00:00Z",
	}
	if err := env.Engine.Repo.InsertIssue(env.Ctx, it); err != nil {
		t.Fatalf("insert issue %s: %v", name, err)
	}
	return it
}

func TestUnpublishedProjectReadsEmptyWritesFail(t *testing.T) {
	env := newTestEnv(t)
	issue := env.addIssue(t, "hidden", true, nil)

	comments, err := env.Engine.ListComments(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "")
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("expected empty comments, got %d", len(comments))
	}
	reactions, err := env.Engine.ListIssueReactions(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID)
	if err != nil || len(reactions) != 0 {
		t.Fatalf("expected empty reactions, got %d (%v)", len(reactions), err)
	}
	votes, err := env.Engine.ListIssueVotes(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID)
	if err != nil || len(votes) != 0 {
		t.Fatalf("expected empty votes, got %d (%v)", len(votes), err)
	}

	var ce engine.CapabilityError
	_, err = env.Engine.CreateComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "user-1", "<p>hi</p>")
	if !errors.As(err, &ce) {
		t.Fatalf("expected capability error on comment create, got %v", err)
	}
	_, err = env.Engine.CastIssueVote(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "user-1", 1)
	if !errors.As(err, &ce) {
		t.Fatalf("expected capability error on vote, got %v", err)
	}

	_, err = env.Engine.ListPublicIssues(env.Ctx, env.Workspace.Slug, env.Project.ID, engine.IssueQuery{})
	if !errors.Is(err, engine.ErrNotPublished) {
		t.Fatalf("expected ErrNotPublished on issue listing, got %v", err)
	}
}

func TestDisabledCapabilityBlocksMutations(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, false, true, true)
	issue := env.addIssue(t, "no comments here", true, nil)

	var ce engine.CapabilityError
	_, err := env.Engine.CreateComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "user-1", "<p>hi</p>")
	if !errors.As(err, &ce) {
		t.Fatalf("expected capability error, got %v", err)
	}
	if ce.Capability != "comments" {
		t.Fatalf("expected comments capability in error, got %s", ce.Capability)
	}

	// the list path degrades to empty instead of erroring
	comments, err := env.Engine.ListComments(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "")
	if err != nil || len(comments) != 0 {
		t.Fatalf("expected empty comments on disabled board, got %d (%v)", len(comments), err)
	}

	// the other capabilities still work
	if _, err := env.Engine.CreateIssueReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "user-1", "128077"); err != nil {
		t.Fatalf("reaction on enabled capability: %v", err)
	}
}

func TestCapabilityFlipTakesEffectImmediately(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, true, true, true)
	issue := env.addIssue(t, "issue", true, nil)

	if _, err := env.Engine.CreateComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "user-1", "<p>first</p>"); err != nil {
		t.Fatalf("comment while enabled: %v", err)
	}
	env.publish(t, false, true, true)
	var ce engine.CapabilityError
	if _, err := env.Engine.CreateComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "user-1", "<p>second</p>"); !errors.As(err, &ce) {
		t.Fatalf("expected capability error after flip, got %v", err)
	}
}

func TestCommentOwnershipHidesOtherRows(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, true, true, true)
	issue := env.addIssue(t, "issue", true, nil)

	c, err := env.Engine.CreateComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "author", "<p>body</p>")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if c.Access != domain.AccessExternal {
		t.Fatalf("expected EXTERNAL access, got %s", c.Access)
	}

	// a non-author sees NotFound, not Forbidden
	_, err = env.Engine.UpdateComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, c.ID, "someone-else", "<p>hijack</p>", nil)
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected NotFound for non-author update, got %v", err)
	}
	err = env.Engine.DeleteComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, c.ID, "someone-else")
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected NotFound for non-author delete, got %v", err)
	}

	updated, err := env.Engine.UpdateComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, c.ID, "author", "<p>edited</p>", []byte(`{"comment_html":"<p>edited</p>"}`))
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if updated.CommentHTML != "<p>edited</p>" {
		t.Fatalf("expected edited body, got %s", updated.CommentHTML)
	}
	if err := env.Engine.DeleteComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, c.ID, "author"); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	comments, err := env.Engine.ListComments(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "")
	if err != nil || len(comments) != 0 {
		t.Fatalf("expected no comments after delete, got %d (%v)", len(comments), err)
	}
}

func TestCommentMemberAnnotationFollowsViewer(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, true, false, false)
	issue := env.addIssue(t, "issue", true, nil)

	member := domain.ProjectMember{ProjectID: env.Project.ID, MemberID: "insider", IsActive: true, CreatedAt: "2026-02-01T00:00:00Z"}
	if err := env.Engine.Repo.InsertProjectMember(env.Ctx, member); err != nil {
		t.Fatalf("insert member: %v", err)
	}
	if _, err := env.Engine.CreateComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "visitor", "<p>from outside</p>"); err != nil {
		t.Fatalf("visitor comment: %v", err)
	}

	// the annotation reflects the caller, not the comment's author: a
	// formal member sees is_member=true even on a visitor's comment
	asMember, err := env.Engine.ListComments(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "insider")
	if err != nil {
		t.Fatalf("list as member: %v", err)
	}
	if len(asMember) != 1 || !asMember[0].IsMember {
		t.Fatalf("expected member annotation for member viewer, got %+v", asMember)
	}

	asVisitor, err := env.Engine.ListComments(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "visitor")
	if err != nil {
		t.Fatalf("list as visitor: %v", err)
	}
	if len(asVisitor) != 1 || asVisitor[0].IsMember {
		t.Fatalf("expected non-member annotation for visitor viewer, got %+v", asVisitor)
	}

	anonymous, err := env.Engine.ListComments(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "")
	if err != nil {
		t.Fatalf("list anonymously: %v", err)
	}
	if len(anonymous) != 1 || anonymous[0].IsMember {
		t.Fatalf("expected non-member annotation for anonymous viewer, got %+v", anonymous)
	}

	// an inactive membership does not count
	inactive := domain.ProjectMember{ProjectID: env.Project.ID, MemberID: "former", IsActive: false, CreatedAt: "2026-02-01T00:00:00Z"}
	if err := env.Engine.Repo.InsertProjectMember(env.Ctx, inactive); err != nil {
		t.Fatal(err)
	}
	asFormer, err := env.Engine.ListComments(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "former")
	if err != nil {
		t.Fatal(err)
	}
	if asFormer[0].IsMember {
		t.Fatalf("expected non-member annotation for inactive member")
	}
}

func TestVoteUpsertKeepsSingleRow(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, false, false, true)
	issue := env.addIssue(t, "issue", true, nil)

	first, err := env.Engine.CastIssueVote(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "voter", 1)
	if err != nil {
		t.Fatalf("first vote: %v", err)
	}
	second, err := env.Engine.CastIssueVote(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "voter", -1)
	if err != nil {
		t.Fatalf("second vote: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected vote updated in place, got new row %s != %s", second.ID, first.ID)
	}
	if second.Vote != -1 {
		t.Fatalf("expected last-write value -1, got %d", second.Vote)
	}
	votes, err := env.Engine.ListIssueVotes(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID)
	if err != nil {
		t.Fatalf("list votes: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("expected a single vote row, got %d", len(votes))
	}

	// zero defaults to an upvote
	v, err := env.Engine.CastIssueVote(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "other", 0)
	if err != nil || v.Vote != 1 {
		t.Fatalf("expected default upvote, got %d (%v)", v.Vote, err)
	}

	var ve engine.ValidationError
	if _, err := env.Engine.CastIssueVote(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "other", 5); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for out-of-range vote, got %v", err)
	}
}

func TestDeleteVoteByNaturalKey(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, false, false, true)
	issue := env.addIssue(t, "issue", true, nil)

	if _, err := env.Engine.CastIssueVote(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "a", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.CastIssueVote(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "b", -1); err != nil {
		t.Fatal(err)
	}
	if err := env.Engine.RetractIssueVote(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "a"); err != nil {
		t.Fatalf("retract: %v", err)
	}
	votes, err := env.Engine.ListIssueVotes(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(votes) != 1 || votes[0].ActorID != "b" {
		t.Fatalf("expected only b's vote to remain, got %+v", votes)
	}
	// retracting a vote that does not exist reads as NotFound
	if err := env.Engine.RetractIssueVote(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "a"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestReactionNaturalKeyScopedToActor(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, true, true, false)
	issue := env.addIssue(t, "issue", true, nil)

	if _, err := env.Engine.CreateIssueReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "a", "128077"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.CreateIssueReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "b", "128077"); err != nil {
		t.Fatal(err)
	}
	// a removes their own thumbs-up; b's row with the same code stays
	if err := env.Engine.DeleteIssueReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "128077", "a"); err != nil {
		t.Fatalf("delete reaction: %v", err)
	}
	reactions, err := env.Engine.ListIssueReactions(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(reactions) != 1 || reactions[0].ActorID != "b" {
		t.Fatalf("expected only b's reaction to survive, got %+v", reactions)
	}
	if err := env.Engine.DeleteIssueReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "128077", "a"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected NotFound for repeat delete, got %v", err)
	}
}

func TestCommentReactionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, true, true, false)
	issue := env.addIssue(t, "issue", true, nil)
	c, err := env.Engine.CreateComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "author", "<p>hello</p>")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.CreateCommentReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, c.ID, "fan", "128525"); err != nil {
		t.Fatalf("comment reaction: %v", err)
	}
	reactions, err := env.Engine.ListCommentReactions(env.Ctx, env.Workspace.Slug, env.Project.ID, c.ID)
	if err != nil || len(reactions) != 1 {
		t.Fatalf("expected one comment reaction, got %d (%v)", len(reactions), err)
	}
	if err := env.Engine.DeleteCommentReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, c.ID, "128525", "fan"); err != nil {
		t.Fatalf("delete comment reaction: %v", err)
	}
	// reacting to a missing comment is NotFound
	if _, err := env.Engine.CreateCommentReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, "missing", "fan", "128525"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestVisitorRegisteredExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, true, true, true)
	issue := env.addIssue(t, "issue", true, nil)

	member := domain.ProjectMember{ProjectID: env.Project.ID, MemberID: "insider", IsActive: true, CreatedAt: "2026-02-01T00:00:00Z"}
	if err := env.Engine.Repo.InsertProjectMember(env.Ctx, member); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := env.Engine.CreateIssueReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "visitor", []string{"128077", "128078", "128079"}[i]); err != nil {
			t.Fatal(err)
		}
	}
	n, err := env.Engine.Repo.CountPublicMembers(env.Ctx, env.Project.ID, "visitor")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one public member row, got %d", n)
	}

	// a formal member never gets a public-member row
	if _, err := env.Engine.CreateIssueReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "insider", "128077"); err != nil {
		t.Fatal(err)
	}
	n, err = env.Engine.Repo.CountPublicMembers(env.Ctx, env.Project.ID, "insider")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected no public member row for formal member, got %d", n)
	}
}

func TestActivityEventsRecorded(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, true, true, true)
	issue := env.addIssue(t, "issue", true, nil)

	c, err := env.Engine.CreateComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "actor-1", "<p>hi</p>")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.CastIssueVote(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "actor-1", 1); err != nil {
		t.Fatal(err)
	}
	if err := env.Engine.DeleteComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, c.ID, "actor-1"); err != nil {
		t.Fatal(err)
	}
	// drain the queue so the store sink has flushed
	env.Dispatcher.Close()

	rows, err := env.Engine.DB.Query(`SELECT type, actor_id, issue_id, current_instance FROM activity_events ORDER BY id`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	type row struct {
		Type            string
		ActorID         string
		IssueID         *string
		CurrentInstance *string
	}
	var got []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.Type, &r.ActorID, &r.IssueID, &r.CurrentInstance); err != nil {
			t.Fatal(err)
		}
		got = append(got, r)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	want := []string{"comment.activity.created", "issue_vote.activity.created", "comment.activity.deleted"}
	for i, r := range got {
		if r.Type != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], r.Type)
		}
		if r.ActorID != "actor-1" {
			t.Fatalf("event %d: unexpected actor %s", i, r.ActorID)
		}
		if r.IssueID == nil || *r.IssueID != issue.ID {
			t.Fatalf("event %d: unexpected issue id %v", i, r.IssueID)
		}
	}
	// delete events carry the pre-deletion snapshot
	if got[2].CurrentInstance == nil {
		t.Fatal("expected current_instance snapshot on delete event")
	}
	var snap map[string]any
	if err := json.Unmarshal([]byte(*got[2].CurrentInstance), &snap); err != nil {
		t.Fatalf("snapshot not JSON: %v", err)
	}
	if snap["id"] != c.ID {
		t.Fatalf("snapshot should reference the deleted comment, got %v", snap["id"])
	}
}

func TestRepeatReactionReturnsExistingRow(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, true, true, false)
	issue := env.addIssue(t, "issue", true, nil)

	first, err := env.Engine.CreateIssueReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "fan", "128077")
	if err != nil {
		t.Fatalf("first reaction: %v", err)
	}
	second, err := env.Engine.CreateIssueReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "fan", "128077")
	if err != nil {
		t.Fatalf("repeat reaction should succeed, got %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the existing row back, got %s != %s", second.ID, first.ID)
	}
	reactions, err := env.Engine.ListIssueReactions(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID)
	if err != nil || len(reactions) != 1 {
		t.Fatalf("expected a single reaction row, got %d (%v)", len(reactions), err)
	}

	c, err := env.Engine.CreateComment(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "author", "<p>hi</p>")
	if err != nil {
		t.Fatal(err)
	}
	cr1, err := env.Engine.CreateCommentReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, c.ID, "fan", "128525")
	if err != nil {
		t.Fatal(err)
	}
	cr2, err := env.Engine.CreateCommentReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, c.ID, "fan", "128525")
	if err != nil {
		t.Fatalf("repeat comment reaction should succeed, got %v", err)
	}
	if cr2.ID != cr1.ID {
		t.Fatalf("expected the existing comment reaction back, got %s != %s", cr2.ID, cr1.ID)
	}
}

func TestRemovalsDoNotRegisterVisitors(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, true, true, true)
	issue := env.addIssue(t, "issue", true, nil)

	if _, err := env.Engine.CreateIssueReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "visitor", "128077"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.CastIssueVote(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "visitor", 1); err != nil {
		t.Fatal(err)
	}
	// wipe the registration so any later write that re-inserts it shows up
	if _, err := env.Engine.DB.Exec(`DELETE FROM project_public_members WHERE project_id=? AND member_id=?`, env.Project.ID, "visitor"); err != nil {
		t.Fatal(err)
	}

	if err := env.Engine.DeleteIssueReaction(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "128077", "visitor"); err != nil {
		t.Fatal(err)
	}
	if err := env.Engine.RetractIssueVote(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "visitor"); err != nil {
		t.Fatal(err)
	}
	n, err := env.Engine.Repo.CountPublicMembers(env.Ctx, env.Project.ID, "visitor")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("removals must not register visitors, got %d rows", n)
	}

	// creates still do
	if _, err := env.Engine.CastIssueVote(env.Ctx, env.Workspace.Slug, env.Project.ID, issue.ID, "visitor", 1); err != nil {
		t.Fatal(err)
	}
	n, err = env.Engine.Repo.CountPublicMembers(env.Ctx, env.Project.ID, "visitor")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected create to register the visitor, got %d rows", n)
	}
}
