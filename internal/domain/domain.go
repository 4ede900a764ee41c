package domain

type Workspace struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type Project struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
	CreatedAt   string `json:"created_at" format:"date-time"`
}

// DeployBoard publishes a project's issues externally. At most one board
// exists per (workspace, project); absence means the project is not
// publicly reachable at all.
type DeployBoard struct {
	ID               string `json:"id"`
	WorkspaceID      string `json:"workspace_id"`
	WorkspaceSlug    string `json:"workspace_slug"`
	ProjectID        string `json:"project_id"`
	CommentsEnabled  bool   `json:"comments_enabled"`
	ReactionsEnabled bool   `json:"reactions_enabled"`
	VotesEnabled     bool   `json:"votes_enabled"`
	CreatedAt        string `json:"created_at" format:"date-time"`
}

type State struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Grouping  string `json:"group"`
}

type Issue struct {
	ID              string   `json:"id"`
	WorkspaceID     string   `json:"workspace_id"`
	ProjectID       string   `json:"project_id"`
	StateID         *string  `json:"state_id,omitempty"`
	ParentID        *string  `json:"parent_id,omitempty"`
	Name            string   `json:"name"`
	DescriptionHTML string   `json:"description_html,omitempty"`
	Priority        string   `json:"priority"`
	SequenceID      int64    `json:"sequence_id"`
	IsDraft         bool     `json:"is_draft"`
	ArchivedAt      *string  `json:"archived_at,omitempty" format:"date-time"`
	TargetDate      *string  `json:"target_date,omitempty"`
	CreatedBy       string   `json:"created_by"`
	AssigneeIDs     []string `json:"assignee_ids,omitempty"`
	LabelIDs        []string `json:"label_ids,omitempty"`
	LinkCount       int64    `json:"link_count"`
	AttachmentCount int64    `json:"attachment_count"`
	SubIssueCount   int64    `json:"sub_issues_count"`
	CreatedAt       string   `json:"created_at" format:"date-time"`
	UpdatedAt       string   `json:"updated_at" format:"date-time"`
}

// Comment access tags. The public surface only ever creates and reads
// EXTERNAL comments; INTERNAL rows belong to the private application.
const (
	AccessInternal = "INTERNAL"
	AccessExternal = "EXTERNAL"
)

type Comment struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	ProjectID   string `json:"project_id"`
	IssueID     string `json:"issue_id"`
	ActorID     string `json:"actor_id"`
	CommentHTML string `json:"comment_html"`
	Access      string `json:"access" enum:"INTERNAL,EXTERNAL"`
	IsMember    bool   `json:"is_member" doc:"Whether the requesting identity is an active project member"`
	CreatedAt   string `json:"created_at" format:"date-time"`
	UpdatedAt   string `json:"updated_at" format:"date-time"`
}

// IssueReaction is unique per (issue, actor, reaction); the public API
// addresses it by that natural key, never by row id.
type IssueReaction struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	ProjectID   string `json:"project_id"`
	IssueID     string `json:"issue_id"`
	ActorID     string `json:"actor_id"`
	Reaction    string `json:"reaction"`
	CreatedAt   string `json:"created_at" format:"date-time"`
}

type CommentReaction struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	ProjectID   string `json:"project_id"`
	CommentID   string `json:"comment_id"`
	ActorID     string `json:"actor_id"`
	Reaction    string `json:"reaction"`
	CreatedAt   string `json:"created_at" format:"date-time"`
}

// IssueVote holds at most one row per (issue, actor); casting again
// overwrites the vote value in place.
type IssueVote struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	ProjectID   string `json:"project_id"`
	IssueID     string `json:"issue_id"`
	ActorID     string `json:"actor_id"`
	Vote        int    `json:"vote"`
	CreatedAt   string `json:"created_at" format:"date-time"`
	UpdatedAt   string `json:"updated_at" format:"date-time"`
}

type ProjectMember struct {
	ProjectID string `json:"project_id"`
	MemberID  string `json:"member_id"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

// ProjectPublicMember marks an identity that touched a published board
// without being a formal member. Created lazily, never deleted here.
type ProjectPublicMember struct {
	ProjectID string `json:"project_id"`
	MemberID  string `json:"member_id"`
	CreatedAt string `json:"created_at" format:"date-time"`
}
