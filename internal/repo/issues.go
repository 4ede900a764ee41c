package repo

import (
	"context"
	"database/sql"
	"strings"

	"boardspace/internal/domain"
)

// IssueFilters is the allow-listed filter surface of the public issue
// listing. Unknown query parameters never reach this struct.
type IssueFilters struct {
	States        []string
	Priorities    []string
	Labels        []string
	Assignees     []string
	CreatedBy     []string
	CreatedAfter  string
	CreatedBefore string
}

var issueOrderColumns = map[string]string{
	"created_at":  "i.created_at",
	"updated_at":  "i.updated_at",
	"name":        "i.name",
	"priority":    "i.priority",
	"sequence_id": "i.sequence_id",
	"target_date": "i.target_date",
}

const defaultIssueOrder = "-created_at"

// IssueOrderClause maps an order_by parameter onto a SQL ORDER BY over
// the allow-listed columns. A leading '-' means descending; anything
// not on the list silently falls back to newest-first.
func IssueOrderClause(orderBy string) string {
	field := orderBy
	desc := false
	if strings.HasPrefix(field, "-") {
		field = field[1:]
		desc = true
	}
	col, ok := issueOrderColumns[field]
	if !ok {
		return IssueOrderClause(defaultIssueOrder)
	}
	if desc {
		return col + " DESC, i.id DESC"
	}
	return col + " ASC, i.id ASC"
}

func inClause(column string, values []string, args *[]any) string {
	marks := make([]string, len(values))
	for i, v := range values {
		marks[i] = "?"
		*args = append(*args, v)
	}
	return column + " IN (" + strings.Join(marks, ",") + ")"
}

func issueFilterClauses(workspaceSlug, projectID string, f IssueFilters) ([]string, []any) {
	clauses := []string{"i.project_id=?", "w.slug=?", "i.is_draft=1"}
	args := []any{projectID, workspaceSlug}
	if len(f.States) > 0 {
		clauses = append(clauses, inClause("i.state_id", f.States, &args))
	}
	if len(f.Priorities) > 0 {
		clauses = append(clauses, inClause("i.priority", f.Priorities, &args))
	}
	if len(f.CreatedBy) > 0 {
		clauses = append(clauses, inClause("i.created_by", f.CreatedBy, &args))
	}
	if len(f.Labels) > 0 {
		marks := make([]string, len(f.Labels))
		for i, v := range f.Labels {
			marks[i] = "?"
			args = append(args, v)
		}
		clauses = append(clauses, "EXISTS(SELECT 1 FROM issue_labels il WHERE il.issue_id=i.id AND il.label_id IN ("+strings.Join(marks, ",")+"))")
	}
	if len(f.Assignees) > 0 {
		marks := make([]string, len(f.Assignees))
		for i, v := range f.Assignees {
			marks[i] = "?"
			args = append(args, v)
		}
		clauses = append(clauses, "EXISTS(SELECT 1 FROM issue_assignees ia WHERE ia.issue_id=i.id AND ia.member_id IN ("+strings.Join(marks, ",")+"))")
	}
	if f.CreatedAfter != "" {
		clauses = append(clauses, "i.created_at >= ?")
		args = append(args, f.CreatedAfter)
	}
	if f.CreatedBefore != "" {
		clauses = append(clauses, "i.created_at <= ?")
		args = append(args, f.CreatedBefore)
	}
	return clauses, args
}

const issueColumns = `i.id,i.workspace_id,i.project_id,i.state_id,i.parent_id,i.name,i.description_html,i.priority,i.sequence_id,i.is_draft,i.archived_at,i.target_date,i.created_by,i.created_at,i.updated_at,
(SELECT count(*) FROM issue_links l WHERE l.issue_id=i.id),
(SELECT count(*) FROM issue_attachments a WHERE a.issue_id=i.id),
(SELECT count(*) FROM issues s WHERE s.parent_id=i.id)`

const issueFrom = ` FROM issues i JOIN workspaces w ON w.id=i.workspace_id `

func scanIssue(rows *sql.Rows) (domain.Issue, error) {
	var it domain.Issue
	var desc, archived, target sql.NullString
	var isDraft int
	err := rows.Scan(&it.ID, &it.WorkspaceID, &it.ProjectID, &it.StateID, &it.ParentID, &it.Name, &desc,
		&it.Priority, &it.SequenceID, &isDraft, &archived, &target, &it.CreatedBy, &it.CreatedAt, &it.UpdatedAt,
		&it.LinkCount, &it.AttachmentCount, &it.SubIssueCount)
	if err != nil {
		return it, err
	}
	it.IsDraft = isDraft != 0
	it.DescriptionHTML = desc.String
	if archived.Valid {
		it.ArchivedAt = &archived.String
	}
	if target.Valid {
		it.TargetDate = &target.String
	}
	return it, nil
}

func (r Repo) attachIssueRelations(ctx context.Context, issues []domain.Issue) error {
	for i := range issues {
		assignees, err := r.issueMemberIDs(ctx, `SELECT member_id FROM issue_assignees WHERE issue_id=? ORDER BY member_id`, issues[i].ID)
		if err != nil {
			return err
		}
		labels, err := r.issueMemberIDs(ctx, `SELECT label_id FROM issue_labels WHERE issue_id=? ORDER BY label_id`, issues[i].ID)
		if err != nil {
			return err
		}
		issues[i].AssigneeIDs = assignees
		issues[i].LabelIDs = labels
	}
	return nil
}

func (r Repo) issueMemberIDs(ctx context.Context, query, issueID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListPublicIssues returns one page of the flat public listing along
// with the exact number of rows matching the listing predicate.
func (r Repo) ListPublicIssues(ctx context.Context, workspaceSlug, projectID string, f IssueFilters, orderBy string, limit, offset int) ([]domain.Issue, int, error) {
	clauses, args := issueFilterClauses(workspaceSlug, projectID, f)
	listClauses := append([]string{"i.archived_at IS NULL"}, clauses...)
	where := "WHERE " + strings.Join(listClauses, " AND ")

	var total int
	countArgs := append([]any{}, args...)
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*)`+issueFrom+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + issueColumns + issueFrom + where + ` ORDER BY ` + IssueOrderClause(orderBy) + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var res []domain.Issue
	for rows.Next() {
		it, err := scanIssue(rows)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachIssueRelations(ctx, res); err != nil {
		return nil, 0, err
	}
	return res, total, nil
}

// IssueGroupPage is one group of the grouped listing. Count is computed
// under a predicate wider than the page itself, so Count may exceed the
// number of rows any page of the group will ever show.
type IssueGroupPage struct {
	Key     string
	Results []domain.Issue
	Count   int
}

var issueGroupSpecs = map[string]struct {
	keyExpr   string
	keyClause string
}{
	"state":    {"i.state_id", "i.state_id=?"},
	"priority": {"i.priority", "i.priority=?"},
	"assignee": {"ia.member_id", "EXISTS(SELECT 1 FROM issue_assignees ia WHERE ia.issue_id=i.id AND ia.member_id=?)"},
	"label":    {"il.label_id", "EXISTS(SELECT 1 FROM issue_labels il WHERE il.issue_id=i.id AND il.label_id=?)"},
}

func IsGroupableField(field string) bool {
	_, ok := issueGroupSpecs[field]
	return ok
}

// GroupedPublicIssues materializes one bounded page per group key. The
// per-group Count also admits archived issues whose inbox status is
// rejected, accepted or snoozed, or that have no inbox row at all, so
// it may exceed what the page shows.
func (r Repo) GroupedPublicIssues(ctx context.Context, workspaceSlug, projectID string, f IssueFilters, groupBy, orderBy string, limit, offset int) ([]IssueGroupPage, error) {
	spec, ok := issueGroupSpecs[groupBy]
	if !ok {
		return nil, ErrNotFound
	}
	keys, err := r.issueGroupKeys(ctx, workspaceSlug, projectID, f, groupBy)
	if err != nil {
		return nil, err
	}
	clauses, args := issueFilterClauses(workspaceSlug, projectID, f)
	var groups []IssueGroupPage
	for _, key := range keys {
		listClauses := append([]string{"i.archived_at IS NULL", spec.keyClause}, clauses...)
		listArgs := append([]any{key}, args...)
		where := "WHERE " + strings.Join(listClauses, " AND ")
		query := `SELECT ` + issueColumns + issueFrom + where + ` ORDER BY ` + IssueOrderClause(orderBy) + ` LIMIT ? OFFSET ?`
		rows, err := r.DB.QueryContext(ctx, query, append(listArgs, limit, offset)...)
		if err != nil {
			return nil, err
		}
		var results []domain.Issue
		for rows.Next() {
			it, err := scanIssue(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			results = append(results, it)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
		if err := r.attachIssueRelations(ctx, results); err != nil {
			return nil, err
		}

		countClauses := append([]string{spec.keyClause,
			"(i.archived_at IS NULL OR EXISTS(SELECT 1 FROM issue_inbox x WHERE x.issue_id=i.id AND x.status IN (-1,1,2)) OR NOT EXISTS(SELECT 1 FROM issue_inbox x WHERE x.issue_id=i.id))"},
			clauses...)
		countArgs := append([]any{key}, args...)
		var count int
		if err := r.DB.QueryRowContext(ctx, `SELECT count(*)`+issueFrom+`WHERE `+strings.Join(countClauses, " AND "), countArgs...).Scan(&count); err != nil {
			return nil, err
		}
		groups = append(groups, IssueGroupPage{Key: key, Results: results, Count: count})
	}
	return groups, nil
}

func (r Repo) issueGroupKeys(ctx context.Context, workspaceSlug, projectID string, f IssueFilters, groupBy string) ([]string, error) {
	clauses, args := issueFilterClauses(workspaceSlug, projectID, f)
	clauses = append(clauses, "i.archived_at IS NULL")
	from := issueFrom
	switch groupBy {
	case "assignee":
		from = ` FROM issues i JOIN workspaces w ON w.id=i.workspace_id JOIN issue_assignees ia ON ia.issue_id=i.id `
	case "label":
		from = ` FROM issues i JOIN workspaces w ON w.id=i.workspace_id JOIN issue_labels il ON il.issue_id=i.id `
	case "state":
		clauses = append(clauses, "i.state_id IS NOT NULL")
	}
	keyExpr := issueGroupSpecs[groupBy].keyExpr
	query := `SELECT DISTINCT ` + keyExpr + from + `WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY ` + keyExpr
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// GetPublicIssue retrieves a single published issue with its derived
// counters and relation id lists.
func (r Repo) GetPublicIssue(ctx context.Context, workspaceSlug, projectID, issueID string) (domain.Issue, error) {
	query := `SELECT ` + issueColumns + issueFrom + `WHERE i.id=? AND i.project_id=? AND w.slug=?`
	rows, err := r.DB.QueryContext(ctx, query, issueID, projectID, workspaceSlug)
	if err != nil {
		return domain.Issue{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.Issue{}, err
		}
		return domain.Issue{}, ErrNotFound
	}
	it, err := scanIssue(rows)
	if err != nil {
		return domain.Issue{}, err
	}
	issues := []domain.Issue{it}
	if err := r.attachIssueRelations(ctx, issues); err != nil {
		return domain.Issue{}, err
	}
	return issues[0], nil
}

// IssueExists checks that an issue belongs to the project regardless of
// its visibility flags; sub-resource writes only need attachment, not
// listability.
func (r Repo) IssueExists(ctx context.Context, projectID, issueID string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM issues WHERE id=? AND project_id=?`, issueID, projectID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r Repo) InsertIssue(ctx context.Context, it domain.Issue) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO issues(id,workspace_id,project_id,state_id,parent_id,name,description_html,priority,sequence_id,is_draft,archived_at,target_date,created_by,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		it.ID, it.WorkspaceID, it.ProjectID, nullableStringPtr(it.StateID), nullableStringPtr(it.ParentID),
		it.Name, nullable(it.DescriptionHTML), it.Priority, it.SequenceID, boolToInt(it.IsDraft),
		nullableStringPtr(it.ArchivedAt), nullableStringPtr(it.TargetDate), it.CreatedBy, it.CreatedAt, it.UpdatedAt)
	return err
}

func (r Repo) AddIssueAssignee(ctx context.Context, issueID, memberID string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT OR IGNORE INTO issue_assignees(issue_id,member_id) VALUES (?,?)`, issueID, memberID)
	return err
}

func (r Repo) AddIssueLabel(ctx context.Context, issueID, labelID string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT OR IGNORE INTO issue_labels(issue_id,label_id) VALUES (?,?)`, issueID, labelID)
	return err
}

func (r Repo) SetIssueInboxStatus(ctx context.Context, issueID string, status int) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO issue_inbox(issue_id,status) VALUES (?,?)
ON CONFLICT(issue_id) DO UPDATE SET status=excluded.status`, issueID, status)
	return err
}

func (r Repo) InsertIssueLink(ctx context.Context, id, issueID, title, url, createdAt string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO issue_links(id,issue_id,title,url,created_at) VALUES (?,?,?,?,?)`,
		id, issueID, nullable(title), url, createdAt)
	return err
}
