package activity

import (
	"context"
	"database/sql"
)

// StoreSink persists events to the activity_events table, off the
// request path.
type StoreSink struct {
	DB *sql.DB
}

func (s StoreSink) Deliver(ctx context.Context, evt Event) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO activity_events(type,actor_id,issue_id,project_id,requested_data,current_instance,epoch) VALUES (?,?,?,?,?,?,?)`,
		evt.Type, evt.ActorID, nullableStringPtr(evt.IssueID), evt.ProjectID,
		nullableStringPtr(evt.RequestedData), nullableStringPtr(evt.CurrentInstance), evt.Epoch)
	return err
}

func nullableStringPtr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
