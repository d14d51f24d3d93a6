package domain

import "time"

// Action is the kind of change an audit entry records.
type Action string

// Audit actions.
const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionShare      Action = "share"
	ActionRevoke     Action = "revoke"
	ActionComplete   Action = "complete"
	ActionUncomplete Action = "uncomplete"
	ActionMove       Action = "move"
)

// IsValid checks if the action is known.
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionShare,
		ActionRevoke, ActionComplete, ActionUncomplete, ActionMove:
		return true
	}
	return false
}

// AuditableEvent is an activity reported for a project, before it is persisted.
type AuditableEvent struct {
	ProjectID     int64
	Activity      string
	Originator    string
	ActivityTime  time.Time
	Action        Action
	ProjectItemID *int64
}

// ToEntry converts the event into its persisted form.
func (e AuditableEvent) ToEntry(batchID string) AuditEntry {
	return AuditEntry{
		BatchID:       batchID,
		ProjectID:     e.ProjectID,
		Activity:      e.Activity,
		Originator:    e.Originator,
		ActivityTime:  e.ActivityTime.UTC(),
		Action:        e.Action,
		ProjectItemID: e.ProjectItemID,
	}
}

// AuditEntry is a stored audit log row.
type AuditEntry struct {
	ID            int64
	BatchID       string
	ProjectID     int64
	Activity      string
	Originator    string
	ActivityTime  time.Time
	Action        Action
	ProjectItemID *int64
	CreatedAt     time.Time
}

// ToActivity converts the entry into its view form.
func (e AuditEntry) ToActivity() Activity {
	return Activity{
		Originator:    e.Originator,
		Activity:      e.Activity,
		ActivityTime:  e.ActivityTime,
		Action:        e.Action,
		ProjectItemID: e.ProjectItemID,
	}
}

// Activity is the view of an audit entry returned by history queries.
type Activity struct {
	Originator    string    `json:"originator"`
	Activity      string    `json:"activity"`
	ActivityTime  time.Time `json:"activity_time"`
	Action        Action    `json:"action"`
	ProjectItemID *int64    `json:"project_item_id,omitempty"`
}
